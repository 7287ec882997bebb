package compare

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const textHeader = "Comparison of Standard Deviation for Pi Estimation Methods:"

// FormatText writes the report in human-readable form.
func FormatText(w io.Writer, r *Report) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, textHeader)
	fmt.Fprintln(w, strings.Repeat("=", len(textHeader)))
	for _, res := range r.Results {
		fmt.Fprintf(w, "%-15s  %.6f\n", res.Method, res.StdDev)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sample size: %d   Simulations: %d   Duration: %v\n",
		r.SampleSize, r.Simulations, r.Duration.Round(time.Millisecond))
}

// FormatMarkdown writes the report as a markdown table.
func FormatMarkdown(w io.Writer, r *Report) {
	fmt.Fprintf(w, "# Pi estimator comparison\n\n")
	fmt.Fprintf(w, "%d simulations of %d samples each.\n\n", r.Simulations, r.SampleSize)
	fmt.Fprintln(w, "| Method | Mean | Std. deviation |")
	fmt.Fprintln(w, "|---|---:|---:|")
	for _, res := range r.Results {
		fmt.Fprintf(w, "| %s | %.6f | %.6f |\n", res.Method, res.Mean, res.StdDev)
	}
}

// FormatJSON writes the report as indented JSON.
func FormatJSON(w io.Writer, r *Report) error {
	output := struct {
		SampleSize  int                `json:"sampleSize"`
		Simulations int                `json:"simulations"`
		Duration    string             `json:"duration"`
		StdDev      map[string]float64 `json:"stdDev"`
		Methods     []jsonMethodResult `json:"methods"`
	}{
		SampleSize:  r.SampleSize,
		Simulations: r.Simulations,
		Duration:    r.Duration.Round(time.Millisecond).String(),
		StdDev:      make(map[string]float64, len(r.Results)),
		Methods:     make([]jsonMethodResult, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		output.StdDev[string(res.Method)] = res.StdDev
		output.Methods = append(output.Methods, jsonMethodResult{
			Method: string(res.Method),
			Mean:   res.Mean,
			StdDev: res.StdDev,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

type jsonMethodResult struct {
	Method string  `json:"method"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}
