// Package render is the visualization collaborator for pkg/estimator.
// It draws recorded traces and comparison distributions to PNG files with
// gonum/plot. Nothing here feeds back into an estimate.
package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/branched-services/go-pi/pkg/compare"
	"github.com/branched-services/go-pi/pkg/estimator"
)

var (
	colorInside  = color.RGBA{R: 0x6f, G: 0xaf, B: 0x22, A: 0xff}
	colorOutside = color.RGBA{R: 0x78, G: 0x46, B: 0xb4, A: 0xff}
	colorPath    = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x40}
	colorRuling  = color.RGBA{A: 0x99}
	colorBlack   = color.RGBA{A: 0xff}
)

// maxNeedles caps how many needles are drawn; the title still reports the
// full trial count.
const maxNeedles = 5000

// PNG renders traces into a directory, one <method>.png per call, or
// <method>-<tag>.png for a renderer returned by Scoped. A PNG is safe for
// concurrent use.
type PNG struct {
	dir    string
	tag    string
	size   vg.Length
	mu     *sync.Mutex // guards rnd, shared with scoped copies
	rnd    *rand.Rand
	logger *slog.Logger
}

// Option configures a PNG renderer.
type Option func(*PNG)

// WithSize sets the edge length of the (square) images.
func WithSize(size vg.Length) Option {
	return func(p *PNG) {
		p.size = size
	}
}

// WithSeed fixes the renderer's own random source, used to place needles
// vertically.
func WithSeed(seed uint64) Option {
	return func(p *PNG) {
		p.rnd = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *PNG) {
		p.logger = l
	}
}

// New creates a renderer writing into dir.
func New(dir string, opts ...Option) *PNG {
	p := &PNG{
		dir:    dir,
		size:   15 * vg.Centimeter,
		mu:     new(sync.Mutex),
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "render")
	return p
}

// Scoped returns a renderer sharing p's directory and random source whose
// files carry tag in their names, so concurrent callers with distinct tags
// never overwrite each other. Characters outside [A-Za-z0-9_-] in tag are
// replaced with '_'.
func (p *PNG) Scoped(tag string) estimator.Renderer {
	q := *p
	q.tag = cleanTag(tag)
	q.logger = p.logger.With("tag", q.tag)
	return &q
}

// Path returns the file a trace of method m is rendered to.
func (p *PNG) Path(m estimator.Method) string {
	return p.file(string(m))
}

func (p *PNG) file(name string) string {
	if p.tag != "" {
		name += "-" + p.tag
	}
	return filepath.Join(p.dir, name+".png")
}

func cleanTag(tag string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, tag)
}

// fork returns a generator seeded from the shared source, for use by a
// single call.
func (p *PNG) fork() *rand.Rand {
	p.mu.Lock()
	seed := p.rnd.Uint64()
	p.mu.Unlock()
	return rand.New(rand.NewPCG(seed, seed))
}

// Render draws the trace. Only visualizable methods are supported.
func (p *PNG) Render(trace *estimator.Trace, out *estimator.Outcome) error {
	var (
		pl  *plot.Plot
		err error
	)

	switch trace.Method {
	case estimator.MethodCircleRatio:
		pl, err = circlePlot(trace, out)
	case estimator.MethodDrunkard:
		pl, err = walkPlot(trace, out)
	case estimator.MethodBuffon:
		pl, err = p.needlePlot(trace, out)
	case estimator.MethodNewtons:
		pl, err = newtonPlot(trace, out)
	default:
		return fmt.Errorf("no renderer for method %s", trace.Method)
	}
	if err != nil {
		return err
	}

	return p.save(pl, p.Path(trace.Method))
}

// Histograms draws the distribution of estimates for every method of a
// comparison and returns the files written. Methods with fewer than two
// runs have no distribution and are skipped.
func (p *PNG) Histograms(report *compare.Report) ([]string, error) {
	var paths []string
	for _, res := range report.Results {
		if len(res.Estimates) < 2 {
			continue
		}

		pl := plot.New()
		pl.Title.Text = fmt.Sprintf("%s: %d runs of %d samples, std = %.6f",
			res.Method, report.Simulations, report.SampleSize, res.StdDev)
		pl.X.Label.Text = "Estimate"
		pl.Y.Label.Text = "Runs"

		h, err := plotter.NewHist(plotter.Values(res.Estimates), 20)
		if err != nil {
			return nil, fmt.Errorf("histogram for %s: %w", res.Method, err)
		}
		h.FillColor = colorOutside
		pl.Add(h, plotter.NewGrid())

		if err := addVertical(pl, math.Pi, 0, float64(len(res.Estimates)), colorBlack, "π"); err != nil {
			return nil, err
		}

		path := p.file("compare-" + string(res.Method))
		if err := p.save(pl, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (p *PNG) save(pl *plot.Plot, path string) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("creating plot dir: %w", err)
	}
	if err := pl.Save(p.size, p.size, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	p.logger.Info("plot written", "path", path)
	return nil
}

func circlePlot(trace *estimator.Trace, out *estimator.Outcome) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Circle ratio with %d samples, pi = %.4f", out.Trials, out.Value)
	squareAxes(pl, -1.1, 1.1)

	inside, outside := splitPoints(trace.Points())
	if err := addScatter(pl, inside, colorInside, "Inside circle"); err != nil {
		return nil, err
	}
	if err := addScatter(pl, outside, colorOutside, "Outside circle"); err != nil {
		return nil, err
	}
	if err := addLine(pl, unitCircle(), colorBlack, ""); err != nil {
		return nil, err
	}
	return pl, nil
}

func walkPlot(trace *estimator.Trace, out *estimator.Outcome) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Drunkard's walk with %d steps, pi = %.4f", out.Trials, out.Value)
	squareAxes(pl, -1.1, 1.1)

	points := trace.Points()
	path := make(plotter.XYs, len(points))
	for i, pt := range points {
		path[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}

	if err := addLine(pl, path, colorPath, "Drunkard's path"); err != nil {
		return nil, err
	}
	inside, outside := splitPoints(points)
	if err := addScatter(pl, inside, colorInside, "Inside circle"); err != nil {
		return nil, err
	}
	if err := addScatter(pl, outside, colorOutside, "Outside circle"); err != nil {
		return nil, err
	}
	if err := addLine(pl, unitCircle(), colorBlack, ""); err != nil {
		return nil, err
	}
	square := plotter.XYs{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	if err := addLine(pl, square, colorBlack, ""); err != nil {
		return nil, err
	}
	if len(path) > 0 {
		if err := addScatter(pl, path[:1], color.RGBA{G: 0x80, A: 0xff}, "Start"); err != nil {
			return nil, err
		}
		if err := addScatter(pl, path[len(path)-1:], colorBlack, "End"); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

// needlePlot places each needle at a random height chosen by the renderer;
// only the horizontal extent belongs to the trial.
func (p *PNG) needlePlot(trace *estimator.Trace, out *estimator.Outcome) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Buffon's needle with %d samples, pi = %.4f", out.Trials, out.Value)
	pl.X.Label.Text = "X Position"
	pl.Y.Label.Text = "Y Position"
	squareAxes(pl, -0.5, 4.5)

	for x := 0.0; x <= 4; x += estimator.LineSpacing {
		if err := addVertical(pl, x, -0.5, 4.5, colorRuling, ""); err != nil {
			return nil, err
		}
	}

	needles := trace.Needles()
	if len(needles) > maxNeedles {
		needles = needles[:maxNeedles]
	}
	rnd := p.fork()
	half := estimator.NeedleLength / 2
	for _, n := range needles {
		y := 4 * rnd.Float64()
		dy := half * math.Cos(n.Theta)
		seg := plotter.XYs{{X: n.XStart, Y: y - dy}, {X: n.XEnd, Y: y + dy}}
		c := colorInside
		if n.Crossed {
			c = colorOutside
		}
		if err := addLine(pl, seg, c, ""); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

func newtonPlot(trace *estimator.Trace, out *estimator.Outcome) (*plot.Plot, error) {
	iterates := trace.Iterates()

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Newton's method with %d iterations, pi = %.4f", len(iterates), out.Value)
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "Function value"
	pl.X.Min, pl.X.Max = 0, 4*math.Pi
	pl.Y.Min, pl.Y.Max = -1.5, 1.5
	pl.Add(plotter.NewGrid())

	sin := plotter.NewFunction(math.Sin)
	sin.XMin, sin.XMax = 0, 4*math.Pi
	sin.Samples = 400
	sin.LineStyle.Color = colorInside
	cos := plotter.NewFunction(math.Cos)
	cos.XMin, cos.XMax = 0, 4*math.Pi
	cos.Samples = 400
	cos.LineStyle.Color = colorOutside
	pl.Add(sin, cos)
	pl.Legend.Add("sin(x)", sin)
	pl.Legend.Add("cos(x)", cos)

	path := make(plotter.XYs, 0, len(iterates))
	for _, x := range iterates {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			break
		}
		path = append(path, plotter.XY{X: x, Y: math.Sin(x)})
	}
	if err := addLine(pl, path, colorPath, "Newton path"); err != nil {
		return nil, err
	}
	if err := addScatter(pl, path, colorBlack, "Iteration points"); err != nil {
		return nil, err
	}
	return pl, nil
}

func splitPoints(points []estimator.Point) (inside, outside plotter.XYs) {
	for _, pt := range points {
		xy := plotter.XY{X: pt.X, Y: pt.Y}
		if pt.Inside {
			inside = append(inside, xy)
		} else {
			outside = append(outside, xy)
		}
	}
	return inside, outside
}

func unitCircle() plotter.XYs {
	const n = 360
	xys := make(plotter.XYs, n+1)
	for i := range xys {
		a := 2 * math.Pi * float64(i) / n
		xys[i] = plotter.XY{X: math.Cos(a), Y: math.Sin(a)}
	}
	return xys
}

func squareAxes(pl *plot.Plot, lo, hi float64) {
	pl.X.Min, pl.X.Max = lo, hi
	pl.Y.Min, pl.Y.Max = lo, hi
}

func addScatter(pl *plot.Plot, xys plotter.XYs, c color.Color, label string) error {
	if len(xys) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("scatter %q: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	pl.Add(s)
	if label != "" {
		pl.Legend.Add(label, s)
	}
	return nil
}

func addLine(pl *plot.Plot, xys plotter.XYs, c color.Color, label string) error {
	if len(xys) < 2 {
		return nil
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line %q: %w", label, err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	pl.Add(l)
	if label != "" {
		pl.Legend.Add(label, l)
	}
	return nil
}

func addVertical(pl *plot.Plot, x, ylo, yhi float64, c color.Color, label string) error {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: ylo}, {X: x, Y: yhi}})
	if err != nil {
		return fmt.Errorf("vertical line at %v: %w", x, err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	pl.Add(l)
	if label != "" {
		pl.Legend.Add(label, l)
	}
	return nil
}

var _ estimator.Renderer = (*PNG)(nil)
