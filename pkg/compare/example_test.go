package compare_test

import (
	"context"
	"fmt"

	"github.com/branched-services/go-pi/pkg/compare"
)

func ExampleRun() {
	report, err := compare.Run(context.Background(), compare.Config{
		SampleSize:  100,
		Simulations: 1,
		Methods:     []string{"circle-ratio", "mc-integral"},
	}, compare.WithSeed(1))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, res := range report.Results {
		fmt.Printf("%s %.1f\n", res.Method, res.StdDev)
	}
	// Output:
	// circle-ratio 0.0
	// mc-integral 0.0
}
