package estimator

import (
	"fmt"
	"strings"
)

// Method identifies one of the supported estimation methods.
type Method string

const (
	MethodMCIntegral  Method = "mc-integral"
	MethodCircleRatio Method = "circle-ratio"
	MethodDrunkard    Method = "drunkard"
	MethodBuffon      Method = "buffon"
	MethodLaplace     Method = "laplace"
	MethodChudnovsky  Method = "chudnovsky"
	MethodNewtons     Method = "newtons"
)

// allMethods is the closed, ordered set of methods.
var allMethods = []Method{
	MethodMCIntegral,
	MethodCircleRatio,
	MethodDrunkard,
	MethodBuffon,
	MethodLaplace,
	MethodChudnovsky,
	MethodNewtons,
}

// Methods returns every method identifier in registry order.
func Methods() []Method {
	out := make([]Method, len(allMethods))
	copy(out, allMethods)
	return out
}

// StochasticMethods returns the methods that are driven by random trials.
// These are the ones the comparison harness can meaningfully compare.
func StochasticMethods() []Method {
	var out []Method
	for _, m := range allMethods {
		if m.Stochastic() {
			out = append(out, m)
		}
	}
	return out
}

// ParseMethod resolves an identifier case-insensitively.
func ParseMethod(name string) (Method, error) {
	key := Method(strings.ToLower(strings.TrimSpace(name)))
	for _, m := range allMethods {
		if m == key {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of [%s]", ErrUnknownMethod, name, methodList())
}

func methodList() string {
	names := make([]string, len(allMethods))
	for i, m := range allMethods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Stochastic reports whether the method draws random samples.
func (m Method) Stochastic() bool {
	switch m {
	case MethodMCIntegral, MethodCircleRatio, MethodDrunkard, MethodBuffon, MethodLaplace:
		return true
	default:
		return false
	}
}

// Visualizable reports whether the method records a Trace for rendering.
func (m Method) Visualizable() bool {
	switch m {
	case MethodCircleRatio, MethodDrunkard, MethodBuffon, MethodNewtons:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}
