package estimator

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// New resolves req.Method and constructs the matching estimator.
// An unknown method fails before anything is constructed.
func New(req Request, opts ...Option) (Estimator, error) {
	m, err := ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return construct(m, req, opts)
}

// construct is the exhaustive tag → factory mapping.
func construct(m Method, req Request, opts []Option) (Estimator, error) {
	switch m {
	case MethodMCIntegral:
		if err := noParams(m, req.Params); err != nil {
			return nil, err
		}
		return NewMCIntegral(req.SampleSize, opts...), nil

	case MethodCircleRatio:
		if err := noParams(m, req.Params); err != nil {
			return nil, err
		}
		return NewCircleRatio(req.SampleSize, opts...), nil

	case MethodDrunkard:
		params := DrunkardParams{StepSize: DefaultStepSize}
		if err := decodeParams(m, req.Params, &params); err != nil {
			return nil, err
		}
		return NewDrunkard(req.SampleSize, params, opts...)

	case MethodBuffon:
		if err := noParams(m, req.Params); err != nil {
			return nil, err
		}
		return NewBuffon(req.SampleSize, opts...), nil

	case MethodLaplace:
		if err := noParams(m, req.Params); err != nil {
			return nil, err
		}
		return NewLaplace(req.SampleSize, opts...), nil

	case MethodChudnovsky:
		if err := noParams(m, req.Params); err != nil {
			return nil, err
		}
		return NewChudnovsky(req.SampleSize, opts...), nil

	case MethodNewtons:
		params := NewtonParams{InitialGuess: DefaultInitialGuess, Tolerance: DefaultTolerance}
		if err := decodeParams(m, req.Params, &params); err != nil {
			return nil, err
		}
		return NewNewton(req.SampleSize, params, opts...)

	default:
		return nil, fmt.Errorf("%w %q: must be one of [%s]", ErrUnknownMethod, m, methodList())
	}
}

// decodeParams decodes the open params map onto defaults already present in
// out. Strings are converted ("0.1" → 0.1) and unknown keys are rejected.
func decodeParams(m Method, params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("building params decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %s params: %v", ErrInvalidRequest, m, err)
	}
	return nil
}

func noParams(m Method, params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return fmt.Errorf("%w: %s accepts no params, got %v", ErrInvalidRequest, m, keys)
}
