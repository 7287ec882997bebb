package estimator

import "context"

// Estimator defines the single capability shared by every π method.
// An Estimator owns all working state for the duration of one Estimate call;
// nothing is carried over between calls.
//
// Open/Closed Principle: the set of methods is closed (see Method), but each
// method is an independent implementation of this interface.
type Estimator interface {
	// Estimate runs the method to completion and returns its outcome.
	// It checks ctx periodically and stops early once ctx is done.
	Estimate(ctx context.Context) (*Outcome, error)

	// Method returns the identifier this estimator implements.
	// Used for logging and metrics.
	Method() Method
}

// checkEvery is the trial interval at which long loops poll the context.
const checkEvery = 4096

func canceled(ctx context.Context, i int) error {
	if i%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}
