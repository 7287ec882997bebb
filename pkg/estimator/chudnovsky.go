package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/holiman/uint256"
)

const (
	chudnovskyA = 13591409
	chudnovskyB = 545140134

	// chudnovskyC3Over24 is 640320³/24.
	chudnovskyC3Over24 = 10939058860032000

	// each series term contributes about 14.18 decimal digits
	digitsPerTerm = 14.181647462725477

	// guardDigits are carried on top of the requested precision and dropped
	// by the final rounding. Two more are added per decimal digit of the
	// term count to absorb per-term truncation.
	guardDigits = 12

	// MaxRecommendedDigits is the practical ceiling; larger requests run but
	// are logged as slow.
	MaxRecommendedDigits = 100_000
)

// Chudnovsky computes π to a requested number of significant digits:
//
//	π = 426880·√10005 / Σₖ (6k)!(13591409 + 545140134k) / ((3k)!(k!)³(−640320³)ᵏ)
//
// The series runs in fixed point: every quantity is an integer scaled by
// 10^w, where w is the requested digits plus guard digits. There is no
// process-wide precision and no exponent ceiling, so the digit count is
// bounded only by time and memory.
type Chudnovsky struct {
	digits int
	logger *slog.Logger
}

// NewChudnovsky creates the exact estimator for the given digit count.
func NewChudnovsky(digits int, opts ...Option) *Chudnovsky {
	s := newSettings(opts)
	return &Chudnovsky{
		digits: digits,
		logger: s.logger,
	}
}

// Method returns MethodChudnovsky.
func (c *Chudnovsky) Method() Method {
	return MethodChudnovsky
}

// Estimate evaluates the series.
func (c *Chudnovsky) Estimate(ctx context.Context) (*Outcome, error) {
	start := time.Now()

	if c.digits > MaxRecommendedDigits {
		c.logger.Warn("requested digits past recommended ceiling, this will be slow",
			"digits", c.digits,
			"recommended_max", MaxRecommendedDigits,
		)
	}

	guard := c.guard()
	w := c.digits + guard
	one := pow10(w)

	sum, err := c.series(ctx, one)
	if err != nil {
		return nil, err
	}

	// 426880·√10005, scaled by 10^w
	num := new(big.Int).Mul(big.NewInt(10005), one)
	num.Mul(num, one)
	num.Sqrt(num)
	num.Mul(num, big.NewInt(426880))

	pi := num.Mul(num, one)
	pi.Quo(pi, sum)

	// pi carries w decimals; keep digits-1 of them, rounding half up
	drop := pow10(guard + 1)
	pi.Add(pi, new(big.Int).Quo(drop, big.NewInt(2)))
	pi.Quo(pi, drop)

	exact := apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(pi), -int32(c.digits-1))

	value, err := exact.Float64()
	if err != nil {
		return nil, fmt.Errorf("chudnovsky: float conversion: %w", err)
	}

	return &Outcome{
		Method:   MethodChudnovsky,
		Value:    value,
		Exact:    exact,
		Duration: time.Since(start),
	}, nil
}

// Terms returns the number of series terms needed for the digit count.
func (c *Chudnovsky) Terms() int {
	return int(float64(c.digits)/digitsPerTerm) + 2
}

func (c *Chudnovsky) guard() int {
	return guardDigits + 2*len(strconv.Itoa(c.Terms()))
}

// series returns 13591409·Σaₖ + 545140134·Σk·aₖ scaled by one, where
// aₖ = (6k)!/((3k)!(k!)³(−640320³)ᵏ). Each aₖ follows from aₖ₋₁ through a
// ratio of small integers, so no factorial is ever materialized. The loop
// stops once aₖ truncates to zero.
func (c *Chudnovsky) series(ctx context.Context, one *big.Int) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("chudnovsky: %w", err)
	}

	a := new(big.Int).Set(one)
	sumA := new(big.Int).Set(one)
	sumB := new(big.Int)
	ka := new(big.Int)

	for k := uint64(1); a.Sign() != 0; k++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chudnovsky: %w", err)
		}

		num, den, err := termRatio(k)
		if err != nil {
			return nil, err
		}
		a.Mul(a, num)
		a.Quo(a, den)
		a.Neg(a)

		sumA.Add(sumA, a)
		ka.Mul(a, new(big.Int).SetUint64(k))
		sumB.Add(sumB, ka)
	}

	sumA.Mul(sumA, big.NewInt(chudnovskyA))
	sumB.Mul(sumB, big.NewInt(chudnovskyB))
	return sumA.Add(sumA, sumB), nil
}

// termRatio returns the magnitude of aₖ/aₖ₋₁ as num/den:
//
//	(6k−5)(2k−1)(6k−1) / (k³·640320³/24)
func termRatio(k uint64) (num, den *big.Int, err error) {
	num, err = product(6*k-5, 2*k-1, 6*k-1)
	if err != nil {
		return nil, nil, err
	}
	den, err = product(k, k, k, chudnovskyC3Over24)
	if err != nil {
		return nil, nil, err
	}
	return num, den, nil
}

// product multiplies small factors exactly in 256-bit arithmetic. For the
// term ratio 256 bits always suffice: for any k < 2⁶¹ (so 6k fits in a
// uint64) k³·640320³/24 stays below 2²³⁷ and the numerator below 2¹⁹⁰.
// The overflow check guards other callers.
func product(factors ...uint64) (*big.Int, error) {
	acc := uint256.NewInt(1)
	for _, x := range factors {
		var overflow bool
		acc, overflow = acc.MulOverflow(acc, uint256.NewInt(x))
		if overflow {
			return nil, fmt.Errorf("%w: product overflows 256 bits", ErrInvalidRequest)
		}
	}
	return acc.ToBig(), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

var _ Estimator = (*Chudnovsky)(nil)
