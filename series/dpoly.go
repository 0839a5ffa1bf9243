// Package series implements the truncated Taylor-series engine the counting
// core divides rational generating functions with: the scalar dpoly
// recurrence and its multivariate, parameter-carrying counterpart dpoly_r
// (spec.md §4.4).
package series

import (
	"errors"
	"fmt"
	"math/big"
)

func errorf(tag string, err error) error {
	return fmt.Errorf("series: %s: %w", tag, err)
}

// ErrZeroConstantTerm is returned by Div when the denominator's constant
// term is zero, which would make the quotient recurrence undefined.
var ErrZeroConstantTerm = errors.New("denominator constant term is zero")

// DPoly is a polynomial truncated to degree D, stored as rational
// coefficients c_0..c_D (spec.md §4.4).
type DPoly struct {
	D      int
	Coeffs []*big.Rat
}

func newZero(d int) *DPoly {
	c := make([]*big.Rat, d+1)
	for i := range c {
		c[i] = new(big.Rat)
	}
	return &DPoly{D: d, Coeffs: c}
}

// Clone returns a deep copy.
func (p *DPoly) Clone() *DPoly {
	out := newZero(p.D)
	for i, c := range p.Coeffs {
		out.Coeffs[i].Set(c)
	}
	return out
}

// binomialTable computes the generalized binomial coefficients C(n,k) for
// k = 0..d via the incremental recurrence c_0 = 1, c_k = c_{k-1}*(n-k+1)/k
// (spec.md §4.4 "Numerator expansion").
func binomialTable(n *big.Int, d int) []*big.Rat {
	c := make([]*big.Rat, d+1)
	c[0] = big.NewRat(1, 1)
	for k := 1; k <= d; k++ {
		factor := new(big.Rat).SetInt(new(big.Int).Sub(n, big.NewInt(int64(k-1))))
		c[k] = new(big.Rat).Mul(c[k-1], factor)
		c[k].Quo(c[k], big.NewRat(int64(k), 1))
	}
	return c
}

// NewNumerator builds the truncated series of (1+t)^n mod t^{d+1}. When
// offset > 0, the coefficients for k = offset..d+offset are computed (over
// the full recurrence through degree d+offset, so the shift is exact) and
// reindexed to occupy positions 0..d (spec.md §4.4).
func NewNumerator(n *big.Int, d int, offset int) *DPoly {
	full := binomialTable(n, d+offset)
	out := newZero(d)
	for k := offset; k <= d+offset; k++ {
		out.Coeffs[k-offset].Set(full[k])
	}
	return out
}

// NewDenominatorFactor builds the truncated series of (1-(1+t)^w)/(-t),
// whose constant term equals w, via offset=1 on the same recurrence
// (spec.md §4.4 "Denominator factor").
func NewDenominatorFactor(w *big.Int, d int) *DPoly {
	return NewNumerator(w, d, 1)
}

// Mul multiplies a and b, truncating the product to degree D (spec.md §4.4
// "Product (in place)"). a and b must share the same D.
func Mul(a, b *DPoly) (*DPoly, error) {
	if a.D != b.D {
		return nil, errorf("Mul", fmt.Errorf("degree mismatch: %d vs %d", a.D, b.D))
	}
	out := newZero(a.D)
	for i := 0; i <= a.D; i++ {
		for j := 0; i+j <= a.D; j++ {
			if a.Coeffs[i].Sign() == 0 || b.Coeffs[j].Sign() == 0 {
				continue
			}
			t := new(big.Rat).Mul(a.Coeffs[i], b.Coeffs[j])
			out.Coeffs[i+j].Add(out.Coeffs[i+j], t)
		}
	}
	return out, nil
}

// Div computes the quotient Q = N/D mod t^{D+1} via q_i = (n_i -
// sum_{j=1..i} d_j*q_{i-j}) / d_0 (spec.md §4.4 "Division by denominator").
func Div(n, d *DPoly) (*DPoly, error) {
	if n.D != d.D {
		return nil, errorf("Div", fmt.Errorf("degree mismatch: %d vs %d", n.D, d.D))
	}
	if d.Coeffs[0].Sign() == 0 {
		return nil, errorf("Div", ErrZeroConstantTerm)
	}
	out := newZero(n.D)
	for i := 0; i <= n.D; i++ {
		acc := new(big.Rat).Set(n.Coeffs[i])
		for j := 1; j <= i; j++ {
			t := new(big.Rat).Mul(d.Coeffs[j], out.Coeffs[i-j])
			acc.Sub(acc, t)
		}
		acc.Quo(acc, d.Coeffs[0])
		out.Coeffs[i] = acc
	}
	return out, nil
}

// At returns the coefficient of t^k, or zero if k is out of range.
func (p *DPoly) At(k int) *big.Rat {
	if k < 0 || k > p.D {
		return new(big.Rat)
	}
	return p.Coeffs[k]
}

// ErrNotInteger is returned by IntCoeffs when a coefficient is not a whole
// number.
var ErrNotInteger = errors.New("coefficient is not an integer")

// IntCoeffs recovers p's coefficients as BigInt, as is always possible for
// the numerator/denominator-factor polynomials this engine builds (every
// C(n,k) for integer n is itself an integer). Returns ErrNotInteger if some
// coefficient genuinely has a non-trivial denominator.
func (p *DPoly) IntCoeffs() ([]*big.Int, error) {
	out := make([]*big.Int, len(p.Coeffs))
	for i, c := range p.Coeffs {
		if c.Denom().Cmp(big.NewInt(1)) != 0 {
			return nil, errorf("IntCoeffs", ErrNotInteger)
		}
		out[i] = new(big.Int).Set(c.Num())
	}
	return out, nil
}
