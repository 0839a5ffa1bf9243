package genfun

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// ErrUnsupportedDimension is returned by Specialize and ToEValue, which
// implement single-parameter coefficient extraction only: the gen-fun
// round-trip property spec.md §8 tests (P = {0 <= x <= p}, series(P)
// evaluated at x^p) only ever needs one parameter, and a true multivariate
// residue extraction needs machinery the filtered original source does not
// retain (SPEC_FULL.md §4.7).
var ErrUnsupportedDimension = errors.New("genfun: coefficient extraction supports exactly one parameter")

// ErrDegenerateTerm is returned when a term carries no denominator factors
// at all (a bare polynomial numerator): this engine never actually builds
// such a term (every vertex contributes at least one ray's denominator
// factor), so coefficient extraction does not attempt to handle it.
var ErrDegenerateTerm = errors.New("genfun: term has no denominator factors")

// ErrNonPositiveFactor is returned when a canonicalized denominator row is
// zero: such a factor has no combinatorial meaning as a generating-function
// pole and never arises from this engine's own Add canonicalization on a
// well-formed input.
var ErrNonPositiveFactor = errors.New("genfun: denominator factor is non-positive")

func lcmInt64(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	ga, gb := a, b
	for gb != 0 {
		ga, gb = gb, ga%gb
	}
	g := ga
	if g < 0 {
		g = -g
	}
	l := a / g * b
	if l < 0 {
		l = -l
	}
	return l
}

// convolutionCoeffs returns, for i = 0..maxN, the coefficient of x^i in
// 1 / Π (1 - x^{ds[k]}), computed by the standard unbounded-knapsack
// convolution: start from the series 1, then fold in each factor in turn
// via dp[j] += dp[j-d] for j = d..maxN (exact BigInt arithmetic throughout).
func convolutionCoeffs(ds []int64, maxN int64) []*big.Int {
	dp := make([]*big.Int, maxN+1)
	dp[0] = big.NewInt(1)
	for i := int64(1); i <= maxN; i++ {
		dp[i] = new(big.Int)
	}
	for _, d := range ds {
		for j := d; j <= maxN; j++ {
			dp[j].Add(dp[j], dp[j-d])
		}
	}
	return dp
}

// coefficientAt returns [x^n] of term t, given dp = convolutionCoeffs of
// t's denominator factors computed up to at least n.
func coefficientAt(t *Term, dp []*big.Int, n int64) *big.Rat {
	acc := new(big.Rat)
	for _, m := range t.Numerators {
		shift := m.Power[0].Int64()
		k := n - shift
		if k < 0 || k >= int64(len(dp)) {
			continue
		}
		term := new(big.Rat).SetInt(dp[k])
		term.Mul(term, m.Coeff)
		acc.Add(acc, term)
	}
	return acc
}

func termFactorDegrees(t *Term) ([]int64, error) {
	ds := make([]int64, t.Denominator.Rows())
	for i, row := range t.Denominator {
		if row[0].Sign() <= 0 {
			return nil, ErrNonPositiveFactor
		}
		ds[i] = row[0].Int64()
	}
	return ds, nil
}

// Specialize returns [x^n] of g's represented rational function, for a
// single-parameter gen_fun (spec.md §4.7 "Specialize", the operation
// exercised by spec.md §8's gen-fun round-trip property). n must be >= 0.
func (g *GenFun) Specialize(n *big.Int) (*big.Rat, error) {
	if g.NParams != 1 {
		return nil, errorf("Specialize", ErrUnsupportedDimension)
	}
	nn := n.Int64()
	acc := new(big.Rat)
	if nn < 0 {
		return acc, nil
	}
	for _, t := range g.Terms() {
		ds, err := termFactorDegrees(t)
		if err != nil {
			return nil, errorf("Specialize", err)
		}
		dp := convolutionCoeffs(ds, nn)
		acc.Add(acc, coefficientAt(t, dp, nn))
	}
	return acc, nil
}

// ToEValue converts g into its equivalent quasi-polynomial (spec.md §4.7
// "ToEValue", genfun.h's `operator evalue*()`), for a single-parameter
// gen_fun. Each term's coefficient sequence a(n) is, for n from a threshold
// (never below 0) set by its numerator's widest monomial shift and its
// denominator degrees, an exact periodic
// quasi-polynomial of degree (#denominator factors - 1): this builds that
// quasi-polynomial by sampling a(n) directly (via the same convolution
// Specialize uses) at enough points per residue class to pin down the
// unique interpolating polynomial exactly, then wraps the result in a
// single-part partition valid from that threshold onward. Terms combine via
// evalue.Add, which extends differing period lengths to their lcm.
func (g *GenFun) ToEValue() (*evalue.EValue, error) {
	if g.NParams != 1 {
		return nil, errorf("ToEValue", ErrUnsupportedDimension)
	}
	acc := evalue.NewConstantInt(0)
	for _, t := range g.Terms() {
		part, err := termToEValue(t)
		if err != nil {
			return nil, errorf("ToEValue", err)
		}
		acc, err = evalue.Add(acc, part)
		if err != nil {
			return nil, errorf("ToEValue", err)
		}
	}
	return acc, nil
}

func termToEValue(t *Term) (*evalue.EValue, error) {
	ds, err := termFactorDegrees(t)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, ErrDegenerateTerm
	}
	degree := len(ds) - 1
	period := ds[0]
	for _, d := range ds[1:] {
		period = lcmInt64(period, d)
	}

	var maxShift int64
	for _, m := range t.Numerators {
		s := m.Power[0].Int64()
		if s < 0 {
			s = -s
		}
		if s > maxShift {
			maxShift = s
		}
	}
	// [x^n] x^s/Π(1-x^{d_k}) follows the quasi-polynomial for every
	// n > s - Σd_k, so samples taken from n0 onward pin it down exactly.
	n0 := maxShift + 1
	for _, d := range ds {
		n0 -= d
	}
	if n0 < 0 {
		n0 = 0
	}
	samplesPerResidue := int64(degree + 1)
	maxNeeded := n0 + period*samplesPerResidue + period
	dp := convolutionCoeffs(ds, maxNeeded)

	periods := make([]*evalue.EValue, period)
	for r := int64(0); r < period; r++ {
		base := n0 + ((r-n0%period)+period)%period
		xs := make([]*big.Int, samplesPerResidue)
		ys := make([]*big.Rat, samplesPerResidue)
		for s := int64(0); s < samplesPerResidue; s++ {
			n := base + s*period
			xs[s] = big.NewInt(n)
			ys[s] = coefficientAt(t, dp, n)
		}
		poly := interpolate(xs, ys)
		coeffs := make([]*evalue.EValue, len(poly))
		for i, c := range poly {
			coeffs[i] = evalue.NewConstant(c)
		}
		periods[r] = evalue.NewPolynomial(0, coeffs)
	}

	body := evalue.NewPeriodic(0, periods)
	dom := polyhedron.New(1, 0)
	dom.AddConstraint(polyhedron.Constraint{
		A: bigrat.Vector{big.NewInt(1)}, B: bigrat.Vector{}, C: big.NewInt(-n0),
	})
	return evalue.NewPartition([]evalue.Part{{Domain: dom, Child: body}}), nil
}

// interpolate returns the unique polynomial of degree len(xs)-1 through the
// given points, as coefficients c_0..c_deg in the standard monomial basis,
// via Newton's divided-difference form expanded exactly over Q.
func interpolate(xs []*big.Int, ys []*big.Rat) []*big.Rat {
	n := len(xs)
	table := make([][]*big.Rat, n)
	table[0] = make([]*big.Rat, n)
	for i, y := range ys {
		table[0][i] = new(big.Rat).Set(y)
	}
	for level := 1; level < n; level++ {
		prev := table[level-1]
		cur := make([]*big.Rat, n-level)
		for i := range cur {
			num := new(big.Rat).Sub(prev[i+1], prev[i])
			denom := new(big.Rat).SetInt(new(big.Int).Sub(xs[i+level], xs[i]))
			cur[i] = new(big.Rat).Quo(num, denom)
		}
		table[level] = cur
	}

	result := []*big.Rat{new(big.Rat)}
	basis := []*big.Rat{big.NewRat(1, 1)}
	for level := 0; level < n; level++ {
		c := table[level][0]
		result = polyAddScaled(result, basis, c)
		if level < n-1 {
			basis = polyMulLinear(basis, xs[level])
		}
	}
	return result
}

func polyAddScaled(p, q []*big.Rat, c *big.Rat) []*big.Rat {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Rat)
		if i < len(p) {
			out[i].Add(out[i], p[i])
		}
		if i < len(q) {
			t := new(big.Rat).Mul(q[i], c)
			out[i].Add(out[i], t)
		}
	}
	return out
}

// polyMulLinear returns p*(x - x0).
func polyMulLinear(p []*big.Rat, x0 *big.Int) []*big.Rat {
	out := make([]*big.Rat, len(p)+1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	x0r := new(big.Rat).SetInt(x0)
	for i, c := range p {
		out[i+1].Add(out[i+1], c)
		t := new(big.Rat).Mul(c, x0r)
		out[i].Sub(out[i], t)
	}
	return out
}
