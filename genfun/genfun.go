// Package genfun implements the multivariate rational-function accumulator
// the counting engine's series path produces: a set of terms keyed by their
// canonicalized denominator, with numerators that coalesce on insertion
// (spec.md §3 "gen_fun", §4.7). Renamed from the original `short_rat`/
// `gen_fun` (original_source/barvinok/genfun.h) to names that say what the
// types do, not what their C++ counterparts were called.
package genfun

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/sgreben/barvinok-go/bigrat"
)

func errorf(tag string, err error) error {
	return fmt.Errorf("genfun: %s: %w", tag, err)
}

// ErrDimensionMismatch is returned when a numerator or denominator row's
// length does not match the gen_fun's parameter count.
var ErrDimensionMismatch = errors.New("numerator/denominator dimension mismatch")

// Monomial is one (coefficient, power vector) term of a Term's numerator
// (spec.md §3 "a list of (BigRat coefficient, integer power-vector)
// numerator monomials").
type Monomial struct {
	Coeff *big.Rat
	Power bigrat.Vector
}

// Term is one element of a GenFun: a numerator (sum of monomials) over a
// denominator given as a matrix whose rows are factors of the shape
// "1 - x^row" (spec.md §3 "gen_fun"). Named for what it is, replacing the
// original's `short_rat`.
type Term struct {
	Numerators  []Monomial
	Denominator bigrat.Matrix
}

func powerKey(p bigrat.Vector) string {
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = x.String()
	}
	return strings.Join(parts, ",")
}

// addNumerator coalesces c*x^power into t's numerator list, summing
// coefficients when a monomial with the same power already exists and
// dropping the entry if the result is zero (spec.md §4.7 invariant (ii),
// and the idempotent-removal property of spec.md §8 property 6).
func (t *Term) addNumerator(c *big.Rat, power bigrat.Vector) {
	key := powerKey(power)
	for i := range t.Numerators {
		if powerKey(t.Numerators[i].Power) == key {
			t.Numerators[i].Coeff.Add(t.Numerators[i].Coeff, c)
			if t.Numerators[i].Coeff.Sign() == 0 {
				t.Numerators = append(t.Numerators[:i], t.Numerators[i+1:]...)
			}
			return
		}
	}
	if c.Sign() == 0 {
		return
	}
	t.Numerators = append(t.Numerators, Monomial{Coeff: new(big.Rat).Set(c), Power: power.Clone()})
}

// GenFun is the multivariate rational generating function accumulator
// (spec.md §3, §4.7).
type GenFun struct {
	NParams int
	terms   map[string]*Term
}

// New returns an empty generating function over nParams parameters.
func New(nParams int) *GenFun {
	return &GenFun{NParams: nParams, terms: map[string]*Term{}}
}

// canonicalizeDenominator sorts den's rows lexicographically and flips any
// row whose leading non-zero entry is negative, absorbing the resulting
// sign (and the numerator shift the flip forces: 1/(1-x^w) = -x^-w *
// 1/(1-x^-w)) so every stored factor reads "1 - x^{nonneg-leading}" (spec.md
// §4.7 "Add operation"). Returns the adjusted numerator power vector and the
// overall coefficient sign multiplier.
func canonicalizeDenominator(num bigrat.Vector, den bigrat.Matrix) (bigrat.Vector, bigrat.Matrix, int) {
	outNum := num.Clone()
	outDen := den.Clone()
	sign := 1
	for i, row := range outDen {
		if leadingNegative(row) {
			flipped := row.Clone()
			for j := range flipped {
				flipped[j].Neg(flipped[j])
			}
			outDen[i] = flipped
			// 1/(1-x^w) = -x^-w * 1/(1-x^-w): flipping row w to -w pulls a
			// -x^-w factor out of the denominator into the numerator, so
			// the numerator power shifts by -w and the sign flips.
			outNum, _ = bigrat.VectorSub(outNum, row)
			sign = -sign
		}
	}
	sort.Slice(outDen, func(i, j int) bool { return rowLess(outDen[i], outDen[j]) })
	return outNum, outDen, sign
}

// leadingNegative reports whether row's first non-zero entry is negative.
func leadingNegative(row bigrat.Vector) bool {
	for _, x := range row {
		if x.Sign() != 0 {
			return x.Sign() < 0
		}
	}
	return false
}

func rowLess(a, b bigrat.Vector) bool {
	for i := range a {
		c := a[i].Cmp(b[i])
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func denominatorKey(den bigrat.Matrix) string {
	var b strings.Builder
	for _, row := range den {
		for _, x := range row {
			b.WriteString(x.String())
			b.WriteByte(',')
		}
		b.WriteByte('|')
	}
	return b.String()
}

// Add inserts c*x^num / Π(1-x^{den_row}) into g, canonicalizing the
// denominator and coalescing with any existing term that shares it (spec.md
// §4.7). den's rows and num must each have length g.NParams.
func (g *GenFun) Add(c *big.Rat, num bigrat.Vector, den bigrat.Matrix) error {
	if len(num) != g.NParams {
		return errorf("Add", ErrDimensionMismatch)
	}
	for _, row := range den {
		if len(row) != g.NParams {
			return errorf("Add", ErrDimensionMismatch)
		}
	}
	canonNum, canonDen, sign := canonicalizeDenominator(num, den)
	c2 := new(big.Rat).Set(c)
	if sign < 0 {
		c2.Neg(c2)
	}
	key := denominatorKey(canonDen)
	t, ok := g.terms[key]
	if !ok {
		t = &Term{Denominator: canonDen}
		g.terms[key] = t
	}
	t.addNumerator(c2, canonNum)
	if len(t.Numerators) == 0 {
		delete(g.terms, key)
	}
	return nil
}

// AddTerm merges rhs (scaled by c) into g, i.e. "add c times gf" from
// genfun.h.
func (g *GenFun) AddTerm(c *big.Rat, t *Term) error {
	for _, m := range t.Numerators {
		scaled := new(big.Rat).Mul(c, m.Coeff)
		if err := g.Add(scaled, m.Power, t.Denominator); err != nil {
			return err
		}
	}
	return nil
}

// Merge adds every term of other into g, scaled by c (spec.md §4.7's "add
// (c, gf)").
func (g *GenFun) Merge(c *big.Rat, other *GenFun) error {
	for _, t := range other.Terms() {
		if err := g.AddTerm(c, t); err != nil {
			return err
		}
	}
	return nil
}

// Terms returns g's terms in a fixed, canonical-key order so callers get a
// deterministic view despite the map's unordered iteration (spec.md §5
// "canonicalization makes the result order-independent" refers to the
// represented value, not to iteration order, which this method pins down).
func (g *GenFun) Terms() []*Term {
	keys := make([]string, 0, len(g.terms))
	for k := range g.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Term, len(keys))
	for i, k := range keys {
		out[i] = g.terms[k]
	}
	return out
}

// NumTerms reports how many distinct-denominator terms g currently holds.
func (g *GenFun) NumTerms() int { return len(g.terms) }
