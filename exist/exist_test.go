package exist

import (
	"errors"
	"math/big"
	"testing"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/options"
	"github.com/sgreben/barvinok-go/polyhedron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(xs ...int64) bigrat.Vector {
	v := make(bigrat.Vector, len(xs))
	for i, x := range xs {
		v[i] = big.NewInt(x)
	}
	return v
}

func ineq(a bigrat.Vector, b bigrat.Vector, c int64) polyhedron.Constraint {
	return polyhedron.Constraint{A: a, B: b, C: big.NewInt(c)}
}

func eq(a bigrat.Vector, b bigrat.Vector, c int64) polyhedron.Constraint {
	return polyhedron.Constraint{A: a, B: b, C: big.NewInt(c), Eq: true}
}

// TestEqualityRuleSubstitutesAndCounts: x = v+1 (equality, unit
// coefficient) with 0 <= v <= 3; eliminating x should leave exactly the
// v-bounds, counting the 4 integers 0..3.
func TestEqualityRuleSubstitutesAndCounts(t *testing.T) {
	p := polyhedron.New(2, 0)
	p.AddConstraint(ineq(vec(1, 0), vec(), 0))  // v >= 0
	p.AddConstraint(ineq(vec(-1, 0), vec(), 3)) // -v + 3 >= 0
	p.AddConstraint(eq(vec(-1, 1), vec(), -1))  // -v + x - 1 == 0  (x = v+1)

	out, err := EliminateExists(p, 1, 0, options.Options{})
	require.NoError(t, err)
	require.Equal(t, evalue.KindConstant, out.Kind)
	assert.Equal(t, big.NewRat(4, 1), out.Const)
}

// TestAllPosOneSidedDropsExistential: x has only an upper bound (x <= 10),
// so it is always satisfiable by pushing x arbitrarily negative; the
// result should count only the v-bounds, 0 <= v <= 3 (4 points).
func TestAllPosOneSidedDropsExistential(t *testing.T) {
	p := polyhedron.New(2, 0)
	p.AddConstraint(ineq(vec(1, 0), vec(), 0))   // v >= 0
	p.AddConstraint(ineq(vec(-1, 0), vec(), 3))  // -v + 3 >= 0
	p.AddConstraint(ineq(vec(0, -1), vec(), 10)) // -x + 10 >= 0 (x <= 10)

	out, err := EliminateExists(p, 1, 0, options.Options{})
	require.NoError(t, err)
	require.Equal(t, evalue.KindConstant, out.Kind)
	assert.Equal(t, big.NewRat(4, 1), out.Const)
}

// TestAllPosCompatiblePairDropsExistential: x is pinned between x >= v and
// v >= x via two non-equality inequalities; the bound pair is provably
// compatible for every v (they are the same value), so ALL_POS applies and
// the existential and its bounds are dropped, leaving 0 <= v <= 3.
func TestAllPosCompatiblePairDropsExistential(t *testing.T) {
	p := polyhedron.New(2, 0)
	p.AddConstraint(ineq(vec(1, 0), vec(), 0))  // v >= 0
	p.AddConstraint(ineq(vec(-1, 0), vec(), 3)) // -v + 3 >= 0
	p.AddConstraint(ineq(vec(-1, 1), vec(), 0)) // x - v >= 0
	p.AddConstraint(ineq(vec(1, -1), vec(), 0)) // v - x >= 0

	out, err := EliminateExists(p, 1, 0, options.Options{})
	require.NoError(t, err)
	require.Equal(t, evalue.KindConstant, out.Kind)
	assert.Equal(t, big.NewRat(4, 1), out.Const)
}

// TestPositiveRuleProjectsConditionalBoundPair: x ranges over 1 <= x <= v
// while v itself can be negative (-n <= v <= n), so whether x is
// satisfiable depends on v's sign. Both bounds on x carry a unit
// coefficient, so the Positive rule projects this out exactly by adjoining
// v >= 1, leaving 1 <= v <= n (n points for every n >= 1).
func TestPositiveRuleProjectsConditionalBoundPair(t *testing.T) {
	p := polyhedron.New(2, 1)
	p.AddConstraint(ineq(vec(1, 0), vec(1), 0))  // v + n >= 0
	p.AddConstraint(ineq(vec(-1, 0), vec(1), 0)) // -v + n >= 0
	p.AddConstraint(ineq(vec(0, 1), vec(0), -1)) // x - 1 >= 0
	p.AddConstraint(ineq(vec(1, -1), vec(0), 0)) // v - x >= 0

	out, err := EliminateExists(p, 1, 1, options.Options{})
	require.NoError(t, err)

	for n := int64(1); n <= 5; n++ {
		val, err := evalue.EvaluateAt(out, bigrat.Vector{big.NewInt(n)})
		require.NoError(t, err)
		assert.Equal(t, big.NewRat(n, 1), val, "n=%d", n)
	}
}

// TestPositiveRuleNonUnitPairIsUnsupported: both bounds on the existential
// carry a non-unit coefficient (2x <= v, 2x >= -v), so the rational
// projection the Positive rule adjoins is not guaranteed gap-free against
// integer solutions; this module reports it as unsupported rather than
// risk an incorrect count. This is the boundary the Split/Sum rules would
// need to cross to reach spec.md §8's S_k(n) ∃-sum scenario (whose closed
// cubic form needs Bernoulli-polynomial summation, a scenario spec.md §1
// lists as deliberately out of scope) — forcing it here pins down exactly
// what EnumerateExists does and does not support instead of leaving the
// limitation implicit.
func TestPositiveRuleNonUnitPairIsUnsupported(t *testing.T) {
	p := polyhedron.New(2, 0)
	p.AddConstraint(ineq(vec(1, 0), vec(), 10))  // v + 10 >= 0
	p.AddConstraint(ineq(vec(-1, 0), vec(), 10)) // -v + 10 >= 0
	p.AddConstraint(ineq(vec(1, 2), vec(), 0))   // v + 2x >= 0 (2x >= -v)
	p.AddConstraint(ineq(vec(1, -2), vec(), 0))  // v - 2x >= 0 (2x <= v)

	_, err := EliminateExists(p, 1, 0, options.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCaseUnsupported))
}

func TestEliminateExistsDimensionMismatch(t *testing.T) {
	p := polyhedron.New(1, 0)
	_, err := EliminateExists(p, 0, 1, options.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestEorInclusionExclusion(t *testing.T) {
	one := evalue.NewConstantInt(1)
	zero := evalue.NewConstantInt(0)
	out, err := Eor(one, zero)
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(1, 1), out.Const)

	out, err = Eor(one, one)
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(1, 1), out.Const, "eor(1,1) = 1+1-1 = 1")
}
