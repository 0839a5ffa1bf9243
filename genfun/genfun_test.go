package genfun

import (
	"math/big"
	"testing"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/evalue"
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

func row(xs ...int64) bigrat.Matrix {
	return bigrat.Matrix{vec(xs...)}
}

func TestCanonicalizeDenominatorSignFlip(t *testing.T) {
	num := vec(0)
	den := row(-2)
	outNum, outDen, sign := canonicalizeDenominator(num, den)
	assert.Equal(t, -1, sign)
	assert.Equal(t, vec(2), outDen[0])
	assert.Equal(t, vec(2), outNum)
}

func TestCanonicalizeDenominatorAlreadyPositive(t *testing.T) {
	num := vec(3)
	den := row(1)
	outNum, outDen, sign := canonicalizeDenominator(num, den)
	assert.Equal(t, 1, sign)
	assert.Equal(t, vec(1), outDen[0])
	assert.Equal(t, vec(3), outNum)
}

func TestAddCoalescesAndRemovesZero(t *testing.T) {
	g := New(1)
	den := row(1)
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), den))
	assert.Equal(t, 1, g.NumTerms())

	require.NoError(t, g.Add(big.NewRat(-1, 1), vec(0), den))
	assert.Equal(t, 0, g.NumTerms(), "a term whose coefficients sum to zero is dropped")
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	g := New(2)
	err := g.Add(big.NewRat(1, 1), vec(0), row(1))
	assert.Error(t, err)
}

func TestMergeCombinesTerms(t *testing.T) {
	a := New(1)
	b := New(1)
	den := row(1)
	require.NoError(t, a.Add(big.NewRat(1, 1), vec(0), den))
	require.NoError(t, b.Add(big.NewRat(2, 1), vec(0), den))

	require.NoError(t, a.Merge(big.NewRat(1, 1), b))
	require.Equal(t, 1, a.NumTerms())
	got, err := a.Specialize(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(3, 1), got)
}

// TestSpecializeGeometricSeries checks that 1/(1-x), i.e. Sum x^n, reports
// coefficient 1 at every n (spec.md §8's gen-fun round-trip property).
func TestSpecializeGeometricSeries(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), row(1)))

	for n := int64(0); n <= 5; n++ {
		v, err := g.Specialize(big.NewInt(n))
		require.NoError(t, err)
		assert.Equal(t, big.NewRat(1, 1), v, "n=%d", n)
	}
}

// TestSpecializeDoublePole checks that [x^n] 1/(1-x)^2 = n+1.
func TestSpecializeDoublePole(t *testing.T) {
	g := New(1)
	den := bigrat.Matrix{vec(1), vec(1)}
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), den))

	for n := int64(0); n <= 6; n++ {
		v, err := g.Specialize(big.NewInt(n))
		require.NoError(t, err)
		assert.Equal(t, big.NewRat(n+1, 1), v, "n=%d", n)
	}
}

// TestSpecializeFiniteSum checks the truncated geometric series
// (1-x^4)/(1-x) = 1+x+x^2+x^3, represented as two terms over the same
// denominator, against its known coefficients (1,1,1,1,0,0,...).
func TestSpecializeFiniteSum(t *testing.T) {
	g := New(1)
	den := row(1)
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), den))
	require.NoError(t, g.Add(big.NewRat(-1, 1), vec(4), den))

	want := []int64{1, 1, 1, 1, 0, 0}
	for n, w := range want {
		v, err := g.Specialize(big.NewInt(int64(n)))
		require.NoError(t, err)
		assert.Equal(t, big.NewRat(w, 1), v, "n=%d", n)
	}
}

func TestSpecializeRejectsMultivariate(t *testing.T) {
	g := New(2)
	_, err := g.Specialize(big.NewInt(0))
	assert.ErrorIs(t, err, ErrUnsupportedDimension)
}

// TestToEValueMatchesSpecializeGeometric checks that ToEValue's quasi
// polynomial agrees with direct coefficient extraction for 1/(1-x).
func TestToEValueMatchesSpecializeGeometric(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), row(1)))

	e, err := g.ToEValue()
	require.NoError(t, err)

	for n := int64(0); n <= 8; n++ {
		want, err := g.Specialize(big.NewInt(n))
		require.NoError(t, err)
		got, err := evalue.EvaluateAt(e, vec(n))
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

// TestToEValueMatchesSpecializeDoublePole exercises the quasi-polynomial
// construction on a degree-1 (non-constant) periodic body.
func TestToEValueMatchesSpecializeDoublePole(t *testing.T) {
	g := New(1)
	den := bigrat.Matrix{vec(1), vec(1)}
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), den))

	e, err := g.ToEValue()
	require.NoError(t, err)

	for n := int64(0); n <= 10; n++ {
		want, err := g.Specialize(big.NewInt(n))
		require.NoError(t, err)
		got, err := evalue.EvaluateAt(e, vec(n))
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

// TestToEValueMatchesSpecializePeriodTwo exercises a genuinely periodic
// (period 2) quasi-polynomial: [x^n] 1/(1-x^2) is 1 when n is even, 0 when
// odd.
func TestToEValueMatchesSpecializePeriodTwo(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Add(big.NewRat(1, 1), vec(0), row(2)))

	e, err := g.ToEValue()
	require.NoError(t, err)

	for n := int64(0); n <= 9; n++ {
		want, err := g.Specialize(big.NewInt(n))
		require.NoError(t, err)
		got, err := evalue.EvaluateAt(e, vec(n))
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestToEValueRejectsMultivariate(t *testing.T) {
	g := New(2)
	_, err := g.ToEValue()
	assert.ErrorIs(t, err, ErrUnsupportedDimension)
}
