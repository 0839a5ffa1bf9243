package evalue

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/polyhedron"
)

func vec(xs ...int64) bigrat.Vector {
	v := make(bigrat.Vector, len(xs))
	for i, x := range xs {
		v[i] = big.NewInt(x)
	}
	return v
}

// squarePoly builds (n+1)^2 as a nested EValue: 1 + 2n + n^2 over Var 0.
func squarePoly() *EValue {
	return NewPolynomial(0, []*EValue{
		NewConstantInt(1),
		NewConstantInt(2),
		NewConstantInt(1),
	})
}

func TestEvaluateAtPolynomial(t *testing.T) {
	p := squarePoly()
	for n := int64(0); n <= 5; n++ {
		v, err := EvaluateAt(p, vec(n))
		require.NoError(t, err)
		want := big.NewRat((n+1)*(n+1), 1)
		assert.True(t, want.Cmp(v) == 0, "n=%d got %v want %v", n, v, want)
	}
}

func TestAddPolynomialsSameVar(t *testing.T) {
	a := NewPolynomial(0, []*EValue{NewConstantInt(1), NewConstantInt(1)}) // 1+n
	b := NewPolynomial(0, []*EValue{NewConstantInt(2), NewConstantInt(3)}) // 2+3n
	sum, err := Add(a, b)
	require.NoError(t, err)
	v, err := EvaluateAt(sum, vec(4))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(3+4*4, 1), v) // (1+4)+(2+3*4) = 5+14=19; 3+16=19
}

func TestAddPolynomialDifferentVarsNests(t *testing.T) {
	// a depends on var0: 1 + n0. b depends on var1: 5.
	a := NewPolynomial(0, []*EValue{NewConstantInt(1), NewConstantInt(1)})
	b := NewPolynomial(1, []*EValue{NewConstantInt(5)})
	sum, err := Add(a, b)
	require.NoError(t, err)
	v, err := EvaluateAt(sum, vec(2, 100))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(1+2+5, 1), v)
}

func TestMulPolynomialsConvolve(t *testing.T) {
	// (1+n) * (1+n) = 1 + 2n + n^2
	a := NewPolynomial(0, []*EValue{NewConstantInt(1), NewConstantInt(1)})
	prod, err := Mul(a, a)
	require.NoError(t, err)
	for n := int64(0); n <= 4; n++ {
		v, err := EvaluateAt(prod, vec(n))
		require.NoError(t, err)
		assert.Equal(t, big.NewRat((n+1)*(n+1), 1), v)
	}
}

func TestNegateConstant(t *testing.T) {
	c := NewConstantInt(7)
	n := Negate(c)
	v, err := EvaluateAt(n, vec())
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(-7, 1), v)
}

func TestPeriodicEvaluation(t *testing.T) {
	// x mod 2 == 0 ? 1 : 0
	per := NewPeriodic(0, []*EValue{NewConstantInt(1), NewConstantInt(0)})
	for n := int64(0); n <= 5; n++ {
		v, err := EvaluateAt(per, vec(n))
		require.NoError(t, err)
		want := int64(0)
		if n%2 == 0 {
			want = 1
		}
		assert.Equal(t, big.NewRat(want, 1), v, "n=%d", n)
	}
}

func TestFractionalFormEval(t *testing.T) {
	// {(2n+1)/3}
	f := FractionalForm{A: vec(2), C: big.NewInt(1), M: big.NewInt(3)}
	e := Wrap(0, NewFractional(f))
	for n := int64(0); n <= 5; n++ {
		v, err := EvaluateAt(e, vec(n))
		require.NoError(t, err)
		num := (2*n + 1) % 3
		if num < 0 {
			num += 3
		}
		assert.Equal(t, big.NewRat(num, 3), v, "n=%d", n)
	}
}

func TestAddFractionalSameFormDoublesScale(t *testing.T) {
	f := FractionalForm{A: vec(1), C: big.NewInt(0), M: big.NewInt(4)}
	a := NewFractional(f)
	b := NewFractional(f)
	sum, err := Add(a, b)
	require.NoError(t, err)
	v, err := EvaluateAt(sum, vec(1))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(2, 4), v) // 2 * {1/4}
}

func TestAddFractionalDifferentFormsErrors(t *testing.T) {
	a := NewFractional(FractionalForm{A: vec(1), C: big.NewInt(0), M: big.NewInt(4)})
	b := NewFractional(FractionalForm{A: vec(1), C: big.NewInt(1), M: big.NewInt(4)})
	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestAffineToEValue(t *testing.T) {
	// 2*p0 + 3*p1 + 7
	e := AffineToEValue(vec(2, 3), big.NewRat(7, 1))
	v, err := EvaluateAt(e, vec(5, 10))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(2*5+3*10+7, 1), v)
}

func TestFloorDivAffine(t *testing.T) {
	// floor((2n+3)/5)
	e := FloorDivAffine(vec(2), big.NewInt(3), big.NewInt(5))
	for n := int64(0); n <= 10; n++ {
		v, err := EvaluateAt(e, vec(n))
		require.NoError(t, err)
		want := floorDiv(2*n+3, 5)
		assert.Equal(t, big.NewRat(want, 1), v, "n=%d", n)
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func TestRangeReduceCollapsesRepeatingPeriod(t *testing.T) {
	per := NewPeriodic(0, []*EValue{
		NewConstantInt(1), NewConstantInt(2),
		NewConstantInt(1), NewConstantInt(2),
	})
	reduced := RangeReduce(per)
	require.Equal(t, KindPeriodic, reduced.Kind)
	assert.Len(t, reduced.Periods, 2)
}

func TestSubstituteReturnsConstant(t *testing.T) {
	p := squarePoly()
	out, err := Substitute(p, vec(3))
	require.NoError(t, err)
	assert.Equal(t, KindConstant, out.Kind)
	assert.Equal(t, big.NewRat(16, 1), out.Const)
}

func TestPartitionEvaluation(t *testing.T) {
	// Partition over var0: p0<0 -> -1, p0>=0 -> 1.
	neg := polyhedron.New(1, 0)
	neg.AddConstraint(polyhedron.Constraint{A: vec(-1), B: bigrat.Vector{}, C: big.NewInt(-1)})
	pos := polyhedron.New(1, 0)
	pos.AddConstraint(polyhedron.Constraint{A: vec(1), B: bigrat.Vector{}, C: big.NewInt(0)})

	part := NewPartition([]Part{
		{Domain: neg, Child: NewConstantInt(-1)},
		{Domain: pos, Child: NewConstantInt(1)},
	})

	v, err := EvaluateAt(part, vec(-3))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(-1, 1), v)

	v, err = EvaluateAt(part, vec(3))
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(1, 1), v)
}
