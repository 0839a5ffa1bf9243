package series

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumeratorBinomialCoefficients(t *testing.T) {
	p := NewNumerator(big.NewInt(3), 2, 0)
	assert.Equal(t, big.NewRat(1, 1), p.At(0))
	assert.Equal(t, big.NewRat(3, 1), p.At(1))
	assert.Equal(t, big.NewRat(3, 1), p.At(2))
}

func TestNewDenominatorFactorConstantTermEqualsWeight(t *testing.T) {
	f := NewDenominatorFactor(big.NewInt(2), 2)
	assert.Equal(t, big.NewRat(2, 1), f.At(0))
}

func TestMulTruncates(t *testing.T) {
	a := NewNumerator(big.NewInt(1), 1, 0) // (1+t) truncated to degree 1: [1, 1]
	prod, err := Mul(a, a)
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(1, 1), prod.At(0))
	assert.Equal(t, big.NewRat(2, 1), prod.At(1))
}

func TestDivIdentityDenominator(t *testing.T) {
	n := NewNumerator(big.NewInt(5), 2, 0)
	d := NewDenominatorFactor(big.NewInt(1), 2) // constant term 1, higher coeffs 0
	q, err := Div(n, d)
	require.NoError(t, err)
	assert.Equal(t, n.Coeffs, q.Coeffs)
}

func TestDivZeroConstantTerm(t *testing.T) {
	n := NewNumerator(big.NewInt(5), 1, 0)
	d := &DPoly{D: 1, Coeffs: []*big.Rat{new(big.Rat), big.NewRat(1, 1)}}
	_, err := Div(n, d)
	assert.ErrorIs(t, err, ErrZeroConstantTerm)
}

// TestSpecializationRegression reproduces the fixed scenario recorded for
// this division recurrence: n=5, d=2, denominator coefficients (2,1,0),
// quotient coefficient of t^2 is 31/8.
func TestSpecializationRegression(t *testing.T) {
	n := NewNumerator(big.NewInt(5), 2, 0)
	d := &DPoly{D: 2, Coeffs: []*big.Rat{big.NewRat(2, 1), big.NewRat(1, 1), new(big.Rat)}}
	q, err := Div(n, d)
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(31, 8), q.At(2))
}
