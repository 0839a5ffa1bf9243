package bigrat

import (
	"math/big"
	"testing"

	"github.com/ing-bank/zkrp/util/intconversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(s string) *big.Int { return intconversion.BigFromBase10(s) }

func vec(xs ...int64) Vector {
	v := make(Vector, len(xs))
	for i, x := range xs {
		v[i] = big.NewInt(x)
	}
	return v
}

func TestVectorAddSub(t *testing.T) {
	a := vec(1, 2, 3)
	b := vec(4, -5, 6)
	sum, err := VectorAdd(a, b)
	require.NoError(t, err)
	assert.Equal(t, vec(5, -3, 9), sum)

	diff, err := VectorSub(a, b)
	require.NoError(t, err)
	assert.Equal(t, vec(-3, 7, -3), diff)

	_, err = VectorAdd(a, vec(1))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDot(t *testing.T) {
	a := vec(1, -1)
	b := vec(-1, 1)
	d, err := Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-2), d)
}

func TestDet2x2(t *testing.T) {
	m := Matrix{vec(-1, 0), vec(-1, 1)}
	d, err := Det(m)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-1), d)
}

func TestDet3x3(t *testing.T) {
	m := Matrix{vec(2, -1, 0), vec(-1, 2, -1), vec(0, -1, 2)}
	d, err := Det(m)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(4), d)
}

func TestInverseRoundTrip(t *testing.T) {
	m := Matrix{vec(2, 1), vec(1, 1)}
	adj, det, err := Inverse(m)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), det)
	// m * adj/det == I
	prod, err := Mul(m, adj)
	require.NoError(t, err)
	scaled := NewMatrix(2, 2)
	for i := range scaled {
		for j := range scaled[i] {
			scaled[i][j] = new(big.Int).Quo(prod[i][j], det)
		}
	}
	assert.Equal(t, Identity(2), scaled)
}

func TestInverseSingular(t *testing.T) {
	m := Matrix{vec(1, 2), vec(2, 4)}
	_, _, err := Inverse(m)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestGCDLCM(t *testing.T) {
	assert.Equal(t, big.NewInt(6), GCD(big.NewInt(-18), big.NewInt(24)))
	assert.Equal(t, big.NewInt(12), LCM(big.NewInt(4), big.NewInt(6)))
	assert.Equal(t, big.NewInt(60), LCMN(big.NewInt(4), big.NewInt(6), big.NewInt(5)))
}

func TestFloorCeilDiv(t *testing.T) {
	assert.Equal(t, big.NewInt(-2), FloorDiv(big.NewInt(-3), big.NewInt(2)))
	assert.Equal(t, big.NewInt(-1), CeilDiv(big.NewInt(-3), big.NewInt(2)))
	assert.Equal(t, big.NewInt(1), FloorDiv(big.NewInt(3), big.NewInt(2)))
	assert.Equal(t, big.NewInt(2), CeilDiv(big.NewInt(3), big.NewInt(2)))
}

func TestModRange(t *testing.T) {
	m := big.NewInt(5)
	got := Mod(big.NewInt(-3), m)
	assert.True(t, got.Sign() >= 0 && got.Cmp(m) < 0)
	assert.Equal(t, big.NewInt(2), got)
}

func TestUnimodularCompletion(t *testing.T) {
	row := vec(2, 3)
	m, err := Unimodular(row)
	require.NoError(t, err)
	d, err := Det(m)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), new(big.Int).Abs(d))
	assert.Equal(t, row, m[0])
}

func TestUnimodularRejectsNonPrimitive(t *testing.T) {
	_, err := Unimodular(vec(2, 4))
	assert.Error(t, err)
}

func TestLLLShortVectorRegression(t *testing.T) {
	// The two-ray cone with rays (-1,0), (-1,1) from spec.md §8's
	// short-vector regression is already unimodular (det = -1). LLL is then
	// checked on the basis (3,1), (1,1): B must equal U*basis and every
	// reduced row must have entries of absolute value at most 3.
	m := Matrix{vec(-1, 0), vec(-1, 1)}
	d, err := Det(m)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-1), d)

	basis := Matrix{vec(3, 1), vec(1, 1)}
	reduced, u := LLL(basis, nil)
	// B = U * basis
	prod, err := Mul(u, basis)
	require.NoError(t, err)
	assert.Equal(t, reduced, prod)
	for _, row := range reduced {
		assert.True(t, MaxAbs(row).Cmp(big.NewInt(3)) <= 0)
	}
}

func TestLCMNEmpty(t *testing.T) {
	assert.Equal(t, big.NewInt(1), LCMN())
}

func TestBigFromBase10Fixture(t *testing.T) {
	assert.Equal(t, big.NewInt(42), bi("42"))
}
