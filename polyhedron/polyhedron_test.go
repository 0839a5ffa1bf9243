package polyhedron

import (
	"math/big"
	"testing"

	"github.com/sgreben/barvinok-go/bigrat"
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

// square builds the parametric square 0<=x<=n, 0<=y<=n.
func square() *Polyhedron {
	p := New(2, 1)
	p.AddConstraint(Constraint{A: vec(1, 0), B: vec(0), C: big.NewInt(0)})
	p.AddConstraint(Constraint{A: vec(-1, 0), B: vec(1), C: big.NewInt(0)})
	p.AddConstraint(Constraint{A: vec(0, 1), B: vec(0), C: big.NewInt(0)})
	p.AddConstraint(Constraint{A: vec(0, -1), B: vec(1), C: big.NewInt(0)})
	return p
}

func TestSquareVertices(t *testing.T) {
	p := square()
	verts, err := p.Vertices()
	require.NoError(t, err)
	assert.Len(t, verts, 4)

	n := vec(5)
	seen := map[string]bool{}
	for _, v := range verts {
		pt, denom, err := v.At(n)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1), denom)
		seen[pt[0].String()+","+pt[1].String()] = true
	}
	assert.True(t, seen["0,0"])
	assert.True(t, seen["5,0"])
	assert.True(t, seen["0,5"])
	assert.True(t, seen["5,5"])
}

func TestSupportingConeAtOrigin(t *testing.T) {
	p := square()
	verts, err := p.Vertices()
	require.NoError(t, err)

	var origin *ParametricVertex
	for i := range verts {
		v := verts[i]
		if v.Const.IsZero() && v.Linear[0].IsZero() && v.Linear[1].IsZero() {
			origin = &v
			break
		}
	}
	require.NotNil(t, origin)

	cone, err := p.SupportingCone(*origin)
	require.NoError(t, err)
	unimod, err := cone.Unimodular()
	require.NoError(t, err)
	assert.True(t, unimod)

	dual, err := PolarDual(cone)
	require.NoError(t, err)
	assert.Equal(t, 2, dual.Dim)
}

func TestTriangulateConeAlreadySimplicial(t *testing.T) {
	c := &Cone{Dim: 2, Rays: bigrat.Matrix{vec(1, 0), vec(0, 1)}}
	parts, err := TriangulateCone(c, 10)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestTriangulateConeBudgetExceeded(t *testing.T) {
	c := &Cone{Dim: 2, Rays: bigrat.Matrix{vec(1, 0), vec(1, 1), vec(0, 1)}}
	_, err := TriangulateCone(c, 1)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestRemoveEqualitiesReducesDimension(t *testing.T) {
	// x - y == 0, 0 <= x <= n.
	p := New(2, 1)
	p.AddConstraint(Constraint{A: vec(1, -1), B: vec(0), C: big.NewInt(0), Eq: true})
	p.AddConstraint(Constraint{A: vec(1, 0), B: vec(0), C: big.NewInt(0)})
	p.AddConstraint(Constraint{A: vec(-1, 0), B: vec(1), C: big.NewInt(0)})

	reduced, back, err := RemoveEqualities(p)
	require.NoError(t, err)
	assert.Equal(t, 1, reduced.NVars)
	assert.Len(t, reduced.Constraints, 2)

	// y = 3 should map back to (3, 3) at n = 5.
	x, err := back.Apply(vec(3), vec(5))
	require.NoError(t, err)
	assert.Equal(t, vec(3, 3), x)
}

func TestIntersect(t *testing.T) {
	a := New(1, 0)
	a.AddConstraint(Constraint{A: vec(1), B: bigrat.Vector{}, C: big.NewInt(0)})
	b := New(1, 0)
	b.AddConstraint(Constraint{A: vec(-1), B: bigrat.Vector{}, C: big.NewInt(5)})

	both, err := Intersect(a, b)
	require.NoError(t, err)
	assert.Len(t, both.Constraints, 2)
}

func TestDifferenceProducesNegatedHalves(t *testing.T) {
	a := New(1, 0)
	a.AddConstraint(Constraint{A: vec(1), B: bigrat.Vector{}, C: big.NewInt(10)})
	b := New(1, 0)
	b.AddConstraint(Constraint{A: vec(1), B: bigrat.Vector{}, C: big.NewInt(0)})

	parts, err := Difference(a, b)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Len(t, parts[0].Constraints, 2)
}

func TestChamberDecomposeSquare(t *testing.T) {
	p := square()
	chambers, err := p.ChamberDecompose()
	require.NoError(t, err)
	assert.NotEmpty(t, chambers)
}

func TestIsEmpty(t *testing.T) {
	p := New(1, 0)
	p.AddConstraint(Constraint{A: vec(1), B: bigrat.Vector{}, C: big.NewInt(0)})
	p.AddConstraint(Constraint{A: vec(-1), B: bigrat.Vector{}, C: big.NewInt(-5)})
	empty, err := p.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestPipLexMinUnimplemented(t *testing.T) {
	_, err := PipLexMin(square())
	assert.ErrorIs(t, err, ErrNotImplemented)
}
