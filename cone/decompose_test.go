package cone

import (
	"math/big"
	"testing"

	"github.com/sgreben/barvinok-go/bigrat"
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

type collectVisitor struct {
	cones []*polyhedron.Cone
	signs []int
}

func (c *collectVisitor) OnCone(cn *polyhedron.Cone, sign int) error {
	c.cones = append(c.cones, cn)
	c.signs = append(c.signs, sign)
	return nil
}

func (c *collectVisitor) OnPolarCone(cn *polyhedron.Cone, sign int) error {
	return c.OnCone(cn, sign)
}

func TestDecomposeAlreadyUnimodular(t *testing.T) {
	c := &polyhedron.Cone{Dim: 2, Rays: bigrat.Matrix{vec(1, 0), vec(0, 1)}}
	v := &collectVisitor{}
	require.NoError(t, Decompose(c, 1, nil, v))
	require.Len(t, v.cones, 1)
	assert.Equal(t, 1, v.signs[0])
	d, err := v.cones[0].Det()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), new(big.Int).Abs(d))
}

func TestDecomposeNonUnimodularTerminatesUnimodular(t *testing.T) {
	c := &polyhedron.Cone{Dim: 2, Rays: bigrat.Matrix{vec(2, 1), vec(1, 2)}}
	v := &collectVisitor{}
	require.NoError(t, Decompose(c, 1, nil, v))
	require.NotEmpty(t, v.cones)
	for i, cn := range v.cones {
		d, err := cn.Det()
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1), new(big.Int).Abs(d))
		assert.Contains(t, []int{1, -1}, v.signs[i])
	}
}

func TestPolarDecomposeNonSimplicial(t *testing.T) {
	// A 3-ray fan in 2D, forcing triangulation before decomposition.
	c := &polyhedron.Cone{Dim: 2, Rays: bigrat.Matrix{vec(1, 0), vec(1, 1), vec(0, 1)}}
	v := &collectVisitor{}
	require.NoError(t, PolarDecompose(c, 1, nil, 100, v))
	require.NotEmpty(t, v.cones)
	for _, cn := range v.cones {
		d, err := cn.Det()
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1), new(big.Int).Abs(d))
	}
}
