package polyhedron

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// Cone is a (not necessarily simplicial) cone given by its ray matrix:
// each row is a generating ray in Z^Dim (spec.md §3). Simplicial iff
// Rows() == Dim.
type Cone struct {
	Dim  int
	Rays bigrat.Matrix
}

// Det returns the determinant of a simplicial cone's ray matrix. Errors if
// the cone is not simplicial.
func (c *Cone) Det() (*big.Int, error) {
	if c.Rays.Rows() != c.Dim {
		return nil, errors.New("polyhedron: Det: cone is not simplicial")
	}
	return bigrat.Det(c.Rays)
}

// Unimodular reports whether a simplicial cone's determinant has absolute
// value 1.
func (c *Cone) Unimodular() (bool, error) {
	d, err := c.Det()
	if err != nil {
		return false, err
	}
	return d.CmpAbs(big.NewInt(1)) == 0, nil
}

// primitivize divides v by the gcd of its entries, preserving sign, and
// returns the result. A zero vector is returned unchanged.
func primitivize(v bigrat.Vector) bigrat.Vector {
	g := bigrat.GCDN(v...)
	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return v.Clone()
	}
	out := v.Clone()
	for i := range out {
		out[i].Div(out[i], g)
	}
	return out
}

// SupportingCone returns the cone of feasible directions at the given
// vertex, i.e. the cone of the polyhedron's constraints active at that
// vertex, translated to the origin (spec.md §4.2). Only meaningful for a
// vertex defined by exactly NVars linearly independent active constraints
// (a simple/simplicial vertex); non-simplicial vertices are triangulated
// by the caller via TriangulateCone.
func (p *Polyhedron) SupportingCone(v ParametricVertex) (*Cone, error) {
	d := p.NVars
	aSub := bigrat.NewMatrix(d, d)
	for i, ci := range v.ActiveRows {
		copy(aSub[i], p.Constraints[ci].A)
	}
	adj, det, err := bigrat.Inverse(aSub)
	if err != nil {
		return nil, err
	}
	sign := det.Sign()
	rays := bigrat.NewMatrix(d, d)
	adjT := bigrat.Transpose(adj)
	for j := 0; j < d; j++ {
		col := adjT[j].Clone()
		if sign < 0 {
			for i := range col {
				col[i].Neg(col[i])
			}
		}
		rays[j] = primitivize(col)
	}
	return &Cone{Dim: d, Rays: rays}, nil
}

// PolarDual returns the polar dual of a simplicial cone C: the cone whose
// rays are the rows of (R^-1)^T cleared of denominators, i.e. the same
// adjugate-column construction used by SupportingCone but applied to the
// cone's own ray matrix instead of a constraint submatrix (spec.md §4.2,
// §4.3 "Polar wrapper").
func PolarDual(c *Cone) (*Cone, error) {
	adj, det, err := bigrat.Inverse(c.Rays)
	if err != nil {
		return nil, err
	}
	sign := det.Sign()
	n := c.Dim
	rays := bigrat.NewMatrix(n, n)
	adjT := bigrat.Transpose(adj)
	for j := 0; j < n; j++ {
		col := adjT[j].Clone()
		if sign < 0 {
			for i := range col {
				col[i].Neg(col[i])
			}
		}
		rays[j] = primitivize(col)
	}
	return &Cone{Dim: n, Rays: rays}, nil
}

// ErrBudgetExceeded is returned by TriangulateCone when the simplicial
// decomposition would need more rays than the caller's budget allows.
var ErrBudgetExceeded = errors.New("polyhedron: triangulation exceeds ray budget")

// TriangulateCone decomposes a (possibly non-simplicial) cone into
// simplicial sub-cones by fanning out from its first ray, the simplest
// triangulation that needs no extra combinatorial machinery (spec.md
// §4.2 "triangulation... with a budgeted ray count"). Already-simplicial
// cones are returned as a single-element slice.
func TriangulateCone(c *Cone, maxRays int) ([]*Cone, error) {
	n := c.Rays.Rows()
	if n == c.Dim {
		return []*Cone{c}, nil
	}
	if n*c.Dim > maxRays {
		return nil, ErrBudgetExceeded
	}
	var out []*Cone
	apex := c.Rays[0]
	for i := 1; i+c.Dim-2 < n; i++ {
		rays := bigrat.NewMatrix(c.Dim, c.Dim)
		rays[0] = apex.Clone()
		for k := 0; k < c.Dim-1 && i+k < n; k++ {
			rays[k+1] = c.Rays[i+k].Clone()
		}
		out = append(out, &Cone{Dim: c.Dim, Rays: rays})
	}
	return out, nil
}
