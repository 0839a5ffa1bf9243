// Package cone implements signed unimodular-cone decomposition: splitting a
// simplicial cone that is not unimodular into a signed sum of unimodular
// ones via short-vector/LLL recursion (spec.md §4.3), plus the polar
// wrapper the counting engine actually drives.
package cone

import (
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// Visitor receives the unimodular cones emitted by Decompose/PolarDecompose,
// each tagged with the sign (+1 or -1) of its contribution to the signed
// indicator sum.
type Visitor interface {
	OnCone(c *polyhedron.Cone, sign int) error
	OnPolarCone(c *polyhedron.Cone, sign int) error
}

func errorf(tag string, err error) error {
	return fmt.Errorf("cone: %s: %w", tag, err)
}

type workItem struct {
	cone *polyhedron.Cone
	sign int
}

// Decompose emits a signed sequence of unimodular cones whose indicator
// functions sum to sign*1_C on C's interior (spec.md §4.3). delta is the
// LLL reduction parameter (nil selects the default 3/4).
func Decompose(c *polyhedron.Cone, sign int, delta *big.Rat, v Visitor) error {
	work := []workItem{{c, sign}}
	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		det, err := item.cone.Det()
		if err != nil {
			return errorf("Decompose", err)
		}
		if det.CmpAbs(big.NewInt(1)) == 0 {
			if err := v.OnCone(item.cone, item.sign); err != nil {
				return err
			}
			continue
		}

		children, err := split(item.cone, delta)
		if err != nil {
			return errorf("Decompose", err)
		}
		for _, ch := range children {
			chDet, err := ch.Det()
			if err != nil {
				return errorf("Decompose", err)
			}
			childSign := item.sign
			if chDet.Sign() < 0 {
				childSign = -childSign
			}
			work = append(work, workItem{ch, childSign})
		}
	}
	return nil
}

// split replaces, in turn, each ray with a nonzero coordinate of the short
// vector z, producing the child cones of spec.md §4.3 step 2-3.
func split(c *polyhedron.Cone, delta *big.Rat) ([]*polyhedron.Cone, error) {
	adj, _, err := bigrat.Inverse(c.Rays)
	if err != nil {
		return nil, err
	}
	// LLL on the (integer) adjugate is equivalent, for the purpose of
	// picking a short combination, to LLL on the true rational inverse
	// adj/det: a uniform nonzero scalar factor never changes which
	// Gram-Schmidt comparisons or Lovasz swaps LLL performs.
	b, u := bigrat.LLL(adj, delta)

	idx := 0
	best := bigrat.MaxAbs(b[0])
	for i := 1; i < u.Rows(); i++ {
		m := bigrat.MaxAbs(b[i])
		if m.Cmp(best) < 0 {
			best = m
			idx = i
		}
	}
	lambda, z := b[idx].Clone(), u[idx].Clone()

	if onWrongSide(c, z) {
		z = bigrat.VectorScale(z, big.NewInt(-1))
		lambda = bigrat.VectorScale(lambda, big.NewInt(-1))
	}

	var children []*polyhedron.Cone
	for i := 0; i < c.Dim; i++ {
		if lambda[i].Sign() == 0 {
			continue
		}
		rays := c.Rays.Clone()
		rays[i] = z.Clone()
		children = append(children, &polyhedron.Cone{Dim: c.Dim, Rays: rays})
	}
	return children, nil
}

// onWrongSide reports whether z is non-positive against every facet normal
// of c's polar dual, i.e. z lies entirely outside c (spec.md §4.3 "flip
// sign if z is on the wrong side of every facet").
func onWrongSide(c *polyhedron.Cone, z bigrat.Vector) bool {
	dual, err := polyhedron.PolarDual(c)
	if err != nil {
		return false
	}
	for _, facet := range dual.Rays {
		d, err := bigrat.Dot(facet, z)
		if err != nil {
			return false
		}
		if d.Sign() > 0 {
			return false
		}
	}
	return true
}

// PolarDecompose is the counting application's entry point (spec.md §4.3
// "Polar wrapper"): triangulate C into simplices if it is not already
// simplicial, polar-dualize each simplex so its rays become facet normals,
// decompose that dual cone into unimodular cones, and polar-dualize each
// result back before reporting it through v.OnPolarCone. Triangulation runs
// before dualizing because PolarDual needs a square (simplicial) ray
// matrix to invert.
func PolarDecompose(c *polyhedron.Cone, sign int, delta *big.Rat, maxRays int, v Visitor) error {
	simplices, err := polyhedron.TriangulateCone(c, maxRays)
	if err != nil {
		return errorf("PolarDecompose", err)
	}
	for _, s := range simplices {
		dual, err := polyhedron.PolarDual(s)
		if err != nil {
			return errorf("PolarDecompose", err)
		}
		wrapped := polarVisitor{v}
		if err := Decompose(dual, sign, delta, wrapped); err != nil {
			return err
		}
	}
	return nil
}

type polarVisitor struct {
	v Visitor
}

func (p polarVisitor) OnCone(c *polyhedron.Cone, sign int) error {
	back, err := polyhedron.PolarDual(c)
	if err != nil {
		return err
	}
	return p.v.OnPolarCone(back, sign)
}

func (p polarVisitor) OnPolarCone(c *polyhedron.Cone, sign int) error {
	return p.v.OnPolarCone(c, sign)
}
