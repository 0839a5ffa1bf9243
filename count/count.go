// Package count implements the scalar and parametric top-level counting
// operations Count/Enumerate (spec.md §4.6): per-vertex supporting-cone
// decomposition into signed unimodular cones sharing one generic lambda,
// truncated-series division of each cone's contribution, and accumulation
// into a single exact result.
package count

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/cone"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/latpoint"
	"github.com/sgreben/barvinok-go/options"
	"github.com/sgreben/barvinok-go/polyhedron"
	"github.com/sgreben/barvinok-go/series"
)

func errorf(tag string, err error) error {
	return fmt.Errorf("count: %s: %w", tag, err)
}

// ErrParametric is returned by Count when given a polyhedron with NParams
// != 0; use Enumerate instead (spec.md §4.6).
var ErrParametric = errors.New("count: polyhedron is parametric, use Enumerate")

// ErrNonInteger is returned when a cone's lattice-point representative
// fails to resolve to an exact integer apex for a non-parametric input, a
// broken invariant of latpoint.Representative on an NParams==0 vertex.
var ErrNonInteger = errors.New("count: lattice point representative is not an integer")

// ErrCancelled reports cooperative cancellation via Options.Context
// (spec.md §5).
var ErrCancelled = errors.New("count: cancelled")

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

// unimodularTerm is one signed unimodular cone contributing to the signed
// sum over a vertex's decomposition: an exact integer apex, the cone's
// (dim x dim, unimodular) ray matrix, and the sign of its contribution.
type unimodularTerm struct {
	apex bigrat.Vector
	rays bigrat.Matrix
	sign int
}

// collector implements cone.Visitor, converting each unimodular polar cone
// PolarDecompose reports into a unimodularTerm via latpoint.Representative
// (spec.md §4.5). vertex is fixed per collector instance; this engine never
// runs PolarDecompose concurrently for two different vertices through the
// same collector.
type collector struct {
	vertex polyhedron.ParametricVertex
	terms  []unimodularTerm
}

func (c *collector) OnCone(cn *polyhedron.Cone, sign int) error {
	return c.add(cn, sign)
}

func (c *collector) OnPolarCone(cn *polyhedron.Cone, sign int) error {
	return c.add(cn, sign)
}

func (c *collector) add(cn *polyhedron.Cone, sign int) error {
	rep, err := latpoint.Representative(cn, c.vertex)
	if err != nil {
		return err
	}
	apex := bigrat.NewVector(cn.Dim)
	for i, e := range rep {
		v, err := evalue.EvaluateAt(e, bigrat.Vector{})
		if err != nil {
			return err
		}
		if !v.IsInt() {
			return ErrNonInteger
		}
		apex[i].Set(v.Num())
	}
	c.terms = append(c.terms, unimodularTerm{apex: apex, rays: cn.Rays.Clone(), sign: sign})
	return nil
}

// collectTerms runs the per-vertex supporting-cone triangulation and polar
// decomposition for every vertex of p, returning the flattened list of
// unimodular terms across all of them (spec.md §4.2, §4.3).
func collectTerms(p *polyhedron.Polyhedron, opt options.Options) ([]unimodularTerm, error) {
	verts, err := p.Vertices()
	if err != nil {
		return nil, err
	}
	var all []unimodularTerm
	for _, v := range verts {
		if err := checkCancelled(opt.Context); err != nil {
			return nil, err
		}
		sc, err := p.SupportingCone(v)
		if err != nil {
			return nil, err
		}
		coll := &collector{vertex: v}
		if err := cone.PolarDecompose(sc, 1, opt.LLLDelta, opt.MaxRays(), coll); err != nil {
			return nil, err
		}
		all = append(all, coll.terms...)
	}
	return all, nil
}

// contribution evaluates one term's signed series-division value: the
// coefficient of t^dim in (1+t)^num / Prod_k ((1+t)^{w_k} - 1)/t, negated per sign
// (spec.md §4.4, §4.6).
func contribution(t unimodularTerm, lambda bigrat.Vector, dim int) (*big.Rat, error) {
	num, den, sign, err := normalize(t.apex, t.rays, lambda, t.sign)
	if err != nil {
		return nil, err
	}
	numPoly := series.NewNumerator(num, dim, 0)
	denPoly := series.NewDenominatorFactor(den[0], dim)
	for _, w := range den[1:] {
		f := series.NewDenominatorFactor(w, dim)
		denPoly, err = series.Mul(denPoly, f)
		if err != nil {
			return nil, err
		}
	}
	quotient, err := series.Div(numPoly, denPoly)
	if err != nil {
		return nil, err
	}
	v := new(big.Rat).Set(quotient.At(dim))
	if sign < 0 {
		v.Neg(v)
	}
	return v, nil
}

// Count returns the number of integer points in the non-parametric
// polyhedron p, or -1 if p is unbounded (spec.md §6.2 "count(P) ... or -1
// if P is unbounded"). p must have NParams == 0.
func Count(p *polyhedron.Polyhedron, opt options.Options) (*big.Int, error) {
	if p.NParams != 0 {
		return nil, errorf("Count", ErrParametric)
	}
	bounded, err := p.IsBounded()
	if err != nil {
		return nil, errorf("Count", err)
	}
	if !bounded {
		return big.NewInt(-1), nil
	}
	if p.NVars == 0 {
		// A 0-dimensional polyhedron has no rays to decompose: it is
		// either the single empty point or infeasible.
		verts, err := p.Vertices()
		if err != nil {
			return nil, errorf("Count", err)
		}
		if len(verts) == 0 {
			return big.NewInt(0), nil
		}
		return big.NewInt(1), nil
	}

	terms, err := collectTerms(p, opt)
	if err != nil {
		return nil, errorf("Count", err)
	}
	if len(terms) == 0 {
		return big.NewInt(0), nil
	}

	dim := p.NVars
	lambda, err := nonorthog(flattenRays(terms, dim), opt.Rng())
	if err != nil {
		return nil, errorf("Count", err)
	}

	total := new(big.Rat)
	for _, t := range terms {
		if err := checkCancelled(opt.Context); err != nil {
			return nil, errorf("Count", err)
		}
		v, err := contribution(t, lambda, dim)
		if err != nil {
			return nil, errorf("Count", err)
		}
		total.Add(total, v)
	}
	if !total.IsInt() {
		return nil, errorf("Count", errors.New("result is not an integer"))
	}
	return new(big.Int).Set(total.Num()), nil
}

func flattenRays(terms []unimodularTerm, dim int) bigrat.Matrix {
	out := bigrat.NewMatrix(0, dim)
	for _, t := range terms {
		out = append(out, t.rays...)
	}
	return out
}
