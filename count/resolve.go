package count

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/latpoint"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// ErrPeriodicUnsupported is returned by resolveFractionals when a fractional
// correction term in a lattice-point representative does not collapse to a
// fixed constant quotient over the validity domain (spec.md §4.5's tie-break
// paragraph): the resulting count would be a genuinely periodic
// quasi-polynomial, which Enumerate does not build (SPEC_FULL.md §4.6 scopes
// Enumerate to domains where every vertex is tie-break resolvable, the case
// spec.md §8's Square/Triangle scenarios and any lattice-vertex polytope
// exercise; a true periodic quasi-polynomial needs the parametric dpoly_r
// machinery this module does not implement).
var ErrPeriodicUnsupported = errors.New("count: fractional term is not tie-break resolvable over this domain")

// resolveFractionals replaces every KindFractional leaf of e with the exact
// rational-affine form it equals once its floor is pinned to a fixed
// constant by latpoint.TieBreakConstant over ctx: {(A.p+C)/M} ==
// (A.p+C)/M - q once floor((A.p+C)/M) == q everywhere on ctx (spec.md §4.5).
// The result, when it succeeds, is a pure KindConstant/KindPolynomial tree
// with no residual KindFractional, KindPeriodic, KindRelation or
// KindPartition nodes — the shape the binomial-coefficient expansion in
// binomialSequence requires.
func resolveFractionals(e *evalue.EValue, ctx *polyhedron.Polyhedron) (*evalue.EValue, error) {
	switch e.Kind {
	case evalue.KindConstant:
		return e.Clone(), nil
	case evalue.KindPolynomial:
		coeffs := make([]*evalue.EValue, len(e.Coeffs))
		for i, c := range e.Coeffs {
			r, err := resolveFractionals(c, ctx)
			if err != nil {
				return nil, err
			}
			coeffs[i] = r
		}
		return evalue.NewPolynomial(e.Var, coeffs), nil
	case evalue.KindFractional:
		return resolveFractionalLeaf(e, ctx)
	default:
		return nil, ErrPeriodicUnsupported
	}
}

func resolveFractionalLeaf(e *evalue.EValue, ctx *polyhedron.Polyhedron) (*evalue.EValue, error) {
	f := e.Frac

	scale := f.Scale
	if scale == nil {
		scale = big.NewRat(1, 1)
	}
	offset := f.Offset
	if offset == nil {
		offset = new(big.Rat)
	}

	// Try the unconditional constant case first (spec.md §4.5): every
	// unimodular cone's fractional leaves have M == 1 and land here with
	// no need to consult ctx at all.
	if val, ok := latpoint.ResolveConstantFraction(f.A, f.C, f.M); ok {
		scaled := new(big.Rat).Mul(val, scale)
		scaled.Add(scaled, offset)
		return evalue.NewConstant(scaled), nil
	}

	q, ok, err := latpoint.TieBreakConstant(f.A, f.C, f.M, ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPeriodicUnsupported
	}

	rm := new(big.Rat).SetInt(f.M)
	lin := make([]*big.Rat, len(f.A))
	for i, x := range f.A {
		r := new(big.Rat).SetInt(x)
		r.Quo(r, rm)
		lin[i] = r
	}
	c := new(big.Rat).SetInt(f.C)
	c.Quo(c, rm)
	c.Sub(c, new(big.Rat).SetInt(q))
	affine := evalue.AffineRationalToEValue(lin, c)

	scaled, err := evalue.Mul(evalue.NewConstant(scale), affine)
	if err != nil {
		return nil, err
	}
	return evalue.Add(scaled, evalue.NewConstant(offset))
}
