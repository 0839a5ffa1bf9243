// Package latpoint builds a lattice-point representative L(p) for a
// unimodular (or simplicial) cone's apex vertex v(p): an integer point in
// v(p) + C whose difference from v is a sum of fractional-part correction
// terms along the cone's rays (spec.md §4.5).
package latpoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/polyhedron"
)

func errorf(tag string, err error) error {
	return fmt.Errorf("latpoint: %s: %w", tag, err)
}

// ErrNotSimplicial is returned when the cone's ray matrix is not square;
// callers are expected to triangulate first (polyhedron.TriangulateCone).
var ErrNotSimplicial = errors.New("cone is not simplicial")

// Representative returns the lattice point L(p) as one EValue per
// coordinate, via the modulo form: write v(p) in the cone's ray basis as
// alpha(p) = (R^-1)^T * v(p), then L(p) = v(p) - sum_i {alpha_i(p)} * r_i
// (spec.md §4.5 "Modulo form"). Every alpha_i is an affine form in p over
// one shared integer denominator det(R)*Denom, computed exactly via
// bigrat's adjugate-based inverse (no requirement that the cone already be
// unimodular — a non-unimodular simplicial cone just yields a larger
// shared denominator).
func Representative(cone *polyhedron.Cone, vertex polyhedron.ParametricVertex) ([]*evalue.EValue, error) {
	n := cone.Dim
	if cone.Rays.Rows() != n {
		return nil, errorf("Representative", ErrNotSimplicial)
	}

	adj, det, err := bigrat.Inverse(cone.Rays)
	if err != nil {
		return nil, errorf("Representative", err)
	}
	adjT := bigrat.Transpose(adj)

	alphaLinear, err := bigrat.Mul(adjT, vertex.Linear)
	if err != nil {
		return nil, errorf("Representative", err)
	}
	alphaConst, err := bigrat.MulVector(adjT, vertex.Const)
	if err != nil {
		return nil, errorf("Representative", err)
	}

	m := new(big.Int).Mul(det, vertex.Denom)
	if m.Sign() == 0 {
		return nil, errorf("Representative", errors.New("degenerate cone/vertex denominator"))
	}
	if m.Sign() < 0 {
		m.Neg(m)
		for i := range alphaLinear {
			for j := range alphaLinear[i] {
				alphaLinear[i][j].Neg(alphaLinear[i][j])
			}
		}
		for i := range alphaConst {
			alphaConst[i].Neg(alphaConst[i])
		}
	}

	out := make([]*evalue.EValue, n)
	for i := 0; i < n; i++ {
		coord, err := vertexCoordEValue(vertex, i)
		if err != nil {
			return nil, errorf("Representative", err)
		}
		out[i] = coord
	}

	for k := 0; k < n; k++ {
		negFrac := evalue.Negate(evalue.NewFractional(evalue.FractionalForm{
			A: alphaLinear[k].Clone(),
			C: new(big.Int).Set(alphaConst[k]),
			M: new(big.Int).Set(m),
		}))
		for i := 0; i < n; i++ {
			rCoeff := cone.Rays[k][i]
			if rCoeff.Sign() == 0 {
				continue
			}
			term, err := evalue.Mul(negFrac, evalue.NewConstant(new(big.Rat).SetInt(rCoeff)))
			if err != nil {
				return nil, errorf("Representative", err)
			}
			sum, err := evalue.Add(out[i], term)
			if err != nil {
				return nil, errorf("Representative", err)
			}
			out[i] = sum
		}
	}
	return out, nil
}

// vertexCoordEValue builds v_i(p) = (Linear_i.p + Const_i)/Denom as a
// rational-affine EValue.
func vertexCoordEValue(vertex polyhedron.ParametricVertex, i int) (*evalue.EValue, error) {
	denom := new(big.Rat).SetInt(vertex.Denom)
	coeffs := make([]*big.Rat, vertex.Linear.Cols())
	for j := range coeffs {
		r := new(big.Rat).SetInt(vertex.Linear[i][j])
		r.Quo(r, denom)
		coeffs[j] = r
	}
	c := new(big.Rat).SetInt(vertex.Const[i])
	c.Quo(c, denom)
	return evalue.AffineRationalToEValue(coeffs, c), nil
}

// TieBreakConstant implements spec.md §4.5's last paragraph: when the
// affine numerator (A.p+C) of a fractional term has a fixed quotient by m
// over every point of domain (checked by evaluating the form at domain's
// vertices, where an affine form over a polytope attains its extrema),
// floor(min/m) == floor(max/m) lets the caller replace the fractional term
// by that fixed quotient instead of carrying the mod symbolically. domain
// is a parameter-space-only polyhedron (its ordinary variables ARE the
// parameters).
func TieBreakConstant(a bigrat.Vector, c, m *big.Int, domain *polyhedron.Polyhedron) (*big.Int, bool, error) {
	verts, err := domain.Vertices()
	if err != nil {
		return nil, false, errorf("TieBreakConstant", err)
	}
	if len(verts) == 0 {
		return nil, false, nil
	}
	var min, max *big.Rat
	for _, v := range verts {
		val, err := evalAffineAtVertex(a, c, v)
		if err != nil {
			return nil, false, errorf("TieBreakConstant", err)
		}
		if min == nil || val.Cmp(min) < 0 {
			min = val
		}
		if max == nil || val.Cmp(max) > 0 {
			max = val
		}
	}
	rm := new(big.Rat).SetInt(m)
	qOf := func(x *big.Rat) *big.Int {
		return bigrat.FloorDivRat(new(big.Rat).Quo(x, rm))
	}
	qMin, qMax := qOf(min), qOf(max)
	if qMin.Cmp(qMax) != 0 {
		return nil, false, nil
	}
	return qMin, true, nil
}

// ResolveConstantFraction implements the unconditional case of spec.md
// §4.5's tie-break paragraph: when every entry of a is an exact multiple of
// m, {(a.p+c)/m} equals the plain constant {c/m} for every p, independent
// of any validity domain. This is the case for every fractional leaf of a
// unimodular cone at an integral vertex (there m = |det(R)|*Denom = 1, so
// a mod m is trivially all-zero), and it is checked before consulting TieBreakConstant
// at all. Returns ok == false if some entry of a is not a multiple of m, in
// which case the caller should fall back to TieBreakConstant.
func ResolveConstantFraction(a bigrat.Vector, c, m *big.Int) (*big.Rat, bool) {
	for _, x := range a {
		if new(big.Int).Mod(x, m).Sign() != 0 {
			return nil, false
		}
	}
	r := new(big.Int).Mod(c, m)
	return new(big.Rat).SetFrac(r, m), true
}

// evalAffineAtVertex evaluates a.x+c at the concrete (parameter-space)
// vertex v, returning a rational value.
func evalAffineAtVertex(a bigrat.Vector, c *big.Int, v polyhedron.ParametricVertex) (*big.Rat, error) {
	if len(a) != len(v.Const) {
		return nil, errors.New("latpoint: dimension mismatch")
	}
	dot, err := bigrat.Dot(a, v.Const)
	if err != nil {
		return nil, err
	}
	dot.Add(dot, new(big.Int).Mul(c, v.Denom))
	return new(big.Rat).SetFrac(dot, v.Denom), nil
}
