package count

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/cone"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/latpoint"
	"github.com/sgreben/barvinok-go/options"
	"github.com/sgreben/barvinok-go/polyhedron"
	"github.com/sgreben/barvinok-go/series"
)

// ErrNotParametric is returned by Enumerate when given a polyhedron with
// NParams == 0; use Count instead (spec.md §4.6).
var ErrNotParametric = errors.New("count: polyhedron has no parameters, use Count")

// parametricTerm is one signed unimodular cone's contribution to a
// parametric vertex's decomposition: a lattice-point representative (one
// EValue per coordinate, spec.md §4.5), the cone's rays, and sign.
type parametricTerm struct {
	apex []*evalue.EValue
	rays bigrat.Matrix
	sign int
}

type parametricCollector struct {
	vertex polyhedron.ParametricVertex
	terms  []parametricTerm
}

func (c *parametricCollector) OnCone(cn *polyhedron.Cone, sign int) error {
	return c.add(cn, sign)
}

func (c *parametricCollector) OnPolarCone(cn *polyhedron.Cone, sign int) error {
	return c.add(cn, sign)
}

func (c *parametricCollector) add(cn *polyhedron.Cone, sign int) error {
	rep, err := latpoint.Representative(cn, c.vertex)
	if err != nil {
		return err
	}
	c.terms = append(c.terms, parametricTerm{apex: rep, rays: cn.Rays.Clone(), sign: sign})
	return nil
}

// normalizeParametric mirrors normalize, but the apex is a per-coordinate
// EValue (spec.md §4.5's lattice-point representative) rather than a fixed
// integer: num0 = sum_i lambda_i * apex_i(p) is built via Mul-by-constant
// and Add, both of which tolerate a residual KindFractional leaf, so this
// step needs no prior resolution. den and the sign-flip rule are exactly
// normalize's (spec.md §4.6, original_source/barvinok.cc lines 379-400).
func normalizeParametric(apex []*evalue.EValue, rays bigrat.Matrix, lambda bigrat.Vector, sign int) (*evalue.EValue, []*big.Int, int, error) {
	num := evalue.NewConstantInt(0)
	for i, e := range apex {
		scaled, err := evalue.Mul(evalue.NewConstant(new(big.Rat).SetInt(lambda[i])), e)
		if err != nil {
			return nil, nil, 0, err
		}
		num, err = evalue.Add(num, scaled)
		if err != nil {
			return nil, nil, 0, err
		}
	}

	den := make([]*big.Int, len(rays))
	change := false
	for k, row := range rays {
		d, err := bigrat.Dot(row, lambda)
		if err != nil {
			return nil, nil, 0, err
		}
		if d.Sign() > 0 {
			change = !change
			den[k] = d
		} else {
			ad := new(big.Int).Abs(d)
			den[k] = ad
			num, err = evalue.Add(num, evalue.NewConstant(new(big.Rat).SetInt(ad)))
			if err != nil {
				return nil, nil, 0, err
			}
		}
	}
	if change {
		sign = -sign
	}
	return num, den, sign, nil
}

// binomialSequence returns n_0..n_dim, the EValue-coefficient analogue of
// binomialTable: n_0 = 1, n_k = n_{k-1} * (num - (k-1)) / k (spec.md §4.4
// "Numerator expansion", generalized to a parametric exponent). num must
// already be a pure KindConstant/KindPolynomial tree (no KindFractional),
// the shape resolveFractionals produces, since Mul only supports
// polynomial-by-polynomial products of matching Var.
func binomialSequence(num *evalue.EValue, dim int) ([]*evalue.EValue, error) {
	n := make([]*evalue.EValue, dim+1)
	n[0] = evalue.NewConstantInt(1)
	for k := 1; k <= dim; k++ {
		shift, err := evalue.Add(num, evalue.NewConstantInt(int64(-(k - 1))))
		if err != nil {
			return nil, err
		}
		prod, err := evalue.Mul(n[k-1], shift)
		if err != nil {
			return nil, err
		}
		scaled, err := evalue.Mul(evalue.NewConstant(big.NewRat(1, int64(k))), prod)
		if err != nil {
			return nil, err
		}
		n[k] = scaled
	}
	return n, nil
}

// divideTopCoefficient computes q_dim of the division n/d mod t^{dim+1},
// where n is a sequence of EValue coefficients and d is a plain (scalar)
// DPoly, via the same recurrence as series.Div: q_i = (n_i -
// sum_{j=1..i} d_j*q_{i-j}) / d_0 (spec.md §4.4 "Division by denominator",
// generalized to EValue-typed numerator coefficients — d's coefficients stay
// scalar since the cone's rays and the shared lambda are never parametric).
func divideTopCoefficient(n []*evalue.EValue, d *series.DPoly) (*evalue.EValue, error) {
	dim := len(n) - 1
	q := make([]*evalue.EValue, dim+1)
	for i := 0; i <= dim; i++ {
		acc := n[i]
		for j := 1; j <= i; j++ {
			dj := d.At(j)
			if dj.Sign() == 0 {
				continue
			}
			t, err := evalue.Mul(evalue.NewConstant(dj), q[i-j])
			if err != nil {
				return nil, err
			}
			acc, err = evalue.Add(acc, evalue.Negate(t))
			if err != nil {
				return nil, err
			}
		}
		inv := new(big.Rat).Inv(d.At(0))
		qi, err := evalue.Mul(evalue.NewConstant(inv), acc)
		if err != nil {
			return nil, err
		}
		q[i] = qi
	}
	return q[dim], nil
}

// parametricContribution evaluates one parametric term's signed
// contribution to Enumerate's result (spec.md §4.6): normalize against the
// shared lambda, resolve every fractional correction to a constant over
// ctx, expand the parametric binomial numerator series, and divide by the
// (scalar) denominator factor polynomial exactly as Count's contribution
// does, but keeping every coefficient an EValue throughout.
func parametricContribution(t parametricTerm, lambda bigrat.Vector, dim int, ctx *polyhedron.Polyhedron) (*evalue.EValue, error) {
	num, den, sign, err := normalizeParametric(t.apex, t.rays, lambda, t.sign)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveFractionals(num, ctx)
	if err != nil {
		return nil, err
	}
	nSeq, err := binomialSequence(resolved, dim)
	if err != nil {
		return nil, err
	}

	denPoly := series.NewDenominatorFactor(den[0], dim)
	for _, w := range den[1:] {
		f := series.NewDenominatorFactor(w, dim)
		denPoly, err = series.Mul(denPoly, f)
		if err != nil {
			return nil, err
		}
	}

	q, err := divideTopCoefficient(nSeq, denPoly)
	if err != nil {
		return nil, err
	}
	if sign < 0 {
		q, err = evalue.Mul(evalue.NewConstant(big.NewRat(-1, 1)), q)
		if err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Enumerate returns the quasi-polynomial counting the integer points of the
// parametric polyhedron p, valid over the validity domain ctx (spec.md
// §4.6). p must have NParams > 0; ctx is a parameter-space-only polyhedron
// (nil selects the unconstrained parameter space). Enumerate assumes p's
// vertex/cone combinatorial structure is fixed throughout ctx — splitting
// parameter space into such chambers (spec.md §4.6 "validity domains") is
// the caller's responsibility, via polyhedron.ChamberDecompose.
func Enumerate(p, ctx *polyhedron.Polyhedron, opt options.Options) (*evalue.EValue, error) {
	if p.NParams == 0 {
		return nil, errorf("Enumerate", ErrNotParametric)
	}
	if ctx == nil {
		ctx = polyhedron.New(p.NParams, 0)
	}
	dim := p.NVars

	verts, err := p.Vertices()
	if err != nil {
		return nil, errorf("Enumerate", err)
	}

	var allTerms []parametricTerm
	for _, v := range verts {
		if err := checkCancelled(opt.Context); err != nil {
			return nil, errorf("Enumerate", err)
		}
		sc, err := p.SupportingCone(v)
		if err != nil {
			return nil, errorf("Enumerate", err)
		}
		coll := &parametricCollector{vertex: v}
		if err := cone.PolarDecompose(sc, 1, opt.LLLDelta, opt.MaxRays(), coll); err != nil {
			return nil, errorf("Enumerate", err)
		}
		allTerms = append(allTerms, coll.terms...)
	}
	if len(allTerms) == 0 {
		return evalue.NewConstantInt(0), nil
	}

	rays := bigrat.NewMatrix(0, dim)
	for _, t := range allTerms {
		rays = append(rays, t.rays...)
	}
	lambda, err := nonorthog(rays, opt.Rng())
	if err != nil {
		return nil, errorf("Enumerate", err)
	}

	acc := evalue.NewConstantInt(0)
	for _, t := range allTerms {
		if err := checkCancelled(opt.Context); err != nil {
			return nil, errorf("Enumerate", err)
		}
		contrib, err := parametricContribution(t, lambda, dim, ctx)
		if err != nil {
			return nil, errorf("Enumerate", err)
		}
		acc, err = evalue.Add(acc, contrib)
		if err != nil {
			return nil, errorf("Enumerate", err)
		}
	}
	return acc, nil
}
