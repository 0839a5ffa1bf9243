package count

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/genfun"
	"github.com/sgreben/barvinok-go/options"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// ErrDegenerateProjection is returned by EnumerateSeries when a unimodular
// cone's ray lies entirely in the visible-variable directions: its
// parameter-coordinate projection is the zero vector, so the corresponding
// denominator factor "1 - x^ray" projects to the singular "1 - 1" (spec.md
// §4.7/§6.2 "series"). Resolving this needs a further cone split against
// the kernel of the projection, a construction this module does not
// implement (documented alongside exist's ErrCaseUnsupported as a bounded,
// deliberate scope limit rather than a silent wrong answer).
var ErrDegenerateProjection = errors.New("count: cone ray has zero parameter-projection")

// EnumerateSeries returns the multivariate generating function
// Σ_p count(P(p))·x^p, computed by treating P's NParams parameters as
// ordinary dimensions of a merged non-parametric polyhedron Q (spec.md §6.2
// "series(P, C) ... the multivariate generating function of |P(p) ∩ Z^d|"):
// run the ordinary per-vertex/cone decomposition on Q, then project each
// term's apex and rays onto their parameter-coordinate components only
// (the standard "set the visible variables to 1" specialization of the
// combined Brion/Barvinok generating function), accumulating into one
// genfun.GenFun over p.NParams variables.
func EnumerateSeries(p *polyhedron.Polyhedron, opt options.Options) (*genfun.GenFun, error) {
	if p.NParams == 0 {
		return nil, errorf("EnumerateSeries", ErrNotParametric)
	}
	q := mergeParams(p)

	terms, err := collectTerms(q, opt)
	if err != nil {
		return nil, errorf("EnumerateSeries", err)
	}

	g := genfun.New(p.NParams)
	for _, t := range terms {
		if err := checkCancelled(opt.Context); err != nil {
			return nil, errorf("EnumerateSeries", err)
		}
		numProj := t.apex[p.NVars:].Clone()
		denProj := bigrat.NewMatrix(0, p.NParams)
		for _, row := range t.rays {
			proj := row[p.NVars:].Clone()
			if proj.IsZero() {
				return nil, errorf("EnumerateSeries", ErrDegenerateProjection)
			}
			denProj = append(denProj, proj)
		}
		coeff := big.NewRat(int64(t.sign), 1)
		if err := g.Add(coeff, numProj, denProj); err != nil {
			return nil, errorf("EnumerateSeries", err)
		}
	}
	return g, nil
}

// mergeParams returns a non-parametric polyhedron over p.NVars+p.NParams
// variables, folding every parameter column into an ordinary variable
// column (the "combined (v,p) space" Q, spec.md §6.2).
func mergeParams(p *polyhedron.Polyhedron) *polyhedron.Polyhedron {
	q := polyhedron.New(p.NVars+p.NParams, 0)
	for _, c := range p.Constraints {
		a := make(bigrat.Vector, p.NVars+p.NParams)
		copy(a, c.A)
		copy(a[p.NVars:], c.B)
		q.AddConstraint(polyhedron.Constraint{A: a, B: bigrat.Vector{}, C: new(big.Int).Set(c.C), Eq: c.Eq})
	}
	return q
}
