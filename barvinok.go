package barvinok

import (
	"errors"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/count"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/exist"
	"github.com/sgreben/barvinok-go/genfun"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// classify maps an internal sentinel error to the Kind the public API
// reports it under (spec.md §7).
func classify(err error) Kind {
	switch {
	case errors.Is(err, count.ErrParametric),
		errors.Is(err, count.ErrNotParametric),
		errors.Is(err, count.ErrNonInteger),
		errors.Is(err, count.ErrPeriodicUnsupported),
		errors.Is(err, count.ErrDegenerateProjection),
		errors.Is(err, exist.ErrDimensionMismatch),
		errors.Is(err, exist.ErrCaseUnsupported),
		errors.Is(err, bigrat.ErrNotSquare),
		errors.Is(err, bigrat.ErrSingular):
		return KindInvalidInput
	case errors.Is(err, count.ErrLambdaNotFound):
		return KindNonOrthogonalLambda
	case errors.Is(err, count.ErrCancelled):
		return KindCancelled
	default:
		return KindGateway
	}
}

// Count returns the number of integer points of the non-parametric
// polyhedron p, or -1 if p is unbounded (spec.md §6.2).
func Count(p *polyhedron.Polyhedron, opt Options) (*big.Int, error) {
	n, err := count.Count(p, opt)
	if err != nil {
		return nil, newError("Count", classify(err), err)
	}
	return n, nil
}

// Enumerate returns the quasi-polynomial counting the integer points of
// the parametric polyhedron p, valid over ctx (nil selects the
// unconstrained parameter space; spec.md §6.2, §4.6).
func Enumerate(p, ctx *polyhedron.Polyhedron, opt Options) (*evalue.EValue, error) {
	e, err := count.Enumerate(p, ctx, opt)
	if err != nil {
		return nil, newError("Enumerate", classify(err), err)
	}
	return e, nil
}

// Series returns the multivariate generating function of the parametric
// polyhedron p's count, Σ_p count(P(p))·x^p (spec.md §6.2 "series").
func Series(p *polyhedron.Polyhedron, opt Options) (*genfun.GenFun, error) {
	g, err := count.EnumerateSeries(p, opt)
	if err != nil {
		return nil, newError("Series", classify(err), err)
	}
	return g, nil
}

// EnumerateExists reduces a polyhedron with nExist existentially
// quantified variables to an evalue in nParam parameters, via the
// existential-elimination case catalogue (spec.md §4.8, §6.2).
func EnumerateExists(p *polyhedron.Polyhedron, nExist, nParam int, opt Options) (*evalue.EValue, error) {
	e, err := exist.EliminateExists(p, nExist, nParam, opt)
	if err != nil {
		return nil, newError("EnumerateExists", classify(err), err)
	}
	return e, nil
}
