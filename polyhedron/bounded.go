package polyhedron

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// IsBounded reports whether p, a non-parametric polyhedron, is bounded
// (spec.md §6.2 "count(P) ... or -1 if P is unbounded"). A polyhedron is
// bounded iff its recession cone {x : A.x >= 0} is {0}, which holds iff
// the constraint normals (the rows of A) positively span R^NVars, i.e. iff
// zero lies in the relative interior of their convex hull. That in turn
// holds iff the system "lambda >= 0, sum(lambda) = 1, A^T.lambda = 0" is
// feasible — a polyhedron expressed directly in this package's own
// constraint model, so this reuses Vertices()/IsEmpty rather than a
// separate LP solver.
func (p *Polyhedron) IsBounded() (bool, error) {
	n := len(p.Constraints)
	d := p.NVars
	if n == 0 {
		return d == 0, nil
	}

	dual := New(n, 0)
	for j := 0; j < d; j++ {
		row := bigrat.NewVector(n)
		for i, c := range p.Constraints {
			row[i].Set(c.A[j])
		}
		dual.AddConstraint(Constraint{A: row, B: bigrat.Vector{}, C: new(big.Int), Eq: true})
	}
	ones := bigrat.NewVector(n)
	for i := range ones {
		ones[i].SetInt64(1)
	}
	dual.AddConstraint(Constraint{A: ones, B: bigrat.Vector{}, C: big.NewInt(-1), Eq: true})
	for i := 0; i < n; i++ {
		e := bigrat.NewVector(n)
		e[i].SetInt64(1)
		dual.AddConstraint(Constraint{A: e, B: bigrat.Vector{}, C: new(big.Int), Eq: false})
	}

	empty, err := dual.IsEmpty()
	if err != nil {
		return false, dimErrorf("IsBounded", err)
	}
	return !empty, nil
}
