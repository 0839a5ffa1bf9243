package polyhedron

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// Intersect returns the polyhedron whose feasible region is the
// intersection of a and b's, i.e. the union of their constraint lists
// (spec.md §6.1). a and b must share NVars/NParams.
func Intersect(a, b *Polyhedron) (*Polyhedron, error) {
	if a.NVars != b.NVars || a.NParams != b.NParams {
		return nil, dimErrorf("Intersect", ErrDimension)
	}
	out := New(a.NVars, a.NParams)
	for _, c := range a.Constraints {
		out.AddConstraint(c.Clone())
	}
	for _, c := range b.Constraints {
		out.AddConstraint(c.Clone())
	}
	return out, nil
}

// Difference returns a polyhedral approximation of a \ b as the list of
// polyhedra obtained by adding, one at a time, the negation of each of b's
// inequality constraints to a (spec.md §6.1 "difference... as a union of
// polyhedra, one per negated facet"). Equality constraints of b are split
// into the two complementary strict inequalities before negation (b's
// feasible region requires both; negating an equality feasibly means
// violating at least one of the two directions).
func Difference(a, b *Polyhedron) ([]*Polyhedron, error) {
	if a.NVars != b.NVars || a.NParams != b.NParams {
		return nil, dimErrorf("Difference", ErrDimension)
	}
	var out []*Polyhedron
	for _, c := range b.Constraints {
		if c.Eq {
			neg1 := negateStrict(c, false)
			neg2 := negateStrict(c, true)
			for _, neg := range []Constraint{neg1, neg2} {
				p := a.Clone()
				p.AddConstraint(neg)
				out = append(out, p)
			}
			continue
		}
		p := a.Clone()
		p.AddConstraint(negateStrict(c, false))
		out = append(out, p)
	}
	return out, nil
}

// negateStrict returns the strict negation of c's inequality (A.x+B.p+C >= 0
// becomes -A.x-B.p-C-1 >= 0, i.e. A.x+B.p+C <= -1) tightened for the
// lattice (exact arithmetic, no epsilon needed). flip additionally reverses
// the equality's two directions so callers can enumerate both halves of a
// split equality.
func negateStrict(c Constraint, flip bool) Constraint {
	sign := int64(-1)
	if flip {
		sign = 1
	}
	a := bigrat.VectorScale(c.A, big.NewInt(sign))
	b := bigrat.VectorScale(c.B, big.NewInt(sign))
	cc := new(big.Int).Mul(c.C, big.NewInt(sign))
	cc.Sub(cc, big.NewInt(1))
	return Constraint{A: a, B: b, C: cc, Eq: false}
}

// AffineMap is an integer affine map y = M*x + k from Q^From to Q^To.
type AffineMap struct {
	M bigrat.Matrix // To x From
	K bigrat.Vector // length To
}

// Image pushes p forward through an affine map known to be invertible on
// the parameter-free variable space, by expressing the original variables
// in terms of the mapped ones (spec.md §6.1 "image/preimage as affine
// substitutions"). Returns ErrNotImplemented if M is not square invertible,
// since a non-invertible image would require eliminating variables via
// RemoveEqualities first (the caller's responsibility, not this helper's).
func Image(p *Polyhedron, m AffineMap) (*Polyhedron, error) {
	if m.M.Rows() != m.M.Cols() {
		return nil, ErrNotImplemented
	}
	adj, det, err := bigrat.Inverse(m.M)
	if err != nil {
		return nil, err
	}
	if det.CmpAbs(big.NewInt(1)) != 0 {
		return nil, ErrNotImplemented
	}
	return Preimage(p, inverseAffineMap(m, adj, det))
}

// Preimage pulls p back through an affine map x = M*y + k, substituting
// into every constraint (spec.md §6.1).
func Preimage(p *Polyhedron, m AffineMap) (*Polyhedron, error) {
	out := New(m.M.Cols(), p.NParams)
	for _, c := range p.Constraints {
		aRow := bigrat.NewMatrix(1, len(c.A))
		aRow[0] = c.A.Clone()
		transformed, err := bigrat.Mul(aRow, m.M)
		if err != nil {
			return nil, err
		}
		shift, err := bigrat.Dot(c.A, m.K)
		if err != nil {
			return nil, err
		}
		newC := new(big.Int).Add(c.C, shift)
		out.AddConstraint(Constraint{A: transformed[0].Clone(), B: c.B.Clone(), C: newC, Eq: c.Eq})
	}
	return out, nil
}

// inverseAffineMap returns the map x = (adj/det)*(y-k), expressed with an
// integer numerator matrix and a shared denominator folded into it only
// when det is +/-1 (the only case Image currently needs).
func inverseAffineMap(m AffineMap, adj bigrat.Matrix, det *big.Int) AffineMap {
	inv := adj.Clone()
	if det.Sign() < 0 {
		for i := range inv {
			for j := range inv[i] {
				inv[i][j].Neg(inv[i][j])
			}
		}
	}
	negK, _ := bigrat.MulVector(inv, m.K)
	for i := range negK {
		negK[i].Neg(negK[i])
	}
	return AffineMap{M: inv, K: negK}
}
