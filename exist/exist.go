// Package exist implements existential elimination (spec.md §4.8): reducing
// a polyhedron with some existentially-quantified variables to a plain
// quasi-polynomial in the remaining parameters, by a fixed catalogue of
// case rules tried in order until one applies.
package exist

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/count"
	"github.com/sgreben/barvinok-go/evalue"
	"github.com/sgreben/barvinok-go/options"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// ErrDimensionMismatch is returned when nParam disagrees with p.NParams.
var ErrDimensionMismatch = errors.New("exist: nParam does not match polyhedron parameter count")

// ErrCaseUnsupported is returned when none of the implemented rules applies
// to the existential under consideration:
//
//   - the equality rule (a unit-coefficient equation touching the
//     existential, substituted out exactly);
//   - the Positive rule (spec.md §4.8's ALL_POS/bound-projection case),
//     generalized to integer Fourier-Motzkin elimination: a one-sided
//     existential is always dropped, and a two-sided one is projected out
//     by adjoining, for every (lower, upper) bound pair, the derived
//     integer constraint that makes the pair's compatibility exact — valid
//     whenever at least one side of the pair has a unit coefficient on the
//     existential, which keeps the rational (real-shadow) projection gap-
//     free. Pairs where both sides carry a non-unit coefficient need the
//     Omega test's dark-shadow/splitting machinery to stay exact and are
//     left unsupported rather than silently approximated.
//
// The remaining case catalogue members spec.md §4.8 lists — ONE_NEG,
// ROT_NEG, Split, Line, Sum, Sure, Sure2, Ray, Vertex, Fringe, Order, PIP —
// and non-unit equality rotation need the source's full decomposition
// machinery (SPEC_FULL.md §4.8); implementing them is out of this module's
// scope, matching spec.md Design Notes §9's explicit sanction to leave
// assert(0)-guarded source paths unimplemented rather than guess at them.
// In particular, Split/Line/Sum specifically exist to make spec.md §8's
// nested ∃-sum scenario (S_k(n), a cubic quasi-polynomial) reachable, but
// that scenario's closed form needs Bernoulli-polynomial weighted
// summation to fold a nested count into a single polynomial — spec.md §1
// lists that as deliberately out of scope for this whole module, not just
// this package, so wiring Split/Line here would not actually make that
// scenario work; Line additionally needs periodic evalue construction,
// which count/resolve.go's ErrPeriodicUnsupported already declines for the
// same reason (no parametric dpoly_r machinery). Within the rule dispatch
// this is "rule not applicable", not an error (spec.md §7); EliminateExists
// surfaces it to its own caller as a real error since there is no further
// rule to try.
var ErrCaseUnsupported = errors.New("exist: existential does not match an implemented case-catalogue rule")

func errorf(tag string, err error) error {
	return fmt.Errorf("exist: %s: %w", tag, err)
}

// EliminateExists reduces the polyhedron p — of dimension
// (NVars-nExist) visible variables + nExist existentials + nParam
// parameters — to an evalue in nParam parameters, by peeling one
// existential at a time from the trailing nExist columns of p.NVars
// (spec.md §4.8). Existentials occupy the last nExist variable columns;
// the leading NVars-nExist columns are the visible (counted) variables.
func EliminateExists(p *polyhedron.Polyhedron, nExist, nParam int, opt options.Options) (*evalue.EValue, error) {
	if nParam != p.NParams {
		return nil, errorf("EliminateExists", ErrDimensionMismatch)
	}
	if nExist < 0 || nExist > p.NVars {
		return nil, errorf("EliminateExists", errors.New("nExist out of range"))
	}

	q := p.Clone()
	remaining := nExist
	for remaining > 0 {
		empty, err := q.IsEmpty()
		if err != nil {
			return nil, errorf("EliminateExists", err)
		}
		if empty {
			return evalue.NewConstantInt(0), nil
		}
		if err := checkCancelled(opt); err != nil {
			return nil, errorf("EliminateExists", err)
		}
		next, err := eliminateOne(q)
		if err != nil {
			return nil, errorf("EliminateExists", err)
		}
		q = next
		remaining--
	}

	if q.NParams == 0 {
		n, err := count.Count(q, opt)
		if err != nil {
			return nil, errorf("EliminateExists", err)
		}
		return evalue.NewConstant(new(big.Rat).SetInt(n)), nil
	}
	e, err := count.Enumerate(q, nil, opt)
	if err != nil {
		return nil, errorf("EliminateExists", err)
	}
	return e, nil
}

func checkCancelled(opt options.Options) error {
	if opt.Context == nil {
		return nil
	}
	select {
	case <-opt.Context.Done():
		return count.ErrCancelled
	default:
		return nil
	}
}

// eliminateOne removes the last existential column of q (index q.NVars-1),
// trying the equality rule first and then Positive, per spec.md §4.8's
// "equality rule" paragraph and its ALL_POS/bound-projection case.
func eliminateOne(q *polyhedron.Polyhedron) (*polyhedron.Polyhedron, error) {
	idx := q.NVars - 1
	if red, ok, err := tryEqualityRule(q, idx); err != nil {
		return nil, err
	} else if ok {
		return red, nil
	}
	if red, ok, err := tryPositive(q, idx); err != nil {
		return nil, err
	} else if ok {
		return red, nil
	}
	return nil, ErrCaseUnsupported
}

// dropColumn returns c with column idx of A removed.
func dropColumn(c polyhedron.Constraint, idx int) polyhedron.Constraint {
	a := make(bigrat.Vector, len(c.A)-1)
	copy(a, c.A[:idx])
	copy(a[idx:], c.A[idx+1:])
	return polyhedron.Constraint{A: a, B: c.B.Clone(), C: new(big.Int).Set(c.C), Eq: c.Eq}
}

// tryEqualityRule implements the "equality rule" of spec.md §4.8: any
// equation touching the existential with a unit coefficient solves for it
// exactly and substitutes it out, dropping the existential with no
// multiplicity change (|coeff| != 1 needs the unimodular column rotation
// into a single existential the spec also describes; that case is left to
// ErrCaseUnsupported since it requires coordinated column operations across
// every existential still present, beyond this module's scope).
func tryEqualityRule(q *polyhedron.Polyhedron, idx int) (*polyhedron.Polyhedron, bool, error) {
	for i, c := range q.Constraints {
		if !c.Eq || c.A[idx].Sign() == 0 {
			continue
		}
		coeff := c.A[idx]
		if new(big.Int).Abs(coeff).Cmp(big.NewInt(1)) != 0 {
			continue
		}
		sign := coeff.Sign()
		// idx = -sign * (rest), rest = A(without idx).y + B.p + C
		rest := dropColumn(c, idx)
		out := polyhedron.New(q.NVars-1, q.NParams)
		for j, oc := range q.Constraints {
			if j == i {
				continue
			}
			coj := oc.A[idx]
			substituted := dropColumn(oc, idx)
			if coj.Sign() != 0 {
				// oc: coj*x_i + restOc >= 0 (or ==0), x_i = -sign*rest.
				// coj*(-sign*rest) + restOc.
				scale := new(big.Int).Mul(coj, big.NewInt(int64(-sign)))
				substituted = combine(substituted, rest, scale)
			}
			out.AddConstraint(substituted)
		}
		return out, true, nil
	}
	return nil, false, nil
}

// combine returns base + scale*add (matching A/B/C shapes).
func combine(base, add polyhedron.Constraint, scale *big.Int) polyhedron.Constraint {
	a := base.A.Clone()
	for i := range a {
		a[i].Add(a[i], new(big.Int).Mul(scale, add.A[i]))
	}
	b := base.B.Clone()
	for i := range b {
		b[i].Add(b[i], new(big.Int).Mul(scale, add.B[i]))
	}
	c := new(big.Int).Add(base.C, new(big.Int).Mul(scale, add.C))
	return polyhedron.Constraint{A: a, B: b, C: c, Eq: base.Eq}
}

// tryPositive implements spec.md §4.8's Positive (ALL_POS) case as sound,
// unconditional integer Fourier-Motzkin elimination for an existential
// bounded above and/or below. A one-sided existential (only lower or only
// upper bounds, or none) can always be pushed to +/- infinity, so it and
// every constraint touching it is simply dropped. A two-sided existential
// is projected out by adjoining, for every (lower, upper) bound pair, the
// derived constraint that makes "some integer lies between them" exact —
// see pairCompatibilityConstraint. That projection is exact only when at
// least one side of the pair has a unit coefficient on the existential
// (otherwise the real-shadow condition it adjoins is necessary but not
// sufficient, the classic Fourier-Motzkin integer gap); such pairs are
// reported as not applicable so the caller can fall through to
// ErrCaseUnsupported instead of silently overcounting.
func tryPositive(q *polyhedron.Polyhedron, idx int) (*polyhedron.Polyhedron, bool, error) {
	var independent, lowers, uppers []polyhedron.Constraint
	for _, c := range q.Constraints {
		switch {
		case c.A[idx].Sign() == 0:
			independent = append(independent, dropColumn(c, idx))
		case c.Eq:
			// An equality with non-unit coefficient already failed the
			// equality rule above; Positive does not apply either.
			return nil, false, nil
		case c.A[idx].Sign() > 0:
			lowers = append(lowers, c)
		default:
			uppers = append(uppers, c)
		}
	}

	out := polyhedron.New(q.NVars-1, q.NParams)
	for _, c := range independent {
		out.AddConstraint(c)
	}

	if len(lowers) == 0 || len(uppers) == 0 {
		return out, true, nil
	}

	for _, lo := range lowers {
		for _, up := range uppers {
			coeffL := lo.A[idx]
			u := new(big.Int).Neg(up.A[idx])
			if coeffL.Cmp(big.NewInt(1)) != 0 && u.Cmp(big.NewInt(1)) != 0 {
				return nil, false, nil
			}
			out.AddConstraint(pairCompatibilityConstraint(lo, up, idx, q.NVars-1, q.NParams))
		}
	}
	return out, true, nil
}

// pairCompatibilityConstraint derives, for lo (coeff_l*x_i + restL >= 0,
// coeff_l>0) and up (coeff_u*x_i + restU >= 0, coeff_u<0, magnitude U), the
// constraint "coeff_l*restU + U*restL >= 0" that holds for the remaining
// variables and parameters exactly when some x_i satisfies both bounds
// (lo gives x_i >= -restL/coeff_l, up gives x_i <= restU/U; when at least
// one of coeff_l, U is 1 the rational interval [-restL/coeff_l, restU/U]
// contains an integer iff it contains a real, so this real-valued
// projection is exact).
func pairCompatibilityConstraint(lo, up polyhedron.Constraint, idx, nVars, nParams int) polyhedron.Constraint {
	coeffL := lo.A[idx]
	u := new(big.Int).Neg(up.A[idx])
	restL := dropColumn(lo, idx)
	restU := dropColumn(up, idx)

	a := make(bigrat.Vector, nVars)
	for i := range a {
		t1 := new(big.Int).Mul(coeffL, restU.A[i])
		t2 := new(big.Int).Mul(u, restL.A[i])
		a[i] = new(big.Int).Add(t1, t2)
	}
	b := make(bigrat.Vector, nParams)
	for i := range b {
		t1 := new(big.Int).Mul(coeffL, restU.B[i])
		t2 := new(big.Int).Mul(u, restL.B[i])
		b[i] = new(big.Int).Add(t1, t2)
	}
	t1 := new(big.Int).Mul(coeffL, restU.C)
	t2 := new(big.Int).Mul(u, restL.C)
	c := new(big.Int).Add(t1, t2)

	return polyhedron.Constraint{A: a, B: b, C: c}
}

// Eor is the inclusion-exclusion combinator for existential sub-results
// (spec.md §4.8: "eor(a, b) = a + b − a·b on indicator-like evalues").
// Reserved for the Split rule this module does not implement; provided so
// a future Split implementation has the combinator ready, and because
// spec.md §4.8 names it as part of C8's contract independent of which
// rules are wired up to call it.
func Eor(a, b *evalue.EValue) (*evalue.EValue, error) {
	sum, err := evalue.Add(a, b)
	if err != nil {
		return nil, err
	}
	prod, err := evalue.Mul(a, b)
	if err != nil {
		return nil, err
	}
	return evalue.Add(sum, evalue.Negate(prod))
}
