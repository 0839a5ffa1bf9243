// Package evalue implements the piecewise quasi-polynomial algebra the
// counting engine's parametric path evaluates down to: a tree whose leaves
// are rationals and whose inner nodes are polynomial, periodic,
// fractional, relation, or partition (spec.md §3).
package evalue

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// Kind tags which alternative an EValue node is.
type Kind int

const (
	// KindConstant is a plain rational leaf.
	KindConstant Kind = iota
	// KindPolynomial holds an ordered coefficient list c_0..c_deg in Var.
	KindPolynomial
	// KindPeriodic holds a period-length list of values selected by Var
	// mod len(Periods).
	KindPeriodic
	// KindFractional computes {(A.p+C)/M}, the fractional part of an
	// affine form, as a leaf (spec.md §3 "wrapped in an outer polynomial
	// node" — this package always wraps a bare Fractional in a degree-0
	// Polynomial via Wrap before embedding it as a coefficient).
	KindFractional
	// KindRelation selects Then when Cond evaluates to zero, Else
	// otherwise.
	KindRelation
	// KindPartition selects the child whose Domain contains the
	// evaluation point.
	KindPartition
)

func errorf(tag string, err error) error {
	return fmt.Errorf("evalue: %s: %w", tag, err)
}

// ErrNoMatchingPartition is returned by EvaluateAt when a partition node's
// domains do not cover the evaluation point (a broken partition invariant).
var ErrNoMatchingPartition = errors.New("evaluation point matches no partition domain")

// ErrKindMismatch is returned by operations given a node of the wrong kind.
var ErrKindMismatch = errors.New("unexpected evalue kind")

// FractionalForm is the affine form Offset + Scale*{(A.p+C)/M} read by a
// KindFractional leaf. Scale defaults to 1 and Offset to 0; both exist so
// that a constant or another copy of the same {.} term can be folded into
// the leaf by Add/Mul without needing a dedicated "sum of nodes" kind (the
// sum of two copies of the same {.} term, or a {.} term plus a plain
// constant, is not itself expressible as a bare fractional part unless a
// scale and an additive offset are allowed).
type FractionalForm struct {
	A      bigrat.Vector
	C      *big.Int
	M      *big.Int
	Scale  *big.Rat
	Offset *big.Rat
}

// sameForm reports whether f and g read the same underlying affine form
// (ignoring Scale).
func (f FractionalForm) sameForm(g FractionalForm) bool {
	if len(f.A) != len(g.A) {
		return false
	}
	for i := range f.A {
		if f.A[i].Cmp(g.A[i]) != 0 {
			return false
		}
	}
	return f.C.Cmp(g.C) == 0 && f.M.Cmp(g.M) == 0
}

func (f FractionalForm) scale() *big.Rat {
	if f.Scale == nil {
		return big.NewRat(1, 1)
	}
	return f.Scale
}

func (f FractionalForm) offset() *big.Rat {
	if f.Offset == nil {
		return new(big.Rat)
	}
	return f.Offset
}

// Eval evaluates Offset + Scale*{(A.p+C)/M} at parameter vector p.
func (f FractionalForm) Eval(p bigrat.Vector) (*big.Rat, error) {
	dot, err := bigrat.Dot(f.A, p)
	if err != nil {
		return nil, err
	}
	dot.Add(dot, f.C)
	r := bigrat.Mod(dot, f.M)
	frac := new(big.Rat).SetFrac(r, f.M)
	frac.Mul(frac, f.scale())
	return frac.Add(frac, f.offset()), nil
}

// Part is one (validity domain, child) pair of a KindPartition node.
type Part struct {
	Domain *polyhedron.Polyhedron
	Child  *EValue
}

// EValue is a node of the piecewise quasi-polynomial tree (spec.md §3).
type EValue struct {
	Kind Kind

	Const *big.Rat // KindConstant

	Var     int        // KindPolynomial, KindPeriodic: parameter index
	Coeffs  []*EValue  // KindPolynomial: c_0..c_deg
	Periods []*EValue  // KindPeriodic: values for residues 0..len-1

	Frac FractionalForm // KindFractional

	Cond *EValue // KindRelation
	Then *EValue
	Else *EValue

	Parts []Part // KindPartition
}

// NewConstant returns a constant leaf.
func NewConstant(v *big.Rat) *EValue {
	return &EValue{Kind: KindConstant, Const: new(big.Rat).Set(v)}
}

// NewConstantInt returns a constant leaf from an integer.
func NewConstantInt(v int64) *EValue {
	return NewConstant(big.NewRat(v, 1))
}

// NewPolynomial returns a KindPolynomial node over parameter `v`ar with the
// given coefficients (index i is the coefficient of x_var^i).
func NewPolynomial(v int, coeffs []*EValue) *EValue {
	return &EValue{Kind: KindPolynomial, Var: v, Coeffs: coeffs}
}

// NewPeriodic returns a KindPeriodic node over parameter `v`ar.
func NewPeriodic(v int, periods []*EValue) *EValue {
	return &EValue{Kind: KindPeriodic, Var: v, Periods: periods}
}

// NewFractional returns a bare KindFractional leaf.
func NewFractional(f FractionalForm) *EValue {
	return &EValue{Kind: KindFractional, Frac: f}
}

// Wrap embeds e as the sole (degree-0) coefficient of a trivial polynomial
// node over parameter `v`ar, the convention spec.md §3 uses so a
// KindFractional leaf can sit anywhere a polynomial coefficient is expected.
func Wrap(v int, e *EValue) *EValue {
	return NewPolynomial(v, []*EValue{e})
}

// NewRelation returns a KindRelation node: Then when cond evaluates to
// zero, Else otherwise.
func NewRelation(cond, then, els *EValue) *EValue {
	return &EValue{Kind: KindRelation, Cond: cond, Then: then, Else: els}
}

// NewPartition returns a KindPartition node over pairwise-disjoint domains.
func NewPartition(parts []Part) *EValue {
	return &EValue{Kind: KindPartition, Parts: parts}
}

// Clone returns a deep copy of e.
func (e *EValue) Clone() *EValue {
	if e == nil {
		return nil
	}
	out := &EValue{Kind: e.Kind, Var: e.Var}
	if e.Const != nil {
		out.Const = new(big.Rat).Set(e.Const)
	}
	for _, c := range e.Coeffs {
		out.Coeffs = append(out.Coeffs, c.Clone())
	}
	for _, p := range e.Periods {
		out.Periods = append(out.Periods, p.Clone())
	}
	if e.Kind == KindFractional {
		out.Frac = FractionalForm{
			A:      e.Frac.A.Clone(),
			C:      new(big.Int).Set(e.Frac.C),
			M:      new(big.Int).Set(e.Frac.M),
			Scale:  new(big.Rat).Set(e.Frac.scale()),
			Offset: new(big.Rat).Set(e.Frac.offset()),
		}
	}
	out.Cond = e.Cond.Clone()
	out.Then = e.Then.Clone()
	out.Else = e.Else.Clone()
	for _, p := range e.Parts {
		out.Parts = append(out.Parts, Part{Domain: p.Domain.Clone(), Child: p.Child.Clone()})
	}
	return out
}

// IsZero reports whether e is the constant zero leaf. Does not attempt
// general zero-recognition for non-constant nodes.
func (e *EValue) IsZero() bool {
	return e.Kind == KindConstant && e.Const.Sign() == 0
}
