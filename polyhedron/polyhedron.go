// Package polyhedron is the thin gateway the core counting engine talks to
// (spec.md §6.1): rational convex polyhedra, optionally parameterized by
// integer parameters, plus exactly the operations the core needs —
// vertex/ray extraction, supporting cones, polar duals, triangulation,
// equality removal, set operations, emptiness, and a parameter-space
// chamber decomposition. It is not a general-purpose polyhedral library;
// anything beyond this capability set is explicitly out of scope
// (spec.md §1 Non-goals).
package polyhedron

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// Constraint is the affine form A·x + B·p + C >= 0 (or == 0 when Eq is
// set), where x ranges over the polyhedron's NVars ordinary variables and
// p over its NParams integer parameters (spec.md §3).
type Constraint struct {
	A  bigrat.Vector // length NVars
	B  bigrat.Vector // length NParams
	C  *big.Int
	Eq bool
}

// Clone returns a deep copy of c.
func (c Constraint) Clone() Constraint {
	return Constraint{A: c.A.Clone(), B: c.B.Clone(), C: new(big.Int).Set(c.C), Eq: c.Eq}
}

// evalConst evaluates the A·x + C part of the constraint at a concrete
// (non-parametric) point x, ignoring B (NParams must be 0 for this to be
// meaningful on its own).
func (c Constraint) evalConst(x bigrat.Vector) *big.Int {
	d, _ := bigrat.Dot(c.A, x)
	return new(big.Int).Add(d, c.C)
}

// Polyhedron is a rational convex polyhedron in Q^NVars, parameterized by
// NParams integer parameters. Vertex-form is materialized on demand and
// cached (spec.md §3's "vertex-form and constraint-form are both
// materialized on demand").
type Polyhedron struct {
	NVars       int
	NParams     int
	Constraints []Constraint

	vertices []ParametricVertex
	haveVerts bool
}

// ErrNotImplemented is returned by gateway capabilities the spec marks
// optional and that this module deliberately leaves unimplemented
// (spec.md §6.1 pip_lexmin).
var ErrNotImplemented = errors.New("polyhedron: not implemented")

// New returns an empty-constraint polyhedron (the universe Q^nVars) with
// the given parameter count.
func New(nVars, nParams int) *Polyhedron {
	return &Polyhedron{NVars: nVars, NParams: nParams}
}

// Clone returns a deep, cache-cleared copy of p.
func (p *Polyhedron) Clone() *Polyhedron {
	out := &Polyhedron{NVars: p.NVars, NParams: p.NParams}
	out.Constraints = make([]Constraint, len(p.Constraints))
	for i, c := range p.Constraints {
		out.Constraints[i] = c.Clone()
	}
	return out
}

// AddConstraint appends a constraint in place and invalidates the cached
// vertex set.
func (p *Polyhedron) AddConstraint(c Constraint) {
	p.Constraints = append(p.Constraints, c)
	p.haveVerts = false
}

func dimErrorf(op string, err error) error {
	return fmt.Errorf("polyhedron: %s: %w", op, err)
}

// ErrDimension is returned when a constraint's row lengths do not match
// the polyhedron's declared NVars/NParams.
var ErrDimension = errors.New("constraint dimension mismatch")

func (p *Polyhedron) validate() error {
	for i, c := range p.Constraints {
		if len(c.A) != p.NVars || len(c.B) != p.NParams {
			return dimErrorf(fmt.Sprintf("constraint %d", i), ErrDimension)
		}
	}
	return nil
}
