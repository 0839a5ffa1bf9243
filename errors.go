package barvinok

import "fmt"

// Kind tags the category of a Barvinok engine error (spec.md §7).
type Kind int

const (
	// KindInvalidInput covers non-integer data, a non-square cone matrix,
	// or a zero-determinant cone.
	KindInvalidInput Kind = iota
	// KindUnbounded names the unbounded-input condition. Count reports it as
	// the value -1 rather than as an error; Enumerate, Series and
	// EnumerateExists do not test boundedness, and classify maps no error to
	// this kind.
	KindUnbounded
	// KindNonOrthogonalLambda signals that the bounded random search for a
	// generic lambda (spec.md §4.6 "nonorthog") exhausted its budget. This
	// is an assertion failure: it should not occur on well-formed input.
	KindNonOrthogonalLambda
	// KindCancelled reports cooperative cancellation via Options.Context.
	KindCancelled
	// KindGateway wraps an error returned unchanged from the polyhedral
	// gateway (package polyhedron).
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUnbounded:
		return "unbounded"
	case KindNonOrthogonalLambda:
		return "non-orthogonal lambda not found"
	case KindCancelled:
		return "cancelled"
	case KindGateway:
		return "gateway failure"
	default:
		return "unknown"
	}
}

// Error is the error type returned at the public API boundary (spec.md §7).
// Policy: errors propagate to the boundary unchanged and cause a full
// unwind; within the existential-elimination rule dispatcher (package
// exist), a rule reporting "not applicable" is not an Error - the caller
// tries the next rule.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("barvinok: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("barvinok: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds an *Error, wrapping err (which may be nil).
func newError(op string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
