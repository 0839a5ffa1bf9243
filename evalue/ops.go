package evalue

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
	"github.com/sgreben/barvinok-go/polyhedron"
)

// lcmInt returns the least common multiple of two positive ints.
func lcmInt(a, b int) int {
	ga := a
	gb := b
	for gb != 0 {
		ga, gb = gb, ga%gb
	}
	g := ga
	if g == 0 {
		return 0
	}
	return a / g * b
}

func zeroConst() *EValue {
	return NewConstantInt(0)
}

// extendPeriod repeats vals cyclically to length n.
func extendPeriod(vals []*EValue, n int) []*EValue {
	out := make([]*EValue, n)
	for i := 0; i < n; i++ {
		out[i] = vals[i%len(vals)].Clone()
	}
	return out
}

// Add returns a+b, a new tree. Add supports combinations that the counting
// engine actually builds: constants, polynomials (same or different Var,
// nesting the numerically larger Var index inward), periodics (same rule,
// plus period extension to a common multiple length), matching fractional
// forms, and partitions (distributed over every child, intersecting domains
// when both sides are partitioned). Genuinely irreconcilable combinations
// (e.g. two structurally distinct bare fractional leaves, or two relations
// with different conditions) report ErrKindMismatch rather than guess.
func Add(a, b *EValue) (*EValue, error) {
	if a.IsZero() {
		return b.Clone(), nil
	}
	if b.IsZero() {
		return a.Clone(), nil
	}

	switch {
	case a.Kind == KindConstant && b.Kind == KindConstant:
		return NewConstant(new(big.Rat).Add(a.Const, b.Const)), nil

	case a.Kind == KindPartition || b.Kind == KindPartition:
		return addPartition(a, b)

	case a.Kind == KindPolynomial && b.Kind == KindPolynomial:
		if a.Var == b.Var {
			return addPolySameVar(a, b)
		}
		if a.Var < b.Var {
			return addIntoCoeff0(a, b)
		}
		return addIntoCoeff0(b, a)

	case a.Kind == KindPeriodic && b.Kind == KindPeriodic:
		if a.Var == b.Var {
			return addPeriodicSameVar(a, b)
		}
		if a.Var < b.Var {
			return addIntoEveryPeriod(a, b)
		}
		return addIntoEveryPeriod(b, a)

	case a.Kind == KindPolynomial && b.Kind == KindPeriodic:
		return addMixedPolyPeriodic(a, b)
	case a.Kind == KindPeriodic && b.Kind == KindPolynomial:
		return addMixedPolyPeriodic(b, a)

	case a.Kind == KindPolynomial:
		return addIntoCoeff0(a, b)
	case b.Kind == KindPolynomial:
		return addIntoCoeff0(b, a)

	case a.Kind == KindPeriodic:
		return addIntoEveryPeriod(a, b)
	case b.Kind == KindPeriodic:
		return addIntoEveryPeriod(b, a)

	case a.Kind == KindFractional && b.Kind == KindFractional:
		if !a.Frac.sameForm(b.Frac) {
			return nil, errorf("Add", ErrKindMismatch)
		}
		out := NewFractional(a.Frac)
		out.Frac.Scale = new(big.Rat).Add(a.Frac.scale(), b.Frac.scale())
		out.Frac.Offset = new(big.Rat).Add(a.Frac.offset(), b.Frac.offset())
		return out, nil

	case a.Kind == KindFractional && b.Kind == KindConstant:
		out := NewFractional(a.Frac)
		out.Frac.Offset = new(big.Rat).Add(a.Frac.offset(), b.Const)
		return out, nil
	case b.Kind == KindFractional && a.Kind == KindConstant:
		out := NewFractional(b.Frac)
		out.Frac.Offset = new(big.Rat).Add(b.Frac.offset(), a.Const)
		return out, nil

	case a.Kind == KindRelation && b.Kind == KindRelation:
		if !structurallyEqual(a.Cond, b.Cond) {
			return nil, errorf("Add", ErrKindMismatch)
		}
		then, err := Add(a.Then, b.Then)
		if err != nil {
			return nil, err
		}
		els, err := Add(a.Else, b.Else)
		if err != nil {
			return nil, err
		}
		return NewRelation(a.Cond.Clone(), then, els), nil
	}

	return nil, errorf("Add", ErrKindMismatch)
}

func addPolySameVar(a, b *EValue) (*EValue, error) {
	n := len(a.Coeffs)
	if len(b.Coeffs) > n {
		n = len(b.Coeffs)
	}
	coeffs := make([]*EValue, n)
	for i := 0; i < n; i++ {
		ca, cb := zeroConst(), zeroConst()
		if i < len(a.Coeffs) {
			ca = a.Coeffs[i]
		}
		if i < len(b.Coeffs) {
			cb = b.Coeffs[i]
		}
		s, err := Add(ca, cb)
		if err != nil {
			return nil, err
		}
		coeffs[i] = s
	}
	return NewPolynomial(a.Var, coeffs), nil
}

// addIntoCoeff0 adds rest (which does not itself carry outer.Var as an
// outer node) into outer's degree-0 coefficient, preserving outer's shape.
func addIntoCoeff0(outer, rest *EValue) (*EValue, error) {
	coeffs := make([]*EValue, len(outer.Coeffs))
	copy(coeffs, outer.Coeffs)
	if len(coeffs) == 0 {
		coeffs = []*EValue{zeroConst()}
	}
	s, err := Add(coeffs[0], rest)
	if err != nil {
		return nil, err
	}
	coeffs[0] = s
	return NewPolynomial(outer.Var, coeffs), nil
}

func addPeriodicSameVar(a, b *EValue) (*EValue, error) {
	n := lcmInt(len(a.Periods), len(b.Periods))
	pa := extendPeriod(a.Periods, n)
	pb := extendPeriod(b.Periods, n)
	out := make([]*EValue, n)
	for i := 0; i < n; i++ {
		s, err := Add(pa[i], pb[i])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return NewPeriodic(a.Var, out), nil
}

func addIntoEveryPeriod(outer, rest *EValue) (*EValue, error) {
	out := make([]*EValue, len(outer.Periods))
	for i, v := range outer.Periods {
		s, err := Add(v, rest)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return NewPeriodic(outer.Var, out), nil
}

// addMixedPolyPeriodic adds a KindPolynomial and a KindPeriodic node,
// whichever carries the numerically smaller Var becomes outer.
func addMixedPolyPeriodic(poly, per *EValue) (*EValue, error) {
	if poly.Var <= per.Var {
		return addIntoCoeff0(poly, per)
	}
	return addIntoEveryPeriod(per, poly)
}

func addPartition(a, b *EValue) (*EValue, error) {
	if a.Kind == KindPartition && b.Kind == KindPartition {
		var parts []Part
		for _, pa := range a.Parts {
			for _, pb := range b.Parts {
				dom, err := polyhedronIntersect(pa.Domain, pb.Domain)
				if err != nil {
					return nil, err
				}
				if dom == nil {
					continue
				}
				child, err := Add(pa.Child, pb.Child)
				if err != nil {
					return nil, err
				}
				parts = append(parts, Part{Domain: dom, Child: child})
			}
		}
		return NewPartition(parts), nil
	}
	part, rest := a, b
	if rest.Kind == KindPartition {
		part, rest = b, a
	}
	var parts []Part
	for _, p := range part.Parts {
		child, err := Add(p.Child, rest)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Domain: p.Domain.Clone(), Child: child})
	}
	return NewPartition(parts), nil
}

// structurallyEqual compares two condition subtrees for literal equality;
// used only to decide whether two KindRelation nodes can be combined.
func structurallyEqual(a, b *EValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindConstant:
		return a.Const.Cmp(b.Const) == 0
	case KindPolynomial:
		if a.Var != b.Var || len(a.Coeffs) != len(b.Coeffs) {
			return false
		}
		for i := range a.Coeffs {
			if !structurallyEqual(a.Coeffs[i], b.Coeffs[i]) {
				return false
			}
		}
		return true
	case KindFractional:
		return a.Frac.sameForm(b.Frac)
	default:
		return false
	}
}

// Negate returns -e, a new tree.
func Negate(e *EValue) *EValue {
	out := e.Clone()
	negateInPlace(out)
	return out
}

func negateInPlace(e *EValue) {
	switch e.Kind {
	case KindConstant:
		e.Const.Neg(e.Const)
	case KindPolynomial:
		for _, c := range e.Coeffs {
			negateInPlace(c)
		}
	case KindPeriodic:
		for _, c := range e.Periods {
			negateInPlace(c)
		}
	case KindFractional:
		e.Frac.Scale = new(big.Rat).Neg(e.Frac.scale())
		e.Frac.Offset = new(big.Rat).Neg(e.Frac.offset())
	case KindRelation:
		negateInPlace(e.Then)
		negateInPlace(e.Else)
	case KindPartition:
		for i := range e.Parts {
			negateInPlace(e.Parts[i].Child)
		}
	}
}

// Mul returns a*b. Supported combinations mirror Add: constant scaling,
// polynomial convolution (same Var), and partition distribution. A mixed
// periodic/polynomial product is not needed by this counting engine (series
// division never leaves a periodic coefficient multiplying a polynomial
// one) and reports ErrKindMismatch rather than guess at a meaning.
func Mul(a, b *EValue) (*EValue, error) {
	if a.Kind == KindConstant {
		return scaleConst(b, a.Const)
	}
	if b.Kind == KindConstant {
		return scaleConst(a, b.Const)
	}
	if a.Kind == KindPartition || b.Kind == KindPartition {
		return mulPartition(a, b)
	}
	if a.Kind == KindPolynomial && b.Kind == KindPolynomial && a.Var == b.Var {
		n := len(a.Coeffs) + len(b.Coeffs) - 1
		coeffs := make([]*EValue, n)
		for i := range coeffs {
			coeffs[i] = zeroConst()
		}
		for i, ca := range a.Coeffs {
			for j, cb := range b.Coeffs {
				t, err := Mul(ca, cb)
				if err != nil {
					return nil, err
				}
				s, err := Add(coeffs[i+j], t)
				if err != nil {
					return nil, err
				}
				coeffs[i+j] = s
			}
		}
		return NewPolynomial(a.Var, coeffs), nil
	}
	return nil, errorf("Mul", ErrKindMismatch)
}

func scaleConst(e *EValue, r *big.Rat) (*EValue, error) {
	if r.Sign() == 0 {
		return zeroConst(), nil
	}
	switch e.Kind {
	case KindConstant:
		return NewConstant(new(big.Rat).Mul(e.Const, r)), nil
	case KindPolynomial:
		coeffs := make([]*EValue, len(e.Coeffs))
		for i, c := range e.Coeffs {
			s, err := scaleConst(c, r)
			if err != nil {
				return nil, err
			}
			coeffs[i] = s
		}
		return NewPolynomial(e.Var, coeffs), nil
	case KindPeriodic:
		per := make([]*EValue, len(e.Periods))
		for i, c := range e.Periods {
			s, err := scaleConst(c, r)
			if err != nil {
				return nil, err
			}
			per[i] = s
		}
		return NewPeriodic(e.Var, per), nil
	case KindFractional:
		out := NewFractional(e.Frac)
		out.Frac.Scale = new(big.Rat).Mul(e.Frac.scale(), r)
		out.Frac.Offset = new(big.Rat).Mul(e.Frac.offset(), r)
		return out, nil
	case KindPartition:
		var parts []Part
		for _, p := range e.Parts {
			c, err := scaleConst(p.Child, r)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Part{Domain: p.Domain.Clone(), Child: c})
		}
		return NewPartition(parts), nil
	case KindRelation:
		then, err := scaleConst(e.Then, r)
		if err != nil {
			return nil, err
		}
		els, err := scaleConst(e.Else, r)
		if err != nil {
			return nil, err
		}
		return NewRelation(e.Cond.Clone(), then, els), nil
	}
	return nil, errorf("scaleConst", ErrKindMismatch)
}

func mulPartition(a, b *EValue) (*EValue, error) {
	if a.Kind == KindPartition && b.Kind == KindPartition {
		var parts []Part
		for _, pa := range a.Parts {
			for _, pb := range b.Parts {
				dom, err := polyhedronIntersect(pa.Domain, pb.Domain)
				if err != nil {
					return nil, err
				}
				if dom == nil {
					continue
				}
				child, err := Mul(pa.Child, pb.Child)
				if err != nil {
					return nil, err
				}
				parts = append(parts, Part{Domain: dom, Child: child})
			}
		}
		return NewPartition(parts), nil
	}
	part, rest := a, b
	if rest.Kind == KindPartition {
		part, rest = b, a
	}
	var parts []Part
	for _, p := range part.Parts {
		child, err := Mul(p.Child, rest)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Domain: p.Domain.Clone(), Child: child})
	}
	return NewPartition(parts), nil
}

// AffineToEValue builds the nested-polynomial representation of the affine
// form a.p+c, one KindPolynomial level per nonzero coordinate of a (lower
// parameter index nested outward), matching the canonical variable
// ordering Add assumes (spec.md §3's "affine terms compose as nested
// polynomial coefficients").
func AffineToEValue(a bigrat.Vector, c *big.Rat) *EValue {
	node := NewConstant(c)
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Sign() == 0 {
			continue
		}
		coeff := NewConstant(new(big.Rat).SetInt(a[i]))
		node = NewPolynomial(i, []*EValue{node, coeff})
	}
	return node
}

// FloorDivAffine builds the evalue representing floor((a.p+c)/m) via the
// identity floor(x/m) = x/m - {x/m}: a rational-coefficient affine part
// minus a wrapped fractional leaf (spec.md §4.5's ceil/floor terms reduce
// to exactly this shape once negated).
func FloorDivAffine(a bigrat.Vector, c, m *big.Int) *EValue {
	rm := new(big.Rat).SetInt(m)
	linA := make([]*big.Rat, len(a))
	for i, x := range a {
		r := new(big.Rat).SetInt(x)
		linA[i] = r.Quo(r, rm)
	}
	cr := new(big.Rat).SetInt(c)
	cr.Quo(cr, rm)
	linear := rationalAffineToEValue(linA, cr)

	outerVar := 0
	for i, x := range a {
		if x.Sign() != 0 {
			outerVar = i
			break
		}
	}
	frac := Wrap(outerVar, NewFractional(FractionalForm{A: a.Clone(), C: new(big.Int).Set(c), M: new(big.Int).Set(m)}))
	out, err := Add(linear, Negate(frac))
	if err != nil {
		// linear and frac both key off outerVar by construction; Add
		// cannot fail here.
		panic(err)
	}
	return out
}

// AffineRationalToEValue is AffineToEValue for an affine form with
// rational (rather than integer) coefficients, e.g. a parametric vertex
// coordinate v_i(p) = (Linear_i.p + Const_i)/Denom.
func AffineRationalToEValue(a []*big.Rat, c *big.Rat) *EValue {
	return rationalAffineToEValue(a, c)
}

func rationalAffineToEValue(a []*big.Rat, c *big.Rat) *EValue {
	node := NewConstant(c)
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Sign() == 0 {
			continue
		}
		coeff := NewConstant(new(big.Rat).Set(a[i]))
		node = NewPolynomial(i, []*EValue{node, coeff})
	}
	return node
}

// ExpandPeriodic converts a bare KindFractional leaf into the equivalent
// KindPeriodic node over parameter index `axis`: residue r (0..M-1) holds
// the constant value Offset + Scale*((A[axis]*r + C) mod M)/M, since
// {(A.p+C)/M} only depends on p through p[axis] mod M when A has a single
// nonzero entry. Only that shape is accepted: A's one nonzero entry must
// be at `axis`, with coefficient 1 or -1; anything else is ErrKindMismatch.
func ExpandPeriodic(f FractionalForm, axis int) (*EValue, error) {
	if len(f.A) <= axis {
		return nil, errorf("ExpandPeriodic", ErrKindMismatch)
	}
	coeff := f.A[axis]
	if coeff.CmpAbs(big.NewInt(1)) != 0 {
		return nil, errorf("ExpandPeriodic", ErrKindMismatch)
	}
	for i, x := range f.A {
		if i != axis && x.Sign() != 0 {
			return nil, errorf("ExpandPeriodic", ErrKindMismatch)
		}
	}
	m := int(f.M.Int64())
	periods := make([]*EValue, m)
	for r := 0; r < m; r++ {
		val := new(big.Int).Mul(coeff, big.NewInt(int64(r)))
		val.Add(val, f.C)
		res := bigrat.Mod(val, f.M)
		num := new(big.Rat).SetFrac(res, f.M)
		num.Mul(num, f.scale())
		num.Add(num, f.offset())
		periods[r] = NewConstant(num)
	}
	return NewPeriodic(axis, periods), nil
}

// RangeReduce collapses a KindPeriodic node to its minimal repeating
// sub-cycle (e.g. [x,y,x,y] -> [x,y]) when one exists, recursing into
// children first. Leaves every other kind unchanged structurally but still
// recurses so nested periodics are reduced too.
func RangeReduce(e *EValue) *EValue {
	switch e.Kind {
	case KindPolynomial:
		coeffs := make([]*EValue, len(e.Coeffs))
		for i, c := range e.Coeffs {
			coeffs[i] = RangeReduce(c)
		}
		return NewPolynomial(e.Var, coeffs)
	case KindPeriodic:
		reduced := make([]*EValue, len(e.Periods))
		for i, c := range e.Periods {
			reduced[i] = RangeReduce(c)
		}
		n := len(reduced)
		for d := 1; d < n; d++ {
			if n%d != 0 {
				continue
			}
			ok := true
			for i := d; i < n && ok; i++ {
				if !structurallyEqual(reduced[i], reduced[i%d]) {
					ok = false
				}
			}
			if ok {
				return NewPeriodic(e.Var, reduced[:d])
			}
		}
		return NewPeriodic(e.Var, reduced)
	case KindRelation:
		return NewRelation(e.Cond.Clone(), RangeReduce(e.Then), RangeReduce(e.Else))
	case KindPartition:
		var parts []Part
		for _, p := range e.Parts {
			parts = append(parts, Part{Domain: p.Domain.Clone(), Child: RangeReduce(p.Child)})
		}
		return NewPartition(parts)
	default:
		return e.Clone()
	}
}

// EvaluateAt fully evaluates e at a complete integer parameter vector p,
// returning the resulting rational value.
func EvaluateAt(e *EValue, p bigrat.Vector) (*big.Rat, error) {
	switch e.Kind {
	case KindConstant:
		return new(big.Rat).Set(e.Const), nil
	case KindPolynomial:
		x := p[e.Var]
		acc := new(big.Rat)
		pow := big.NewRat(1, 1)
		for _, c := range e.Coeffs {
			v, err := EvaluateAt(c, p)
			if err != nil {
				return nil, err
			}
			t := new(big.Rat).Mul(v, pow)
			acc.Add(acc, t)
			pow.Mul(pow, new(big.Rat).SetInt(x))
		}
		return acc, nil
	case KindPeriodic:
		x := p[e.Var]
		m := big.NewInt(int64(len(e.Periods)))
		r := bigrat.Mod(x, m)
		return EvaluateAt(e.Periods[r.Int64()], p)
	case KindFractional:
		return e.Frac.Eval(p)
	case KindRelation:
		v, err := EvaluateAt(e.Cond, p)
		if err != nil {
			return nil, err
		}
		if v.Sign() == 0 {
			return EvaluateAt(e.Then, p)
		}
		return EvaluateAt(e.Else, p)
	case KindPartition:
		for _, part := range e.Parts {
			ok, err := domainContains(part.Domain, p)
			if err != nil {
				return nil, err
			}
			if ok {
				return EvaluateAt(part.Child, p)
			}
		}
		return nil, errorf("EvaluateAt", ErrNoMatchingPartition)
	}
	return nil, errorf("EvaluateAt", ErrKindMismatch)
}

// Substitute specializes every parameter to a fully-known integer vector p,
// returning a KindConstant leaf. This engine only ever needs full
// specialization (spec.md §8's "enumerate(p0) == count(P(p0))" checks);
// partial, single-variable substitution with a symbolic remainder is not
// implemented.
func Substitute(e *EValue, p bigrat.Vector) (*EValue, error) {
	v, err := EvaluateAt(e, p)
	if err != nil {
		return nil, errorf("Substitute", err)
	}
	return NewConstant(v), nil
}

// polyhedronIntersect intersects two partition domains, returning nil (no
// error) when the intersection is empty so callers can drop that branch.
func polyhedronIntersect(a, b *polyhedron.Polyhedron) (*polyhedron.Polyhedron, error) {
	d, err := polyhedron.Intersect(a, b)
	if err != nil {
		return nil, errorf("polyhedronIntersect", err)
	}
	empty, err := d.IsEmpty()
	if err != nil {
		return nil, errorf("polyhedronIntersect", err)
	}
	if empty {
		return nil, nil
	}
	return d, nil
}

// domainContains reports whether p (a full parameter vector) satisfies
// every constraint of dom, a parameter-space-only polyhedron (its ordinary
// variables ARE the parameters, as in this engine's own partition domains).
func domainContains(dom *polyhedron.Polyhedron, p bigrat.Vector) (bool, error) {
	for _, c := range dom.Constraints {
		d, err := bigrat.Dot(c.A, p)
		if err != nil {
			return false, errorf("domainContains", err)
		}
		d.Add(d, c.C)
		if c.Eq {
			if d.Sign() != 0 {
				return false, nil
			}
		} else if d.Sign() < 0 {
			return false, nil
		}
	}
	return true, nil
}
