package polyhedron

// PipLexMin would return the lexicographically smallest integer point of a
// parametric polyhedron as a function of its parameters (the "parametric
// integer programming" primitive some Barvinok-algorithm implementations
// expose alongside counting). This module's counting core never calls it —
// enumeration and summation go through vertices, supporting cones and the
// existential-elimination case rules instead — so it is left unimplemented
// rather than grounded on guesswork (SPEC_FULL.md §6 Open Questions).
func PipLexMin(p *Polyhedron) (*ParametricVertex, error) {
	return nil, ErrNotImplemented
}
