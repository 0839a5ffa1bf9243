// Package barvinok counts integer points in parameterized rational
// polytopes. Given a polytope P subset of Q^d described by linear
// (in)equalities that may depend on integer parameters, it computes either
// an exact integer (no parameters) or a piecewise quasi-polynomial function
// f(p) = |P(p) intersect Z^d| over the parametric domain, together with an
// alternative multivariate rational generating-function representation. It
// also supports counting under existential quantification over a subset of
// the variables (spec.md §1).
//
// The package is organized the way the algorithm decomposes: bigrat is the
// exact-arithmetic kernel, polyhedron the gateway onto polyhedral data,
// cone the signed unimodular-cone decomposer, series the truncated
// Taylor-series engine, latpoint the lattice-point representative builder,
// count the scalar/parametric enumerator, genfun the generating-function
// accumulator, evalue the piecewise quasi-polynomial algebra, and exist the
// existential-elimination case catalogue. This root package only wires
// those together behind the four public entry points (Count, Enumerate,
// Series, EnumerateExists).
package barvinok
