package polyhedron

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// ParametricVertex is a vertex of a parametric polytope, given as an
// affine function of the parameters: v(p) = (Linear*p + Const) / Denom
// (spec.md §3, §4.6 "vertices are parametric (affine in p) with a common
// denominator"). For a non-parametric polyhedron (NParams == 0), Linear
// is an NVars x 0 matrix and v = Const/Denom is the plain vertex.
type ParametricVertex struct {
	Linear     bigrat.Matrix // NVars x NParams
	Const      bigrat.Vector // length NVars
	Denom      *big.Int
	ActiveRows []int // indices into Polyhedron.Constraints defining this vertex
}

// At evaluates the vertex at concrete integer parameter values, returning
// the point as a rational vector (Num, Denom shared across coordinates).
func (v ParametricVertex) At(p bigrat.Vector) (bigrat.Vector, *big.Int, error) {
	lin, err := bigrat.MulVector(v.Linear, p)
	if err != nil {
		return nil, nil, err
	}
	num, err := bigrat.VectorAdd(lin, v.Const)
	if err != nil {
		return nil, nil, err
	}
	return num, v.Denom, nil
}

// candidate enumeration: choose NVars constraints whose A-submatrix is
// invertible, solve for the vertex, and (when NParams == 0) check
// feasibility against every constraint. Appropriate for the small,
// explicitly-constructed polytopes this library targets — not a general
// vertex-enumeration algorithm for high-dimensional inputs (SPEC_FULL.md
// §4.2).

func combinations(n, k int) [][]int {
	if k > n {
		return nil
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]int, k)
		copy(combo, idx)
		out = append(out, combo)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

// Vertices returns the polyhedron's vertex set, computing and caching it
// on first call.
func (p *Polyhedron) Vertices() ([]ParametricVertex, error) {
	if p.haveVerts {
		return p.vertices, nil
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	n := len(p.Constraints)
	d := p.NVars
	if d == 0 {
		v := ParametricVertex{Const: bigrat.Vector{}, Linear: bigrat.NewMatrix(0, p.NParams), Denom: big.NewInt(1)}
		if p.NParams == 0 {
			for _, c := range p.Constraints {
				if c.Eq {
					if c.C.Sign() != 0 {
						p.vertices, p.haveVerts = nil, true
						return p.vertices, nil
					}
				} else if c.C.Sign() < 0 {
					p.vertices, p.haveVerts = nil, true
					return p.vertices, nil
				}
			}
		}
		p.vertices = []ParametricVertex{v}
		p.haveVerts = true
		return p.vertices, nil
	}

	var verts []ParametricVertex
	seen := map[string]bool{}
	for _, combo := range combinations(n, d) {
		aSub := bigrat.NewMatrix(d, d)
		bSub := bigrat.NewMatrix(d, p.NParams)
		cSub := bigrat.NewVector(d)
		for i, ci := range combo {
			copy(aSub[i], p.Constraints[ci].A)
			copy(bSub[i], p.Constraints[ci].B)
			cSub[i].Set(p.Constraints[ci].C)
		}
		adj, det, err := bigrat.Inverse(aSub)
		if err != nil {
			continue // singular submatrix: not a vertex basis
		}
		// Solve A x = -(B p + C) for p held symbolic: x = -adj*(Bp+C)/det.
		negC := bigrat.NewVector(d)
		for i := range cSub {
			negC[i].Neg(cSub[i])
		}
		constPart, err := bigrat.MulVector(adj, negC)
		if err != nil {
			continue
		}
		negB := bSub.Clone()
		for i := range negB {
			for j := range negB[i] {
				negB[i][j].Neg(negB[i][j])
			}
		}
		linPart, err := bigrat.Mul(adj, negB)
		if err != nil {
			continue
		}
		denom := new(big.Int).Set(det)
		if denom.Sign() < 0 {
			denom.Neg(denom)
			constPart = bigrat.VectorScale(constPart, big.NewInt(-1))
			linPart = negateMatrix(linPart)
		}
		g := bigrat.GCDN(append(append(bigrat.Vector{}, constPart...), flatten(linPart)...)...)
		g = bigrat.GCD(g, denom)
		if g.Sign() > 0 && g.Cmp(big.NewInt(1)) != 0 {
			for i := range constPart {
				constPart[i].Div(constPart[i], g)
			}
			for i := range linPart {
				for j := range linPart[i] {
					linPart[i][j].Div(linPart[i][j], g)
				}
			}
			denom.Div(denom, g)
		}

		key := vertexKey(constPart, linPart, denom)
		if seen[key] {
			continue
		}

		v := ParametricVertex{Linear: linPart, Const: constPart, Denom: denom, ActiveRows: combo}
		if p.NParams == 0 {
			pt, dn, _ := v.At(nil)
			if !p.feasible(pt, dn) {
				continue
			}
		}
		seen[key] = true
		verts = append(verts, v)
	}
	p.vertices = verts
	p.haveVerts = true
	return verts, nil
}

func negateMatrix(m bigrat.Matrix) bigrat.Matrix {
	out := m.Clone()
	for i := range out {
		for j := range out[i] {
			out[i][j].Neg(out[i][j])
		}
	}
	return out
}

func flatten(m bigrat.Matrix) []*big.Int {
	var out []*big.Int
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

func vertexKey(c bigrat.Vector, lin bigrat.Matrix, d *big.Int) string {
	s := d.String() + "|"
	for _, x := range c {
		s += x.String() + ","
	}
	s += "|"
	for _, row := range lin {
		for _, x := range row {
			s += x.String() + ","
		}
	}
	return s
}

// feasible checks whether point = num/denom (denom > 0) satisfies every
// constraint of p (non-parametric only).
func (p *Polyhedron) feasible(num bigrat.Vector, denom *big.Int) bool {
	for _, c := range p.Constraints {
		val := c.evalConst(num)
		// val/denom compared against 0, denom > 0.
		if c.Eq {
			if val.Sign() != 0 {
				return false
			}
		} else if val.Sign() < 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the (non-parametric) polyhedron has no
// feasible point, i.e. no vertex and no feasible ray at the origin case.
// For NParams > 0 this checks only that at least one candidate vertex
// basis exists; true parametric emptiness is context-dependent and is the
// caller's (chamber decomposition's) responsibility.
func (p *Polyhedron) IsEmpty() (bool, error) {
	vs, err := p.Vertices()
	if err != nil {
		return false, err
	}
	return len(vs) == 0, nil
}
