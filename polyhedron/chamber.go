package polyhedron

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// Chamber is one region of parameter space over which every vertex of a
// parametric polyhedron keeps the same combinatorial structure: which
// linear form is minimal/maximal never changes inside a chamber (spec.md
// §4.6 "validity domains"). Sign is +1, -1 or 0 per defining inequality,
// recorded in the same order as Forms.
type Chamber struct {
	Forms []bigrat.Vector // each of length NParams+1 (last entry is the constant)
	Signs []int
}

// ChamberDecompose lists candidate half-spaces of parameter space: for
// every pair of vertices and every coordinate on which their affine forms
// differ, it emits two single-form chambers for that difference, one with
// sign +1 and one with sign -1, skipping repeats (spec.md §4.6, §6.1). The
// half-spaces are not intersected with one another, so the result is not
// a partition of parameter space. The comparison is only meaningful once
// all vertices share the same denominator, which this function normalizes
// before comparing.
func (p *Polyhedron) ChamberDecompose() ([]Chamber, error) {
	verts, err := p.Vertices()
	if err != nil {
		return nil, err
	}
	lcm := big.NewInt(1)
	for _, v := range verts {
		lcm = bigrat.LCM(lcm, v.Denom)
	}
	scaled := make([]ParametricVertex, len(verts))
	for i, v := range verts {
		mult := new(big.Int).Div(lcm, v.Denom)
		scaled[i] = ParametricVertex{
			Linear: bigrat.NewMatrix(v.Linear.Rows(), v.Linear.Cols()),
			Const:  bigrat.VectorScale(v.Const, mult),
			Denom:  lcm,
		}
		for r := range v.Linear {
			scaled[i].Linear[r] = bigrat.VectorScale(v.Linear[r], mult)
		}
	}

	var chambers []Chamber
	seen := map[string]bool{}
	for i := 0; i < len(scaled); i++ {
		for j := i + 1; j < len(scaled); j++ {
			for coord := 0; coord < p.NVars; coord++ {
				form := formDiff(scaled[i], scaled[j], coord)
				if isZeroForm(form) {
					continue
				}
				for _, sign := range []int{1, -1} {
					key := formKey(form, sign)
					if seen[key] {
						continue
					}
					seen[key] = true
					chambers = append(chambers, Chamber{Forms: []bigrat.Vector{form}, Signs: []int{sign}})
				}
			}
		}
	}
	return chambers, nil
}

// formDiff returns the affine form (in p, with trailing constant) for
// coordinate `coord` of vertex a minus vertex b: a length NParams+1 vector.
func formDiff(a, b ParametricVertex, coord int) bigrat.Vector {
	n := a.Linear.Cols()
	out := bigrat.NewVector(n + 1)
	for k := 0; k < n; k++ {
		out[k].Sub(a.Linear[coord][k], b.Linear[coord][k])
	}
	out[n].Sub(a.Const[coord], b.Const[coord])
	return out
}

func isZeroForm(f bigrat.Vector) bool { return f.IsZero() }

func formKey(f bigrat.Vector, sign int) string {
	g := bigrat.GCDN(f...)
	norm := f.Clone()
	if g.Sign() > 0 && g.Cmp(big.NewInt(1)) != 0 {
		for i := range norm {
			norm[i].Div(norm[i], g)
		}
	}
	s := ""
	if sign < 0 {
		s = "-"
		for i := range norm {
			norm[i].Neg(norm[i])
		}
	}
	key := s
	for _, x := range norm {
		key += x.String() + ","
	}
	return key
}
