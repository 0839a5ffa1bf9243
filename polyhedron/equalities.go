package polyhedron

import (
	"math/big"

	"github.com/sgreben/barvinok-go/bigrat"
)

// BackSubstitution records how to recover the original NVars-dimensional
// point from a point in the reduced polyhedron's variable space and the
// shared parameter vector: x = VarCoeff*y + ParamCoeff*p + Const
// (spec.md §4.2 "remove equalities... return (P', back-sub matrix)").
type BackSubstitution struct {
	VarCoeff   bigrat.Matrix // NVarsOriginal x NVarsReduced
	ParamCoeff bigrat.Matrix // NVarsOriginal x NParams
	Const      bigrat.Vector // NVarsOriginal
}

// Apply recovers the original-space point for a reduced-space point y and
// parameter vector p.
func (b BackSubstitution) Apply(y, p bigrat.Vector) (bigrat.Vector, error) {
	vy, err := bigrat.MulVector(b.VarCoeff, y)
	if err != nil {
		return nil, err
	}
	pp, err := bigrat.MulVector(b.ParamCoeff, p)
	if err != nil {
		return nil, err
	}
	out, err := bigrat.VectorAdd(vy, pp)
	if err != nil {
		return nil, err
	}
	return bigrat.VectorAdd(out, b.Const)
}

func composeBackSub(outer, inner BackSubstitution) (BackSubstitution, error) {
	vc, err := bigrat.Mul(outer.VarCoeff, inner.VarCoeff)
	if err != nil {
		return BackSubstitution{}, err
	}
	vp, err := bigrat.Mul(outer.VarCoeff, inner.ParamCoeff)
	if err != nil {
		return BackSubstitution{}, err
	}
	pcMat, err := addMatrix(vp, outer.ParamCoeff)
	if err != nil {
		return BackSubstitution{}, err
	}
	vk, err := bigrat.MulVector(outer.VarCoeff, inner.Const)
	if err != nil {
		return BackSubstitution{}, err
	}
	k, err := bigrat.VectorAdd(vk, outer.Const)
	if err != nil {
		return BackSubstitution{}, err
	}
	return BackSubstitution{VarCoeff: vc, ParamCoeff: pcMat, Const: k}, nil
}

func addMatrix(a, b bigrat.Matrix) (bigrat.Matrix, error) {
	out := bigrat.NewMatrix(a.Rows(), a.Cols())
	for i := range a {
		r, err := bigrat.VectorAdd(a[i], b[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// RemoveEqualities eliminates every equality constraint by a unimodular
// change of variables (spec.md §4.2, §4.8 "Equality rule"), returning the
// lower-dimensional polyhedron and the back-substitution needed to map its
// points (plus the original parameters) back to the original space.
func RemoveEqualities(p *Polyhedron) (*Polyhedron, BackSubstitution, error) {
	cur := p.Clone()
	backSub := BackSubstitution{
		VarCoeff:   bigrat.Identity(p.NVars),
		ParamCoeff: bigrat.NewMatrix(p.NVars, p.NParams),
		Const:      bigrat.NewVector(p.NVars),
	}

	for {
		eqIdx := -1
		for i, c := range cur.Constraints {
			if c.Eq && !c.A.IsZero() {
				eqIdx = i
				break
			}
		}
		if eqIdx == -1 {
			return cur, backSub, nil
		}

		eq := cur.Constraints[eqIdx]
		g := bigrat.GCDN(eq.A...)
		aPrim := eq.A.Clone()
		for i := range aPrim {
			aPrim[i].Div(aPrim[i], g)
		}
		bScaled := eq.B.Clone()
		cScaled := new(big.Int).Set(eq.C)
		for i := range bScaled {
			bScaled[i].Div(bScaled[i], g)
		}
		cScaled.Div(cScaled, g)

		u, err := bigrat.Unimodular(aPrim)
		if err != nil {
			return nil, BackSubstitution{}, err
		}
		uInvAdj, uDet, err := bigrat.Inverse(u)
		if err != nil {
			return nil, BackSubstitution{}, err
		}
		// u is unimodular: |uDet| == 1, so uInvAdj/uDet is itself integer.
		uInv := uInvAdj.Clone()
		if uDet.Sign() < 0 {
			for i := range uInv {
				for j := range uInv[i] {
					uInv[i][j].Neg(uInv[i][j])
				}
			}
		}

		d := cur.NVars
		next := New(d-1, cur.NParams)
		for i, c := range cur.Constraints {
			if i == eqIdx {
				continue
			}
			aRow := bigrat.NewMatrix(1, d)
			aRow[0] = c.A.Clone()
			transformed, err := bigrat.Mul(aRow, uInv)
			if err != nil {
				return nil, BackSubstitution{}, err
			}
			y1Coeff := transformed[0][0]
			rest := transformed[0][1:]

			newB := c.B.Clone()
			contribB := bigrat.VectorScale(bScaled, new(big.Int).Neg(y1Coeff))
			newB, err = bigrat.VectorAdd(newB, contribB)
			if err != nil {
				return nil, BackSubstitution{}, err
			}
			newC := new(big.Int).Add(c.C, new(big.Int).Mul(new(big.Int).Neg(y1Coeff), cScaled))

			next.AddConstraint(Constraint{A: rest.Clone(), B: newB, C: newC, Eq: c.Eq})
		}

		// x = uInv * y, where y_1 is pinned to -(bScaled.p + cScaled).
		innerVar := bigrat.NewMatrix(d, d-1)
		for i := 0; i < d; i++ {
			copy(innerVar[i], uInv[i][1:])
		}
		innerParam := bigrat.NewMatrix(d, cur.NParams)
		innerConst := bigrat.NewVector(d)
		for i := 0; i < d; i++ {
			col0 := uInv[i][0]
			innerParam[i] = bigrat.VectorScale(bScaled, new(big.Int).Neg(col0))
			innerConst[i].Mul(new(big.Int).Neg(col0), cScaled)
		}
		inner := BackSubstitution{VarCoeff: innerVar, ParamCoeff: innerParam, Const: innerConst}
		backSub, err = composeBackSub(backSub, inner)
		if err != nil {
			return nil, BackSubstitution{}, err
		}
		cur = next
	}
}
