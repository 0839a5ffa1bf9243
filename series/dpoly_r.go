package series

import (
	"math/big"
	"sort"
	"strings"
)

// key canonically encodes an integer power vector so it can serve as a Go
// map key.
type key string

func encodeKey(v []int) key {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = big.NewInt(int64(x)).String()
	}
	return key(strings.Join(parts, ","))
}

func decodeKey(k key) []int {
	parts := strings.Split(string(k), ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n := new(big.Int)
		n.SetString(p, 10)
		out[i] = int(n.Int64())
	}
	return out
}

// DPolyR is the multivariate, parameter-carrying variant of DPoly: each
// coefficient of t^i is a sparse map from integer power-vectors (one entry
// per parametric ray direction) to BigInt numerators, sharing one BigInt
// denominator scale (spec.md §4.4 "dpoly_r").
type DPolyR struct {
	D      int
	P      int
	Denom  *big.Int
	Coeffs []map[key]*big.Int
}

func newZeroR(d, p int) *DPolyR {
	c := make([]map[key]*big.Int, d+1)
	for i := range c {
		c[i] = map[key]*big.Int{}
	}
	return &DPolyR{D: d, P: p, Denom: big.NewInt(1), Coeffs: c}
}

// NewParametricRay seeds a dpoly_r from a scalar numerator-style
// coefficient stream n_0..n_D (as produced by binomialTable), tracking a
// single parametric ray direction: position pos of the power vector, signed
// by sign (+1 or -1). Every degree i gets the one key sign*e_pos with value
// n_i (spec.md §4.4: "initial coefficient at t^i gets key e_pos*sigma with
// value n_i").
func NewParametricRay(nCoeffs []*big.Int, p, pos, sign int) *DPolyR {
	d := len(nCoeffs) - 1
	out := newZeroR(d, p)
	dir := make([]int, p)
	dir[pos] = sign
	k := encodeKey(dir)
	for i, n := range nCoeffs {
		if n.Sign() == 0 {
			continue
		}
		out.Coeffs[i][k] = new(big.Int).Set(n)
	}
	return out
}

// MulDenominatorFactor multiplies in place by a scalar-coefficient
// denominator factor (as produced by NewDenominatorFactor, reinterpreted as
// BigInt numerators over the shared Denom), shifting every key present at
// degree i by `shift` when contributing to degree i+j (spec.md §4.4
// "Multiplication by a denominator factor shifts keys by the factor's
// direction").
func (r *DPolyR) MulDenominatorFactor(factor []*big.Int, shift []int) *DPolyR {
	out := newZeroR(r.D, r.P)
	out.Denom = new(big.Int).Set(r.Denom)
	for i, row := range r.Coeffs {
		for j, f := range factor {
			if i+j > r.D || f.Sign() == 0 {
				continue
			}
			for k, c := range row {
				nk := shiftKey(k, shift, r.P)
				t := new(big.Int).Mul(c, f)
				if cur, ok := out.Coeffs[i+j][nk]; ok {
					cur.Add(cur, t)
				} else {
					out.Coeffs[i+j][nk] = t
				}
			}
		}
	}
	return out
}

func shiftKey(k key, shift []int, p int) key {
	v := decodeKey(k)
	out := make([]int, p)
	for i := 0; i < p; i++ {
		out[i] = v[i] + shift[i]
	}
	return encodeKey(out)
}

// DivScalar divides the dpoly_r by a plain scalar denominator D_0 (as
// opposed to the multi-term polynomial division the univariate Div
// performs): since a constant denominator needs no Taylor recurrence, this
// leaves every numerator untouched and simply folds D_0^{D+1} into the
// shared denominator scale (spec.md §4.4: "Division by a scalar denominator
// D produces a new dpoly_r whose common denominator is D_0^{d+1}").
func (r *DPolyR) DivScalar(d0 *big.Int) (*DPolyR, error) {
	if d0.Sign() == 0 {
		return nil, ErrZeroConstantTerm
	}
	out := newZeroR(r.D, r.P)
	for i, row := range r.Coeffs {
		for k, c := range row {
			out.Coeffs[i][k] = new(big.Int).Set(c)
		}
	}
	pow := new(big.Int).Exp(d0, big.NewInt(int64(r.D+1)), nil)
	out.Denom = new(big.Int).Mul(r.Denom, pow)
	return out, nil
}

// Row returns the (key, coefficient) pairs at t^D — the final row consumed
// row-by-row by the generating-function builder, each key contributing a
// signed power column to its denominator matrix (spec.md §4.4).
func (r *DPolyR) Row() (map[key]*big.Int, *big.Int) {
	return r.Coeffs[r.D], r.Denom
}

// RowVectors is a convenience view of Row() with keys decoded back to
// plain int power vectors, for callers outside this package (genfun).
func (r *DPolyR) RowVectors() ([][]int, []*big.Int, *big.Int) {
	row, denom := r.Row()
	keysSorted := make([]key, 0, len(row))
	for k := range row {
		keysSorted = append(keysSorted, k)
	}
	sort.Slice(keysSorted, func(i, j int) bool { return keysSorted[i] < keysSorted[j] })
	vecs := make([][]int, len(keysSorted))
	coeffs := make([]*big.Int, len(keysSorted))
	for i, k := range keysSorted {
		vecs[i] = decodeKey(k)
		coeffs[i] = row[k]
	}
	return vecs, coeffs, denom
}
