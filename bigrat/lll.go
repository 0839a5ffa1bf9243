package bigrat

import "math/big"

// DefaultLLLDelta is the Lovász condition constant 3/4 used unless an
// options record overrides it (spec.md §4.1).
func DefaultLLLDelta() *big.Rat {
	return big.NewRat(3, 4)
}

func toRatVec(v Vector) []*big.Rat {
	out := make([]*big.Rat, len(v))
	for i, x := range v {
		out[i] = new(big.Rat).SetInt(x)
	}
	return out
}

func dotRat(a, b []*big.Rat) *big.Rat {
	sum := new(big.Rat)
	for i := range a {
		sum.Add(sum, new(big.Rat).Mul(a[i], b[i]))
	}
	return sum
}

func scaleRat(v []*big.Rat, c *big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(v))
	for i, x := range v {
		out[i] = new(big.Rat).Mul(x, c)
	}
	return out
}

func subRat(a, b []*big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(a))
	for i := range a {
		out[i] = new(big.Rat).Sub(a[i], b[i])
	}
	return out
}

// gramSchmidt computes the (non-normalized) orthogonal basis b* of the rows
// of b, and the coefficients mu[i][j] = <b_i, b*_j> / <b*_j, b*_j> for
// j < i. Recomputed from scratch on every LLL step; this kernel favors
// clarity and exactness over asymptotic performance, appropriate to the
// modest dimensions (cone rank) this module operates on.
func gramSchmidt(b Matrix) (bs [][]*big.Rat, mu [][]*big.Rat) {
	n := b.Rows()
	bs = make([][]*big.Rat, n)
	mu = make([][]*big.Rat, n)
	for i := range mu {
		mu[i] = make([]*big.Rat, n)
	}
	for i := 0; i < n; i++ {
		vi := toRatVec(b[i])
		for j := 0; j < i; j++ {
			num := dotRat(toRatVec(b[i]), bs[j])
			den := dotRat(bs[j], bs[j])
			m := new(big.Rat).Quo(num, den)
			mu[i][j] = m
			proj := scaleRat(bs[j], m)
			vi = subRat(vi, proj)
		}
		bs[i] = vi
	}
	return bs, mu
}

// roundRat rounds x to the nearest integer, ties away from zero.
func roundRat(x *big.Rat) *big.Int {
	if x.Sign() >= 0 {
		return FloorDivRat(new(big.Rat).Add(x, big.NewRat(1, 2)))
	}
	neg := new(big.Rat).Neg(x)
	r := FloorDivRat(neg.Add(neg, big.NewRat(1, 2)))
	return r.Neg(r)
}

// LLL reduces the integer basis rows of basis under Lovász parameter
// delta = a/b (default 3/4), returning the reduced basis B and the
// unimodular transformation U such that B = U * input (spec.md §4.1).
func LLL(basis Matrix, delta *big.Rat) (B Matrix, U Matrix) {
	n := basis.Rows()
	if delta == nil {
		delta = DefaultLLLDelta()
	}
	b := basis.Clone()
	u := Identity(n)

	k := 1
	for k < n {
		_, mu := gramSchmidt(b)
		for j := k - 1; j >= 0; j-- {
			if mu[k][j] == nil {
				continue
			}
			absM := new(big.Rat).Abs(mu[k][j])
			if absM.Cmp(big.NewRat(1, 2)) <= 0 {
				continue
			}
			r := roundRat(mu[k][j])
			if r.Sign() == 0 {
				continue
			}
			sub := VectorScale(b[j], r)
			b[k], _ = VectorSub(b[k], sub)
			uSub := VectorScale(u[j], r)
			u[k], _ = VectorSub(u[k], uSub)
			_, mu = gramSchmidt(b)
		}
		bs, mu := gramSchmidt(b)
		lhs := dotRat(bs[k], bs[k])
		mkk := new(big.Rat)
		if mu[k][k-1] != nil {
			mkk = mu[k][k-1]
		}
		rhs := new(big.Rat).Sub(delta, new(big.Rat).Mul(mkk, mkk))
		rhs.Mul(rhs, dotRat(bs[k-1], bs[k-1]))
		if lhs.Cmp(rhs) >= 0 {
			k++
		} else {
			b[k], b[k-1] = b[k-1], b[k]
			u[k], u[k-1] = u[k-1], u[k]
			if k > 1 {
				k--
			} else {
				k = 1
			}
		}
	}
	return b, u
}
