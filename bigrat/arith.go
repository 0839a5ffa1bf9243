package bigrat

import "math/big"

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// GCDN returns the non-negative gcd of all of vs. Returns 0 for an empty
// list.
func GCDN(vs ...*big.Int) *big.Int {
	g := big.NewInt(0)
	for _, v := range vs {
		g = GCD(g, v)
	}
	return g
}

// LCM returns the non-negative least common multiple of a and b. Returns 0
// if either operand is 0.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	g := GCD(a, b)
	l := new(big.Int).Div(new(big.Int).Abs(a), g)
	l.Mul(l, new(big.Int).Abs(b))
	return l
}

// LCMN returns the non-negative lcm of all of vs. Returns 1 for an empty
// list (the multiplicative identity).
func LCMN(vs ...*big.Int) *big.Int {
	l := big.NewInt(1)
	for _, v := range vs {
		if v.Sign() == 0 {
			return big.NewInt(0)
		}
		l = LCM(l, v)
	}
	return l
}

// FloorDiv returns floor(a/b), rounding toward negative infinity. b must be
// non-zero.
func FloorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

// CeilDiv returns ceil(a/b), rounding toward positive infinity. b must be
// non-zero.
func CeilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) == (b.Sign() < 0) {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Mod returns a mod m in [0, m), for m > 0.
func Mod(a, m *big.Int) *big.Int {
	r := new(big.Int).Mod(a, m)
	return r
}

// FloorDivRat returns floor(a) for a rational a.
func FloorDivRat(a *big.Rat) *big.Int {
	return FloorDiv(a.Num(), a.Denom())
}
