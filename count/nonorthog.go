package count

import (
	"errors"
	"math/big"
	"math/rand"

	"github.com/sgreben/barvinok-go/bigrat"
)

// maxTry bounds the random draws tried at each magnitude before the search
// widens its range (spec.md §4.6 "nonorthog", original_source/barvinok.cc's
// MAX_TRY).
const maxTry = 10

// ErrLambdaNotFound is returned by nonorthog when no vector drawn within its
// widening search schedule avoids every ray's hyperplane. This is an
// assertion failure on well-formed input (original_source/barvinok.cc
// asserts rather than returning an error), kept here as a typed error so a
// degenerate caller gets a diagnosable result instead of a panic.
var ErrLambdaNotFound = errors.New("count: no lambda non-orthogonal to every ray was found")

// nonorthog searches for an integer vector not orthogonal to any row of
// rays, by drawing random small-magnitude vectors of widening range (spec.md
// §4.6, original_source/barvinok.cc lines 339-366). For i = 2, 4, .., 100*dim
// (50*dim ranges), it tries maxTry draws where each coordinate is an integer
// in [-i/2, i/2] \ {0} (the original's `v = (2*(r%2)-1)*(r>>1)` for r =
// rand(i)+2), accepting the first draw whose dot product with every ray is
// nonzero.
func nonorthog(rays bigrat.Matrix, rng *rand.Rand) (bigrat.Vector, error) {
	dim := rays.Cols()
	lambda := bigrat.NewVector(dim)
	if dim == 0 {
		return lambda, nil
	}
	for i := 2; i <= 100*dim; i += 2 {
		for try := 0; try < maxTry; try++ {
			for k := 0; k < dim; k++ {
				r := rng.Intn(i) + 2
				v := (2*(r%2) - 1) * (r >> 1)
				lambda[k].SetInt64(int64(v))
			}
			if nonorthogonalToAll(lambda, rays) {
				return lambda, nil
			}
		}
	}
	return nil, ErrLambdaNotFound
}

func nonorthogonalToAll(lambda bigrat.Vector, rays bigrat.Matrix) bool {
	for _, row := range rays {
		d, err := bigrat.Dot(row, lambda)
		if err != nil {
			return false
		}
		if d.Sign() == 0 {
			return false
		}
	}
	return true
}

// normalize computes, for one unimodular cone's apex and rays against the
// shared lambda, the dpoly numerator exponent and the per-ray denominator
// degrees. It toggles a parity flag for every ray whose lambda-weight comes
// out positive, and for every ray whose weight is non-positive negates that
// weight and absorbs it into the numerator; sign is flipped iff the parity
// flag ends up set (spec.md §4.6 "normalize", original_source/barvinok.cc
// lines 379-400: `if (den[j] > 0) change ^= 1; else { den[j] = abs(den[j]);
// num += den[j]; }`, `if (change) sign = -sign`).
func normalize(apex bigrat.Vector, rays bigrat.Matrix, lambda bigrat.Vector, sign int) (*big.Int, []*big.Int, int, error) {
	num, err := bigrat.Dot(apex, lambda)
	if err != nil {
		return nil, nil, 0, err
	}
	num = new(big.Int).Set(num)

	den := make([]*big.Int, len(rays))
	change := false
	for k, row := range rays {
		d, err := bigrat.Dot(row, lambda)
		if err != nil {
			return nil, nil, 0, err
		}
		if d.Sign() > 0 {
			change = !change
			den[k] = d
		} else {
			ad := new(big.Int).Abs(d)
			den[k] = ad
			num.Add(num, ad)
		}
	}
	if change {
		sign = -sign
	}
	return num, den, sign, nil
}
