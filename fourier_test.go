package waveprop

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomField(rng *rand.Rand, ny, nx int) [][]complex128 {
	u := makeComplex2D(ny, nx)
	for r := range u {
		for c := range u[r] {
			u[r][c] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
	}
	return u
}

func maxAbs(u [][]complex128) float64 {
	m := 0.0
	for r := range u {
		for c := range u[r] {
			if a := cmplx.Abs(u[r][c]); a > m {
				m = a
			}
		}
	}
	return m
}

func maxAbsDiff(a, b [][]complex128) float64 {
	m := 0.0
	for r := range a {
		for c := range a[r] {
			if d := cmplx.Abs(a[r][c] - b[r][c]); d > m {
				m = d
			}
		}
	}
	return m
}

func TestFT2IFT2RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := randomField(rng, 8, 6)

	d := Spacing{Dy: 2e-4, Dx: 1e-4}
	df := Spacing{Dy: 1 / (8 * d.Dy), Dx: 1 / (6 * d.Dx)}

	got := IFT2(FT2(u, d), df)
	assert.Less(t, maxAbsDiff(got, u), 1e-12*maxAbs(u))
}

func TestFFTShiftRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, dims := range [][2]int{{5, 7}, {4, 6}, {4, 7}} {
		u := randomField(rng, dims[0], dims[1])
		got := IFFTShift2D(FFTShift2D(u))
		assert.Equal(t, u, got, "dims %v", dims)
	}
}

func TestFFTShiftEvenSelfInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	u := randomField(rng, 4, 8)
	assert.Equal(t, u, FFTShift2D(FFTShift2D(u)))
}

func TestConvolveSameDelta(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := randomField(rng, 6, 8)

	// A centered unit impulse is the identity of the "same" convolution.
	b := makeComplex2D(6, 8)
	b[(6-1)/2][(8-1)/2] = 1

	got := convolveSameFFT(a, b)
	require.Equal(t, len(a), len(got))
	require.Equal(t, len(a[0]), len(got[0]))
	assert.Less(t, maxAbsDiff(got, a), 1e-12*maxAbs(a))
}
