package waveprop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gaussianField samples exp(-(x^2+y^2)/(2*sigma^2)) on a centered grid. The
// envelope decays to negligible amplitude at the window edge for sigma well
// below a quarter of the window, which keeps the circular-convolution halo
// out of comparison tolerances.
func gaussianField(size GridSize, d Spacing, sigma float64) [][]complex128 {
	x, y := SampleGrid(size, d, Shift{})
	u := makeComplex2D(size.Ny, size.Nx)
	for r := range y {
		for c := range x {
			u[r][c] = complex(math.Exp(-(x[c]*x[c]+y[r]*y[r])/(2*sigma*sigma)), 0)
		}
	}
	return u
}

func TestAngularSpectrumShape(t *testing.T) {
	for _, dims := range []GridSize{{Ny: 8, Nx: 8}, {Ny: 7, Nx: 9}} {
		u := gaussianField(dims, UniformSpacing(1e-4), 1.5e-4)
		out, x, y, err := AngularSpectrum(u, Params{
			Wavelength: 500e-9,
			InSpacing:  UniformSpacing(1e-4),
			Distance:   0.01,
			Bandlimit:  true,
		})
		require.NoError(t, err)
		require.Len(t, out, dims.Ny, "dims %v", dims)
		require.Len(t, out[0], dims.Nx, "dims %v", dims)
		require.Len(t, y, dims.Ny)
		require.Len(t, x, dims.Nx)
	}
}

func TestZeroFieldStaysZero(t *testing.T) {
	zero := makeComplex2D(8, 8)
	size := SquareGrid(8)

	cases := []Params{
		{Method: MethodAngularSpectrum},
		{Method: MethodAngularSpectrum, Rescale: RescaleSpectral, OutSize: &size},
		{Method: MethodAngularSpectrum, Rescale: RescaleChirp},
		{Method: MethodFFTDirect},
		{Method: MethodDirect},
	}
	for _, p := range cases {
		p.Wavelength = 500e-9
		p.InSpacing = UniformSpacing(1e-4)
		p.Distance = 0.01
		out, _, _, err := Propagate(zero, p)
		require.NoError(t, err, "method %v rescale %v", p.Method, p.Rescale)
		assert.Zero(t, maxAbs(out), "method %v rescale %v", p.Method, p.Rescale)
	}
}

// Propagating forward then backward over the same distance must reproduce the
// input: the transfer function satisfies H(dz)*H(-dz) = 1 for both the
// propagating and the evanescent part of the spectrum.
func TestRoundTripForwardBackward(t *testing.T) {
	for _, n := range []int{32, 17} {
		u0 := gaussianField(SquareGrid(n), UniformSpacing(1e-4), float64(n)*1e-4/10)
		p := Params{
			Wavelength: 500e-9,
			InSpacing:  UniformSpacing(1e-4),
			Distance:   1e-4,
		}
		u1, _, _, err := AngularSpectrum(u0, p)
		require.NoError(t, err)

		p.Distance = -p.Distance
		u2, _, _, err := AngularSpectrum(u1, p)
		require.NoError(t, err)

		assert.Less(t, maxAbsDiff(u2, u0), 1e-6*maxAbs(u0), "n=%d", n)
	}
}

// Shifting the output window by whole samples must reproduce the unshifted
// result translated by the same number of samples.
func TestOutputShiftIsTranslation(t *testing.T) {
	const (
		n  = 32
		d  = 1e-4
		jy = 3
		jx = 2
	)
	u := gaussianField(SquareGrid(n), UniformSpacing(d), 3e-4)
	p := Params{
		Wavelength: 500e-9,
		InSpacing:  UniformSpacing(d),
		Distance:   5e-4,
	}
	plain, _, _, err := AngularSpectrum(u, p)
	require.NoError(t, err)

	p.OutShift = Shift{Y: jy * d, X: jx * d}
	shifted, x, y, err := AngularSpectrum(u, p)
	require.NoError(t, err)
	assert.InDelta(t, jx*d, x[n/2], 1e-12)
	assert.InDelta(t, jy*d, y[n/2], 1e-12)

	peak := maxAbs(plain)
	for r := 0; r < n-jy; r++ {
		for c := 0; c < n-jx; c++ {
			diff := shifted[r][c] - plain[r+jy][c+jx]
			if a := real(diff)*real(diff) + imag(diff)*imag(diff); a > 1e-24*peak*peak {
				t.Fatalf("shifted[%d][%d] differs from translated plain output", r, c)
			}
		}
	}
}

func TestInputShiftZeroMatchesUnshifted(t *testing.T) {
	u := gaussianField(SquareGrid(16), UniformSpacing(1e-4), 3e-4)
	p := Params{
		Wavelength: 500e-9,
		InSpacing:  UniformSpacing(1e-4),
		Distance:   1e-3,
	}
	plain, _, _, err := AngularSpectrum(u, p)
	require.NoError(t, err)

	p.InShifts = []Shift{{}}
	replicated, _, _, err := AngularSpectrum(u, p)
	require.NoError(t, err)

	assert.Less(t, maxAbsDiff(replicated, plain), 1e-12*maxAbs(plain))
}

// The replica sum is coherent: propagating with two input shifts equals the
// sum of propagating with each shift alone.
func TestInputShiftsSuperpose(t *testing.T) {
	u := gaussianField(SquareGrid(16), UniformSpacing(1e-4), 2e-4)
	base := Params{
		Wavelength: 500e-9,
		InSpacing:  UniformSpacing(1e-4),
		Distance:   1e-3,
	}
	a, b := Shift{Y: 2e-4}, Shift{X: -3e-4}

	pa := base
	pa.InShifts = []Shift{a}
	ua, _, _, err := AngularSpectrum(u, pa)
	require.NoError(t, err)

	pb := base
	pb.InShifts = []Shift{b}
	ub, _, _, err := AngularSpectrum(u, pb)
	require.NoError(t, err)

	pab := base
	pab.InShifts = []Shift{a, b}
	uab, _, _, err := AngularSpectrum(u, pab)
	require.NoError(t, err)

	sum := makeComplex2D(16, 16)
	for r := range sum {
		for c := range sum[r] {
			sum[r][c] = ua[r][c] + ub[r][c]
		}
	}
	assert.Less(t, maxAbsDiff(uab, sum), 1e-12*maxAbs(sum))
}

// All three propagation strategies model the same physics; for a point source
// at a far-field distance they must agree. The distance sits just inside the
// critical value 2*n*d*d/wv where the band-limit rectangle still spans the
// full Nyquist square: beyond it the mask starts discarding real spectrum of
// the point source, and much below it the sampled transfer function aliases.
func TestStrategiesAgreePointSource(t *testing.T) {
	const (
		n  = 64
		d  = 1e-4
		wv = 635e-9
		dz = 2.0137
	)
	u := makeComplex2D(n, n)
	u[n/2][n/2] = 1

	x, y := SampleGrid(SquareGrid(n), UniformSpacing(d), Shift{})
	oracle, err := DirectIntegration(u, wv, UniformSpacing(d), dz, x, y)
	require.NoError(t, err)
	peak := maxAbs(oracle)

	fast, _, _, err := FFTDirectIntegration(u, wv, UniformSpacing(d), dz, GridSize{}, false)
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(fast, oracle), 1e-9*peak)

	asm, _, _, err := Propagate(u, Params{
		Wavelength: wv,
		InSpacing:  UniformSpacing(d),
		Distance:   dz,
		Bandlimit:  true,
		Method:     MethodAngularSpectrum,
	})
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(asm, oracle), 1e-3*peak)
}

// With the passband comfortably inside both the Nyquist band and the chirp
// kernel window, all three angular spectrum strategies evaluate the same
// truncated spectrum and must agree to roundoff.
func TestRescaleStrategiesMatchStandard(t *testing.T) {
	const (
		n  = 16
		d  = 1e-4
		wv = 500e-9
		dz = 2.0
	)
	u := gaussianField(SquareGrid(n), UniformSpacing(d), 2e-4)
	base := Params{
		Wavelength: wv,
		InSpacing:  UniformSpacing(d),
		Distance:   dz,
		Bandlimit:  true,
	}
	standard, _, _, err := AngularSpectrum(u, base)
	require.NoError(t, err)
	peak := maxAbs(standard)

	size := SquareGrid(n)

	spectral := base
	spectral.Rescale = RescaleSpectral
	spectral.OutSize = &size
	us, _, _, err := AngularSpectrum(u, spectral)
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(us, standard), 1e-8*peak)

	chirp := base
	chirp.OutSize = &size
	uc, _, _, err := AngularSpectrum(u, chirp)
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(uc, standard), 1e-8*peak)
}

// Rescaling onto a coarser output grid: the spectral interpolation and the
// chirp convolution evaluate the same band-limited series at the same points.
func TestRescaleModesAgreeOnCoarserGrid(t *testing.T) {
	const (
		n  = 16
		d  = 1e-4
		wv = 500e-9
		dz = 2.0
	)
	u := gaussianField(SquareGrid(n), UniformSpacing(d), 2e-4)
	outSpacing := UniformSpacing(2 * d)
	outSize := SquareGrid(8)
	base := Params{
		Wavelength: wv,
		InSpacing:  UniformSpacing(d),
		Distance:   dz,
		Bandlimit:  true,
		OutSpacing: &outSpacing,
		OutSize:    &outSize,
	}

	chirp, xc, yc, err := AngularSpectrum(u, base)
	require.NoError(t, err)
	require.Len(t, chirp, 8)
	require.Len(t, chirp[0], 8)
	assert.InDelta(t, 2*d, xc[1]-xc[0], 1e-15)
	assert.InDelta(t, 2*d, yc[1]-yc[0], 1e-15)

	spectral := base
	spectral.Rescale = RescaleSpectral
	us, _, _, err := AngularSpectrum(u, spectral)
	require.NoError(t, err)

	assert.Less(t, maxAbsDiff(chirp, us), 1e-8*maxAbs(us))
}

func TestEvanescentComponentsDecay(t *testing.T) {
	const wv = 500e-9
	// a purely evanescent frequency sample
	fx := []float64{1.5 / wv}
	fy := []float64{0}

	near := transferFunction(fx, fy, wv, 1e-7)
	far := transferFunction(fx, fy, wv, 1e-6)

	assert.Zero(t, imag(near[0][0]))
	assert.Zero(t, imag(far[0][0]))
	assert.Greater(t, real(near[0][0]), real(far[0][0]))
	assert.Greater(t, real(near[0][0]), 0.0)
	assert.Less(t, real(near[0][0]), 1.0)
}

func TestInputShiftRejectsRescale(t *testing.T) {
	u := makeComplex2D(8, 8)
	size := SquareGrid(8)
	_, _, _, err := AngularSpectrum(u, Params{
		Wavelength: 500e-9,
		InSpacing:  UniformSpacing(1e-4),
		Distance:   0.01,
		InShifts:   []Shift{{X: 1e-4}},
		OutSize:    &size,
	})
	require.ErrorIs(t, err, ErrBadMethod)
}
