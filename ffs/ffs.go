// Package ffs computes finite Fourier-series coefficients of periodic,
// band-limited 2D sequences and evaluates the truncated series at arbitrary
// output points. It backs the spectral-interpolation rescaling mode of the
// angular spectrum propagator, where it permits independently choosing the
// output spacing, window size and shift without fixed-grid resampling error.
//
// Storage conventions: a "natural" grid of N samples covers one period T,
// centered on t = 0 with spacing T/N (the SamplePoints centering; odd N
// places a sample exactly at t = 0). Coefficients of order nFS = 2M+1 are
// stored in
// increasing frequency order, c[-M] through c[M], so index j holds order
// j - M.
package ffs

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyInput is returned when the input grid has no samples.
	ErrEmptyInput = errors.New("ffs: empty input")
	// ErrRaggedInput is returned when the input grid is not rectangular.
	ErrRaggedInput = errors.New("ffs: ragged input")
	// ErrBadOrder is returned when a coefficient count is even, not positive,
	// or exceeds the sample count of its axis.
	ErrBadOrder = errors.New("ffs: coefficient count must be odd, positive and at most the sample count")
	// ErrBadPeriod is returned when a period is not strictly positive.
	ErrBadPeriod = errors.New("ffs: period must be > 0")
)

// Shift reorders a naturally-ordered (centered) grid into FFT storage order,
// moving the sample nearest the period center to index (0, 0).
func Shift(u [][]complex128) [][]complex128 {
	h := len(u)
	w := len(u[0])
	out := make([][]complex128, h)
	shY := h / 2
	shX := w / 2
	for y := 0; y < h; y++ {
		out[y] = make([]complex128, w)
		yy := (y + shY) % h
		for x := 0; x < w; x++ {
			out[y][x] = u[yy][(x+shX)%w]
		}
	}
	return out
}

// InvShift undoes Shift for any dimensions.
func InvShift(u [][]complex128) [][]complex128 {
	h := len(u)
	w := len(u[0])
	out := make([][]complex128, h)
	shY := (h + 1) / 2
	shX := (w + 1) / 2
	for y := 0; y < h; y++ {
		out[y] = make([]complex128, w)
		yy := (y + shY) % h
		for x := 0; x < w; x++ {
			out[y][x] = u[yy][(x+shX)%w]
		}
	}
	return out
}

// Coeffs computes the finite Fourier-series coefficients of the naturally
// ordered samples u over one period (periodY, periodX), truncated to nFSY by
// nFSX coefficients (both odd). For a sequence band-limited to the requested
// orders the truncation is exact.
func Coeffs(u [][]complex128, periodY, periodX float64, nFSY, nFSX int) ([][]complex128, error) {
	h := len(u)
	if h == 0 || len(u[0]) == 0 {
		return nil, ErrEmptyInput
	}
	w := len(u[0])
	for i := 1; i < h; i++ {
		if len(u[i]) != w {
			return nil, ErrRaggedInput
		}
	}
	if periodY <= 0 || periodX <= 0 {
		return nil, ErrBadPeriod
	}
	if nFSY <= 0 || nFSY%2 == 0 || nFSY > h || nFSX <= 0 || nFSX%2 == 0 || nFSX > w {
		return nil, ErrBadOrder
	}

	// With the center sample moved to index 0, the DFT bin k directly holds
	// N * c_k (modulo N per axis).
	work := Shift(u)
	fft2(work, true)

	my := (nFSY - 1) / 2
	mx := (nFSX - 1) / 2
	scale := complex(1/float64(h*w), 0)
	out := make([][]complex128, nFSY)
	for j := 0; j < nFSY; j++ {
		out[j] = make([]complex128, nFSX)
		ky := ((j - my) % h + h) % h
		for l := 0; l < nFSX; l++ {
			kx := ((l - mx) % w + w) % w
			out[j][l] = work[ky][kx] * scale
		}
	}
	return out, nil
}

// Interp evaluates the truncated Fourier series with the given coefficients
// at every point of the (y, x) output grid:
//
//	u(y, x) = sum_{ky, kx} c[ky][kx] * exp(i*2*pi*(ky*y/periodY + kx*x/periodX))
//
// The evaluation is separable and is performed as the matrix triple product
// Ey * C * Ex.
func Interp(coeffs [][]complex128, periodY, periodX float64, y, x []float64) ([][]complex128, error) {
	nFSY := len(coeffs)
	if nFSY == 0 || len(coeffs[0]) == 0 {
		return nil, ErrEmptyInput
	}
	nFSX := len(coeffs[0])
	if nFSY%2 == 0 || nFSX%2 == 0 {
		return nil, ErrBadOrder
	}
	if periodY <= 0 || periodX <= 0 {
		return nil, ErrBadPeriod
	}

	my := (nFSY - 1) / 2
	mx := (nFSX - 1) / 2

	c := mat.NewCDense(nFSY, nFSX, nil)
	for j := 0; j < nFSY; j++ {
		if len(coeffs[j]) != nFSX {
			return nil, ErrRaggedInput
		}
		for l := 0; l < nFSX; l++ {
			c.Set(j, l, coeffs[j][l])
		}
	}

	ey := mat.NewCDense(len(y), nFSY, nil)
	for m, t := range y {
		for j := 0; j < nFSY; j++ {
			ey.Set(m, j, cmplx.Exp(complex(0, 2*math.Pi*float64(j-my)*t/periodY)))
		}
	}
	ex := mat.NewCDense(nFSX, len(x), nil)
	for l := 0; l < nFSX; l++ {
		for n, t := range x {
			ex.Set(l, n, cmplx.Exp(complex(0, 2*math.Pi*float64(l-mx)*t/periodX)))
		}
	}

	tmp := mat.NewCDense(len(y), nFSX, nil)
	res := mat.NewCDense(len(y), len(x), nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, ey.RawCMatrix(), c.RawCMatrix(), 0, tmp.RawCMatrix())
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, tmp.RawCMatrix(), ex.RawCMatrix(), 0, res.RawCMatrix())

	out := make([][]complex128, len(y))
	for m := range y {
		out[m] = make([]complex128, len(x))
		for n := range x {
			out[m][n] = res.At(m, n)
		}
	}
	return out, nil
}

// fft2 applies an unnormalized 2D FFT (rows then columns) in place.
func fft2(a [][]complex128, forward bool) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}
