package waveprop

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2InPlace applies an unnormalized 2D FFT (rows then columns) to a using
// Gonum's complex FFT. Gonum transforms are unnormalized: forward then inverse
// multiplies by the number of samples, so callers must divide by h*w after an
// inverse transform.
func fft2InPlace(a [][]complex128, forward bool) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	// rows
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

	// cols
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

// FFTShift2D moves the zero-frequency sample from index (0, 0) to the center
// of the grid. For even dimensions it is its own inverse.
func FFTShift2D(m [][]complex128) [][]complex128 {
	h := len(m)
	w := len(m[0])
	out := makeComplex2D(h, w)
	shY := (h + 1) / 2
	shX := (w + 1) / 2
	for y := 0; y < h; y++ {
		yy := (y + shY) % h
		for x := 0; x < w; x++ {
			xx := (x + shX) % w
			out[y][x] = m[yy][xx]
		}
	}
	return out
}

// IFFTShift2D moves the center sample of a centered grid to index (0, 0).
// It inverts FFTShift2D for any dimensions.
func IFFTShift2D(m [][]complex128) [][]complex128 {
	h := len(m)
	w := len(m[0])
	out := makeComplex2D(h, w)
	shY := h / 2
	shX := w / 2
	for y := 0; y < h; y++ {
		yy := (y + shY) % h
		for x := 0; x < w; x++ {
			xx := (x + shX) % w
			out[y][x] = m[yy][xx]
		}
	}
	return out
}

// FT2 computes the centered 2D Fourier transform of g, normalized by the
// product of the sample spacings. Both input and output grids follow the
// SamplePoints centering convention.
func FT2(g [][]complex128, d Spacing) [][]complex128 {
	out := IFFTShift2D(g)
	fft2InPlace(out, true)
	out = FFTShift2D(out)
	s := complex(d.Dy*d.Dx, 0)
	for y := range out {
		for x := range out[y] {
			out[y][x] *= s
		}
	}
	return out
}

// IFT2 computes the centered 2D inverse Fourier transform of G, normalized by
// the product of the frequency sample spacings.
func IFT2(G [][]complex128, df Spacing) [][]complex128 {
	out := IFFTShift2D(G)
	fft2InPlace(out, false)
	out = FFTShift2D(out)
	// The unnormalized inverse already carries the h*w factor that the
	// normalization h*w*dfy*dfx would otherwise restore.
	s := complex(df.Dy*df.Dx, 0)
	for y := range out {
		for x := range out[y] {
			out[y][x] *= s
		}
	}
	return out
}

// convolveSameFFT computes the 2D linear convolution of a and b via
// zero-padded FFTs and crops the central region back to the size of a,
// matching the "same" convention (offset (h-1)/2, (w-1)/2 into the full
// result).
func convolveSameFFT(a, b [][]complex128) [][]complex128 {
	h, w := len(a), len(a[0])
	bh, bw := len(b), len(b[0])
	fh := h + bh - 1
	fw := w + bw - 1

	A := makeComplex2D(fh, fw)
	B := makeComplex2D(fh, fw)
	for y := 0; y < h; y++ {
		copy(A[y][:w], a[y])
	}
	for y := 0; y < bh; y++ {
		copy(B[y][:bw], b[y])
	}

	fft2InPlace(A, true)
	fft2InPlace(B, true)
	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			A[y][x] *= B[y][x]
		}
	}
	fft2InPlace(A, false)

	scale := complex(float64(fh*fw), 0)
	offY := (bh - 1) / 2
	offX := (bw - 1) / 2
	out := makeComplex2D(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y][x] = A[y+offY][x+offX] / scale
		}
	}
	return out
}
