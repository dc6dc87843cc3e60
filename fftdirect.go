package waveprop

import (
	"log"
)

// quadratureWeights returns the 1D integration weights for an axis of n
// samples. Odd n yields Simpson's-rule coefficients (1,4,2,4,...,4,1 divided
// by 3); even n falls back to trapezoidal weights (0.5 at both ends). The
// second return reports whether Simpson's rule was applied.
func quadratureWeights(n int) ([]float64, bool) {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	if n%2 != 0 {
		for i := 1; i < n; i += 2 {
			w[i] += 3
		}
		for i := 2; i < n; i += 2 {
			w[i] += 1
		}
		w[n-1] = 1
		for i := range w {
			w[i] /= 3
		}
		return w, true
	}
	w[0] = 0.5
	w[n-1] = 0.5
	return w, false
}

// FFTDirectIntegration realizes the same Rayleigh-Sommerfeld integral as
// DirectIntegration as a linear (non-circular) convolution via zero-padded
// FFTs, at O(N log N) cost. Input and output sampling periods are identical;
// nOut selects the output window size and defaults to the input size when
// zero. Eq 10-17 of "Fast-Fourier-transform based numerical integration
// method for the Rayleigh-Sommerfeld diffraction formula" (2006).
//
// With useSimpson set, each axis is weighted by Simpson's-rule quadrature
// coefficients. Simpson's rule requires an odd sample count; an even axis
// silently degrades to trapezoidal weights (a warning is logged, not an
// error). dz must be nonzero.
func FFTDirectIntegration(uIn [][]complex128, wavelength float64, d1 Spacing, dz float64, nOut GridSize, useSimpson bool) (uOut [][]complex128, x, y []float64, err error) {
	ny, nx, err := rectSize(uIn)
	if err != nil {
		return nil, nil, nil, err
	}
	if wavelength <= 0 {
		return nil, nil, nil, ErrBadWavelength
	}
	if !d1.valid() {
		return nil, nil, nil, ErrBadSpacing
	}
	if nOut == (GridSize{}) {
		nOut = GridSize{Ny: ny, Nx: nx}
	}
	if !nOut.valid() {
		return nil, nil, nil, ErrBadGridSize
	}

	k := Wavenumber(wavelength)

	// output coordinates
	x2 := SamplePoints(nOut.Nx, d1.Dx, 0)
	y2 := SamplePoints(nOut.Ny, d1.Dy, 0)

	// source coordinates
	x1 := SamplePoints(nx, d1.Dx, 0)
	y1 := SamplePoints(ny, d1.Dy, 0)

	// Pad to the minimal size that makes circular convolution equal linear
	// convolution.
	ph := nOut.Ny + ny - 1
	pw := nOut.Nx + nx - 1
	A := makeComplex2D(ph, pw)

	if useSimpson {
		wy, okY := quadratureWeights(ny)
		if !okY {
			log.Printf("waveprop: y axis has even length %d; using trapezoidal weights instead of Simpson's rule", ny)
		}
		wx, okX := quadratureWeights(nx)
		if !okX {
			log.Printf("waveprop: x axis has even length %d; using trapezoidal weights instead of Simpson's rule", nx)
		}
		for r := 0; r < ny; r++ {
			for c := 0; c < nx; c++ {
				A[r][c] = uIn[r][c] * complex(wy[r]*wx[c], 0)
			}
		}
	} else {
		for r := 0; r < ny; r++ {
			copy(A[r][:nx], uIn[r])
		}
	}

	// Difference-coordinate grid spanning the padded extent, built from
	// reversed-and-concatenated source/target offsets.
	X := make([]float64, pw)
	for i := 0; i < nx-1; i++ {
		X[i] = x2[0] - x1[nx-1-i]
	}
	for i := 0; i < nOut.Nx; i++ {
		X[nx-1+i] = x2[i] - x1[0]
	}
	Y := make([]float64, ph)
	for i := 0; i < ny-1; i++ {
		Y[i] = y2[0] - y1[ny-1-i]
	}
	for i := 0; i < nOut.Ny; i++ {
		Y[ny-1+i] = y2[i] - y1[0]
	}

	// Impulse response over the difference grid.
	B := makeComplex2D(ph, pw)
	for r := 0; r < ph; r++ {
		for c := 0; c < pw; c++ {
			B[r][c] = FreeSpaceImpulseResponse(k, X[c], Y[r], dz)
		}
	}

	fft2InPlace(A, true)
	fft2InPlace(B, true)
	for r := 0; r < ph; r++ {
		for c := 0; c < pw; c++ {
			A[r][c] *= B[r][c]
		}
	}
	fft2InPlace(A, false)

	// Valid linear-convolution samples occupy the lower-right submatrix.
	scale := complex(d1.Dy*d1.Dx/float64(ph*pw), 0)
	uOut = makeComplex2D(nOut.Ny, nOut.Nx)
	for r := 0; r < nOut.Ny; r++ {
		for c := 0; c < nOut.Nx; c++ {
			uOut[r][c] = A[ph-nOut.Ny+r][pw-nOut.Nx+c] * scale
		}
	}
	return uOut, x2, y2, nil
}
