package waveprop

import (
	"errors"
)

var (
	// ErrBadWavelength is returned when a wavelength is not strictly positive.
	ErrBadWavelength = errors.New("wavelength must be > 0")
	// ErrBadSpacing is returned when a sample spacing is not strictly positive.
	ErrBadSpacing = errors.New("sample spacing must be > 0")
	// ErrBadGridSize is returned when a sample count is not strictly positive.
	ErrBadGridSize = errors.New("sample count must be > 0")
)

// DirectIntegration propagates uIn by brute-force numerical quadrature of the
// Rayleigh-Sommerfeld integral, evaluated at the explicit output coordinates
// x and y. Eq 9 of "Fast-Fourier-transform based numerical integration method
// for the Rayleigh-Sommerfeld diffraction formula" (2006).
//
// Cost is O(len(x)*len(y)*Nx*Ny) impulse-response evaluations. This is
// intentionally unoptimized: it has none of the artifacts of DFT-based
// methods (circular wraparound, bandlimit requirement) and serves as the
// ground-truth oracle for FFTDirectIntegration and AngularSpectrum. dz must
// be nonzero.
func DirectIntegration(uIn [][]complex128, wavelength float64, d1 Spacing, dz float64, x, y []float64) ([][]complex128, error) {
	ny, nx, err := rectSize(uIn)
	if err != nil {
		return nil, err
	}
	if wavelength <= 0 {
		return nil, ErrBadWavelength
	}
	if !d1.valid() {
		return nil, ErrBadSpacing
	}

	k := Wavenumber(wavelength)

	// source coordinates
	x1 := SamplePoints(nx, d1.Dx, 0)
	y1 := SamplePoints(ny, d1.Dy, 0)

	area := complex(d1.Dy*d1.Dx, 0)
	uOut := makeComplex2D(len(y), len(x))
	for j, ym := range y {
		for i, xm := range x {
			var sum complex128
			for r := 0; r < ny; r++ {
				for c := 0; c < nx; c++ {
					sum += FreeSpaceImpulseResponse(k, xm-x1[c], ym-y1[r], dz) * uIn[r][c]
				}
			}
			uOut[j][i] = sum * area
		}
	}
	return uOut, nil
}
