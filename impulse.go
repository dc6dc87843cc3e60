package waveprop

import (
	"math"
	"math/cmplx"
)

// Wavenumber returns 2*pi/wavelength, the spatial oscillation rate of the
// wave.
func Wavenumber(wavelength float64) float64 {
	return 2 * math.Pi / wavelength
}

// FreeSpaceImpulseResponse evaluates the exact Rayleigh-Sommerfeld free-space
// Green's function
//
//	1/(2*pi) * exp(i*k*r)/r * z/r * (1/r - i*k),  r = sqrt(x^2 + y^2 + z^2)
//
// at coordinate differences (x, y) and propagation distance z, for wavenumber
// k. Eq 7 of "Fast-Fourier-transform based numerical integration method for
// the Rayleigh-Sommerfeld diffraction formula" (2006).
//
// The expression is singular only at r = 0, which cannot occur for any finite
// z != 0. Callers must not pass z = 0.
func FreeSpaceImpulseResponse(k, x, y, z float64) complex128 {
	r := math.Sqrt(x*x + y*y + z*z)
	return complex(1/(2*math.Pi), 0) *
		cmplx.Exp(complex(0, k*r)) *
		complex(z/(r*r), 0) *
		complex(1/r, -k)
}
