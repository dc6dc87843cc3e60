package waveprop

import (
	"math"
)

// bandLimits derives the asymmetric frequency-support center and half-width
// for one axis from the illuminated window half-extent S, the lateral shift
// s0, and the distance z0. Table 1 of "Shifted angular spectrum method for
// off-axis numerical propagation" (2010): the three branches cover the window
// lying entirely past the shift, entirely before it, or straddling the
// optical axis.
func bandLimits(S, s0, z0, wavelength float64) (center, halfWidth float64) {
	limitP := 1 / (wavelength * math.Sqrt(z0*z0/((s0+S)*(s0+S))+1))
	limitN := 1 / (wavelength * math.Sqrt(z0*z0/((s0-S)*(s0-S))+1))
	switch {
	case S < s0:
		center = (limitP + limitN) / 2
		halfWidth = (limitP - limitN) / 2
	case s0 <= -S:
		center = -(limitP + limitN) / 2
		halfWidth = (limitN - limitP) / 2
	default:
		center = (limitP - limitN) / 2
		halfWidth = (limitP + limitN) / 2
	}
	return center, halfWidth
}

// BandLimitMask computes the rectangular passband applied to the angular
// spectrum transfer function to avoid the aliasing intrinsic to a finite
// sampling window. fx and fy are the padded frequency grids, Sx and Sy the
// illuminated window extents (full widths), shift the lateral output shift
// and z0 the propagation distance. The rectangle is asymmetric whenever
// shift is nonzero. The zero-frequency origin is always kept open.
func BandLimitMask(fx, fy []float64, Sx, Sy float64, shift Shift, z0, wavelength float64) [][]bool {
	u0, uMax := bandLimits(Sx, shift.X, z0, wavelength)
	v0, vMax := bandLimits(Sy, shift.Y, z0, wavelength)

	mask := make([][]bool, len(fy))
	for r := range fy {
		mask[r] = make([]bool, len(fx))
		for c := range fx {
			mask[r][c] = math.Abs(fx[c]-u0) <= uMax && math.Abs(fy[r]-v0) < vMax
		}
	}

	// The DC component must never be suppressed.
	for r := range fy {
		if fy[r] != 0 {
			continue
		}
		for c := range fx {
			if fx[c] == 0 {
				mask[r][c] = true
			}
		}
	}
	return mask
}

// applyBandLimit zeroes every transfer-function sample outside the passband.
func applyBandLimit(H [][]complex128, mask [][]bool) {
	for r := range H {
		for c := range H[r] {
			if !mask[r][c] {
				H[r][c] = 0
			}
		}
	}
}
