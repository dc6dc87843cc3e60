package waveprop_test

import (
	"fmt"
	"log"

	"github.com/demroz/waveprop"
)

// Example propagates a plane wave through a square aperture with the
// band-limited angular spectrum method and reports the output window.
func Example() {
	const (
		n          = 32     // samples per axis
		d          = 1e-4   // sample spacing (m)
		wavelength = 500e-9 // m
		distance   = 5e-2   // m
		halfWidth  = 8e-4   // aperture half width (m)
	)

	// A unit-amplitude plane wave illuminating a square aperture.
	x, y := waveprop.SampleGrid(waveprop.SquareGrid(n), waveprop.UniformSpacing(d), waveprop.Shift{})
	aperture := make([][]complex128, n)
	for r := range aperture {
		aperture[r] = make([]complex128, n)
		for c := range aperture[r] {
			if x[c] >= -halfWidth && x[c] <= halfWidth && y[r] >= -halfWidth && y[r] <= halfWidth {
				aperture[r][c] = 1
			}
		}
	}

	uOut, xOut, yOut, err := waveprop.Propagate(aperture, waveprop.Params{
		Wavelength: wavelength,
		InSpacing:  waveprop.UniformSpacing(d),
		Distance:   distance,
		Bandlimit:  true,
		Method:     waveprop.MethodAngularSpectrum,
	})
	if err != nil {
		log.Fatalf("propagation failed: %v", err)
	}

	intensity := waveprop.Intensity(uOut)
	fmt.Printf("output field: %d x %d samples\n", len(uOut), len(uOut[0]))
	fmt.Printf("output window: x [%.2e, %.2e] m, y [%.2e, %.2e] m\n",
		xOut[0], xOut[len(xOut)-1], yOut[0], yOut[len(yOut)-1])
	fmt.Printf("intensity matrix: %d rows\n", len(intensity))

	// Output:
	// output field: 32 x 32 samples
	// output window: x [-1.60e-03, 1.50e-03] m, y [-1.60e-03, 1.50e-03] m
	// intensity matrix: 32 rows
}
