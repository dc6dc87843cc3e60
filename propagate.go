package waveprop

import (
	"errors"
	"fmt"
	"log"
)

// Method selects the propagation strategy.
type Method int

const (
	// MethodAngularSpectrum is the band-limited angular spectrum method, the
	// primary production path.
	MethodAngularSpectrum Method = iota
	// MethodFFTDirect is the FFT-accelerated direct integration method.
	MethodFFTDirect
	// MethodDirect is brute-force direct integration, the validation oracle.
	MethodDirect
)

func (m Method) String() string {
	switch m {
	case MethodAngularSpectrum:
		return "angular-spectrum"
	case MethodFFTDirect:
		return "fft-direct"
	case MethodDirect:
		return "direct"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// RescaleMode selects how the angular spectrum method produces an output grid
// that differs from the input grid.
type RescaleMode int

const (
	// RescaleNone keeps the input grid unless an output spacing or size is
	// requested, in which case chirp-convolution rescaling is used.
	RescaleNone RescaleMode = iota
	// RescaleSpectral evaluates the truncated Fourier series of the field at
	// the requested output grid (band-limited spectral interpolation).
	RescaleSpectral
	// RescaleChirp rescales via a discrete chirp z-transform.
	RescaleChirp
)

func (m RescaleMode) String() string {
	switch m {
	case RescaleNone:
		return "none"
	case RescaleSpectral:
		return "spectral"
	case RescaleChirp:
		return "chirp"
	}
	return fmt.Sprintf("RescaleMode(%d)", int(m))
}

// ErrBadMethod is returned for an unknown or inconsistent strategy selection.
var ErrBadMethod = errors.New("bad propagation method")

// Params bundles the physical and sampling parameters of a propagation call.
// The zero values of the optional fields select the documented defaults:
// output spacing and size default to the input grid, the output shift to the
// optical axis.
type Params struct {
	// Wavelength in meters, > 0.
	Wavelength float64
	// InSpacing is the input sampling period, both entries > 0.
	InSpacing Spacing
	// Distance is the propagation distance in meters. It must be nonzero;
	// behavior at zero distance is undefined, not a guarded case.
	Distance float64

	// OutSpacing overrides the output sampling period (angular spectrum
	// rescaling modes only). Nil keeps the input spacing.
	OutSpacing *Spacing
	// OutSize overrides the output sample count. Nil keeps the input count.
	OutSize *GridSize
	// OutShift displaces the output window laterally from the optical axis.
	OutShift Shift
	// InShifts places replicas of the input field at the given lateral
	// offsets; their spectral phase ramps are summed coherently. Angular
	// spectrum standard mode only.
	InShifts []Shift

	// Bandlimit enables the anti-aliasing passband of the angular spectrum
	// transfer function.
	Bandlimit bool

	Method  Method
	Rescale RescaleMode
}

func (p *Params) validate() error {
	if p.Wavelength <= 0 {
		return ErrBadWavelength
	}
	if !p.InSpacing.valid() {
		return ErrBadSpacing
	}
	if p.OutSpacing != nil && !p.OutSpacing.valid() {
		return ErrBadSpacing
	}
	if p.OutSize != nil && !p.OutSize.valid() {
		return ErrBadGridSize
	}
	switch p.Rescale {
	case RescaleNone, RescaleSpectral, RescaleChirp:
	default:
		return fmt.Errorf("%w: %v", ErrBadMethod, p.Rescale)
	}
	return nil
}

// outGrid resolves the effective output size and spacing.
func (p *Params) outGrid(in GridSize) (GridSize, Spacing) {
	size := in
	if p.OutSize != nil {
		size = *p.OutSize
	}
	d2 := p.InSpacing
	if p.OutSpacing != nil {
		d2 = *p.OutSpacing
	}
	return size, d2
}

// effectiveRescale resolves the rescaling strategy from the explicit tag and
// the optional output-grid overrides. A spectral request with neither output
// spacing nor output count overridden is redundant: it warns and falls back
// to the standard strategy.
func (p *Params) effectiveRescale() RescaleMode {
	if p.OutSpacing == nil && p.OutSize == nil {
		if p.Rescale == RescaleSpectral {
			log.Printf("waveprop: spectral rescaling requested without changing the output grid; using the standard angular spectrum method")
		}
		if p.Rescale == RescaleChirp {
			return RescaleChirp
		}
		return RescaleNone
	}
	if p.Rescale == RescaleSpectral {
		return RescaleSpectral
	}
	return RescaleChirp
}

// Propagate computes the wavefield on a plane at p.Distance from the plane of
// uIn, using the strategy selected by p.Method. It returns the output field
// together with its x and y coordinate vectors. Inputs are never modified and
// no state survives the call.
func Propagate(uIn [][]complex128, p Params) (uOut [][]complex128, x, y []float64, err error) {
	ny, nx, err := rectSize(uIn)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.validate(); err != nil {
		return nil, nil, nil, err
	}

	switch p.Method {
	case MethodAngularSpectrum:
		return AngularSpectrum(uIn, p)

	case MethodFFTDirect:
		if p.OutSpacing != nil && *p.OutSpacing != p.InSpacing {
			return nil, nil, nil, fmt.Errorf("%w: fft-direct integration enforces matching input and output spacing", ErrBadMethod)
		}
		if !p.OutShift.zero() || len(p.InShifts) > 0 || p.Rescale != RescaleNone {
			return nil, nil, nil, fmt.Errorf("%w: shifts and rescaling require the angular-spectrum method", ErrBadMethod)
		}
		size := GridSize{}
		if p.OutSize != nil {
			size = *p.OutSize
		}
		return FFTDirectIntegration(uIn, p.Wavelength, p.InSpacing, p.Distance, size, true)

	case MethodDirect:
		if len(p.InShifts) > 0 || p.Rescale != RescaleNone {
			return nil, nil, nil, fmt.Errorf("%w: input shifts and rescaling require the angular-spectrum method", ErrBadMethod)
		}
		size, d2 := p.outGrid(GridSize{Ny: ny, Nx: nx})
		x, y = SampleGrid(size, d2, p.OutShift)
		uOut, err = DirectIntegration(uIn, p.Wavelength, p.InSpacing, p.Distance, x, y)
		if err != nil {
			return nil, nil, nil, err
		}
		return uOut, x, y, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: %v", ErrBadMethod, p.Method)
}
