package waveprop

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/demroz/waveprop/ffs"
)

// zeroPad embeds u in a zero grid of twice its size so that the circular
// convolution performed in the frequency domain equals a linear convolution.
// The padding is asymmetric: floor(N/2) samples lead the field and
// floor(N/2) plus the parity remainder trail it, so that cropping at the
// leading offset restores the original window without a half-sample shift.
func zeroPad(u [][]complex128) [][]complex128 {
	ny := len(u)
	nx := len(u[0])
	out := makeComplex2D(2*ny, 2*nx)
	leadY := ny / 2
	leadX := nx / 2
	for r := 0; r < ny; r++ {
		copy(out[leadY+r][leadX:leadX+nx], u[r])
	}
	return out
}

// transferFunction evaluates the angular spectrum transfer function over the
// centered frequency grids fx, fy. Propagating components (fx^2 + fy^2 <=
// 1/wavelength^2) receive a pure phase; evanescent components decay as a real
// exponential with no oscillation.
func transferFunction(fx, fy []float64, wavelength, dz float64) [][]complex128 {
	k := Wavenumber(wavelength)
	wvSq := wavelength * wavelength
	H := makeComplex2D(len(fy), len(fx))
	for r := range fy {
		for c := range fx {
			fsq := fx[c]*fx[c] + fy[r]*fy[r]
			if fsq <= 1/wvSq {
				H[r][c] = cmplx.Exp(complex(0, k*dz*math.Sqrt(1-wvSq*fsq)))
			} else {
				H[r][c] = complex(math.Exp(-k*dz*math.Sqrt(wvSq*fsq-1)), 0)
			}
		}
	}
	return H
}

// AngularSpectrum propagates uIn with the band-limited angular spectrum
// method: "Band-Limited Angular Spectrum Method for Numerical Simulation of
// Free-Space Propagation in Far and Near Fields" (2009), generalized to
// off-axis output windows per "Shifted angular spectrum method for off-axis
// numerical propagation" (2010) and to rescaled output grids per
// "Band-limited angular spectrum numerical propagation method with selective
// scaling of observation window size and sample number" (2012).
//
// p.Method is ignored; every other Params field applies. Returns the output
// field and its x and y coordinate vectors.
func AngularSpectrum(uIn [][]complex128, p Params) (uOut [][]complex128, x, y []float64, err error) {
	ny, nx, err := rectSize(uIn)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.validate(); err != nil {
		return nil, nil, nil, err
	}
	mode := p.effectiveRescale()
	if len(p.InShifts) > 0 && mode != RescaleNone {
		return nil, nil, nil, fmt.Errorf("%w: input shifts require the standard output strategy", ErrBadMethod)
	}

	d1 := p.InSpacing
	uPad := zeroPad(uIn)
	nyPad := 2 * ny
	nxPad := 2 * nx

	// frequency coordinates over the padded extent
	dfY := 1 / (float64(nyPad) * d1.Dy)
	dfX := 1 / (float64(nxPad) * d1.Dx)
	fx := SamplePoints(nxPad, dfX, 0)
	fy := SamplePoints(nyPad, dfY, 0)

	H := transferFunction(fx, fy, p.Wavelength, p.Distance)

	// Off-axis output shift as a linear phase ramp (Fourier shift theorem).
	// The spectral-interpolation strategy instead shifts its output
	// coordinates directly.
	if !p.OutShift.zero() && mode != RescaleSpectral {
		for r := range fy {
			for c := range fx {
				H[r][c] *= cmplx.Exp(complex(0, 2*math.Pi*(p.OutShift.X*fx[c]+p.OutShift.Y*fy[r])))
			}
		}
	}

	if p.Bandlimit {
		mask := BandLimitMask(fx, fy, float64(nx)*d1.Dx, float64(ny)*d1.Dy, p.OutShift, p.Distance, p.Wavelength)
		applyBandLimit(H, mask)
	}

	switch mode {
	case RescaleNone:
		return asmStandard(uIn, uPad, H, fx, fy, dfY, dfX, p)
	case RescaleSpectral:
		return asmSpectral(uIn, uPad, H, p)
	default:
		return asmChirp(uIn, uPad, H, fx, fy, dfY, dfX, p)
	}
}

// asmStandard is the fixed-grid strategy: transform, multiply, transform
// back, crop.
func asmStandard(uIn, uPad, H [][]complex128, fx, fy []float64, dfY, dfX float64, p Params) ([][]complex128, []float64, []float64, error) {
	ny := len(uIn)
	nx := len(uIn[0])

	U := FT2(uPad, p.InSpacing)

	// Coherent sum of per-source-point shift phase ramps.
	if len(p.InShifts) > 0 {
		for r := range U {
			for c := range U[r] {
				var term complex128
				for _, s := range p.InShifts {
					term += cmplx.Exp(complex(0, -2*math.Pi*(fy[r]*s.Y+fx[c]*s.X)))
				}
				U[r][c] *= term
			}
		}
	}

	for r := range U {
		for c := range U[r] {
			U[r][c] *= H[r][c]
		}
	}

	out := IFT2(U, Spacing{Dy: dfY, Dx: dfX})

	// Remove the padding with the exact inverse of the zeroPad offsets.
	leadY := ny / 2
	leadX := nx / 2
	uOut := makeComplex2D(ny, nx)
	for r := 0; r < ny; r++ {
		copy(uOut[r], out[leadY+r][leadX:leadX+nx])
	}

	x := SamplePoints(nx, p.InSpacing.Dx, p.OutShift.X)
	y := SamplePoints(ny, p.InSpacing.Dy, p.OutShift.Y)
	return uOut, x, y, nil
}

// asmSpectral rescales by computing the finite Fourier-series coefficients of
// the padded field over its period, applying the transfer function to the
// truncated spectrum, and evaluating the series at the requested output grid.
func asmSpectral(uIn, uPad, H [][]complex128, p Params) ([][]complex128, []float64, []float64, error) {
	ny := len(uIn)
	nx := len(uIn[0])
	nyPad := 2 * ny
	nxPad := 2 * nx

	periodY := float64(nyPad) * p.InSpacing.Dy
	periodX := float64(nxPad) * p.InSpacing.Dx

	// Largest odd coefficient count representable on the padded grid.
	nFSY := nyPad - 1
	nFSX := nxPad - 1

	C, err := ffs.Coeffs(uPad, periodY, periodX, nFSY, nFSX)
	if err != nil {
		return nil, nil, nil, err
	}

	// Coefficient order k lives at centered transfer-function index
	// k + nPad/2; the unmatched -nPad/2 Nyquist row and column drop out.
	for j := 0; j < nFSY; j++ {
		for l := 0; l < nFSX; l++ {
			C[j][l] *= H[j+1][l+1]
		}
	}

	size, d2 := p.outGrid(GridSize{Ny: ny, Nx: nx})
	x := SamplePoints(size.Nx, d2.Dx, p.OutShift.X)
	y := SamplePoints(size.Ny, d2.Dy, p.OutShift.Y)

	// On an odd axis the padded grid's transform origin sits one sample past
	// the input center; evaluate the series in that frame.
	evalY, evalX := y, x
	if ny%2 != 0 {
		evalY = make([]float64, len(y))
		for i := range y {
			evalY[i] = y[i] - p.InSpacing.Dy
		}
	}
	if nx%2 != 0 {
		evalX = make([]float64, len(x))
		for i := range x {
			evalX[i] = x[i] - p.InSpacing.Dx
		}
	}

	uOut, err := ffs.Interp(C, periodY, periodX, evalY, evalX)
	if err != nil {
		return nil, nil, nil, err
	}
	return uOut, x, y, nil
}

// asmChirp rescales with a discrete chirp z-transform: pre/post spatial chirp
// factors around a chirp-kernel linear convolution evaluate the spectrum on a
// grid with the requested output spacing.
func asmChirp(uIn, uPad, H [][]complex128, fx, fy []float64, dfY, dfX float64, p Params) ([][]complex128, []float64, []float64, error) {
	ny := len(uIn)
	nx := len(uIn[0])
	nyPad := 2 * ny
	nxPad := 2 * nx

	U := FT2(uPad, p.InSpacing)

	// On odd axes the padded grid's transform origin sits one input sample
	// past the field center; fold the offset into the spectrum so the chirp
	// evaluation lattice stays aligned.
	offY, offX := 0.0, 0.0
	if ny%2 != 0 {
		offY = p.InSpacing.Dy
	}
	if nx%2 != 0 {
		offX = p.InSpacing.Dx
	}
	for r := range U {
		for c := range U[r] {
			U[r][c] *= H[r][c]
			if offY != 0 || offX != 0 {
				U[r][c] *= cmplx.Exp(complex(0, -2*math.Pi*(fy[r]*offY+fx[c]*offX)))
			}
		}
	}

	size, d2 := p.outGrid(GridSize{Ny: ny, Nx: nx})
	alphaY := d2.Dy / dfY
	alphaX := d2.Dx / dfX

	// The off-axis shift rides on the transfer function ramp; the chirp
	// factors live on the centered output lattice.
	xg := SamplePoints(size.Nx, d2.Dx, 0)
	yg := SamplePoints(size.Ny, d2.Dy, 0)

	// Chirp-weighted spectrum and chirp kernel over the scaled frequency
	// grid.
	B := makeComplex2D(nyPad, nxPad)
	f := makeComplex2D(nyPad, nxPad)
	scale := complex(1/(alphaY*alphaX), 0)
	for r := 0; r < nyPad; r++ {
		phiY := math.Pi / alphaY * (alphaY * fy[r]) * (alphaY * fy[r])
		for c := 0; c < nxPad; c++ {
			phiX := math.Pi / alphaX * (alphaX * fx[c]) * (alphaX * fx[c])
			B[r][c] = U[r][c] * scale * cmplx.Exp(complex(0, phiY+phiX))
			f[r][c] = cmplx.Exp(complex(0, -phiY-phiX))
		}
	}

	tmp := convolveSameFFT(B, f)

	// Window of the convolution whose kernel arguments line up with the
	// centered output lattice, weighted by the post-convolution spatial
	// chirp.
	loY := ny + 1 - size.Ny/2
	loX := nx + 1 - size.Nx/2
	if loY < 0 || loX < 0 || loY+size.Ny > nyPad || loX+size.Nx > nxPad {
		return nil, nil, nil, fmt.Errorf("%w: output size %dx%d exceeds the chirp convolution window", ErrBadGridSize, size.Ny, size.Nx)
	}
	area := complex(d2.Dy*d2.Dx, 0)
	uOut := makeComplex2D(size.Ny, size.Nx)
	for r := 0; r < size.Ny; r++ {
		chirpY := math.Pi / alphaY * yg[r] * yg[r]
		for c := 0; c < size.Nx; c++ {
			chirpX := math.Pi / alphaX * xg[c] * xg[c]
			uOut[r][c] = cmplx.Exp(complex(0, chirpY+chirpX)) * area * tmp[loY+r][loX+c]
		}
	}
	x := SamplePoints(size.Nx, d2.Dx, p.OutShift.X)
	y := SamplePoints(size.Ny, d2.Dy, p.OutShift.Y)
	return uOut, x, y, nil
}
