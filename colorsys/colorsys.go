// Package colorsys converts wavelength-indexed stacks of intensity data into
// RGB images. A color-matching-function table and an illuminant-emission
// table, linearly interpolated to the simulation's wavelength resolution,
// reduce the stack along the wavelength axis to CIE XYZ; a fixed linear
// matrix then maps XYZ to sRGB.
package colorsys

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyTable is returned when a lookup table has no usable rows.
	ErrEmptyTable = errors.New("colorsys: empty lookup table")
	// ErrBadStack is returned when an intensity stack does not match the
	// system's wavelength count or is not rectangular.
	ErrBadStack = errors.New("colorsys: bad intensity stack")
)

// xyzToSRGB is the XYZ to linear-sRGB matrix (Lindbloom, sRGB / D65).
var xyzToSRGB = [3][3]float64{
	{3.240969941904523, -1.537383177570094, -0.498610760293003},
	{-0.969243636280880, 1.875967501507721, 0.041555057407176},
	{0.055630079696994, -0.203976958888977, 1.056971514242879},
}

// Table is a wavelength-indexed lookup table: one wavelength per row plus one
// or more value columns. Wavelengths are stored in the unit of the source
// file (conventionally nanometers) and must increase strictly.
type Table struct {
	Wavelength []float64
	Values     [][]float64
}

// LoadTable reads a whitespace-separated lookup table from a text file. The
// first column is the wavelength; blank lines and lines starting with '#' are
// skipped.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("colorsys: reading %s: %w", path, err)
	}

	t := &Table{}
	cols := -1
	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if cols == -1 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("colorsys: %s line %d: expected %d columns, got %d", path, i+1, cols, len(fields))
		}
		row := make([]float64, 0, len(fields)-1)
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("colorsys: %s line %d: %w", path, i+1, err)
			}
			if j == 0 {
				t.Wavelength = append(t.Wavelength, v)
			} else {
				row = append(row, v)
			}
		}
		t.Values = append(t.Values, row)
	}
	if len(t.Wavelength) == 0 || cols < 2 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// Resample returns the table linearly interpolated onto n wavelengths spaced
// uniformly over the table's span. When n equals the table length the table
// is returned unchanged apart from copying.
func (t *Table) Resample(n int) (*Table, error) {
	if len(t.Wavelength) < 2 {
		return nil, ErrEmptyTable
	}
	if n < 2 {
		return nil, fmt.Errorf("colorsys: cannot resample to %d wavelengths", n)
	}

	out := &Table{
		Wavelength: make([]float64, n),
		Values:     make([][]float64, n),
	}
	if n == len(t.Wavelength) {
		copy(out.Wavelength, t.Wavelength)
		for i, row := range t.Values {
			out.Values[i] = append([]float64(nil), row...)
		}
		return out, nil
	}

	floats.Span(out.Wavelength, t.Wavelength[0], t.Wavelength[len(t.Wavelength)-1])
	for i := 0; i < n; i++ {
		out.Values[i] = make([]float64, len(t.Values[0]))
	}

	col := make([]float64, len(t.Wavelength))
	for j := range t.Values[0] {
		for i := range t.Values {
			col[i] = t.Values[i][j]
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(t.Wavelength, col); err != nil {
			return nil, fmt.Errorf("colorsys: fitting column %d: %w", j, err)
		}
		for i := range out.Wavelength {
			out.Values[i][j] = pl.Predict(out.Wavelength[i])
		}
	}
	return out, nil
}

// System reduces multispectral intensity data to RGB. It is immutable once
// built and safe for concurrent use.
type System struct {
	// Wavelength holds the n sampled wavelengths in meters.
	Wavelength []float64

	dWv    float64
	cieXYZ *mat.Dense // 3 x n
	emit   []float64  // n
	toSRGB *mat.Dense // 3 x 3
}

// NewSystem builds a color system for nWavelength uniformly sampled
// wavelengths. cmf is a color-matching-function table with X, Y, Z columns
// and wavelengths in nanometers; illuminant is an emission table whose first
// value column holds the emittance per wavelength.
func NewSystem(nWavelength int, cmf, illuminant *Table) (*System, error) {
	if cmf == nil || illuminant == nil {
		return nil, ErrEmptyTable
	}
	if len(cmf.Values) == 0 || len(cmf.Values[0]) < 3 {
		return nil, fmt.Errorf("%w: color-matching table needs X, Y, Z columns", ErrEmptyTable)
	}
	if len(illuminant.Values) == 0 || len(illuminant.Values[0]) < 1 {
		return nil, fmt.Errorf("%w: illuminant table needs an emission column", ErrEmptyTable)
	}

	cmfR, err := cmf.Resample(nWavelength)
	if err != nil {
		return nil, err
	}
	emitR, err := illuminant.Resample(nWavelength)
	if err != nil {
		return nil, err
	}

	s := &System{
		Wavelength: make([]float64, nWavelength),
		cieXYZ:     mat.NewDense(3, nWavelength, nil),
		emit:       make([]float64, nWavelength),
		toSRGB:     mat.NewDense(3, 3, nil),
	}
	for i := 0; i < nWavelength; i++ {
		s.Wavelength[i] = cmfR.Wavelength[i] / 1e9 // nm to m
		for ch := 0; ch < 3; ch++ {
			s.cieXYZ.Set(ch, i, cmfR.Values[i][ch])
		}
		s.emit[i] = emitR.Values[i][0]
	}
	s.dWv = s.Wavelength[1] - s.Wavelength[0]
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			s.toSRGB.Set(r, c, xyzToSRGB[r][c])
		}
	}
	return s, nil
}

// NWavelength returns the number of sampled wavelengths.
func (s *System) NWavelength() int {
	return len(s.Wavelength)
}

// ToRGB reduces a wavelength-indexed stack of intensity matrices (one per
// sampled wavelength, all the same shape) to R, G and B channel matrices.
//
// With clip set, pixels with a negative channel get a uniform per-pixel
// offset so the minimum channel is non-negative, rescaled by the maximum
// channel; this trades saturation for physically meaningless negative lobes
// of the sRGB gamut.
func (s *System) ToRGB(stack [][][]float64, clip bool) (r, g, b [][]float64, err error) {
	n := s.NWavelength()
	if len(stack) != n {
		return nil, nil, nil, fmt.Errorf("%w: got %d planes for %d wavelengths", ErrBadStack, len(stack), n)
	}
	ny := len(stack[0])
	if ny == 0 || len(stack[0][0]) == 0 {
		return nil, nil, nil, ErrBadStack
	}
	nx := len(stack[0][0])
	for _, plane := range stack {
		if len(plane) != ny {
			return nil, nil, nil, ErrBadStack
		}
		for _, row := range plane {
			if len(row) != nx {
				return nil, nil, nil, ErrBadStack
			}
		}
	}

	// Flatten and weight by the illuminant emission.
	pixels := ny * nx
	v := mat.NewDense(n, pixels, nil)
	for i, plane := range stack {
		for rr := 0; rr < ny; rr++ {
			for cc := 0; cc < nx; cc++ {
				v.Set(i, rr*nx+cc, plane[rr][cc]*s.emit[i])
			}
		}
	}

	var xyz mat.Dense
	xyz.Mul(s.cieXYZ, v)
	xyz.Scale(s.dWv, &xyz)

	var rgb mat.Dense
	rgb.Mul(s.toSRGB, &xyz)

	if clip {
		// Add enough white to make all channels positive, then rescale by
		// the channel maximum.
		for p := 0; p < pixels; p++ {
			cr, cg, cb := rgb.At(0, p), rgb.At(1, p), rgb.At(2, p)
			lo := math.Min(cr, math.Min(cg, cb))
			hi := math.Max(cr, math.Max(cg, cb))
			if lo >= 0 {
				continue
			}
			scaling := 1.0
			if hi > 0 {
				scaling = hi / (hi - lo + 1e-5)
			}
			rgb.Set(0, p, scaling*(cr-lo))
			rgb.Set(1, p, scaling*(cg-lo))
			rgb.Set(2, p, scaling*(cb-lo))
		}
	}

	r = unflatten(&rgb, 0, ny, nx)
	g = unflatten(&rgb, 1, ny, nx)
	b = unflatten(&rgb, 2, ny, nx)
	return r, g, b, nil
}

func unflatten(m *mat.Dense, ch, ny, nx int) [][]float64 {
	out := make([][]float64, ny)
	for rr := 0; rr < ny; rr++ {
		out[rr] = make([]float64, nx)
		for cc := 0; cc < nx; cc++ {
			out[rr][cc] = m.At(ch, rr*nx+cc)
		}
	}
	return out
}

// RGBImage renders channel matrices in [0, 1] to an RGBA image, clamping out
// of range values.
func RGBImage(r, g, b [][]float64) (*image.RGBA, error) {
	ny := len(r)
	if ny == 0 || len(r[0]) == 0 || len(g) != ny || len(b) != ny {
		return nil, ErrBadStack
	}
	nx := len(r[0])
	img := image.NewRGBA(image.Rect(0, 0, nx, ny))
	for rr := 0; rr < ny; rr++ {
		if len(g[rr]) != nx || len(b[rr]) != nx || len(r[rr]) != nx {
			return nil, ErrBadStack
		}
		for cc := 0; cc < nx; cc++ {
			img.SetRGBA(cc, rr, color.RGBA{
				R: clamp8(r[rr][cc]),
				G: clamp8(g[rr][cc]),
				B: clamp8(b[rr][cc]),
				A: 255,
			})
		}
	}
	return img, nil
}

func clamp8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
