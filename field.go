package waveprop

import (
	"errors"
	"math/cmplx"
)

var (
	// ErrEmptyField is returned when an input field has no samples.
	ErrEmptyField = errors.New("empty field")
	// ErrRaggedField is returned when an input field is not rectangular.
	ErrRaggedField = errors.New("ragged field")
)

// rectSize validates that m is a non-empty rectangular matrix and returns its
// dimensions.
func rectSize(m [][]complex128) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, ErrEmptyField
	}
	w = len(m[0])
	if w == 0 {
		return 0, 0, ErrEmptyField
	}
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, ErrRaggedField
		}
	}
	return h, w, nil
}

func makeComplex2D(h, w int) [][]complex128 {
	m := make([][]complex128, h)
	for i := range m {
		m[i] = make([]complex128, w)
	}
	return m
}

func cloneComplex2D(m [][]complex128) [][]complex128 {
	out := make([][]complex128, len(m))
	for i := range m {
		out[i] = make([]complex128, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}

// Intensity returns the per-sample intensity |u|^2 of a field. The phase of
// the e-field disappears when intensity is formed by u * conj(u).
func Intensity(u [][]complex128) [][]float64 {
	out := make([][]float64, len(u))
	for r := range u {
		out[r] = make([]float64, len(u[r]))
		for c, v := range u[r] {
			a := cmplx.Abs(v)
			out[r][c] = a * a
		}
	}
	return out
}
