package waveprop

// Spacing holds per-axis sample spacings in meters. Dy is the row (y) spacing,
// Dx the column (x) spacing.
type Spacing struct {
	Dy, Dx float64
}

// UniformSpacing normalizes a scalar spacing to both axes.
func UniformSpacing(d float64) Spacing {
	return Spacing{Dy: d, Dx: d}
}

func (s Spacing) valid() bool {
	return s.Dy > 0 && s.Dx > 0
}

// GridSize holds per-axis sample counts. Ny is the number of rows (y), Nx the
// number of columns (x).
type GridSize struct {
	Ny, Nx int
}

// SquareGrid normalizes a scalar sample count to both axes.
func SquareGrid(n int) GridSize {
	return GridSize{Ny: n, Nx: n}
}

func (g GridSize) valid() bool {
	return g.Ny > 0 && g.Nx > 0
}

// Shift is a lateral offset from the optical axis in meters.
type Shift struct {
	Y, X float64
}

// UniformShift normalizes a scalar shift to both axes.
func UniformShift(v float64) Shift {
	return Shift{Y: v, X: v}
}

func (s Shift) zero() bool {
	return s.Y == 0 && s.X == 0
}

// SamplePoints returns n coordinates spaced by delta, spanning n*delta and
// centered on shift. Odd n places a sample exactly at shift; even n centers
// the grid between the two middle samples. This centering convention must
// match the frequency grids used by FT2 and IFT2, otherwise FFT-based
// convolutions misalign by half a sample.
func SamplePoints(n int, delta, shift float64) []float64 {
	pts := make([]float64, n)
	for i := 0; i < n; i++ {
		c := float64(i) - float64(n)/2.0
		if n%2 != 0 {
			c += 0.5
		}
		pts[i] = c*delta + shift
	}
	return pts
}

// SampleGrid returns the x (length size.Nx) and y (length size.Ny) coordinate
// vectors of a centered grid with the given spacing and shift.
func SampleGrid(size GridSize, d Spacing, shift Shift) (x, y []float64) {
	return SamplePoints(size.Nx, d.Dx, shift.X), SamplePoints(size.Ny, d.Dy, shift.Y)
}
