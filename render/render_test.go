package render_test

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demroz/waveprop/render"
)

func TestGray16Data(t *testing.T) {
	m := [][]float64{
		{0, 0.5},
		{100, math.NaN()},
	}
	img, err := render.Gray16Data(m, 4000)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	assert.EqualValues(t, 0, img.Gray16At(0, 0).Y)
	assert.EqualValues(t, 2000, img.Gray16At(1, 0).Y)
	// 100 * 4000 overflows 16 bits and clamps
	assert.EqualValues(t, 65535, img.Gray16At(0, 1).Y)
	// non-finite samples render black
	assert.EqualValues(t, 0, img.Gray16At(1, 1).Y)

	_, err = render.Gray16Data(m, 0)
	require.Error(t, err)

	_, err = render.Gray16Data([][]float64{{1}, {1, 2}}, 4000)
	require.Error(t, err)
}

func TestGray8View(t *testing.T) {
	// 4x4 ramp
	m := make([][]float64, 4)
	v := 0.0
	for r := range m {
		m[r] = make([]float64, 4)
		for c := range m[r] {
			m[r][c] = v
			v++
		}
	}

	img, err := render.Gray8View(m, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 0, img.GrayAt(0, 0).Y)
	assert.EqualValues(t, 255, img.GrayAt(3, 3).Y)

	// a tighter stretch clamps the tails
	img, err = render.Gray8View(m, 25, 75)
	require.NoError(t, err)
	assert.EqualValues(t, 0, img.GrayAt(0, 0).Y)
	assert.EqualValues(t, 255, img.GrayAt(3, 3).Y)

	_, err = render.Gray8View(m, 50, 50)
	require.Error(t, err)
	_, err = render.Gray8View(m, -1, 99)
	require.Error(t, err)
	_, err = render.Gray8View(m, 1, 101)
	require.Error(t, err)
}

func TestStepTicks(t *testing.T) {
	ticks := render.StepTicks{Step: 0.5, Format: "%.1f"}.Ticks(-1, 1)
	require.Len(t, ticks, 5)
	assert.Equal(t, -1.0, ticks[0].Value)
	assert.Equal(t, "-1.0", ticks[0].Label)
	assert.Equal(t, 1.0, ticks[4].Value)
}

func TestCrossSection(t *testing.T) {
	x := make([]float64, 64)
	in := make([]float64, 64)
	for i := range x {
		x[i] = float64(i-32) * 1e-4
		in[i] = math.Exp(-x[i] * x[i] / 1e-7)
	}
	img, err := render.CrossSection(x, in, "central intensity", 640, 480)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())

	_, err = render.CrossSection(x, in[:10], "mismatch", 640, 480)
	require.Error(t, err)
	_, err = render.CrossSection(nil, nil, "empty", 640, 480)
	require.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	m := [][]float64{{0, 1}, {2, 3}}
	img, err := render.Gray16Data(m, 1000)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "intensity.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, render.SavePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
