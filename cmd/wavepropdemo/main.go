// Command wavepropdemo propagates a plane wave through a square aperture and
// writes the resulting diffraction pattern as PNG images plus an intensity
// cross-section plot. All physical parameters come from a JSON5 (or JSON)
// parameter file.
//
// Usage: wavepropdemo <parameter-file>
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	json "github.com/KevinWang15/go-json5"

	"github.com/demroz/waveprop"
	"github.com/demroz/waveprop/colorsys"
	"github.com/demroz/waveprop/render"
)

type demoParams struct {
	WavelengthNm    float64
	GridPoints      int
	GridWidthMm     float64
	DistanceMm      float64
	ApertureWidthMm float64
	Method          string
	Bandlimit       bool
	OutShiftMmY     float64
	OutShiftMmX     float64
	OutputFolder    string

	// optional multispectral rendering
	CmfFile        string
	IlluminantFile string
	NWavelengths   int
}

func main() {
	programStart := time.Now()

	args := os.Args
	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: wavepropdemo <parameter-file>")
		os.Exit(1)
	}

	path := args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w", path, err))
		os.Exit(2)
	}

	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	err = json.Unmarshal(data, &jsonTable)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w", path, err))
		os.Exit(3)
	}

	var params demoParams
	msg, ok := validateAndFillParams(jsonTable, &params)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	wavelength := params.WavelengthNm * 1e-9
	width := params.GridWidthMm * 1e-3
	dz := params.DistanceMm * 1e-3
	d := width / float64(params.GridPoints)
	halfAperture := params.ApertureWidthMm * 1e-3 / 2

	fmt.Printf("Grid: %d x %d points, %.3f mm wide (%.3f um spacing)\n",
		params.GridPoints, params.GridPoints, params.GridWidthMm, d*1e6)
	fmt.Printf("Propagating %.1f nm light by %.3f mm with the %s method\n",
		params.WavelengthNm, params.DistanceMm, params.Method)

	// Plane wave of unit amplitude through a square aperture.
	uIn := make([][]complex128, params.GridPoints)
	x0, y0 := waveprop.SampleGrid(waveprop.SquareGrid(params.GridPoints), waveprop.UniformSpacing(d), waveprop.Shift{})
	for r := range uIn {
		uIn[r] = make([]complex128, params.GridPoints)
		for c := range uIn[r] {
			if math.Abs(y0[r]) <= halfAperture && math.Abs(x0[c]) <= halfAperture {
				uIn[r][c] = 1
			}
		}
	}

	p := waveprop.Params{
		Wavelength: wavelength,
		InSpacing:  waveprop.UniformSpacing(d),
		Distance:   dz,
		Bandlimit:  params.Bandlimit,
		OutShift:   waveprop.Shift{Y: params.OutShiftMmY * 1e-3, X: params.OutShiftMmX * 1e-3},
	}
	switch params.Method {
	case "angular-spectrum":
		p.Method = waveprop.MethodAngularSpectrum
	case "fft-direct":
		p.Method = waveprop.MethodFFTDirect
	case "direct":
		p.Method = waveprop.MethodDirect
	default:
		fmt.Printf("Unknown method %q (want angular-spectrum, fft-direct, or direct)\n", params.Method)
		os.Exit(4)
	}

	propStart := time.Now()
	uOut, x, _, err := waveprop.Propagate(uIn, p)
	if err != nil {
		fmt.Println(fmt.Errorf("propagation failed: %w", err))
		os.Exit(5)
	}
	fmt.Printf("Propagation took %v\n", time.Since(propStart))

	intensity := waveprop.Intensity(uOut)

	dataImg, err := render.Gray16Data(intensity, 4000.0)
	if err != nil {
		fmt.Println(fmt.Errorf("rendering 16-bit image: %w", err))
		os.Exit(6)
	}
	if err := render.SavePNG(filepath.Join(params.OutputFolder, "diffraction16bit.png"), dataImg); err != nil {
		fmt.Println(err)
		os.Exit(6)
	}

	viewImg, err := render.Gray8View(intensity, 1, 99)
	if err != nil {
		fmt.Println(fmt.Errorf("rendering view image: %w", err))
		os.Exit(6)
	}
	if err := render.SavePNG(filepath.Join(params.OutputFolder, "diffractionView.png"), viewImg); err != nil {
		fmt.Println(err)
		os.Exit(6)
	}

	// Cross section through the center row.
	center := len(intensity) / 2
	plotImg, err := render.CrossSection(x, intensity[center],
		fmt.Sprintf("Intensity at z = %.3f mm", params.DistanceMm), 1200, 800)
	if err != nil {
		fmt.Println(fmt.Errorf("plotting cross section: %w", err))
		os.Exit(6)
	}
	if err := render.SavePNG(filepath.Join(params.OutputFolder, "crossSection.png"), plotImg); err != nil {
		fmt.Println(err)
		os.Exit(6)
	}

	if params.CmfFile != "" {
		spectralStart := time.Now()
		if err := renderMultispectral(uIn, p, params); err != nil {
			fmt.Println(fmt.Errorf("multispectral rendering: %w", err))
			os.Exit(6)
		}
		fmt.Printf("Multispectral rendering took %v\n", time.Since(spectralStart))
	}

	fmt.Printf("Total run time %v\n", time.Since(programStart))
}

// renderMultispectral propagates the aperture field at every sampled
// wavelength of the color system, reduces the intensity stack to sRGB under
// the configured illuminant and writes diffractionRGB.png.
func renderMultispectral(uIn [][]complex128, p waveprop.Params, params demoParams) error {
	cmf, err := colorsys.LoadTable(params.CmfFile)
	if err != nil {
		return err
	}
	illum, err := colorsys.LoadTable(params.IlluminantFile)
	if err != nil {
		return err
	}
	sys, err := colorsys.NewSystem(params.NWavelengths, cmf, illum)
	if err != nil {
		return err
	}

	stack := make([][][]float64, sys.NWavelength())
	for i, wv := range sys.Wavelength {
		pw := p
		pw.Wavelength = wv
		uOut, _, _, err := waveprop.Propagate(uIn, pw)
		if err != nil {
			return fmt.Errorf("at %.1f nm: %w", wv*1e9, err)
		}
		stack[i] = waveprop.Intensity(uOut)
	}

	r, g, b, err := sys.ToRGB(stack, true)
	if err != nil {
		return err
	}

	// Normalize so the brightest channel sample maps to full scale.
	peak := 0.0
	for _, ch := range [][][]float64{r, g, b} {
		for _, row := range ch {
			for _, v := range row {
				if v > peak {
					peak = v
				}
			}
		}
	}
	if peak > 0 {
		for _, ch := range [][][]float64{r, g, b} {
			for _, row := range ch {
				for i := range row {
					row[i] /= peak
				}
			}
		}
	}

	img, err := colorsys.RGBImage(r, g, b)
	if err != nil {
		return err
	}
	return render.SavePNG(filepath.Join(params.OutputFolder, "diffractionRGB.png"), img)
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func validateAndFillParams(jsonTable map[string]interface{}, params *demoParams) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	wv, ok := getLeafValue(jsonTable, "wavelength_nm")
	if !ok {
		return "wavelength_nm: not found", false
	}
	params.WavelengthNm, ok = wv.(float64)
	if !ok || params.WavelengthNm <= 0 {
		return "wavelength_nm: is not a positive number", false
	}

	gp, ok := getLeafValue(jsonTable, "grid_points")
	if !ok {
		params.GridPoints = 256 // Default grid if this field is missing
	} else {
		v, ok := gp.(float64)
		if !ok || v < 2 {
			return "grid_points: is not a number >= 2", false
		}
		params.GridPoints = int(v)
	}

	gw, ok := getLeafValue(jsonTable, "grid_width_mm")
	if !ok {
		return "grid_width_mm: not found", false
	}
	params.GridWidthMm, ok = gw.(float64)
	if !ok || params.GridWidthMm <= 0 {
		return "grid_width_mm: is not a positive number", false
	}

	dist, ok := getLeafValue(jsonTable, "distance_mm")
	if !ok {
		return "distance_mm: not found", false
	}
	params.DistanceMm, ok = dist.(float64)
	if !ok || params.DistanceMm == 0 {
		return "distance_mm: is not a nonzero number", false
	}

	aw, ok := getLeafValue(jsonTable, "aperture_width_mm")
	if !ok {
		return "aperture_width_mm: not found", false
	}
	params.ApertureWidthMm, ok = aw.(float64)
	if !ok || params.ApertureWidthMm <= 0 {
		return "aperture_width_mm: is not a positive number", false
	}

	method, ok := getLeafValue(jsonTable, "method")
	if !ok {
		params.Method = "angular-spectrum" // Default method if this field is missing
	} else {
		params.Method, ok = method.(string)
		if !ok {
			return "method: is not a string", false
		}
	}

	bl, ok := getLeafValue(jsonTable, "bandlimit_bool")
	if !ok {
		params.Bandlimit = true // default to the anti-aliased transfer function
	} else {
		params.Bandlimit, ok = bl.(bool)
		if !ok {
			return "bandlimit_bool: is not a bool", false
		}
	}

	shiftY, ok := getLeafValue(jsonTable, "out_shift_mm_y")
	if ok {
		params.OutShiftMmY, ok = shiftY.(float64)
		if !ok {
			return "out_shift_mm_y: is not a number", false
		}
	}
	shiftX, ok := getLeafValue(jsonTable, "out_shift_mm_x")
	if ok {
		params.OutShiftMmX, ok = shiftX.(float64)
		if !ok {
			return "out_shift_mm_x: is not a number", false
		}
	}

	folder, ok := getLeafValue(jsonTable, "output_folder")
	if !ok {
		params.OutputFolder = "."
	} else {
		params.OutputFolder, ok = folder.(string)
		if !ok {
			return "output_folder: is not a string", false
		}
	}

	if _, ok := getLeafValue(jsonTable, "spectral"); ok {
		cmf, ok := getLeafValue(jsonTable, "spectral", "cmf_file")
		if !ok {
			return "spectral.cmf_file: not found", false
		}
		params.CmfFile, ok = cmf.(string)
		if !ok || params.CmfFile == "" {
			return "spectral.cmf_file: is not a non-empty string", false
		}

		illum, ok := getLeafValue(jsonTable, "spectral", "illuminant_file")
		if !ok {
			return "spectral.illuminant_file: not found", false
		}
		params.IlluminantFile, ok = illum.(string)
		if !ok || params.IlluminantFile == "" {
			return "spectral.illuminant_file: is not a non-empty string", false
		}

		nwv, ok := getLeafValue(jsonTable, "spectral", "n_wavelengths")
		if !ok {
			params.NWavelengths = 16 // Default spectral resolution if this field is missing
		} else {
			v, ok := nwv.(float64)
			if !ok || v < 2 {
				return "spectral.n_wavelengths: is not a number >= 2", false
			}
			params.NWavelengths = int(v)
		}
	}

	return msg, true
}
