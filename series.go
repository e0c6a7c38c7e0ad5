package delin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// IntensitySource exposes per-pixel modality values for smart-brush
// sampling. At reports (value, true) inside the grid and (0, false) outside.
type IntensitySource interface {
	At(x, y int) (float64, bool)
	Size() (w, h int)
}

// IntensityGrid holds one slice's rescaled modality values (slope and
// intercept applied) in row-major order.
type IntensityGrid struct {
	W, H int
	Data []float64
}

// At returns the value at (x, y) and whether the position is in bounds.
func (g *IntensityGrid) At(x, y int) (float64, bool) {
	if g == nil || x < 0 || y < 0 || x >= g.W || y >= g.H {
		return 0, false
	}
	return g.Data[y*g.W+x], true
}

// Size returns the grid dimensions.
func (g *IntensityGrid) Size() (int, int) {
	if g == nil {
		return 0, 0
	}
	return g.W, g.H
}

// SliceMeta is the raw per-file metadata the loader extracts. String fields
// keep the DICOM backslash-delimited form; ParsePlane consumes them.
type SliceMeta struct {
	Path                 string
	ImagePosition        string // "x\y\z"
	PixelSpacing         string // "row\col"
	Orientation          string // "rx\ry\rz\cx\cy\cz"
	SliceThickness       float64
	SpacingBetweenSlices float64
	InstanceNumber       int
	Rows, Cols           int
	RescaleSlope         float64
	RescaleIntercept     float64
}

// Series is one loaded DICOM series: ordered planes with parallel metadata
// and optional intensity grids, plus the derived slice spacing.
type Series struct {
	Meta         []SliceMeta
	Planes       []SlicePlane
	Grids        []*IntensityGrid
	SliceSpacing float64
}

// LoadSeries reads every .dcm file in dir (non-recursive), orders the
// slices spatially, and derives the slice spacing. Files whose geometry
// tags are missing fall back to identity planes and sort by instance
// number; that degradation is logged, not fatal. Pixel data is decoded into
// intensity grids when present and native.
func LoadSeries(dir string) (*Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	var metas []SliceMeta
	var grids []*IntensityGrid
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".dcm") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		meta, grid, err := loadSlice(path)
		if err != nil {
			debugf("skip %s: %v", e.Name(), err)
			continue
		}
		metas = append(metas, meta)
		grids = append(grids, grid)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("load series: no DICOM files in %s", dir)
	}
	return assembleSeries(metas, grids), nil
}

// loadSlice parses one file and extracts metadata plus the intensity grid.
func loadSlice(path string) (SliceMeta, *IntensityGrid, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return SliceMeta{}, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	meta := SliceMeta{
		Path:          path,
		ImagePosition: joinedString(&ds, tag.ImagePositionPatient),
		PixelSpacing:  joinedString(&ds, tag.PixelSpacing),
		Orientation:   joinedString(&ds, tag.ImageOrientationPatient),
		RescaleSlope:  1,
	}
	meta.SliceThickness = floatValue(&ds, tag.SliceThickness, 0)
	meta.SpacingBetweenSlices = floatValue(&ds, tag.SpacingBetweenSlices, 0)
	meta.InstanceNumber = intValue(&ds, tag.InstanceNumber, 0)
	meta.Rows = intValue(&ds, tag.Rows, 0)
	meta.Cols = intValue(&ds, tag.Columns, 0)
	meta.RescaleSlope = floatValue(&ds, tag.RescaleSlope, 1)
	meta.RescaleIntercept = floatValue(&ds, tag.RescaleIntercept, 0)

	grid := decodeIntensity(&ds, meta)
	return meta, grid, nil
}

// decodeIntensity builds an IntensityGrid from the first native pixel
// frame. Returns nil (logged) when pixel data is absent, encapsulated, or
// malformed; drawing works without it, only the smart brush degrades.
func decodeIntensity(ds *dicom.Dataset, meta SliceMeta) *IntensityGrid {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if info.IsEncapsulated || len(info.Frames) == 0 {
		debugf("%s: no native pixel frames", meta.Path)
		return nil
	}
	native, err := info.Frames[0].GetNativeFrame()
	if err != nil {
		debugf("%s: native frame: %v", meta.Path, err)
		return nil
	}
	w, h := native.Cols, native.Rows
	if w <= 0 || h <= 0 || len(native.Data) < w*h {
		debugf("%s: malformed pixel frame", meta.Path)
		return nil
	}
	grid := &IntensityGrid{W: w, H: h, Data: make([]float64, w*h)}
	for i := 0; i < w*h; i++ {
		grid.Data[i] = float64(native.Data[i][0])*meta.RescaleSlope + meta.RescaleIntercept
	}
	return grid
}

// assembleSeries orders slices and derives spacing from the parsed metadata.
func assembleSeries(metas []SliceMeta, grids []*IntensityGrid) *Series {
	type entry struct {
		meta  SliceMeta
		grid  *IntensityGrid
		plane SlicePlane
		z     float64
		geom  bool // position metadata parsed cleanly
	}
	entries := make([]entry, len(metas))
	for i, m := range metas {
		plane, err := ParsePlane(m.ImagePosition, m.PixelSpacing, m.Orientation)
		if err != nil {
			debugf("%s: %v", m.Path, err)
		}
		_, posErr := parseBackslash(m.ImagePosition, 3)
		entries[i] = entry{
			meta:  m,
			grid:  grids[i],
			plane: plane,
			z:     plane.Z(),
			geom:  posErr == nil,
		}
	}

	// Order by projection onto the plane normal; files without position
	// metadata fall back to instance number.
	allGeom := true
	for i := range entries {
		if !entries[i].geom {
			allGeom = false
			break
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if allGeom {
			return entries[i].z < entries[j].z
		}
		return entries[i].meta.InstanceNumber < entries[j].meta.InstanceNumber
	})

	s := &Series{SliceSpacing: 1}
	for _, e := range entries {
		s.Meta = append(s.Meta, e.meta)
		s.Planes = append(s.Planes, e.plane)
		s.Grids = append(s.Grids, e.grid)
	}

	// Spacing: median adjacent gap, then SpacingBetweenSlices, then
	// SliceThickness, then 1 mm.
	if allGeom && len(entries) > 1 {
		gaps := make([]float64, 0, len(entries)-1)
		for i := 1; i < len(entries); i++ {
			if gap := entries[i].z - entries[i-1].z; gap > 0 {
				gaps = append(gaps, gap)
			}
		}
		if len(gaps) > 0 {
			sort.Float64s(gaps)
			s.SliceSpacing = gaps[len(gaps)/2]
			return s
		}
	}
	if sp := s.Meta[0].SpacingBetweenSlices; sp > 0 {
		s.SliceSpacing = sp
	} else if th := s.Meta[0].SliceThickness; th > 0 {
		s.SliceSpacing = th
	}
	return s
}

// --- element value helpers ---

// joinedString returns a multi-valued string element re-joined with
// backslashes, matching the DICOM wire form. Empty when absent.
func joinedString(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	if ss, ok := el.Value.GetValue().([]string); ok {
		return strings.Join(ss, "\\")
	}
	return ""
}

// floatValue reads a numeric element stored as decimal strings or ints.
func floatValue(ds *dicom.Dataset, t tag.Tag, fallback float64) float64 {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return fallback
	}
	switch v := el.Value.GetValue().(type) {
	case []string:
		if len(v) > 0 {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64); err == nil {
				return f
			}
		}
	case []int:
		if len(v) > 0 {
			return float64(v[0])
		}
	case []float64:
		if len(v) > 0 {
			return v[0]
		}
	}
	return fallback
}

// intValue reads an integer element stored as ints or integer strings.
func intValue(ds *dicom.Dataset, t tag.Tag, fallback int) int {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return fallback
	}
	switch v := el.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case []string:
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n
			}
		}
	}
	return fallback
}
