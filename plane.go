package delin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// SlicePlane maps image-pixel coordinates of one slice to patient-space
// millimeters, derived from the DICOM position, spacing, and orientation
// tags. The zero value is usable and equals the identity plane.
type SlicePlane struct {
	// Origin is the patient-space position of the center of the first
	// transmitted pixel (ImagePositionPatient), in mm.
	Origin r3.Vec
	// Row and Col are unit direction cosines: Row points along increasing
	// column index (left to right across a row), Col along increasing row
	// index (top to bottom down a column).
	Row, Col r3.Vec
	// RowSpacing is the mm distance between adjacent rows (vertical step),
	// ColSpacing between adjacent columns (horizontal step).
	RowSpacing, ColSpacing float64
}

// IdentityPlane is the fallback plane: origin at 0, axis-aligned
// orientation, 1 mm pixels.
func IdentityPlane() SlicePlane {
	return SlicePlane{
		Row:        r3.Vec{X: 1},
		Col:        r3.Vec{Y: 1},
		RowSpacing: 1,
		ColSpacing: 1,
	}
}

// Normal returns the plane normal (Row × Col), a unit vector for valid
// DICOM orientations.
func (p SlicePlane) Normal() r3.Vec {
	return r3.Cross(p.Row, p.Col)
}

// Z returns the projection of the plane origin onto the plane normal.
// Slices of a series order monotonically by this value.
func (p SlicePlane) Z() float64 {
	return r3.Dot(p.Origin, p.Normal())
}

// ImageToPatient converts an image-pixel position to patient-space mm.
func (p SlicePlane) ImageToPatient(px, py float64) Vec3 {
	v := r3.Add(p.Origin,
		r3.Add(r3.Scale(px*p.ColSpacing, p.Row), r3.Scale(py*p.RowSpacing, p.Col)))
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// PatientToImage projects a patient-space point onto the plane and returns
// its image-pixel position. The out-of-plane component is discarded.
func (p SlicePlane) PatientToImage(pt Vec3) (px, py float64) {
	d := r3.Sub(r3.Vec{X: pt.X, Y: pt.Y, Z: pt.Z}, p.Origin)
	px = r3.Dot(d, p.Row) / p.ColSpacing
	py = r3.Dot(d, p.Col) / p.RowSpacing
	return px, py
}

// ErrPlaneFallback reports that one or more metadata fields were missing or
// malformed and identity defaults were substituted. The plane returned
// alongside it is still usable; callers log and continue.
var ErrPlaneFallback = errors.New("plane metadata fallback")

// ParsePlane builds a SlicePlane from raw backslash-delimited DICOM strings:
// imagePosition "x\y\z", pixelSpacing "row\col", and imageOrientation
// "rx\ry\rz\cx\cy\cz". Each field that is empty or malformed falls back to
// its identity default independently; when any field falls back the
// returned error wraps ErrPlaneFallback and names the fields.
func ParsePlane(imagePosition, pixelSpacing, imageOrientation string) (SlicePlane, error) {
	p := IdentityPlane()
	var bad []string

	if vals, err := parseBackslash(imagePosition, 3); err == nil {
		p.Origin = r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
	} else {
		bad = append(bad, "imagePosition")
	}

	if vals, err := parseBackslash(pixelSpacing, 2); err == nil && vals[0] > 0 && vals[1] > 0 {
		p.RowSpacing = vals[0]
		p.ColSpacing = vals[1]
	} else {
		bad = append(bad, "pixelSpacing")
	}

	if vals, err := parseBackslash(imageOrientation, 6); err == nil {
		row := r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
		col := r3.Vec{X: vals[3], Y: vals[4], Z: vals[5]}
		// Reject degenerate cosines; a valid orientation has unit-ish axes.
		if r3.Norm(row) > 1e-6 && r3.Norm(col) > 1e-6 {
			p.Row = r3.Unit(row)
			p.Col = r3.Unit(col)
		} else {
			bad = append(bad, "imageOrientation")
		}
	} else {
		bad = append(bad, "imageOrientation")
	}

	if len(bad) > 0 {
		return p, fmt.Errorf("%w: %s", ErrPlaneFallback, strings.Join(bad, ", "))
	}
	return p, nil
}

// parseBackslash splits a backslash-delimited DICOM value string into
// exactly n floats.
func parseBackslash(s string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), "\\")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}
