package delin

import (
	"errors"
	"strings"
	"testing"
)

// --- ParsePlane ---

func TestParsePlaneAxial(t *testing.T) {
	p, err := ParsePlane("-250\\-250\\42.5", "0.97\\0.97", "1\\0\\0\\0\\1\\0")
	if err != nil {
		t.Fatalf("ParsePlane: %v", err)
	}
	assertNear(t, "origin.X", p.Origin.X, -250)
	assertNear(t, "origin.Z", p.Origin.Z, 42.5)
	assertNear(t, "rowSpacing", p.RowSpacing, 0.97)
	assertNear(t, "colSpacing", p.ColSpacing, 0.97)

	n := p.Normal()
	assertNear(t, "normal.X", n.X, 0)
	assertNear(t, "normal.Y", n.Y, 0)
	assertNear(t, "normal.Z", n.Z, 1)
	assertNear(t, "Z", p.Z(), 42.5)
}

func TestParsePlaneMissingFieldsFallBack(t *testing.T) {
	p, err := ParsePlane("", "", "")
	if !errors.Is(err, ErrPlaneFallback) {
		t.Fatalf("expected ErrPlaneFallback, got %v", err)
	}
	for _, field := range []string{"imagePosition", "pixelSpacing", "imageOrientation"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should name %s: %v", field, err)
		}
	}
	// Fallback plane is usable and equals the identity plane.
	id := IdentityPlane()
	assertNear(t, "row.X", p.Row.X, id.Row.X)
	assertNear(t, "col.Y", p.Col.Y, id.Col.Y)
	assertNear(t, "rowSpacing", p.RowSpacing, 1)
}

func TestParsePlanePartialFallback(t *testing.T) {
	// Position parses, the rest falls back independently.
	p, err := ParsePlane("1\\2\\3", "garbage", "1\\0\\0")
	if !errors.Is(err, ErrPlaneFallback) {
		t.Fatalf("expected ErrPlaneFallback, got %v", err)
	}
	assertNear(t, "origin.Y", p.Origin.Y, 2)
	assertNear(t, "rowSpacing", p.RowSpacing, 1)
	assertNear(t, "row.X", p.Row.X, 1)
}

func TestParsePlaneRejectsNonPositiveSpacing(t *testing.T) {
	_, err := ParsePlane("0\\0\\0", "0\\1", "1\\0\\0\\0\\1\\0")
	if !errors.Is(err, ErrPlaneFallback) {
		t.Fatalf("expected ErrPlaneFallback for zero spacing, got %v", err)
	}
}

func TestParsePlaneNormalizesOrientation(t *testing.T) {
	// Non-unit cosines are normalized.
	p, err := ParsePlane("0\\0\\0", "1\\1", "2\\0\\0\\0\\2\\0")
	if err != nil {
		t.Fatalf("ParsePlane: %v", err)
	}
	assertNear(t, "row.X", p.Row.X, 1)
	assertNear(t, "col.Y", p.Col.Y, 1)
}

// --- ImageToPatient / PatientToImage ---

func TestImagePatientRoundTripAxial(t *testing.T) {
	p, err := ParsePlane("-100\\-120\\30", "0.5\\0.8", "1\\0\\0\\0\\1\\0")
	if err != nil {
		t.Fatalf("ParsePlane: %v", err)
	}
	pt := p.ImageToPatient(40, 60)
	assertNear(t, "pt.X", pt.X, -100+40*0.8)
	assertNear(t, "pt.Y", pt.Y, -120+60*0.5)
	assertNear(t, "pt.Z", pt.Z, 30)

	px, py := p.PatientToImage(pt)
	assertNear(t, "px", px, 40)
	assertNear(t, "py", py, 60)
}

func TestImagePatientRoundTripSagittal(t *testing.T) {
	// Sagittal: rows along +Y, columns along -Z.
	p, err := ParsePlane("55\\-200\\180", "1.2\\1.2", "0\\1\\0\\0\\0\\-1")
	if err != nil {
		t.Fatalf("ParsePlane: %v", err)
	}
	px, py := p.PatientToImage(p.ImageToPatient(17.5, 83.25))
	assertNear(t, "px", px, 17.5)
	assertNear(t, "py", py, 83.25)

	// Normal points along the patient X axis.
	n := p.Normal()
	assertNear(t, "normal.X", n.X, -1)
	assertNear(t, "normal.Y", n.Y, 0)
	assertNear(t, "normal.Z", n.Z, 0)
}

func TestPatientToImageDiscardsOutOfPlane(t *testing.T) {
	p := IdentityPlane()
	// A point 5 mm off the plane projects to the same pixel.
	px, py := p.PatientToImage(Vec3{X: 3, Y: 4, Z: 5})
	assertNear(t, "px", px, 3)
	assertNear(t, "py", py, 4)
}

func TestPlaneZOrdersObliqueSlices(t *testing.T) {
	// Tilted orientation: Z must still order origins along the normal.
	orient := "0.9962\\0\\-0.0872\\0\\1\\0"
	a, _ := ParsePlane("0\\0\\10", "1\\1", orient)
	b, _ := ParsePlane("0\\0\\20", "1\\1", orient)
	if a.Z() >= b.Z() {
		t.Errorf("Z ordering: %v >= %v", a.Z(), b.Z())
	}
}

// --- parseBackslash ---

func TestParseBackslash(t *testing.T) {
	vals, err := parseBackslash(" 1.5\\-2\\3e1 ", 3)
	if err != nil {
		t.Fatalf("parseBackslash: %v", err)
	}
	assertNear(t, "v0", vals[0], 1.5)
	assertNear(t, "v1", vals[1], -2)
	assertNear(t, "v2", vals[2], 30)

	if _, err := parseBackslash("1\\2", 3); err == nil {
		t.Error("wrong count should error")
	}
	if _, err := parseBackslash("1\\x\\3", 3); err == nil {
		t.Error("non-numeric should error")
	}
}
