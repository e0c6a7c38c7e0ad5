package delin

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- multiplyAffine ---

func TestMultiplyIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	assertMatrix(t, "id*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*id", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyScaleThenTranslate(t *testing.T) {
	scale := [6]float64{2, 0, 0, 2, 0, 0}
	translate := [6]float64{1, 0, 0, 1, 5, 7}
	// outer translate, inner scale: p' = 2p + (5,7)
	m := multiplyAffine(translate, scale)
	x, y := transformPoint(m, 3, 4)
	assertNear(t, "x", x, 11)
	assertNear(t, "y", y, 15)
}

// --- invertAffine ---

func TestInvertRoundTrip(t *testing.T) {
	m := [6]float64{1.5, 0.2, -0.3, 2.0, 12, -7}
	inv := invertAffine(m)
	assertMatrix(t, "m*inv", multiplyAffine(m, inv), identityTransform)
	assertMatrix(t, "inv*m", multiplyAffine(inv, m), identityTransform)
}

func TestInvertSingularFallsBackToIdentity(t *testing.T) {
	singular := [6]float64{0, 0, 0, 0, 3, 4}
	assertMatrix(t, "singular", invertAffine(singular), identityTransform)
}

func TestInvertNearSingularFallsBackToIdentity(t *testing.T) {
	// Determinant below the 1e-12 cutoff.
	m := [6]float64{1e-7, 0, 0, 1e-7, 0, 0}
	assertMatrix(t, "near-singular", invertAffine(m), identityTransform)
}

// --- transformPoint ---

func TestTransformPointRoundTrip(t *testing.T) {
	m := [6]float64{2, 0, 0, 2, 100, 50}
	x, y := transformPoint(m, 10, 20)
	assertNear(t, "x", x, 120)
	assertNear(t, "y", y, 90)
	bx, by := transformPoint(invertAffine(m), x, y)
	assertNear(t, "back x", bx, 10)
	assertNear(t, "back y", by, 20)
}
