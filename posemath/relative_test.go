package posemath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func vectorsAlmostEqual(v1, v2 r3.Vector, tol float64) bool {
	return math.Abs(v1.X-v2.X) < tol && math.Abs(v1.Y-v2.Y) < tol && math.Abs(v1.Z-v2.Z) < tol
}

func TestNewRelativeStrategy(t *testing.T) {
	s, err := NewRelativeStrategy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != RelativeMethodMatrix {
		t.Errorf("default strategy is %q, want %q", s.Name(), RelativeMethodMatrix)
	}
	if _, err := NewRelativeStrategy(RelativeMethodEulerDiff); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewRelativeStrategy("averaged"); err == nil {
		t.Error("unknown method should error")
	}
}

func TestRelativeIdentity(t *testing.T) {
	pose := Pose{
		Translation: r3.Vector{X: 0.2, Y: -0.7, Z: 1.9},
		Rotation:    EulerAngles{RX: 0.5, RY: -0.3, RZ: 1.2},
	}
	for _, method := range []string{RelativeMethodMatrix, RelativeMethodEulerDiff} {
		s, err := NewRelativeStrategy(method)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rel := s.Relative(pose, pose)
		if !vectorsAlmostEqual(rel.Translation, r3.Vector{}, 1e-12) {
			t.Errorf("%s: same-pose translation = %+v, want zero", method, rel.Translation)
		}
		if rel.Distance != 0 {
			t.Errorf("%s: same-pose distance = %v, want 0", method, rel.Distance)
		}
		if !matricesAlmostEqual(rel.Rotation, identity3(), 1e-12) {
			t.Errorf("%s: same-pose rotation is not the identity", method)
		}
	}
}

func TestRelativeSideBySideTags(t *testing.T) {
	// Tag A at (0,0,1) and tag B half a meter to its right, both unrotated.
	a := Pose{Translation: r3.Vector{Z: 1.0}}
	b := Pose{Translation: r3.Vector{X: 0.5, Z: 1.0}}
	s, err := NewRelativeStrategy(RelativeMethodMatrix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rel := s.Relative(a, b)
	if !vectorsAlmostEqual(rel.Translation, r3.Vector{X: 0.5}, 1e-12) {
		t.Errorf("translation in A's frame = %+v, want (0.5, 0, 0)", rel.Translation)
	}
	if math.Abs(rel.Distance-0.5) > 1e-12 {
		t.Errorf("distance = %v, want 0.5", rel.Distance)
	}
	if !matricesAlmostEqual(rel.Rotation, identity3(), 1e-12) {
		t.Error("relative rotation is not the identity")
	}
	if rel.Euler != (EulerAngles{}) {
		t.Errorf("euler = %+v, want zero", rel.Euler)
	}
	if rel.Singular {
		t.Error("identity rotation flagged singular")
	}
}

func TestRelativeTranslationInTagFrame(t *testing.T) {
	// Tag A yawed 90deg: B sitting to A's world-frame right lands on A's
	// local axes rotated by R1^T, while the distance stays frame-invariant.
	a := Pose{Translation: r3.Vector{Z: 1.0}, Rotation: EulerAngles{RZ: math.Pi / 2}}
	b := Pose{Translation: r3.Vector{X: 0.5, Z: 1.0}}
	s, _ := NewRelativeStrategy(RelativeMethodMatrix)
	rel := s.Relative(a, b)
	if !vectorsAlmostEqual(rel.Translation, r3.Vector{Y: -0.5}, 1e-12) {
		t.Errorf("translation in A's frame = %+v, want (0, -0.5, 0)", rel.Translation)
	}
	if math.Abs(rel.Distance-0.5) > 1e-12 {
		t.Errorf("distance = %v, want 0.5", rel.Distance)
	}
}

func TestRelativeRotationComposition(t *testing.T) {
	a := Pose{Rotation: EulerAngles{RZ: 0.4}}
	b := Pose{Rotation: EulerAngles{RZ: 1.0}}
	s, _ := NewRelativeStrategy(RelativeMethodMatrix)
	rel := s.Relative(a, b)
	if math.Abs(rel.Euler.RZ-0.6) > 1e-12 {
		t.Errorf("relative yaw = %v, want 0.6", rel.Euler.RZ)
	}
	if rel.Euler.RX != 0 || math.Abs(rel.Euler.RY) > 1e-12 {
		t.Errorf("relative roll/pitch = (%v, %v), want zero", rel.Euler.RX, rel.Euler.RY)
	}
}

func TestStrategiesDisagreeUnderRotation(t *testing.T) {
	// The two policies only coincide at zero orientation; make sure nothing
	// quietly merged them.
	a := Pose{Rotation: EulerAngles{RX: 0.7, RY: 0.2}}
	b := Pose{Rotation: EulerAngles{RY: 0.9, RZ: 0.5}}
	matrix, _ := NewRelativeStrategy(RelativeMethodMatrix)
	naive, _ := NewRelativeStrategy(RelativeMethodEulerDiff)
	relMatrix := matrix.Relative(a, b)
	relNaive := naive.Relative(a, b)
	if matricesAlmostEqual(relMatrix.Rotation, relNaive.Rotation, 1e-6) {
		t.Error("matrix and euler-difference strategies agreed on a rotated pair")
	}
	wantNaive := EulerAngles{RX: -0.7, RY: 0.7, RZ: 0.5}
	if d := math.Abs(relNaive.Euler.RX-wantNaive.RX) +
		math.Abs(relNaive.Euler.RY-wantNaive.RY) +
		math.Abs(relNaive.Euler.RZ-wantNaive.RZ); d > 1e-12 {
		t.Errorf("euler-difference = %+v, want %+v", relNaive.Euler, wantNaive)
	}
}
