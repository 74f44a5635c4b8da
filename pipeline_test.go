package apriltagweb

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/vbschettino/apriltag-web/detector"
	"github.com/vbschettino/apriltag-web/posemath"
)

func paintSquare(img *image.RGBA, x0, y0, side int) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img.SetRGBA(x, y, white)
		}
	}
}

func defaultPipeline(t *testing.T) (detector.Config, detector.Resolver, posemath.RelativeStrategy) {
	t.Helper()
	cfg := detector.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver, err := detector.NewResolver(cfg.IdentityMethod, cfg.Family)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strategy, err := posemath.NewRelativeStrategy(posemath.RelativeMethodMatrix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cfg, resolver, strategy
}

func TestRunCycleTwoTags(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	paintSquare(img, 180, 180, 40)
	paintSquare(img, 430, 260, 40)
	cfg, resolver, strategy := defaultPipeline(t)
	intr := posemath.EstimateIntrinsics(640, 480)

	result, err := RunCycle(img, cfg, intr, resolver, strategy, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(result.Detections))
	}
	if result.Detections[0].ID != 0 || result.Detections[1].ID != 1 {
		t.Errorf("identities = (%d, %d), want (0, 1)",
			result.Detections[0].ID, result.Detections[1].ID)
	}
	for _, det := range result.Detections {
		if det.Pose.Translation.Z <= 0 {
			t.Errorf("tag %d has non-positive distance %v", det.ID, det.Pose.Translation.Z)
		}
	}

	if result.Relative == nil {
		t.Fatal("both tags present but no relative pose")
	}
	rel := result.Relative
	if rel.Singular {
		t.Error("unrotated tags flagged singular")
	}
	// Both tags are unrotated, so the relative rotation is the identity and
	// the base-frame translation equals the world-frame difference.
	if rel.Euler != (posemath.EulerAngles{}) {
		t.Errorf("relative euler = %+v, want zero", rel.Euler)
	}
	base, target := result.ByID[0], result.ByID[1]
	delta := target.Pose.Translation.Sub(base.Pose.Translation)
	if math.Abs(rel.Distance-delta.Norm()) > 1e-12 {
		t.Errorf("distance = %v, want %v", rel.Distance, delta.Norm())
	}
	if math.Abs(rel.Translation.X-delta.X) > 1e-12 || rel.Translation.X <= 0 {
		t.Errorf("relative x = %v, want %v (positive, to the base tag's right)", rel.Translation.X, delta.X)
	}
}

func TestRunCycleEmptyScene(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	cfg, resolver, strategy := defaultPipeline(t)
	intr := posemath.EstimateIntrinsics(640, 480)

	// No markers is a valid outcome, not an error.
	result, err := RunCycle(img, cfg, intr, resolver, strategy, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Detections) != 0 || result.Relative != nil {
		t.Errorf("blank scene produced %d detections, relative=%v",
			len(result.Detections), result.Relative)
	}
}

func TestRunCycleIdentityCollision(t *testing.T) {
	// Two tags in the left band both resolve to identity 0: the later one in
	// scan order wins in ByID while the ordered list keeps both.
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	paintSquare(img, 180, 180, 40)
	paintSquare(img, 60, 300, 40)
	cfg, resolver, strategy := defaultPipeline(t)
	intr := posemath.EstimateIntrinsics(640, 480)

	result, err := RunCycle(img, cfg, intr, resolver, strategy, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(result.Detections))
	}
	if len(result.ByID) != 1 {
		t.Fatalf("ByID has %d entries, want 1 after collision", len(result.ByID))
	}
	winner := result.ByID[0]
	if winner.Center.Y != result.Detections[1].Center.Y {
		t.Errorf("collision winner center %v, want the later detection %v",
			winner.Center, result.Detections[1].Center)
	}
	if result.Relative != nil {
		t.Error("relative pose produced without tag 1 in view")
	}
}

func TestRunCycleGuards(t *testing.T) {
	cfg, resolver, strategy := defaultPipeline(t)
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))

	if _, err := RunCycle(img, cfg, nil, resolver, strategy, 0, 1); !errors.Is(err, ErrNoCameraModel) {
		t.Errorf("nil intrinsics: got %v, want ErrNoCameraModel", err)
	}
	intr := posemath.EstimateIntrinsics(64, 64)
	if _, err := RunCycle(nil, cfg, intr, resolver, strategy, 0, 1); err == nil {
		t.Error("nil image should fail the cycle")
	}
	if _, err := RunCycle(img, cfg, intr, nil, strategy, 0, 1); err == nil {
		t.Error("nil resolver should fail the cycle")
	}
}
