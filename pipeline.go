// Package apriltagweb runs a square-fiducial detection pipeline over camera
// frames and derives the pose of one detected tag relative to another.
package apriltagweb

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"go.viam.com/rdk/rimage/transform"

	"github.com/vbschettino/apriltag-web/detector"
	"github.com/vbschettino/apriltag-web/imaging"
	"github.com/vbschettino/apriltag-web/posemath"
)

// ErrNoCameraModel means a cycle was requested before intrinsics existed.
var ErrNoCameraModel = errors.New("camera model not available")

// CycleResult is the complete output of one detection cycle.
type CycleResult struct {
	// Detections in raster scan order, one per resolved candidate.
	Detections []detector.Detection
	// ByID keys detections by identity; a later duplicate in scan order
	// silently overwrites an earlier one. That is the collision policy,
	// not an error.
	ByID map[int]detector.Detection
	// Relative is set when both requested identities were detected.
	Relative *posemath.RelativePose
}

// RunCycle executes one synchronous detection cycle: reduce the frame to
// intensities, locate candidates, resolve identities, estimate each tag's
// pose, and, when both requested identities are present, the relative pose
// of target with respect to base. Every intermediate is allocated fresh; a
// failure aborts only this cycle.
func RunCycle(
	img *image.RGBA,
	cfg detector.Config,
	intr *transform.PinholeCameraIntrinsics,
	resolver detector.Resolver,
	strategy posemath.RelativeStrategy,
	baseID, targetID int,
) (CycleResult, error) {
	if err := posemath.ValidateIntrinsics(intr); err != nil {
		return CycleResult{}, fmt.Errorf("%w: %v", ErrNoCameraModel, err)
	}
	if resolver == nil {
		return CycleResult{}, errors.New("identity resolver not configured")
	}
	if img == nil {
		return CycleResult{}, errors.New("malformed frame: nil image")
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return CycleResult{}, fmt.Errorf("malformed frame: dimensions %dx%d must be positive", width, height)
	}

	frame := imaging.Reduce(img)
	result := CycleResult{ByID: map[int]detector.Detection{}}
	for _, cand := range detector.LocateCandidates(frame) {
		id, ok := resolver.Resolve(cand, width, height)
		if !ok {
			continue
		}
		pose, err := posemath.EstimateTagPose(cand.Corners, cfg.TagSizeM, intr)
		if err != nil {
			return CycleResult{}, fmt.Errorf("pose estimate for tag %d: %w", id, err)
		}
		det := detector.Detection{
			ID:      id,
			Corners: cand.Corners,
			Center:  cand.Center,
			Pose:    pose,
		}
		result.Detections = append(result.Detections, det)
		result.ByID[id] = det
	}

	if strategy != nil {
		base, haveBase := result.ByID[baseID]
		target, haveTarget := result.ByID[targetID]
		if haveBase && haveTarget {
			rel := strategy.Relative(base.Pose, target.Pose)
			result.Relative = &rel
		}
	}
	return result, nil
}

// ToRGBA returns the image as *image.RGBA, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
