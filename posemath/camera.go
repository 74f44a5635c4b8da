package posemath

import (
	"errors"

	"go.viam.com/rdk/rimage/transform"
)

// EstimateIntrinsics builds the fixed pinhole estimate used when no real
// calibration is available: fx = fy = 0.8 * width, principal point at the
// frame center. The owner recomputes it whenever frame dimensions change.
func EstimateIntrinsics(width, height int) *transform.PinholeCameraIntrinsics {
	f := 0.8 * float64(width)
	return &transform.PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     f,
		Fy:     f,
		Ppx:    float64(width) / 2.0,
		Ppy:    float64(height) / 2.0,
	}
}

// ValidateIntrinsics guards against running a cycle before a camera model
// exists or with degenerate focal lengths.
func ValidateIntrinsics(intr *transform.PinholeCameraIntrinsics) error {
	if intr == nil {
		return errors.New("camera model not configured")
	}
	if intr.Fx <= 0 || intr.Fy <= 0 {
		return errors.New("camera model has non-positive focal length")
	}
	return nil
}
