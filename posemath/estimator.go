package posemath

import (
	"errors"
	"image"
	"math"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/rimage/transform"
)

// EstimateTagPose approximates a tag's 3D pose from its four image-space
// corners (TL, TR, BR, BL) and known physical side length. Distance comes
// from apparent size under a pinhole model, lateral position from similar
// triangles, and orientation from the top edge alone: yaw only, with roll
// and pitch fixed at zero. A 4-DOF estimate, not a PnP solve; callers must
// not read information into RX or RY.
//
// Only Fx is used as the focal length even though the intrinsics carry Fx
// and Fy separately. That single-scalar simplification is part of the
// contract, not an oversight to unify away.
func EstimateTagPose(corners [4]image.Point, tagSizeM float64, intr *transform.PinholeCameraIntrinsics) (Pose, error) {
	if err := ValidateIntrinsics(intr); err != nil {
		return Pose{}, err
	}
	dx := float64(corners[1].X - corners[0].X)
	dy := float64(corners[1].Y - corners[0].Y)
	apparent := math.Hypot(dx, dy)
	if apparent == 0 {
		return Pose{}, errors.New("degenerate corners: zero apparent size")
	}
	focal := intr.Fx
	distance := tagSizeM * focal / apparent

	var cx, cy float64
	for _, c := range corners {
		cx += float64(c.X)
		cy += float64(c.Y)
	}
	cx /= 4
	cy /= 4

	return Pose{
		Translation: r3.Vector{
			X: (cx - intr.Ppx) * distance / focal,
			Y: (cy - intr.Ppy) * distance / focal,
			Z: distance,
		},
		Rotation: EulerAngles{RZ: math.Atan2(dy, dx)},
	}, nil
}
