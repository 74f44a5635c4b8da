package utils

import (
	"image"
	"math"

	"github.com/golang/geo/r3"

	"github.com/vbschettino/apriltag-web/posemath"
)

func RadiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Helper to convert a tag pose to a user-friendly map. Rotation is reported
// in degrees for display.
func PoseToMap(pose posemath.Pose) map[string]interface{} {
	rx := RadiansToDegrees(pose.Rotation.RX)
	ry := RadiansToDegrees(pose.Rotation.RY)
	rz := RadiansToDegrees(pose.Rotation.RZ)
	return map[string]interface{}{
		"translation": vectorToMap(pose.Translation),
		"rotation_deg": map[string]float64{
			"rx": rx,
			"ry": ry,
			"rz": rz,
		},
	}
}

// DetectionToMap flattens one detection for DoCommand consumers.
func DetectionToMap(id int, corners [4]image.Point, center image.Point, pose posemath.Pose) map[string]interface{} {
	cornerList := make([]interface{}, 0, len(corners))
	for _, c := range corners {
		cornerList = append(cornerList, map[string]interface{}{"x": c.X, "y": c.Y})
	}
	return map[string]interface{}{
		"id":      id,
		"corners": cornerList,
		"center":  map[string]interface{}{"x": center.X, "y": center.Y},
		"pose":    PoseToMap(pose),
	}
}

// RelativePoseToMap flattens a relative pose summary: distance in meters,
// translation in the base tag's frame, rotation as Euler degrees, and the
// singularity flag so consumers can tell when yaw was unrecoverable.
func RelativePoseToMap(rel posemath.RelativePose) map[string]interface{} {
	rx := RadiansToDegrees(rel.Euler.RX)
	ry := RadiansToDegrees(rel.Euler.RY)
	rz := RadiansToDegrees(rel.Euler.RZ)
	return map[string]interface{}{
		"distance_m":  rel.Distance,
		"translation": vectorToMap(rel.Translation),
		"rotation_deg": map[string]float64{
			"rx": rx,
			"ry": ry,
			"rz": rz,
		},
		"singular": rel.Singular,
	}
}

func vectorToMap(v r3.Vector) map[string]float64 {
	return map[string]float64{
		"x": v.X,
		"y": v.Y,
		"z": v.Z,
	}
}
