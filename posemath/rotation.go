// Package posemath estimates single-tag poses from image-space corners and
// combines two tag poses into a relative translation and rotation.
package posemath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// EulerAngles are intrinsic ZYX rotations in radians: yaw about Z, then
// pitch about the rotated Y, then roll about the rotated X.
type EulerAngles struct {
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
	RZ float64 `json:"rz"`
}

// Pose is a tag position in meters plus its Euler orientation, both in the
// camera frame.
type Pose struct {
	Translation r3.Vector
	Rotation    EulerAngles
}

// Below this, the ZYX matrix form no longer determines yaw and the
// conversion takes the gimbal-lock branch.
const singularEps = 1e-6

// EulerToMatrix composes R = Rz(rz) * Ry(ry) * Rx(rx) as a 3x3 matrix.
func EulerToMatrix(e EulerAngles) *mat.Dense {
	cx, sx := math.Cos(e.RX), math.Sin(e.RX)
	cy, sy := math.Cos(e.RY), math.Sin(e.RY)
	cz, sz := math.Cos(e.RZ), math.Sin(e.RZ)
	return mat.NewDense(3, 3, []float64{
		cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx,
		sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx,
		-sy, cy * sx, cy * cx,
	})
}

// MatrixToEuler recovers ZYX Euler angles from a rotation matrix. The second
// return reports the gimbal-lock branch: there RZ is fixed at zero because
// the matrix genuinely no longer carries it, a real information loss the
// caller must be able to see.
func MatrixToEuler(r *mat.Dense) (EulerAngles, bool) {
	sy := math.Sqrt(r.At(0, 0)*r.At(0, 0) + r.At(1, 0)*r.At(1, 0))
	if sy < singularEps {
		return EulerAngles{
			RX: math.Atan2(-r.At(1, 2), r.At(1, 1)),
			RY: math.Atan2(-r.At(2, 0), sy),
			RZ: 0,
		}, true
	}
	return EulerAngles{
		RX: math.Atan2(r.At(2, 1), r.At(2, 2)),
		RY: math.Atan2(-r.At(2, 0), sy),
		RZ: math.Atan2(r.At(1, 0), r.At(0, 0)),
	}, false
}

// Degrees returns the angles converted to degrees for display.
func (e EulerAngles) Degrees() (float64, float64, float64) {
	const toDeg = 180.0 / math.Pi
	return e.RX * toDeg, e.RY * toDeg, e.RZ * toDeg
}

// rotateVector applies a 3x3 matrix to a vector.
func rotateVector(r mat.Matrix, v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(r, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
