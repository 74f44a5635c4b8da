package posemath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Relative pose strategies selectable via config. The matrix method is the
// default; the euler-difference method reproduces the naive per-component
// subtraction some deployments relied on. They disagree for any nonzero
// orientation and are never blended.
const (
	RelativeMethodMatrix    = "matrix"
	RelativeMethodEulerDiff = "euler-difference"
)

// RelativePose is how tag 2's pose differs from tag 1's. Translation is in
// tag 1's local frame; Distance is the world-frame separation and is
// deliberately frame-invariant even though the translation direction is not.
// Singular reports that the Euler form lost yaw to gimbal lock.
type RelativePose struct {
	Translation r3.Vector
	Distance    float64
	Rotation    *mat.Dense
	Euler       EulerAngles
	Singular    bool
}

// RelativeStrategy computes the pose of tag 2 relative to tag 1.
type RelativeStrategy interface {
	Relative(pose1, pose2 Pose) RelativePose
	Name() string
}

// NewRelativeStrategy builds the strategy for a configured method name.
func NewRelativeStrategy(method string) (RelativeStrategy, error) {
	switch method {
	case "", RelativeMethodMatrix:
		return matrixStrategy{}, nil
	case RelativeMethodEulerDiff:
		return eulerDiffStrategy{}, nil
	default:
		return nil, fmt.Errorf("relative_method must be either '%s' or '%s', got %q",
			RelativeMethodMatrix, RelativeMethodEulerDiff, method)
	}
}

// matrixStrategy composes the rotations properly: R_rel = R2 * R1^T, with
// the translation difference rotated into tag 1's frame.
type matrixStrategy struct{}

func (matrixStrategy) Name() string { return RelativeMethodMatrix }

func (matrixStrategy) Relative(pose1, pose2 Pose) RelativePose {
	r1 := EulerToMatrix(pose1.Rotation)
	r2 := EulerToMatrix(pose2.Rotation)

	var rel mat.Dense
	rel.Mul(r2, r1.T())

	delta := pose2.Translation.Sub(pose1.Translation)
	euler, singular := MatrixToEuler(&rel)
	return RelativePose{
		Translation: rotateVector(r1.T(), delta),
		Distance:    delta.Norm(),
		Rotation:    &rel,
		Euler:       euler,
		Singular:    singular,
	}
}

// eulerDiffStrategy subtracts Euler angles component-wise and leaves the
// translation difference in the world frame. Kept only as an explicitly
// selected compatibility behavior.
type eulerDiffStrategy struct{}

func (eulerDiffStrategy) Name() string { return RelativeMethodEulerDiff }

func (eulerDiffStrategy) Relative(pose1, pose2 Pose) RelativePose {
	euler := EulerAngles{
		RX: pose2.Rotation.RX - pose1.Rotation.RX,
		RY: pose2.Rotation.RY - pose1.Rotation.RY,
		RZ: pose2.Rotation.RZ - pose1.Rotation.RZ,
	}
	delta := pose2.Translation.Sub(pose1.Translation)
	return RelativePose{
		Translation: delta,
		Distance:    delta.Norm(),
		Rotation:    EulerToMatrix(euler),
		Euler:       euler,
	}
}
