// Package detector locates square fiducial candidates in an intensity frame
// and assigns them marker identities.
package detector

import (
	"errors"
	"fmt"
	"image"

	"github.com/vbschettino/apriltag-web/posemath"
)

var errUnimplemented = errors.New("unimplemented")

// Candidate is an axis-aligned box around a possible tag, with corners in
// TL, TR, BR, BL order. Produced once per cycle and never mutated.
type Candidate struct {
	Box     image.Rectangle
	Corners [4]image.Point
	Center  image.Point
}

func newCandidate(box image.Rectangle) Candidate {
	return Candidate{
		Box: box,
		Corners: [4]image.Point{
			{box.Min.X, box.Min.Y},
			{box.Max.X, box.Min.Y},
			{box.Max.X, box.Max.Y},
			{box.Min.X, box.Max.Y},
		},
		Center: image.Point{(box.Min.X + box.Max.X) / 2, (box.Min.Y + box.Max.Y) / 2},
	}
}

// Detection is a resolved candidate. Corners keep the candidate's winding
// order, so Corners[1]-Corners[0] is the tag's local right axis; the pose
// math depends on that ordering.
type Detection struct {
	ID      int
	Corners [4]image.Point
	Center  image.Point
	Pose    posemath.Pose
}

// Resolver assigns a marker identity to a candidate, or rejects it.
type Resolver interface {
	Resolve(c Candidate, frameWidth, frameHeight int) (int, bool)
}

// Identity resolution methods selectable via config.
const (
	IdentityMethodPosition = "position"
	IdentityMethodCodebook = "codebook"
)

// NewResolver builds the configured identity resolver. The codebook method
// is registered so configs can name it, but real family decoding is not
// implemented; it must never be blended with the position heuristic.
func NewResolver(method, family string) (Resolver, error) {
	switch method {
	case "", IdentityMethodPosition:
		return positionResolver{}, nil
	case IdentityMethodCodebook:
		return nil, fmt.Errorf("codebook decoding for family %q: %w", family, errUnimplemented)
	default:
		return nil, fmt.Errorf("identity_method must be either '%s' or '%s', got %q",
			IdentityMethodPosition, IdentityMethodCodebook, method)
	}
}
