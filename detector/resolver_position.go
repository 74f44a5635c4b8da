package detector

// Horizontal bands for the position heuristic, as fractions of frame width.
const (
	leftBandFraction  = 0.4
	rightBandFraction = 0.6
)

// positionResolver is a deliberate placeholder for decoding the tag's bit
// pattern against a family codebook: identity comes purely from where the
// candidate center sits horizontally. Centers in the middle band resolve to
// nothing.
type positionResolver struct{}

func (positionResolver) Resolve(c Candidate, frameWidth, _ int) (int, bool) {
	cx := float64(c.Center.X)
	w := float64(frameWidth)
	switch {
	case cx < leftBandFraction*w:
		return 0, true
	case cx >= rightBandFraction*w:
		return 1, true
	default:
		return 0, false
	}
}
