package detector

import (
	"image"
	"math"

	"github.com/vbschettino/apriltag-web/imaging"
)

// Coarse silhouette scan parameters. The locator trades precision for a cost
// bound proportional to the scan lattice, independent of image content.
const (
	intensityThreshold = 128
	minTagSizePx       = 30
	scanStridePx       = 10
	contrastRadiusPx   = 15
	probeStepPx        = 5
	probeMaxPx         = 100
	minBoxSidePx       = 20
	squarenessTol      = 0.3
	minBrightFraction  = 0.2
	maxBrightFraction  = 0.8
)

// LocateCandidates scans a strided lattice over the frame, keeping a margin
// of one minimum tag size from every edge, and emits candidate boxes in
// raster scan order. A lattice point inside an already-accepted box is
// skipped; no other deduplication happens anywhere downstream.
//
// The boundary search probes only the four cardinal rays from the accepted
// center, so rotated tags can have their extents underestimated.
func LocateCandidates(frame *imaging.IntensityFrame) []Candidate {
	var found []Candidate
	for y := minTagSizePx; y < frame.Height-minTagSizePx; y += scanStridePx {
		for x := minTagSizePx; x < frame.Width-minTagSizePx; x += scanStridePx {
			if insideExisting(found, image.Point{x, y}) {
				continue
			}
			if !mixedContrast(frame, x, y) {
				continue
			}
			left := probeExtent(frame, x, y, -1, 0)
			right := probeExtent(frame, x, y, 1, 0)
			up := probeExtent(frame, x, y, 0, -1)
			down := probeExtent(frame, x, y, 0, 1)
			box := image.Rect(x-left, y-up, x+right, y+down)
			w, h := box.Dx(), box.Dy()
			if w <= minBoxSidePx || h <= minBoxSidePx {
				continue
			}
			if math.Abs(float64(w-h)) >= squarenessTol*float64(w) {
				continue
			}
			found = append(found, newCandidate(box))
		}
	}
	return found
}

// mixedContrast accepts a lattice point only if the window around it holds
// both light and dark pixels: a tag silhouette is never uniform.
func mixedContrast(frame *imaging.IntensityFrame, x, y int) bool {
	bright, total := 0, 0
	for wy := y - contrastRadiusPx; wy <= y+contrastRadiusPx; wy++ {
		for wx := x - contrastRadiusPx; wx <= x+contrastRadiusPx; wx++ {
			if !frame.In(wx, wy) {
				continue
			}
			total++
			if frame.At(wx, wy) >= intensityThreshold {
				bright++
			}
		}
	}
	if total == 0 {
		return false
	}
	frac := float64(bright) / float64(total)
	return frac > minBrightFraction && frac < maxBrightFraction
}

// probeExtent walks outward from (x, y) in fixed increments and returns the
// radius at which intensity first drops below the threshold. Hitting the
// frame edge or the probe cap ends the walk at the last in-bounds radius.
func probeExtent(frame *imaging.IntensityFrame, x, y, dx, dy int) int {
	extent := 0
	for r := probeStepPx; r <= probeMaxPx; r += probeStepPx {
		px, py := x+dx*r, y+dy*r
		if !frame.In(px, py) {
			break
		}
		extent = r
		if frame.At(px, py) < intensityThreshold {
			break
		}
	}
	return extent
}

func insideExisting(found []Candidate, pt image.Point) bool {
	for _, c := range found {
		if pt.In(c.Box) {
			return true
		}
	}
	return false
}
