// Package models holds the extra resource models the module serves alongside
// the tag tracker service.
package models

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"

	"github.com/vbschettino/apriltag-web/detector"
	"github.com/vbschettino/apriltag-web/imaging"
)

var OverlayCamera = resource.NewModel("vbschettino", "apriltag-web", "overlay-camera")

func init() {
	resource.RegisterComponent(camera.API, OverlayCamera,
		resource.Registration[camera.Camera, *OverlayCameraConfig]{
			Constructor: newOverlayCamera,
		},
	)
}

// OverlayCameraConfig wraps an underlying camera and draws the locator's
// candidate boxes over its frames. Debug view only; it carries no pose
// logic and the tracker never reads from it.
type OverlayCameraConfig struct {
	CameraName string `json:"camera_name"`
	BoxColor   string `json:"box_color"`   // "red", "green", "blue", "white", "black", ...
	BoxThick   int    `json:"box_thick"`   // Thickness of box edges in pixels
	MarkCenter bool   `json:"mark_center"` // Also mark each candidate center
}

// Validate ensures all parts of the config are valid and important fields exist.
// Returns implicit dependencies based on the config.
func (cfg *OverlayCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.CameraName == "" {
		return nil, nil, errors.New("camera_name is required")
	}
	// Set defaults
	if cfg.BoxColor == "" {
		cfg.BoxColor = "green"
	}
	if cfg.BoxThick == 0 {
		cfg.BoxThick = 2
	}
	return []string{cfg.CameraName}, nil, nil
}

type overlayCamera struct {
	name          resource.Name
	logger        logging.Logger
	cfg           *OverlayCameraConfig
	cancelCtx     context.Context
	cancelFunc    func()
	underlyingCam camera.Camera
	boxColor      color.Color
}

func newOverlayCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*OverlayCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	cam, err := camera.FromDependencies(deps, conf.CameraName)
	if err != nil {
		return nil, err
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())

	s := &overlayCamera{
		name:          rawConf.ResourceName(),
		logger:        logger,
		cfg:           conf,
		cancelCtx:     cancelCtx,
		cancelFunc:    cancelFunc,
		underlyingCam: cam,
		boxColor:      parseColor(conf.BoxColor),
	}
	return s, nil
}

func (s *overlayCamera) Reconfigure(ctx context.Context, deps resource.Dependencies, rawConf resource.Config) error {
	conf, err := resource.NativeConfig[*OverlayCameraConfig](rawConf)
	if err != nil {
		return err
	}

	cam, err := camera.FromDependencies(deps, conf.CameraName)
	if err != nil {
		return err
	}

	s.cfg = conf
	s.underlyingCam = cam
	s.boxColor = parseColor(conf.BoxColor)
	return nil
}

func (s *overlayCamera) Name() resource.Name {
	return s.name
}

func (s *overlayCamera) Close(context.Context) error {
	s.cancelFunc()
	return nil
}

func (s *overlayCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, nil
}

// drawCandidates runs the coarse locator on the frame and draws a box around
// every candidate it finds.
func (s *overlayCamera) drawCandidates(img image.Image) image.Image {
	bounds := img.Bounds()

	// Create a mutable copy of the image
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	frame := imaging.Reduce(rgba)
	candidates := detector.LocateCandidates(frame)
	for _, c := range candidates {
		s.drawBox(rgba, c.Box)
		if s.cfg.MarkCenter {
			s.drawMark(rgba, c.Center)
		}
	}
	return rgba
}

func (s *overlayCamera) drawBox(rgba *image.RGBA, box image.Rectangle) {
	thick := s.cfg.BoxThick
	bounds := rgba.Bounds()
	for x := box.Min.X; x <= box.Max.X; x++ {
		for dt := 0; dt < thick; dt++ {
			setInBounds(rgba, bounds, x, box.Min.Y+dt, s.boxColor)
			setInBounds(rgba, bounds, x, box.Max.Y-dt, s.boxColor)
		}
	}
	for y := box.Min.Y; y <= box.Max.Y; y++ {
		for dt := 0; dt < thick; dt++ {
			setInBounds(rgba, bounds, box.Min.X+dt, y, s.boxColor)
			setInBounds(rgba, bounds, box.Max.X-dt, y, s.boxColor)
		}
	}
}

func (s *overlayCamera) drawMark(rgba *image.RGBA, center image.Point) {
	const size = 4
	bounds := rgba.Bounds()
	for d := -size; d <= size; d++ {
		setInBounds(rgba, bounds, center.X+d, center.Y, s.boxColor)
		setInBounds(rgba, bounds, center.X, center.Y+d, s.boxColor)
	}
}

func setInBounds(rgba *image.RGBA, bounds image.Rectangle, x, y int, c color.Color) {
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		rgba.Set(x, y, c)
	}
}

// parseColor converts color string to color.Color
func parseColor(colorName string) color.Color {
	switch colorName {
	case "red":
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	case "green":
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case "blue":
		return color.RGBA{R: 0, G: 0, B: 255, A: 255}
	case "white":
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	case "black":
		return color.RGBA{R: 0, G: 0, B: 0, A: 255}
	case "yellow":
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	case "cyan":
		return color.RGBA{R: 0, G: 255, B: 255, A: 255}
	case "magenta":
		return color.RGBA{R: 255, G: 0, B: 255, A: 255}
	default:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255} // Default to green
	}
}

func (s *overlayCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (s *overlayCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return nil, camera.ImageMetadata{}, nil
}

func (s *overlayCamera) Images(ctx context.Context, mimeTypes []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	// Get images from underlying camera
	imgs, meta, err := s.underlyingCam.Images(ctx, mimeTypes, extra)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}

	// Create new named images with the candidate overlay
	resultImgs := make([]camera.NamedImage, len(imgs))
	for i, namedImg := range imgs {
		img, err := namedImg.Image(ctx)
		if err != nil {
			return nil, resource.ResponseMetadata{}, err
		}

		withBoxes := s.drawCandidates(img)

		resultImg, err := camera.NamedImageFromImage(withBoxes, namedImg.SourceName, namedImg.MimeType())
		if err != nil {
			return nil, resource.ResponseMetadata{}, err
		}
		resultImgs[i] = resultImg
	}

	return resultImgs, meta, nil
}

func (s *overlayCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, errors.New("next point cloud not implemented")
}

func (s *overlayCamera) Properties(ctx context.Context) (camera.Properties, error) {
	// Return properties from underlying camera
	return s.underlyingCam.Properties(ctx)
}
