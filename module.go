package apriltagweb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage/transform"
	genericservice "go.viam.com/rdk/services/generic"
	rdkutils "go.viam.com/utils"

	"github.com/vbschettino/apriltag-web/detector"
	"github.com/vbschettino/apriltag-web/posemath"
	"github.com/vbschettino/apriltag-web/utils"
)

var TagTracker = resource.NewModel("vbschettino", "apriltag-web", "tag-tracker")

func init() {
	resource.RegisterService(genericservice.API, TagTracker,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newTagTracker,
		},
	)
}

type Config struct {
	CameraName     string  `json:"camera_name"`
	UpdateRateHz   float64 `json:"update_rate_hz"`
	TagFamily      string  `json:"tag_family"`
	TagSizeM       float64 `json:"tag_size_m"`
	Decimation     int     `json:"decimation"`
	BlurSigma      float64 `json:"blur_sigma"`
	RefineEdges    *bool   `json:"refine_edges,omitempty"`
	IdentityMethod string  `json:"identity_method"` // "position" or "codebook"
	RelativeMethod string  `json:"relative_method"` // "matrix" or "euler-difference"
	BaseTagID      int     `json:"base_tag_id"`
	TargetTagID    int     `json:"target_tag_id"`
	EnableOnStart  bool    `json:"enable_on_start"`
}

// Validate ensures all parts of the config are valid and important fields exist.
// Returns implicit required (first return) and optional (second return) dependencies based on the config.
// The path is the JSON path in your robot's config (not the `Config` struct) to the
// resource being validated; e.g. "services.0".
func (cfg *Config) Validate(path string) ([]string, []string, error) {
	if cfg.CameraName == "" {
		return nil, nil, errors.New("camera_name is required")
	}
	if cfg.UpdateRateHz < 0 {
		return nil, nil, errors.New("update_rate_hz must be greater than 0")
	}
	// Set defaults for optional parameters
	if cfg.UpdateRateHz == 0 {
		cfg.UpdateRateHz = 10.0
	}
	if cfg.BaseTagID == 0 && cfg.TargetTagID == 0 {
		cfg.TargetTagID = 1
	}
	if cfg.BaseTagID == cfg.TargetTagID {
		return nil, nil, errors.New("base_tag_id and target_tag_id must differ")
	}
	detCfg := cfg.detectorConfig()
	if err := detCfg.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := posemath.NewRelativeStrategy(cfg.RelativeMethod); err != nil {
		return nil, nil, err
	}
	return []string{cfg.CameraName}, nil, nil
}

func (cfg *Config) detectorConfig() detector.Config {
	refine := true
	if cfg.RefineEdges != nil {
		refine = *cfg.RefineEdges
	}
	return detector.Config{
		Family:         cfg.TagFamily,
		TagSizeM:       cfg.TagSizeM,
		Decimation:     cfg.Decimation,
		BlurSigma:      cfg.BlurSigma,
		RefineEdges:    refine,
		IdentityMethod: cfg.IdentityMethod,
	}
}

type tagTracker struct {
	resource.AlwaysRebuild

	name   resource.Name
	logger logging.Logger
	cfg    *Config

	cam      camera.Camera
	resolver detector.Resolver
	strategy posemath.RelativeStrategy

	mu         sync.RWMutex
	running    bool
	detCfg     detector.Config
	intrinsics *transform.PinholeCameraIntrinsics
	latest     *CycleResult
	lastErr    error

	worker *rdkutils.StoppableWorkers
}

func newTagTracker(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*Config](rawConf)
	if err != nil {
		return nil, err
	}
	return NewTagTracker(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewTagTracker(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *Config, logger logging.Logger) (resource.Resource, error) {
	cam, err := camera.FromDependencies(deps, conf.CameraName)
	if err != nil {
		return nil, fmt.Errorf("failed to get camera %q: %w", conf.CameraName, err)
	}

	detCfg := conf.detectorConfig()
	if err := detCfg.Validate(); err != nil {
		return nil, err
	}
	resolver, err := detector.NewResolver(detCfg.IdentityMethod, detCfg.Family)
	if err != nil {
		return nil, err
	}
	strategy, err := posemath.NewRelativeStrategy(conf.RelativeMethod)
	if err != nil {
		return nil, err
	}

	s := &tagTracker{
		name:     name,
		logger:   logger,
		cfg:      conf,
		cam:      cam,
		resolver: resolver,
		strategy: strategy,
		detCfg:   detCfg,
		running:  conf.EnableOnStart,
		worker:   rdkutils.NewBackgroundStoppableWorkers(),
	}
	s.worker.Add(s.trackingLoop)
	if conf.EnableOnStart {
		s.logger.Infof("tag tracker started, watching camera %q at %.1f Hz", conf.CameraName, conf.UpdateRateHz)
	}
	return s, nil
}

func (s *tagTracker) Name() resource.Name {
	return s.name
}

func (s *tagTracker) Close(context.Context) error {
	s.worker.Stop()
	return nil
}

func (s *tagTracker) trackingLoop(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / s.cfg.UpdateRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running {
				continue
			}
			if err := s.runOnce(ctx); err != nil {
				// A failed cycle carries nothing into the next one; the
				// next frame gets a fresh attempt.
				s.logger.Errorf("detection cycle failed: %v", err)
				s.mu.Lock()
				s.lastErr = err
				s.mu.Unlock()
			}
		}
	}
}

// runOnce pulls one frame, refreshes the camera model if the frame size
// changed, and runs a single synchronous detection cycle.
func (s *tagTracker) runOnce(ctx context.Context) error {
	imgs, _, err := s.cam.Images(ctx, []string{"color"}, nil)
	if err != nil {
		return fmt.Errorf("failed to get images from camera: %w", err)
	}
	if len(imgs) == 0 {
		return errors.New("no images returned from camera")
	}
	img, err := imgs[0].Image(ctx)
	if err != nil {
		return err
	}
	rgba := ToRGBA(img)
	width, height := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	s.mu.Lock()
	if s.intrinsics == nil || s.intrinsics.Width != width || s.intrinsics.Height != height {
		s.intrinsics = posemath.EstimateIntrinsics(width, height)
		s.logger.Debugf("camera model recomputed for %dx%d: fx=%.1f", width, height, s.intrinsics.Fx)
	}
	intr := s.intrinsics
	detCfg := s.detCfg
	s.mu.Unlock()

	result, err := RunCycle(rgba, detCfg, intr, s.resolver, s.strategy, s.cfg.BaseTagID, s.cfg.TargetTagID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.latest = &result
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Debugf("cycle complete: %d detections, relative=%v", len(result.Detections), result.Relative != nil)
	return nil
}

func (s *tagTracker) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	s.logger.Debugf("DoCommand: %+v", cmd)
	switch cmd["command"] {
	case "detections":
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.latest == nil {
			return map[string]interface{}{"detections": []interface{}{}, "by_id": map[string]interface{}{}, "count": 0}, nil
		}
		out := make([]interface{}, 0, len(s.latest.Detections))
		for _, det := range s.latest.Detections {
			out = append(out, utils.DetectionToMap(det.ID, det.Corners, det.Center, det.Pose))
		}
		byID := make(map[string]interface{}, len(s.latest.ByID))
		for id, det := range s.latest.ByID {
			byID[strconv.Itoa(id)] = utils.DetectionToMap(det.ID, det.Corners, det.Center, det.Pose)
		}
		return map[string]interface{}{"detections": out, "by_id": byID, "count": len(out)}, nil

	case "relative":
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.latest == nil || s.latest.Relative == nil {
			return map[string]interface{}{"both_present": false}, nil
		}
		resp := utils.RelativePoseToMap(*s.latest.Relative)
		resp["both_present"] = true
		resp["base_tag_id"] = s.cfg.BaseTagID
		resp["target_tag_id"] = s.cfg.TargetTagID
		return resp, nil

	case "status":
		s.mu.RLock()
		defer s.mu.RUnlock()
		resp := map[string]interface{}{
			"running":         s.running,
			"camera":          s.cfg.CameraName,
			"identity_method": s.detCfg.IdentityMethod,
			"relative_method": s.strategy.Name(),
		}
		if s.lastErr != nil {
			resp["last_error"] = s.lastErr.Error()
		}
		if s.intrinsics != nil {
			resp["frame_width"] = s.intrinsics.Width
			resp["frame_height"] = s.intrinsics.Height
		}
		return resp, nil

	case "start":
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()
		s.logger.Info("tag tracker started")
		return map[string]interface{}{"running": true}, nil

	case "stop":
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.logger.Info("tag tracker stopped")
		return map[string]interface{}{"running": false}, nil

	default:
		return nil, fmt.Errorf("unknown command %v", cmd["command"])
	}
}
