package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"

	"github.com/erh/vmodutils"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"

	apriltagweb "github.com/vbschettino/apriltag-web"
	"github.com/vbschettino/apriltag-web/detector"
	"github.com/vbschettino/apriltag-web/posemath"
	"github.com/vbschettino/apriltag-web/utils"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	ctx := context.Background()
	logger := logging.NewLogger("cli")

	cameraName := flag.String("camera", "", "camera on the machine from the environment; empty runs on a synthetic frame")
	relativeMethod := flag.String("relative-method", posemath.RelativeMethodMatrix, "relative pose method")
	flag.Parse()

	img, err := fetchFrame(ctx, logger, *cameraName)
	if err != nil {
		return err
	}

	cfg := detector.Config{}
	if err := cfg.Validate(); err != nil {
		return err
	}
	resolver, err := detector.NewResolver(cfg.IdentityMethod, cfg.Family)
	if err != nil {
		return err
	}
	strategy, err := posemath.NewRelativeStrategy(*relativeMethod)
	if err != nil {
		return err
	}

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	intr := posemath.EstimateIntrinsics(width, height)

	result, err := apriltagweb.RunCycle(img, cfg, intr, resolver, strategy, 0, 1)
	if err != nil {
		return err
	}

	logger.Infof("%d detections in a %dx%d frame", len(result.Detections), width, height)
	for _, det := range result.Detections {
		fmt.Printf("tag %d: %+v\n", det.ID, utils.DetectionToMap(det.ID, det.Corners, det.Center, det.Pose))
	}
	if result.Relative != nil {
		fmt.Printf("relative (%s): %+v\n", strategy.Name(), utils.RelativePoseToMap(*result.Relative))
	} else {
		fmt.Println("relative pose not available: need both tag 0 and tag 1 in view")
	}
	return nil
}

func fetchFrame(ctx context.Context, logger logging.Logger, cameraName string) (*image.RGBA, error) {
	if cameraName == "" {
		logger.Info("no camera given, using a synthetic two-tag frame")
		return syntheticFrame(), nil
	}

	machine, err := vmodutils.ConnectToMachineFromEnv(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to machine: %w", err)
	}
	defer machine.Close(ctx)

	cam, err := camera.FromRobot(machine, cameraName)
	if err != nil {
		return nil, err
	}
	imgs, _, err := cam.Images(ctx, []string{"color"}, nil)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("no images returned from camera %q", cameraName)
	}
	img, err := imgs[0].Image(ctx)
	if err != nil {
		return nil, err
	}
	return apriltagweb.ToRGBA(img), nil
}

// syntheticFrame paints two bright squares on a 640x480 black frame, one in
// each identity band of the position resolver.
func syntheticFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 180; y < 220; y++ {
		for x := 180; x < 220; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	for y := 260; y < 300; y++ {
		for x := 430; x < 470; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	return img
}
