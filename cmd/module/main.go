package main

import (
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"

	apriltagweb "github.com/vbschettino/apriltag-web"
	"github.com/vbschettino/apriltag-web/models"
)

func main() {
	// ModularMain can take multiple APIModel arguments, if your module implements multiple models.
	module.ModularMain(
		resource.APIModel{API: generic.API, Model: apriltagweb.TagTracker},
		resource.APIModel{API: camera.API, Model: models.OverlayCamera},
	)
}
