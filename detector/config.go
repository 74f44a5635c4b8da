package detector

import (
	"errors"
	"fmt"
)

// Config is the detector snapshot consumed at the start of each cycle.
// Replacing it between cycles never invalidates in-flight state; each cycle
// is self-contained. Decimation, blur and edge refinement are carried for
// the codebook decoding path; the coarse locator runs on fixed constants.
type Config struct {
	Family         string  `json:"family"`
	TagSizeM       float64 `json:"tag_size_m"`
	Decimation     int     `json:"decimation"`
	BlurSigma      float64 `json:"blur_sigma"`
	RefineEdges    bool    `json:"refine_edges"`
	IdentityMethod string  `json:"identity_method"`
}

// Validate fills defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Family == "" {
		c.Family = "tag36h11"
	}
	if c.TagSizeM == 0 {
		c.TagSizeM = 0.1
	}
	if c.TagSizeM < 0 {
		return errors.New("tag_size_m must be greater than 0")
	}
	if c.Decimation == 0 {
		c.Decimation = 2
	}
	if c.Decimation < 0 {
		return errors.New("decimation must be greater than 0")
	}
	if c.BlurSigma < 0 {
		return errors.New("blur_sigma must be greater than or equal to 0")
	}
	if c.IdentityMethod == "" {
		c.IdentityMethod = IdentityMethodPosition
	}
	if c.IdentityMethod != IdentityMethodPosition && c.IdentityMethod != IdentityMethodCodebook {
		return fmt.Errorf("identity_method must be either '%s' or '%s'",
			IdentityMethodPosition, IdentityMethodCodebook)
	}
	return nil
}
