package harness

import "time"

// DefaultTimeout is the per-case timeout used when none is configured.
// Zero waits for the engine indefinitely.
const DefaultTimeout time.Duration = 0

// TestCase pairs an input image with the preset it is rendered with.
type TestCase struct {
	Image       string `yaml:"image" json:"image"`
	Preset      string `yaml:"preset" json:"preset"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Name returns the display name used for filtering and listing:
// "image > preset".
func (tc TestCase) Name() string {
	return tc.Image + " > " + tc.Preset
}

var defaultCatalog = []TestCase{
	{Image: "ajanta.tif", Preset: "testing/preset_bwmixer_average.bs", Description: "8bit TIFF rendering"},
	{Image: "DSC03024.tif", Preset: "testing/preset_bwmixer_average.bs", Description: "16bit TIFF rendering"},
	{Image: "nikon_d4s_28.tif", Preset: "testing/preset_bwmixer_average.bs", Description: "16bit TIFF rendering"},
	{Image: "lima_peru_1400x525_with_alpha.png", Preset: "testing/preset_bwmixer_average.bs", Description: "RGBA, 8bit PNG"},
	{Image: "lima_peru_1400x525.jpg", Preset: "testing/preset_bwmixer_average.bs", Description: "RGB, 8bit JPG"},
	{Image: "DSC03024.tif", Preset: "testing/preset_bwmixer_dual.bs", Description: "dual mixer"},
	{Image: "DSC03024.tif", Preset: "testing/preset_curves_highcontrast.bs", Description: "curves"},
	{Image: "DSC03024.tif", Preset: "testing/preset_curves_lowkey.bs", Description: "curves"},
	{Image: "DSC03024.tif", Preset: "testing/preset_grain_max_blur.bs", Description: "grain"},
	{Image: "DSC03024.tif", Preset: "testing/preset_grain_no_blur.bs", Description: "grain"},
	{Image: "DSC03024.tif", Preset: "testing/preset_sharpen_coarse_nothreshold.bs", Description: "sharpen"},
	{Image: "DSC03024.tif", Preset: "testing/preset_sharpen_fine.bs", Description: "sharpen"},
	{Image: "DSC03024.tif", Preset: "testing/preset_splittone_orange_teal.bs", Description: "splittone"},
	{Image: "DSC03024.tif", Preset: "testing/preset_splittone_sepia.bs", Description: "splittone"},
	{Image: "DSC03024.tif", Preset: "testing/preset_vignette_black.bs", Description: "vignette"},
	{Image: "DSC03024.tif", Preset: "testing/preset_vignette_white.bs", Description: "vignette"},
	{Image: "DSC03024.tif", Preset: "effects/preset_effect_retro.bs"},
	{Image: "ajanta.tif", Preset: "effects/preset_effect_max_contrast.bs"},
	{Image: "nikon_d4s_28.tif", Preset: "effects/preset_effect_dramatic.bs"},
}

// DefaultCatalog returns a copy of the built-in test matrix in its fixed
// order.
func DefaultCatalog() []TestCase {
	cases := make([]TestCase, len(defaultCatalog))
	copy(cases, defaultCatalog)
	return cases
}
