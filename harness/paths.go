package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Default locations, relative to the suite directory.
const (
	DefaultExecutableDir = "../../bin/release/"
	DefaultImageRoot     = "resources/images/"
	DefaultPresetRoot    = "resources/presets/"
	DefaultResultsDir    = "results"

	// OutputPrefix starts every rendered file name.
	OutputPrefix = "filtered_"
)

// ErrUnresolvedExecutable is returned when no executable location is known
// for a platform.
var ErrUnresolvedExecutable = errors.New("cannot resolve executable path")

type executableLocation struct {
	dir  string
	name string
}

var executableLocations = map[Platform]executableLocation{
	OSX:     {dir: DefaultExecutableDir, name: "BlackSilk.app/Contents/MacOS/BlackSilk"},
	Linux:   {dir: DefaultExecutableDir, name: "BlackSilk"},
	Windows: {dir: DefaultExecutableDir, name: "BlackSilk.exe"},
}

// ExecutableLocation returns the release directory and file name of the
// rendering executable on p. Both are empty for Unknown.
func ExecutableLocation(p Platform) (dir, name string) {
	loc := executableLocations[p]
	return loc.dir, loc.name
}

// Layout describes where the harness finds its inputs and writes its outputs.
// Relative entries are resolved against Base; an empty Base means the
// process working directory.
type Layout struct {
	Base          string
	ExecutableDir string // overrides the per-platform directory when set
	ImageRoot     string
	PresetRoot    string
	ResultsDir    string
}

// DefaultLayout returns the layout of the integration-test-suite directory.
func DefaultLayout() Layout {
	return Layout{
		ImageRoot:  DefaultImageRoot,
		PresetRoot: DefaultPresetRoot,
		ResultsDir: DefaultResultsDir,
	}
}

// ExecutablePath returns the full path of the rendering executable for p.
func (l Layout) ExecutablePath(p Platform) (string, error) {
	dir, name := ExecutableLocation(p)
	if dir == "" {
		return "", fmt.Errorf("%w for platform %s", ErrUnresolvedExecutable, p)
	}
	if l.ExecutableDir != "" {
		dir = l.ExecutableDir
	}
	return l.CommandPath(filepath.Join(filepath.FromSlash(dir), filepath.FromSlash(name))), nil
}

// CommandPath resolves an executable path against Base. A result without any
// directory component gets a "./" prefix, otherwise os/exec would search PATH
// for it instead of running the file in the working directory.
func (l Layout) CommandPath(path string) string {
	path = l.resolve(filepath.FromSlash(path))
	if filepath.IsAbs(path) || strings.ContainsRune(path, filepath.Separator) {
		return path
	}
	return "." + string(filepath.Separator) + path
}

// ImagePath returns the full path of an input image.
func (l Layout) ImagePath(name string) string {
	return l.resolve(filepath.Join(filepath.FromSlash(l.ImageRoot), filepath.FromSlash(name)))
}

// PresetPath returns the full path of a preset file. Preset identifiers may
// contain subdirectories ("testing/preset_curves_lowkey.bs").
func (l Layout) PresetPath(name string) string {
	return l.resolve(filepath.Join(filepath.FromSlash(l.PresetRoot), filepath.FromSlash(name)))
}

// ResultsPath returns the resolved results directory.
func (l Layout) ResultsPath() string {
	return l.resolve(filepath.FromSlash(l.ResultsDir))
}

// OutputPath returns where the engine should write the rendering of image
// with preset.
func (l Layout) OutputPath(image, preset string) string {
	return filepath.Join(l.ResultsPath(), OutputFileName(image, preset))
}

// OutputFileName builds the result file name from the preset's base name and
// the image name.
func OutputFileName(image, preset string) string {
	return OutputPrefix + filepath.Base(filepath.FromSlash(preset)) + "_" + image
}

func (l Layout) resolve(path string) string {
	if l.Base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Base, path)
}
