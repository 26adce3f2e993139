package harness

import (
	"runtime"
	"strings"
)

// Platform identifies the host operating system family the rendering
// executable was built for.
type Platform int

const (
	Unknown Platform = iota
	OSX
	Linux
	Windows
)

func (p Platform) String() string {
	switch p {
	case OSX:
		return "osx"
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// ResolvePlatform returns the platform the harness is running on.
func ResolvePlatform() Platform {
	return PlatformFromName(runtime.GOOS)
}

// PlatformFromName maps an operating system identifier to a Platform.
// Besides Go's GOOS values it accepts the identifiers other runtimes report
// ("linux2", "win32", "cygwin"), so names taken from CI metadata resolve too.
func PlatformFromName(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linux", "linux2", "android":
		return Linux
	case "darwin":
		return OSX
	case "windows", "win32", "cygwin":
		return Windows
	default:
		return Unknown
	}
}
