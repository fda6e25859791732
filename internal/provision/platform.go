package provision

import "runtime"

// Platform classifies the host for the persistence phase.
type Platform int

const (
	// PlatformOther covers every host without a persistent environment
	// store known to this tool; only the process-scope phase runs.
	PlatformOther Platform = iota
	// PlatformWindows persists through setx in machine scope.
	PlatformWindows
	// PlatformLinux persists by appending to the system environment file.
	PlatformLinux
)

// DetectPlatform classifies the current host from runtime.GOOS.
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	default:
		return PlatformOther
	}
}

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformLinux:
		return "linux"
	default:
		return "other"
	}
}
