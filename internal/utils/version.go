package utils

import "runtime/debug"

// Version is overridden at build time with -ldflags.
var Version = ""

// GetVersion returns the linker-set version, falling back to the module
// version recorded in the build info.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	version := info.Main.Version
	for _, setting := range info.Settings {
		if setting.Key == "vcs.modified" && setting.Value == "true" {
			version += "-dirty"
		}
	}

	return version
}
