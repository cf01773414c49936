package version

import "runtime/debug"

// version is overridden at build time with -ldflags "-X spareparts/pkg/version.version=v1.2.3".
var version = ""

// Version reports the build version, falling back to module build info and then "dev".
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
