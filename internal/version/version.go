package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the current version of the application.
	// Set at build time with -ldflags; go install embeds the module version.
	Version = "dev"
)

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// String formats the version banner for the given platform.
func String(goos, goarch string) string {
	return fmt.Sprintf("toolgate %s %s/%s", Version, goos, goarch)
}
