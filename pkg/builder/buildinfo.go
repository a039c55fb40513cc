package builder

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set by -ldflags "-X github.com/zxhio/wolping/pkg/builder.Version=..."
var (
	Name      = "wolping"
	Version   = "unknown"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func init() {
	if Version != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
			if len(Commit) > 12 {
				Commit = Commit[:12]
			}
		case "vcs.time":
			Date = s.Value
		}
	}
}

func BuildInfo() string {
	return fmt.Sprintf("%s %s (%s %s) %s %s/%s",
		Name, Version, Commit, Date, GoVersion, runtime.GOOS, runtime.GOARCH)
}
