package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes a build.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns the build information, filling gaps from the module's
// embedded build settings.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildDate.IsZero() {
					if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
						info.BuildDate = t
					}
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short formats info as "version[-commit][-dirty]".
func (i Info) Short() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

func (i Info) String() string {
	if i.BuildDate.IsZero() {
		return i.Short()
	}
	return fmt.Sprintf("%s (built %s)", i.Short(), i.BuildDate.UTC().Format(time.RFC3339))
}
