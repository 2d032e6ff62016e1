package version

import (
	"runtime"
	"runtime/debug"
)

// Populated at build time via -ldflags, with debug.ReadBuildInfo as the
// fallback when unset.
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"go_os"`
	GOARCH    string `json:"go_arch"`
}

func Get(service string) Info {
	gitSHA := GitSHA
	buildTime := BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if gitSHA == "" {
					gitSHA = s.Value
				}
			case "vcs.time":
				if buildTime == "" {
					buildTime = s.Value
				}
			}
		}
	}

	return Info{
		Service:   service,
		Version:   BuildVersion,
		GitSHA:    gitSHA,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}
}
