// Package version reports the build of the audioscribe binary.
//
// Values are stamped at link time and fall back to the VCS settings Go
// embeds in the binary:
//
//	go build -ldflags "-X github.com/kbukum/audioscribe/version.Version=1.2.0" ./cmd/audioscribe
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running build. It is embedded in batch reports.
type Info struct {
	Version   string `yaml:"version" json:"version"`
	GitCommit string `yaml:"git_commit,omitempty" json:"git_commit,omitempty"`
	BuildTime string `yaml:"build_time,omitempty" json:"build_time,omitempty"`
	GoVersion string `yaml:"go_version,omitempty" json:"go_version,omitempty"`
	Dirty     bool   `yaml:"dirty,omitempty" json:"dirty,omitempty"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// IsRelease reports whether the build carries a clean release version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

// Short returns "<version>[-<commit>][-dirty]", used as the telemetry
// service version.
func (i Info) Short() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String is the --version line.
func (i Info) String() string {
	s := "audioscribe " + i.Short()
	var extra []string
	if i.BuildTime != "" {
		extra = append(extra, "built "+i.BuildTime)
	}
	if i.GoVersion != "" {
		extra = append(extra, i.GoVersion)
	}
	if len(extra) > 0 {
		s += fmt.Sprintf(" (%s)", strings.Join(extra, ", "))
	}
	return s
}
