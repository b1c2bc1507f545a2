// Package build reports which tablecheck binary is running. Release builds
// inject a JSON document with -ldflags:
//
//	go build -ldflags "-X github.com/amp-labs/amp-tablecheck/build.info=$(cat build.json)"
//
// Without it, the module and VCS data that the Go toolchain stamps into
// every binary is used instead.
package build

import (
	"encoding/json"
	"log/slog"
	"runtime/debug"
)

// DevVersion is reported when no version was stamped into the binary.
const DevVersion = "dev"

// Set at link time.
var info string //nolint:gochecknoglobals

// Info is the build metadata of a binary.
type Info struct {
	Version      string            `json:"version"`
	GitCommit    string            `json:"git_commit"` //nolint:tagliatelle
	GitDate      string            `json:"git_date"`   //nolint:tagliatelle
	BuildTime    string            `json:"build_time"` //nolint:tagliatelle
	GoVersion    string            `json:"go_version"` //nolint:tagliatelle
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Parse deserializes a JSON string into build Info.
// Returns (nil, false) if the input is empty, "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if len(js) == 0 || js == "{}" {
		return nil, false
	}

	var parsed Info

	if err := json.Unmarshal([]byte(js), &parsed); err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &parsed, true
}

// Current returns the info injected at link time, falling back to what
// runtime/debug knows about the binary.
func Current() Info {
	if parsed, ok := Parse(info); ok {
		if parsed.Version == "" {
			parsed.Version = DevVersion
		}

		return *parsed
	}

	return fromBuildInfo(debug.ReadBuildInfo())
}

func fromBuildInfo(bi *debug.BuildInfo, ok bool) Info {
	out := Info{Version: DevVersion}
	if !ok || bi == nil {
		return out
	}

	out.GoVersion = bi.GoVersion

	if v := bi.Main.Version; v != "" && v != "(devel)" {
		out.Version = v
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.GitCommit = s.Value
		case "vcs.time":
			out.GitDate = s.Value
		}
	}

	if len(bi.Deps) > 0 {
		out.Dependencies = make(map[string]string, len(bi.Deps))
		for _, dep := range bi.Deps {
			out.Dependencies[dep.Path] = dep.Version
		}
	}

	return out
}
