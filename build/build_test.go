package build

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	js := `{
		"version": "v1.4.0",
		"git_commit": "abc123",
		"git_date": "2025-10-05",
		"build_time": "2025-10-05T12:00:00Z",
		"go_version": "go1.25.5",
		"dependencies": {
			"github.com/apache/arrow-go/v18": "v18.4.1"
		}
	}`

	info, ok := Parse(js)
	require.True(t, ok)
	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, "2025-10-05", info.GitDate)
	assert.Equal(t, "2025-10-05T12:00:00Z", info.BuildTime)
	assert.Equal(t, "go1.25.5", info.GoVersion)
	assert.Equal(t, map[string]string{"github.com/apache/arrow-go/v18": "v18.4.1"}, info.Dependencies)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	for _, js := range []string{"", "{}", "not valid json"} {
		info, ok := Parse(js)
		assert.False(t, ok, js)
		assert.Nil(t, info, js)
	}
}

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Info{Version: DevVersion}, fromBuildInfo(nil, false))

	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/amp-labs/amp-tablecheck", Version: "(devel)"},
		Deps:      []*debug.Module{{Path: "github.com/spf13/cobra", Version: "v1.8.1"}},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-01-01T00:00:00Z"},
		},
	}

	got := fromBuildInfo(bi, true)
	assert.Equal(t, DevVersion, got.Version)
	assert.Equal(t, "go1.25.0", got.GoVersion)
	assert.Equal(t, "deadbeef", got.GitCommit)
	assert.Equal(t, "2026-01-01T00:00:00Z", got.GitDate)
	assert.Equal(t, "v1.8.1", got.Dependencies["github.com/spf13/cobra"])

	bi.Main.Version = "v0.3.0"
	assert.Equal(t, "v0.3.0", fromBuildInfo(bi, true).Version)
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, Current().Version)
}
