package compileinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	info := fromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.18",
		Path:      "github.com/carbocation/qrsdetect/cmd/qrsdetect",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d04b7e5a6b0c1d2e3f4a5b6c7d8e9f001"},
			{Key: "vcs.time", Value: "2022-06-01T06:39:06Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	assert.Equal(t, "go1.18", info.GoVersion)
	assert.Equal(t, "2022-06-01T06:39:06Z", info.CommitTime)
	assert.True(t, info.Modified)
	assert.Equal(t, "3f2a9c1d04b7-dirty", info.Revision())
	assert.Contains(t, info.String(), "modified after that commit")

	assert.Equal(t, "unknown", CompileInfo{}.Revision())
	assert.Equal(t, "abc", CompileInfo{Commit: "abc"}.Revision())
}
