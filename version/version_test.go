package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, v, commit, built string) {
	t.Helper()
	oldV, oldC, oldB := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldB })
}

func TestGet_Dev(t *testing.T) {
	withBuild(t, "dev", "", "")
	info := Get()
	assert.Equal(t, "dev", info.Version)
	assert.False(t, info.IsRelease)
}

func TestGet_Release(t *testing.T) {
	withBuild(t, "1.2.0", "abc1234def", "2017-03-04T00:00:00Z")
	info := Get()
	assert.True(t, info.IsRelease)
	assert.Equal(t, "abc1234", info.GitCommit)
	assert.Equal(t, 2017, info.BuildDate.Year())
}

func TestGet_DirtyVersionIsNotRelease(t *testing.T) {
	withBuild(t, "1.2.0-dirty", "", "")
	assert.False(t, Get().IsRelease)
}

func TestInfo_Format(t *testing.T) {
	info := Info{Version: "1.2.0", GitCommit: "abc1234", IsDirty: true}
	assert.Equal(t, "1.2.0-abc1234-dirty", info.Short())
	assert.Equal(t, "1.2.0-abc1234-dirty", info.String())

	info.BuildDate = time.Date(2017, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1.2.0-abc1234-dirty (built 2017-03-04T00:00:00Z)", info.String())
	assert.Equal(t, "dev", Info{Version: "dev"}.Short())
}
