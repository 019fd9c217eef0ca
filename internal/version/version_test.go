package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersion(t *testing.T) {
	Version, BuildMeta, GitCommit = "v1.2.3", "rc1", "abc123"
	t.Cleanup(func() { Version, BuildMeta, GitCommit = "v0.0.0", "", "" })

	assert.Equal(t, "v1.2.3-rc1+abc123", FullVersion())
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "storefront-cli/v1.2.3-rc1+abc123 ("), ua)
	assert.Contains(t, ua, runtime.GOOS)
}
