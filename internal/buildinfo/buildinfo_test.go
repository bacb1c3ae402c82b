package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	oldV, oldD, oldC := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = oldV, oldD, oldC })

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A\n", buf.String())

	Version, Date, Commit = "v1.0.0", "2026-01-02", "abc123"
	buf.Reset()
	PrintBuildData(&buf)
	assert.Contains(t, buf.String(), "Build version: v1.0.0")
	assert.Contains(t, buf.String(), "Build commit: abc123")
}
