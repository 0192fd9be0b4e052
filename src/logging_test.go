package fskrx

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)
	defer SetLogLevel("info") //nolint:errcheck

	require.NoError(t, SetLogLevel("warn"))
	assert.False(t, debugEnabled())

	Logger.Info("not shown")
	Logger.Warn("shown", "n", 1)
	assert.NotContains(t, buf.String(), "not shown")
	assert.Contains(t, buf.String(), "shown n=1")

	require.NoError(t, SetLogLevel("debug"))
	assert.True(t, debugEnabled())

	assert.Error(t, SetLogLevel("loud"))
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, VersionString("fskrx"), "fskrx - Version !UNKNOWN! (revision ")

	var buf bytes.Buffer
	printVersion(&buf, "fskrx-gen", false)
	assert.Contains(t, buf.String(), "fskrx-gen - Version")
}
