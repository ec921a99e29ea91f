package loggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParams_DefaultsOutputDirectory(t *testing.T) {
	p := NewParams("/tmp/results", nil)

	dir, ok := p.Get(OutputDirectoryKey)
	require.True(t, ok)
	assert.Equal(t, "/tmp/results", dir)
}

func TestNewParams_SuppliedOverridesDefault(t *testing.T) {
	p := NewParams("/tmp/default", map[string]string{
		"OUTPUTDIRECTORY": "/tmp/override",
		"verbosity":       "minimal",
	})

	dir, ok := p.Get("outputdirectory")
	require.True(t, ok)
	assert.Equal(t, "/tmp/override", dir)

	v, ok := p.Get("Verbosity")
	require.True(t, ok)
	assert.Equal(t, "minimal", v)

	// Override replaced the value in place, it did not add a second key.
	assert.Len(t, p, 2)
}

func TestParams_GetUnknownKey(t *testing.T) {
	p := NewParams("", nil)
	_, ok := p.Get("missing")
	assert.False(t, ok)
}
