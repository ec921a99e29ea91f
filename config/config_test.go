package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testloom/testloom/extension"
	"github.com/testloom/testloom/hub"
	"github.com/testloom/testloom/loggers"
)

type recordingPlugin struct {
	inits  int
	params map[string]string
}

func (p *recordingPlugin) Initialize(_ hub.Sink, params map[string]string) error {
	p.inits++
	p.params = params
	return nil
}

func newManagerWith(plugins map[string]*recordingPlugin) *loggers.Manager {
	var descs []extension.Descriptor
	for identity, plugin := range plugins {
		plugin := plugin
		descs = append(descs, extension.Descriptor{
			Identity:     identity,
			FriendlyName: friendlyNameOf(identity),
			New:          func() extension.Logger { return plugin },
		})
	}
	return loggers.NewManager(extension.NewRegistry(descs...))
}

func friendlyNameOf(identity string) string {
	parts := strings.Split(strings.TrimSuffix(identity, "/v1"), "/")
	return parts[len(parts)-1]
}

func TestLoad(t *testing.T) {
	raw := `
outputDirectory: /tmp/results
loggers:
  - identity: logger://platform/console/v1
    parameters:
      verbosity: minimal
  - friendlyName: trx
`
	cfg, err := Load(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/results", cfg.OutputDirectory)
	require.Len(t, cfg.Loggers, 2)
	assert.Equal(t, "logger://platform/console/v1", cfg.Loggers[0].Identity)
	assert.Equal(t, "minimal", cfg.Loggers[0].Parameters["verbosity"])
	assert.Equal(t, "trx", cfg.Loggers[1].FriendlyName)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(strings.NewReader("loggers: [not, {a: valid"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	console := &recordingPlugin{}
	trx := &recordingPlugin{}
	m := newManagerWith(map[string]*recordingPlugin{
		"logger://platform/console/v1": console,
		"logger://platform/trx/v1":     trx,
	})

	cfg := &Config{
		OutputDirectory: "/tmp/results",
		Loggers: []LoggerEntry{
			{Identity: "logger://platform/console/v1", Parameters: map[string]string{"verbosity": "minimal"}},
			{FriendlyName: "trx"},
		},
	}
	require.NoError(t, cfg.Apply(m))

	assert.Equal(t, 1, console.inits)
	assert.Equal(t, 1, trx.inits)

	dir, ok := loggers.Params(console.params).Get(loggers.OutputDirectoryKey)
	require.True(t, ok)
	assert.Equal(t, "/tmp/results", dir)
	v, _ := loggers.Params(console.params).Get("verbosity")
	assert.Equal(t, "minimal", v)
}

func TestApply_EntryParametersWinOverConfigDirectory(t *testing.T) {
	console := &recordingPlugin{}
	m := newManagerWith(map[string]*recordingPlugin{"logger://platform/console/v1": console})

	cfg := &Config{
		OutputDirectory: "/tmp/global",
		Loggers: []LoggerEntry{{
			Identity:   "logger://platform/console/v1",
			Parameters: map[string]string{loggers.OutputDirectoryKey: "/tmp/entry"},
		}},
	}
	require.NoError(t, cfg.Apply(m))

	dir, _ := loggers.Params(console.params).Get(loggers.OutputDirectoryKey)
	assert.Equal(t, "/tmp/entry", dir)
}

func TestApply_UnknownFriendlyName(t *testing.T) {
	m := newManagerWith(nil)
	cfg := &Config{Loggers: []LoggerEntry{{FriendlyName: "nope"}}}
	assert.Error(t, cfg.Apply(m))
}

func TestApply_EmptyEntry(t *testing.T) {
	m := newManagerWith(nil)
	cfg := &Config{Loggers: []LoggerEntry{{}}}
	assert.Error(t, cfg.Apply(m))
}

func TestApply_UnknownIdentitySurfacesNotFound(t *testing.T) {
	m := newManagerWith(nil)
	cfg := &Config{Loggers: []LoggerEntry{{Identity: "logger://missing/v1"}}}
	assert.ErrorIs(t, cfg.Apply(m), extension.ErrNotFound)
}
