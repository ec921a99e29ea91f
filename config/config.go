package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/testloom/testloom/loggers"
)

// LoggerEntry selects one logger to enable. Identity wins when both fields
// are set; FriendlyName alone is resolved through the manager's registry.
type LoggerEntry struct {
	Identity     string            `yaml:"identity,omitempty"`
	FriendlyName string            `yaml:"friendlyName,omitempty"`
	Parameters   map[string]string `yaml:"parameters,omitempty"`
}

// Config is the logger section of a run configuration.
type Config struct {
	OutputDirectory string        `yaml:"outputDirectory,omitempty"`
	Loggers         []LoggerEntry `yaml:"loggers"`
}

// Load parses a run configuration from r.
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// LoadFile parses a run configuration from the file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Apply adds every configured logger to the manager. An entry with neither an
// identity nor a resolvable friendly name fails the call; failures from
// AddLogger (unknown identity, closed manager) are returned as-is. The
// configured output directory is injected as the reserved parameter unless
// the entry already supplies one.
func (c *Config) Apply(m *loggers.Manager) error {
	for i, entry := range c.Loggers {
		identity := entry.Identity
		if identity == "" {
			if entry.FriendlyName == "" {
				return fmt.Errorf("logger entry %d names neither identity nor friendlyName", i)
			}
			resolved, ok := m.ResolveIdentityByFriendlyName(entry.FriendlyName)
			if !ok {
				return fmt.Errorf("logger entry %d: unknown friendly name %q", i, entry.FriendlyName)
			}
			identity = resolved
		}
		params := entry.Parameters
		if c.OutputDirectory != "" {
			params = withOutputDirectory(params, c.OutputDirectory)
		}
		if err := m.AddLogger(identity, params); err != nil {
			return fmt.Errorf("add logger %q: %w", identity, err)
		}
	}
	return nil
}

func withOutputDirectory(params map[string]string, dir string) map[string]string {
	merged := loggers.Params{}
	for k, v := range params {
		merged.Set(k, v)
	}
	if _, ok := merged.Get(loggers.OutputDirectoryKey); !ok {
		merged.Set(loggers.OutputDirectoryKey, dir)
	}
	return merged
}
