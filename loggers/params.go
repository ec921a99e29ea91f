package loggers

import "strings"

// OutputDirectoryKey is the reserved parameter carrying the run's output
// directory. It is present in every merged parameter map handed to a plugin;
// its value may be empty when no directory was configured.
const OutputDirectoryKey = "outputDirectory"

// Params is a parameter map with case-insensitive keys. The reserved keys
// keep their canonical spelling; supplied keys keep the caller's spelling
// unless they match an existing key case-insensitively, in which case they
// override its value in place.
type Params map[string]string

// NewParams builds the merged parameter map for a plugin: recognized defaults
// first (currently only OutputDirectoryKey), then caller-supplied values
// merged over them.
func NewParams(outputDirectory string, supplied map[string]string) Params {
	p := Params{OutputDirectoryKey: outputDirectory}
	for k, v := range supplied {
		p.Set(k, v)
	}
	return p
}

// Get returns the value for key, matching case-insensitively.
func (p Params) Get(key string) (string, bool) {
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Set stores value under key. If a key already exists that matches
// case-insensitively, its value is replaced and its spelling kept.
func (p Params) Set(key, value string) {
	for k := range p {
		if strings.EqualFold(k, key) {
			p[k] = value
			return
		}
	}
	p[key] = value
}
