// Package config loads the YAML run configuration naming the loggers to
// enable for a test session and applies it to a logger manager. Entries may
// name a logger by identity URI or by the extension's friendly name.
package config
