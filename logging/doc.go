// Package logging provides the minimal structured-logging interface the
// platform's components depend on, with a slog-backed adapter and a NoOp
// implementation for tests and silent operation. The interface is kept small
// so hosts can plug in their own logger without adapters beyond the four
// level methods.
package logging
