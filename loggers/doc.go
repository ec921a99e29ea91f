// Package loggers implements the manager that owns logger registration and
// the logging lifecycle of a test session: it resolves identities through the
// extension registry, initializes plugins against the event hub exactly once
// per identity, binds run and discovery event sources to the hub, and controls
// the enable/close state machine.
package loggers
