package extension

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/testloom/testloom/hub"
)

var (
	// ErrNotFound is returned when an identity does not match any registered
	// extension.
	ErrNotFound = fmt.Errorf("logger extension not found")
)

// Logger is the capability a logger plugin provides. Initialize wires the
// plugin to the event sink; params is the merged parameter map and always
// contains the reserved output-directory key (its value may be empty).
// Returning an error marks the plugin failed; it will not be retried.
type Logger interface {
	Initialize(sink hub.Sink, params map[string]string) error
}

// Factory constructs a fresh, uninitialized plugin instance.
type Factory func() Logger

// Descriptor describes one discoverable logger extension.
type Descriptor struct {
	// Identity is the absolute URI uniquely identifying the extension.
	Identity string

	// FriendlyName is the short human-readable alias, e.g. "console".
	FriendlyName string

	// New constructs the plugin.
	New Factory
}

// FriendlyName pairs an extension's alias with its identity.
type FriendlyName struct {
	Name     string
	Identity string
}

// Registry is the catalog of discoverable logger extensions, keyed by
// case-insensitive identity. How descriptors are discovered (disk scan,
// static linking) is the caller's concern.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]Descriptor
	order []string
}

// NewRegistry builds a registry from the given descriptors. Invalid
// descriptors panic; construction from a static catalog is programmer error
// territory, mirroring MustRegister-style APIs. Use Register for fallible
// registration.
func NewRegistry(descs ...Descriptor) *Registry {
	r := &Registry{byID: make(map[string]Descriptor)}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("extension: %v", err))
		}
	}
	return r
}

// Register adds a descriptor to the catalog. The identity must be an absolute
// URI not already present (case-insensitive) and the factory must be non-nil.
func (r *Registry) Register(d Descriptor) error {
	key, err := CanonicalIdentity(d.Identity)
	if err != nil {
		return err
	}
	if d.New == nil {
		return fmt.Errorf("extension %q has no factory", d.Identity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[key]; exists {
		return fmt.Errorf("extension %q already registered", d.Identity)
	}
	r.byID[key] = d
	r.order = append(r.order, key)
	return nil
}

// Resolve looks up a descriptor by identity, case-insensitively. Pure lookup:
// no side effects, no construction.
func (r *Registry) Resolve(identity string) (Descriptor, bool) {
	key, err := CanonicalIdentity(identity)
	if err != nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[key]
	return d, ok
}

// FriendlyNames returns the (alias, identity) pairs of every registered
// extension in registration order.
func (r *Registry) FriendlyNames() []FriendlyName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]FriendlyName, 0, len(r.order))
	for _, key := range r.order {
		d := r.byID[key]
		names = append(names, FriendlyName{Name: d.FriendlyName, Identity: d.Identity})
	}
	return names
}

// Identities returns the registered identities in registration order.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.order))
	for _, key := range r.order {
		ids = append(ids, r.byID[key].Identity)
	}
	return ids
}

// CanonicalIdentity validates that identity is an absolute URI and returns its
// case-insensitive comparison form.
func CanonicalIdentity(identity string) (string, error) {
	u, err := url.Parse(identity)
	if err != nil {
		return "", fmt.Errorf("identity %q is not a valid URI: %w", identity, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("identity %q is not an absolute URI", identity)
	}
	return strings.ToLower(identity), nil
}
