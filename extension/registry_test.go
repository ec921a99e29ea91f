package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testloom/testloom/hub"
)

type stubLogger struct{}

func (stubLogger) Initialize(hub.Sink, map[string]string) error { return nil }

func newStub() Logger { return stubLogger{} }

func TestRegistry_ResolveIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(Descriptor{
		Identity:     "logger://Platform/Console/v1",
		FriendlyName: "console",
		New:          newStub,
	})

	for _, identity := range []string{
		"logger://Platform/Console/v1",
		"logger://platform/console/v1",
		"LOGGER://PLATFORM/CONSOLE/V1",
	} {
		d, ok := r.Resolve(identity)
		require.True(t, ok, "identity %q must resolve", identity)
		assert.Equal(t, "logger://Platform/Console/v1", d.Identity)
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Resolve("logger://missing/v1")
	assert.False(t, ok)

	_, ok = r.Resolve("not an absolute uri")
	assert.False(t, ok)
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Descriptor{Identity: "relative/path", New: newStub}))
	assert.Error(t, r.Register(Descriptor{Identity: "logger://ok/v1"})) // no factory

	require.NoError(t, r.Register(Descriptor{Identity: "logger://ok/v1", New: newStub}))
	assert.Error(t, r.Register(Descriptor{Identity: "LOGGER://OK/V1", New: newStub}),
		"duplicate detection must be case-insensitive")
}

func TestRegistry_FriendlyNamesKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(
		Descriptor{Identity: "logger://platform/trx/v2", FriendlyName: "trx", New: newStub},
		Descriptor{Identity: "logger://platform/console/v1", FriendlyName: "console", New: newStub},
	)

	names := r.FriendlyNames()
	require.Len(t, names, 2)
	assert.Equal(t, FriendlyName{Name: "trx", Identity: "logger://platform/trx/v2"}, names[0])
	assert.Equal(t, FriendlyName{Name: "console", Identity: "logger://platform/console/v1"}, names[1])

	assert.Equal(t, []string{"logger://platform/trx/v2", "logger://platform/console/v1"}, r.Identities())
}

func TestCanonicalIdentity(t *testing.T) {
	key, err := CanonicalIdentity("Logger://Platform/Console/V1")
	require.NoError(t, err)
	assert.Equal(t, "logger://platform/console/v1", key)

	_, err = CanonicalIdentity("console")
	assert.Error(t, err)
}
