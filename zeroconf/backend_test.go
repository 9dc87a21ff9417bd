package zeroconf

import (
	"testing"

	lanbeacon "github.com/lanbeacon/go-lanbeacon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponderUnknownBackend(t *testing.T) {
	_, err := NewResponder(&lanbeacon.NullLogger{}, "bonjour", "")
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewResponderUnknownInterface(t *testing.T) {
	_, err := NewResponder(&lanbeacon.NullLogger{}, "builtin", "definitely-not-an-interface-0")
	require.Error(t, err)
}

func TestNewResponderAvahiRejectsInterface(t *testing.T) {
	_, err := NewResponder(&lanbeacon.NullLogger{}, "avahi", "eth0")
	require.Error(t, err)
}

func TestBuiltinResponderClosed(t *testing.T) {
	desc := lanbeacon.NewServiceDescriptor(lanbeacon.DefaultConfig(), "box1")

	b := NewBuiltinResponder(&lanbeacon.NullLogger{}, nil)
	b.Close()

	assert.ErrorIs(t, b.Register(desc), ErrResponderClosed)

	// closing again and unregistering are both harmless
	b.Close()
	assert.NoError(t, b.Unregister())
}

func TestBuiltinUnregisterWithoutRegister(t *testing.T) {
	b := NewBuiltinResponder(&lanbeacon.NullLogger{}, nil)
	assert.NoError(t, b.Unregister())
}
