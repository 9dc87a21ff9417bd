package zeroconf

import (
	"errors"
	"fmt"
	"net"

	lanbeacon "github.com/lanbeacon/go-lanbeacon"
)

var (
	// ErrResponderClosed is returned by Register once Close has been called.
	ErrResponderClosed = errors.New("zeroconf: responder is closed")
	// ErrUnknownBackend is returned by NewResponder for an unrecognized
	// backend name.
	ErrUnknownBackend = errors.New("zeroconf: unknown backend")
)

// Responder is the handle on the local mDNS responder subsystem.
// Implementations can use different backends like the built-in mDNS
// responder or avahi-daemon.
//
// A process holds exactly one live Responder. Close releases the
// underlying OS resources exactly once; further calls are no-ops.
type Responder interface {
	// Register publishes the service record.
	// Returns ErrResponderClosed if the responder has been closed.
	Register(desc *lanbeacon.ServiceDescriptor) error

	// Unregister withdraws the current registration. Calling it with
	// nothing registered is a no-op.
	Unregister() error

	// Close unregisters and releases the responder resources. Idempotent.
	Close()
}

// NewResponder creates a responder for the given backend name:
// "" or "builtin" for the pure-Go responder, "avahi" for avahi-daemon.
// ifaceName optionally restricts the built-in responder to one network
// interface; empty means all interfaces.
func NewResponder(log lanbeacon.Logger, backend, ifaceName string) (Responder, error) {
	switch backend {
	case "", "builtin":
		ifaces, err := selectInterfaces(ifaceName)
		if err != nil {
			return nil, err
		}
		return NewBuiltinResponder(log, ifaces), nil
	case "avahi":
		if ifaceName != "" {
			return nil, fmt.Errorf("avahi backend does not support selecting an interface")
		}
		return NewAvahiResponder(log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func selectInterfaces(ifaceName string) ([]net.Interface, error) {
	if ifaceName == "" {
		return nil, nil
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("failed looking up interface %s: %w", ifaceName, err)
	}
	return []net.Interface{*iface}, nil
}
