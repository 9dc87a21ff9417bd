package zeroconf

import (
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	lanbeacon "github.com/lanbeacon/go-lanbeacon"
)

const (
	avahiService         = "org.freedesktop.Avahi"
	avahiServerPath      = "/"
	avahiServerIface     = "org.freedesktop.Avahi.Server"
	avahiEntryGroupIface = "org.freedesktop.Avahi.EntryGroup"

	// Avahi constants
	avahiIfUnspec    = int32(-1) // AVAHI_IF_UNSPEC - use all interfaces
	avahiProtoUnspec = int32(-1) // AVAHI_PROTO_UNSPEC - use both IPv4 and IPv6
)

// AvahiResponder implements Responder using avahi-daemon via D-Bus.
// This lets the daemon share the system mDNS responder with other
// services instead of running its own.
//
// Compatibility: requires avahi-daemon 0.6.x or later (uses stable D-Bus API).
type AvahiResponder struct {
	log lanbeacon.Logger

	mu         sync.Mutex
	conn       *dbus.Conn
	entryGroup dbus.BusObject
	closed     bool
}

// NewAvahiResponder connects to the system D-Bus and verifies that
// avahi-daemon is reachable.
func NewAvahiResponder(log lanbeacon.Logger) (*AvahiResponder, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	// GetHostName is available in all avahi versions, use it as a liveness probe
	server := conn.Object(avahiService, avahiServerPath)
	var hostname string
	if err := server.Call(avahiServerIface+".GetHostName", 0).Store(&hostname); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to avahi-daemon (is it running?): %w", err)
	}

	log.Debugf("connected to avahi-daemon (%s), host %s", getAvahiVersion(server), hostname)
	return &AvahiResponder{log: log, conn: conn}, nil
}

// getAvahiVersion attempts to retrieve the avahi-daemon version.
// Returns "unknown" if the version cannot be determined.
func getAvahiVersion(server dbus.BusObject) string {
	// GetVersionString is available in avahi 0.8+
	var versionStr string
	if err := server.Call(avahiServerIface+".GetVersionString", 0).Store(&versionStr); err == nil {
		return versionStr
	}

	var apiVersion uint32
	if err := server.Call(avahiServerIface+".GetAPIVersion", 0).Store(&apiVersion); err == nil {
		return fmt.Sprintf("API v%d", apiVersion)
	}

	return "unknown"
}

func (a *AvahiResponder) Register(desc *lanbeacon.ServiceDescriptor) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrResponderClosed
	}

	if a.entryGroup == nil {
		server := a.conn.Object(avahiService, avahiServerPath)

		var groupPath dbus.ObjectPath
		if err := server.Call(avahiServerIface+".EntryGroupNew", 0).Store(&groupPath); err != nil {
			return fmt.Errorf("failed to create entry group: %w", err)
		}
		a.entryGroup = a.conn.Object(avahiService, groupPath)
	} else {
		// reuse the group across refresh cycles
		if err := a.entryGroup.Call(avahiEntryGroupIface+".Reset", 0).Err; err != nil {
			return fmt.Errorf("failed to reset entry group: %w", err)
		}
	}

	txt := desc.TXT()
	txtBytes := make([][]byte, len(txt))
	for i, t := range txt {
		txtBytes[i] = []byte(t)
	}

	// AddService signature: iiussssqaay
	// interface (i): network interface index, -1 for all
	// protocol (i): IP protocol, -1 for both IPv4/IPv6
	// flags (u): publish flags, 0 for default
	// name (s): service instance name
	// type (s): service type (e.g., "_http._tcp")
	// domain (s): domain to publish in (e.g., "local")
	// host (s): hostname, empty for default
	// port (q): port number (uint16)
	// txt (aay): TXT record data as array of byte arrays
	err := a.entryGroup.Call(avahiEntryGroupIface+".AddService", 0,
		avahiIfUnspec,
		avahiProtoUnspec,
		uint32(0),
		desc.Name,
		desc.ServiceType(),
		strings.TrimSuffix(desc.Domain(), "."),
		"", // host (empty = use default hostname)
		uint16(desc.Port),
		txtBytes,
	).Err
	if err != nil {
		return fmt.Errorf("failed to add service %s: %w", desc.Instance(), err)
	}

	if err := a.entryGroup.Call(avahiEntryGroupIface+".Commit", 0).Err; err != nil {
		return fmt.Errorf("failed to commit entry group: %w", err)
	}

	a.log.Debugf("registered %s with avahi-daemon on port %d", desc.Instance(), desc.Port)
	return nil
}

func (a *AvahiResponder) Unregister() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.entryGroup == nil {
		return nil
	}

	// Reset withdraws the published records but keeps the group usable.
	if err := a.entryGroup.Call(avahiEntryGroupIface+".Reset", 0).Err; err != nil {
		return fmt.Errorf("failed to reset entry group: %w", err)
	}
	return nil
}

func (a *AvahiResponder) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	if a.entryGroup != nil {
		// Free also unpublishes the service
		_ = a.entryGroup.Call(avahiEntryGroupIface+".Free", 0).Err
		a.entryGroup = nil
	}
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
}
