package zeroconf

import (
	"fmt"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
	lanbeacon "github.com/lanbeacon/go-lanbeacon"
)

// BuiltinResponder implements Responder using the grandcat/zeroconf
// library, which provides a pure-Go mDNS responder.
type BuiltinResponder struct {
	log    lanbeacon.Logger
	ifaces []net.Interface

	mu     sync.Mutex
	server *zeroconf.Server
	closed bool
}

// NewBuiltinResponder creates a built-in mDNS responder. If ifaces is
// empty, the service will be advertised on all interfaces.
func NewBuiltinResponder(log lanbeacon.Logger, ifaces []net.Interface) *BuiltinResponder {
	return &BuiltinResponder{log: log, ifaces: ifaces}
}

func (b *BuiltinResponder) Register(desc *lanbeacon.ServiceDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrResponderClosed
	}

	// replace a stale registration instead of stacking a second one
	if b.server != nil {
		b.server.Shutdown()
		b.server = nil
	}

	server, err := zeroconf.Register(desc.Name, desc.ServiceType(), desc.Domain(), desc.Port, desc.TXT(), b.ifaces)
	if err != nil {
		return fmt.Errorf("failed registering %s: %w", desc.Instance(), err)
	}

	b.server = server
	b.log.Debugf("registered %s on port %d", desc.Instance(), desc.Port)
	return nil
}

func (b *BuiltinResponder) Unregister() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.server == nil {
		return nil
	}

	// Shutdown sends the goodbye packets withdrawing the record.
	b.server.Shutdown()
	b.server = nil
	return nil
}

func (b *BuiltinResponder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	if b.server != nil {
		b.server.Shutdown()
		b.server = nil
	}
}
