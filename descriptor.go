package go_lanbeacon

import (
	"fmt"
	"sort"
	"strings"
)

// ServiceDescriptor describes the service record being advertised.
// It is constructed once at startup and never mutated afterwards; a
// configuration change requires constructing a new descriptor.
type ServiceDescriptor struct {
	// Type is the full DNS-SD type suffix, e.g. "_http._tcp.local.".
	Type string
	// Name is the service instance name, e.g. the machine hostname.
	Name string
	// Port is the advertised TCP port.
	Port int
	// Properties holds TXT record metadata as key/value pairs.
	Properties map[string]string
	// Server is the advertising host's resolvable name, e.g. "box1.local.".
	Server string
}

// NewServiceDescriptor builds an immutable descriptor from the loaded
// configuration. An empty configured name falls back to the hostname.
func NewServiceDescriptor(cfg *Config, hostname string) *ServiceDescriptor {
	name := cfg.Name
	if name == "" {
		name = hostname
	}

	// copy so later map writes cannot leak into the descriptor
	props := make(map[string]string, len(cfg.Properties))
	for k, v := range cfg.Properties {
		props[k] = v
	}

	return &ServiceDescriptor{
		Type:       cfg.Type,
		Name:       name,
		Port:       cfg.Port,
		Properties: props,
		Server:     fmt.Sprintf("%s.local.", hostname),
	}
}

// Instance returns the fully qualified instance name, e.g.
// "box1._http._tcp.local.".
func (d *ServiceDescriptor) Instance() string {
	return fmt.Sprintf("%s.%s", d.Name, d.Type)
}

// ServiceType returns the bare service type portion of Type, e.g.
// "_http._tcp" for "_http._tcp.local.".
func (d *ServiceDescriptor) ServiceType() string {
	service, _ := splitType(d.Type)
	return service
}

// Domain returns the domain portion of Type, e.g. "local." for
// "_http._tcp.local.".
func (d *ServiceDescriptor) Domain() string {
	_, domain := splitType(d.Type)
	return domain
}

// TXT encodes Properties as sorted "key=value" strings, the format both
// the built-in responder and avahi expect for TXT records.
func (d *ServiceDescriptor) TXT() []string {
	txt := make([]string, 0, len(d.Properties))
	for k, v := range d.Properties {
		txt = append(txt, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(txt)
	return txt
}

// splitType separates a DNS-SD type suffix into service type and domain:
// leading underscore-prefixed labels form the service type, the rest is
// the domain. "_http._tcp.local." yields ("_http._tcp", "local.").
func splitType(typ string) (service, domain string) {
	labels := strings.Split(strings.TrimSuffix(typ, "."), ".")

	var i int
	for i = 0; i < len(labels); i++ {
		if !strings.HasPrefix(labels[i], "_") {
			break
		}
	}

	service = strings.Join(labels[:i], ".")
	if i < len(labels) {
		domain = strings.Join(labels[i:], ".") + "."
	} else {
		domain = "local."
	}
	return service, domain
}
