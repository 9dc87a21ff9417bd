package go_lanbeacon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorNameDefaultsToHostname(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 9999

	desc := NewServiceDescriptor(cfg, "box1")
	assert.Equal(t, "box1", desc.Name)
	assert.Equal(t, "box1._http._tcp.local.", desc.Instance())
	assert.Equal(t, "box1.local.", desc.Server)
	assert.Equal(t, 9999, desc.Port)
}

func TestDescriptorConfiguredNameWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "media-server"

	desc := NewServiceDescriptor(cfg, "box1")
	assert.Equal(t, "media-server", desc.Name)
	assert.Equal(t, "media-server._http._tcp.local.", desc.Instance())
}

func TestDescriptorPropertiesCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Properties = map[string]string{"version": "1"}

	desc := NewServiceDescriptor(cfg, "box1")
	cfg.Properties["version"] = "2"
	assert.Equal(t, "1", desc.Properties["version"])
}

func TestDescriptorTXT(t *testing.T) {
	desc := &ServiceDescriptor{Properties: map[string]string{
		"path":    "/api",
		"version": "1.2",
	}}
	assert.Equal(t, []string{"path=/api", "version=1.2"}, desc.TXT())

	empty := &ServiceDescriptor{}
	assert.Empty(t, empty.TXT())
}

func TestDescriptorSplitType(t *testing.T) {
	desc := &ServiceDescriptor{Type: "_http._tcp.local."}
	assert.Equal(t, "_http._tcp", desc.ServiceType())
	assert.Equal(t, "local.", desc.Domain())

	bare := &ServiceDescriptor{Type: "_ipp._tcp"}
	assert.Equal(t, "_ipp._tcp", bare.ServiceType())
	assert.Equal(t, "local.", bare.Domain())
}
