package idp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/authfront/internal/config"
)

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(map[string]config.ProviderConfig{
		"github": {Name: "github", ClientID: "id", ClientSecret: "secret"},
		"google": {Name: "google", ClientID: "id", ClientSecret: "secret"},
	})

	p, ok := registry.Get("github")
	require.True(t, ok)
	assert.Equal(t, "github", p.Name())

	_, ok = registry.Get("gitlab")
	assert.False(t, ok)
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry(map[string]config.ProviderConfig{
		"google": {Name: "google"},
		"azure":  {Name: "azure"},
		"github": {Name: "github"},
	})

	assert.Equal(t, []string{"azure", "github", "google"}, registry.Names())
}

func TestRegistryEmpty(t *testing.T) {
	registry := NewRegistry(nil)

	assert.Empty(t, registry.Names())
	_, ok := registry.Get("github")
	assert.False(t, ok)
}
