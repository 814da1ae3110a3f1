package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadRegistryMissingFile(t *testing.T) {
	registry := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	require.Zero(t, registry.Len())
}

func TestLoadRegistryMalformedDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	registry := LoadRegistry(path, zap.NewNop())
	require.Zero(t, registry.Len())
}

func TestLoadRegistryParsesDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.json")
	doc := `{
		"Toot": {
			"url": "https://example.com/hook",
			"description": "Post to Mastodon",
			"fields": ["text"]
		},
		"lights_off": {
			"url": "https://example.com/lights",
			"method": "PUT"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	registry := LoadRegistry(path, zap.NewNop())
	require.Equal(t, 2, registry.Len())
	require.Equal(t, []string{"lights_off", "toot"}, registry.Names())

	def, ok := registry.Get("TOOT")
	require.True(t, ok, "lookup must be case-insensitive")
	require.Equal(t, "Post to Mastodon", def.Description)
	require.Equal(t, []string{"text"}, def.Fields)
}
