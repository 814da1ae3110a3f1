package action

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Definition describes one outbound webhook action. Definitions are
// externally configured and read-only to the rest of the system.
type Definition struct {
	// URL is the webhook target.
	URL string `json:"url"`

	// Description is the human-readable summary shown in listings and
	// success messages.
	Description string `json:"description"`

	// Method is the HTTP method; empty defaults to POST.
	Method string `json:"method"`

	// Fields is the ordered list of named argument fields. The last
	// field absorbs any remaining free text.
	Fields []string `json:"fields"`

	// Headers are extra request headers merged over the defaults.
	Headers map[string]string `json:"headers"`

	// BodyTemplate is a static JSON object the argument payload is
	// merged into.
	BodyTemplate map[string]any `json:"body_template"`
}

// Registry is the static name-to-definition mapping, loaded once at
// process start. Lookups of unknown names are a miss, not an error.
type Registry struct {
	actions map[string]Definition
}

// NewRegistry builds a registry from an explicit definition map.
// Names are normalized to lower case.
func NewRegistry(defs map[string]Definition) *Registry {
	actions := make(map[string]Definition, len(defs))
	for name, def := range defs {
		actions[strings.ToLower(name)] = def
	}
	return &Registry{actions: actions}
}

// LoadRegistry reads action definitions from a JSON document at path.
// A missing or malformed document degrades to an empty registry with a
// logged warning rather than a startup failure.
func LoadRegistry(path string, log *zap.Logger) *Registry {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to read actions file, continuing with no actions",
				zap.String("path", path), zap.Error(err))
		}
		return NewRegistry(nil)
	}

	var defs map[string]Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		log.Warn("malformed actions file, continuing with no actions",
			zap.String("path", path), zap.Error(err))
		return NewRegistry(nil)
	}

	log.Info("loaded actions", zap.String("path", path), zap.Int("count", len(defs)))
	return NewRegistry(defs)
}

// Get looks up a definition by name (case-insensitive).
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.actions[strings.ToLower(name)]
	return def, ok
}

// Names returns all registered action names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}
