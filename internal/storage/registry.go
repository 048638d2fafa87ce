package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/zinc-sig/ferry/internal/logging"
)

// Deps are the collaborators handed to every engine factory.
type Deps struct {
	Uploader Uploader
	Logger   logging.Logger
	FS       billy.Filesystem
}

// Factory builds an engine from a raw configuration map.
type Factory func(config map[string]any, deps Deps) (Engine, error)

// Registry maps short engine names to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[normalizeName(name)] = factory
}

// New creates an engine by name. A leading ":" is accepted, so ":ftp" and
// "ftp" are equivalent.
func (r *Registry) New(name string, config map[string]any, deps Deps) (Engine, error) {
	factory, ok := r.factories[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	if deps.Uploader == nil {
		return nil, fmt.Errorf("%s: uploader is required", name)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return factory(config, deps)
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ":"))
}
