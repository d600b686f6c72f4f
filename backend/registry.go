package backend

import (
	"sort"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/spritekit/atlas"
)

// Backend names.
const (
	// Native builds bucket textures on a wgpu HAL device.
	Native = "native"

	// Software keeps bucket textures in CPU memory.
	Software = "software"
)

// registry holds registered backends.
// Priority order for selection: Native > Software.
var registry = gpucontext.NewRegistry[atlas.Backend](
	gpucontext.WithPriority(Native, Software),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory func() atlas.Backend) {
	registry.Register(name, factory)
	slogger().Debug("backend: registered", "name", name)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	names := registry.Available()
	sort.Strings(names)
	return names
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) atlas.Backend {
	return registry.Get(name)
}

// Best returns the highest-priority registered backend, or nil.
func Best() atlas.Backend {
	b := registry.Best()
	if b != nil {
		slogger().Info("backend: selected", "name", b.Name())
	}
	return b
}

// MustBest returns the best backend or panics.
func MustBest() atlas.Backend {
	b := Best()
	if b == nil {
		panic(ErrNoBackend)
	}
	return b
}

// Open returns the named backend, or the best one when name is empty.
func Open(name string) (atlas.Backend, error) {
	if name == "" {
		if b := Best(); b != nil {
			return b, nil
		}
		return nil, ErrNoBackend
	}
	b := Get(name)
	if b == nil {
		return nil, &NotRegisteredError{Name: name, Available: Available()}
	}
	return b, nil
}
