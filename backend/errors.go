package backend

import (
	"errors"
	"strings"
)

// ErrNoBackend is returned when no backend is registered.
var ErrNoBackend = errors.New("backend: no backend available")

// NotRegisteredError is returned by Open for an unknown backend name.
type NotRegisteredError struct {
	Name      string
	Available []string
}

func (e *NotRegisteredError) Error() string {
	return "backend: " + e.Name + " not registered (available: " + strings.Join(e.Available, ", ") + ")"
}
