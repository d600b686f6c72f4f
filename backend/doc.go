// Package backend selects the GPU backend that builds atlas textures.
//
// Backends implement [atlas.Backend] and register a factory under a name,
// usually from an init function:
//
//	import _ "github.com/gogpu/spritekit/backend/software"
//
// # Backend Selection
//
// Use Best to get the highest-priority registered backend, or Get to
// request one by name:
//
//	b := backend.Best()
//	b := backend.Get(backend.Software)
//
// The native backend needs a device, so it registers only when
// native.Register is called with one.
package backend
