package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"
)

// ErrNotFound is returned when no asset is registered under a name.
var ErrNotFound = errors.New("assets: not found")

// Registry maps overlay names to encoded images.
//
// Thread safety: all methods are safe for concurrent use.
type Registry struct {
	reg *gpucontext.Registry[[]byte]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{reg: gpucontext.NewRegistry[[]byte]()}
}

// Builtin returns a registry holding the generated black-border and
// vignette-large-soft masks. Each mask is generated on first use.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(BlackBorder, func() []byte {
		return encode(BorderMask(DefaultSize, DefaultSize/16))
	})
	r.Register(VignetteLargeSoft, func() []byte {
		return encode(VignetteMask(DefaultSize, 0.35, 1.0))
	})
	return r
}

// Register installs a generator for name, replacing any previous one.
// The generator runs at most once.
func (r *Registry) Register(name string, generate func() []byte) {
	r.reg.Register(name, sync.OnceValue(generate))
}

// RegisterBytes installs fixed encoded bytes for name.
func (r *Registry) RegisterBytes(name string, data []byte) {
	r.reg.Register(name, func() []byte { return data })
}

// RegisterFile installs a lazily read file from fsys for name.
// Read failures surface as an empty asset.
func (r *Registry) RegisterFile(name string, fsys fs.FS, path string) {
	r.Register(name, func() []byte {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		return data
	})
}

// Asset returns the encoded bytes registered for name.
func (r *Registry) Asset(name string) ([]byte, error) {
	if !r.reg.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	data := r.reg.Get(name)
	if len(data) == 0 {
		return nil, fmt.Errorf("assets: %q is empty", name)
	}
	return data, nil
}

// Names lists the registered asset names in sorted order.
func (r *Registry) Names() []string {
	names := r.reg.Available()
	slices.Sort(names)
	return names
}
