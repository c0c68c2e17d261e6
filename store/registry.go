package store

import (
	"flag"
	"fmt"
	"sort"
	"sync"
)

// Backend is a build-time archive plugin.
//
// Backends register themselves in init():
//
//	store.MustRegister(store.Backend{ ... })
//
// A binary must import the backend's package for registration to occur.
type Backend struct {
	Name        string
	Description string

	// RegisterFlags adds backend-specific flags to fs. It must be safe
	// to call once per FlagSet.
	RegisterFlags func(fs *flag.FlagSet)

	// Open constructs the Archive from values parsed into the flags
	// RegisterFlags added.
	Open func() (Archive, error)
}

var (
	backendMu sync.RWMutex
	backends  = map[string]Backend{}
)

// Register registers an archive backend.
func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("store: backend name is required")
	}
	if b.RegisterFlags == nil {
		return fmt.Errorf("store: backend %q missing RegisterFlags", b.Name)
	}
	if b.Open == nil {
		return fmt.Errorf("store: backend %q missing Open", b.Name)
	}

	backendMu.Lock()
	defer backendMu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("store: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns the registered backends sorted by name.
func List() []Backend {
	backendMu.RLock()
	defer backendMu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered backend names, sorted.
func Names() []string {
	bs := List()
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

// RegisterFlags registers the flags of every backend on fs.
//
// This enables single-pass flag parsing (the flag package rejects
// unknown flags).
func RegisterFlags(fs *flag.FlagSet) {
	for _, b := range List() {
		b.RegisterFlags(fs)
	}
}

// Open opens the named backend.
func Open(name string) (Archive, error) {
	backendMu.RLock()
	b, ok := backends[name]
	backendMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unknown backend %q", name)
	}
	return b.Open()
}
