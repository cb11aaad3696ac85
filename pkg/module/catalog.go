package module

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrModuleNotFound is returned by Import when no module is registered under
// the requested path.
var ErrModuleNotFound = errors.New("module not found")

// Exports maps attribute names to exported values.
type Exports map[string]any

// Module is a registered route module.
type Module struct {
	// Path is the dotted module path (e.g. "app.routes.http.hello.world").
	Path string

	// Revision increases every time the module is registered again.
	Revision uint64

	exports Exports
}

// Lookup returns the export named name. Absent and nil exports both report
// false.
func (m *Module) Lookup(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.exports[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Names returns the export names in sorted order.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.exports))
	for name := range m.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is a concurrency-safe set of modules keyed by dotted path.
type Catalog struct {
	mu       sync.RWMutex
	modules  map[string]*Module
	revision uint64
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]*Module)}
}

// Register adds the module at path, replacing any previous registration.
func (c *Catalog) Register(path string, exports Exports) *Module {
	copied := make(Exports, len(exports))
	for k, v := range exports {
		copied[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.revision++
	m := &Module{Path: path, Revision: c.revision, exports: copied}
	c.modules[path] = m
	return m
}

// Unregister removes the module at path. It reports whether one existed.
func (c *Catalog) Unregister(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.modules[path]; !ok {
		return false
	}
	delete(c.modules, path)
	return true
}

// Import resolves path to its module.
func (c *Catalog) Import(path string) (*Module, error) {
	c.mu.RLock()
	m, ok := c.modules[path]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import %s: %w", path, ErrModuleNotFound)
	}
	return m, nil
}

// Paths returns every registered module path in sorted order.
func (c *Catalog) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paths := make([]string, 0, len(c.modules))
	for path := range c.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered modules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}

// Default is the process-wide catalog that route packages register into from
// their init functions.
var Default = NewCatalog()

// Register adds a module to the Default catalog.
func Register(path string, exports Exports) *Module {
	return Default.Register(path, exports)
}

// Import resolves a module from the Default catalog.
func Import(path string) (*Module, error) {
	return Default.Import(path)
}
