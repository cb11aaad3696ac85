package module

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogImport(t *testing.T) {
	c := NewCatalog()
	c.Register("app.routes.hello", Exports{"router": "handler"})

	m, err := c.Import("app.routes.hello")
	require.NoError(t, err)
	assert.Equal(t, "app.routes.hello", m.Path)

	v, ok := m.Lookup("router")
	require.True(t, ok)
	assert.Equal(t, "handler", v)
}

func TestCatalogImportMissing(t *testing.T) {
	c := NewCatalog()

	_, err := c.Import("app.routes.missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModuleNotFound))
	assert.Contains(t, err.Error(), "app.routes.missing")
}

func TestModuleLookupAbsentAndNil(t *testing.T) {
	c := NewCatalog()
	m := c.Register("mod", Exports{"router": nil, "other": 1})

	_, ok := m.Lookup("router")
	assert.False(t, ok, "nil export should be treated as absent")

	_, ok = m.Lookup("missing")
	assert.False(t, ok)

	var nilModule *Module
	_, ok = nilModule.Lookup("router")
	assert.False(t, ok)

	assert.Equal(t, []string{"other", "router"}, m.Names())
}

func TestCatalogRegisterBumpsRevision(t *testing.T) {
	c := NewCatalog()
	first := c.Register("mod", Exports{"router": 1})
	second := c.Register("mod", Exports{"router": 2})

	assert.Greater(t, second.Revision, first.Revision)

	m, err := c.Import("mod")
	require.NoError(t, err)
	v, _ := m.Lookup("router")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCatalogRegisterCopiesExports(t *testing.T) {
	c := NewCatalog()
	exports := Exports{"router": "a"}
	m := c.Register("mod", exports)

	exports["router"] = "b"
	v, _ := m.Lookup("router")
	assert.Equal(t, "a", v)
}

func TestCatalogUnregister(t *testing.T) {
	c := NewCatalog()
	c.Register("mod", Exports{"router": 1})

	assert.True(t, c.Unregister("mod"))
	assert.False(t, c.Unregister("mod"))

	_, err := c.Import("mod")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestCatalogPathsSorted(t *testing.T) {
	c := NewCatalog()
	c.Register("b", nil)
	c.Register("a", nil)
	c.Register("c", nil)

	assert.Equal(t, []string{"a", "b", "c"}, c.Paths())
}

func TestCatalogConcurrentAccess(t *testing.T) {
	c := NewCatalog()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Register("mod", Exports{"router": i})
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Import("mod")
			_ = c.Paths()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
}
