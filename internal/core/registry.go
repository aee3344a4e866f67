package core

import (
	"fmt"
	"slices"
	"sync"
)

var (
	collections   = make(map[string]CollectionDefinition)
	collectionsMu sync.RWMutex
)

// Register adds a collection definition. Columns default to the field spec
// names in order. It panics on a duplicate key, a definition without
// columns, or a unique key that is not one of the columns; all of these are
// programming errors caught at init.
func Register(def CollectionDefinition) {
	key := def.Info.Key
	if len(def.Info.Columns) == 0 {
		for _, spec := range def.FieldSpecs {
			def.Info.Columns = append(def.Info.Columns, spec.Name)
		}
	}
	if len(def.Info.Columns) == 0 {
		panic(fmt.Sprintf("collection %s declares no columns", key))
	}
	if def.Info.UniqueKey != "" && !slices.Contains(def.Info.Columns, def.Info.UniqueKey) {
		panic(fmt.Sprintf("collection %s: unique key %q is not a column", key, def.Info.UniqueKey))
	}

	collectionsMu.Lock()
	defer collectionsMu.Unlock()
	if _, dup := collections[key]; dup {
		panic(fmt.Sprintf("collection already registered: %s", key))
	}
	collections[key] = def
}

// Get returns the definition registered under key.
func Get(key string) (CollectionDefinition, bool) {
	collectionsMu.RLock()
	def, ok := collections[key]
	collectionsMu.RUnlock()
	return def, ok
}

// All returns every definition ordered by key.
func All() []CollectionDefinition {
	collectionsMu.RLock()
	defs := make([]CollectionDefinition, 0, len(collections))
	for _, def := range collections {
		defs = append(defs, def)
	}
	collectionsMu.RUnlock()

	slices.SortFunc(defs, func(a, b CollectionDefinition) int {
		switch {
		case a.Info.Key < b.Info.Key:
			return -1
		case a.Info.Key > b.Info.Key:
			return 1
		}
		return 0
	})
	return defs
}

// Public returns the definitions clients may list and export.
func Public() []CollectionDefinition {
	return slices.DeleteFunc(All(), func(d CollectionDefinition) bool { return d.Internal })
}

// CollectionCount returns the number of registered collections.
func CollectionCount() int {
	collectionsMu.RLock()
	defer collectionsMu.RUnlock()
	return len(collections)
}

func lookup(key string) (CollectionDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return CollectionDefinition{}, fmt.Errorf("unknown collection: %s", key)
	}
	return def, nil
}
