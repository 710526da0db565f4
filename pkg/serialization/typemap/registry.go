package typemap

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Registry is the lookup table from logical names and Go types to bindings.
// Safe for concurrent use; population normally happens once at startup.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Binding
	byType map[reflect.Type]Binding
}

// NewRegistry creates a registry holding the given bindings.
func NewRegistry(bindings ...Binding) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Binding),
		byType: make(map[reflect.Type]Binding),
	}
	for _, binding := range bindings {
		if err := r.Register(binding); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a binding, indexing it by logical name and by Go type.
// Registering a name again replaces the earlier binding.
func (r *Registry) Register(b Binding) error {
	if b.Name == "" || b.GoType == nil || b.Factory == nil || b.schema == nil {
		return fmt.Errorf("binding %q is incomplete, construct it with NewBinding", b.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byName[b.Name]; ok {
		delete(r.byType, old.GoType)
	}
	r.byName[b.Name] = b
	r.byType[b.GoType] = b
	return nil
}

// ByName returns the binding for a logical type name. Absence is the normal
// unknown-type path, reported through the boolean.
func (r *Registry) ByName(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.byName[name]
	return binding, ok
}

// ByType returns the binding for a Go type.
func (r *Registry) ByType(goType reflect.Type) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.byType[goType]
	return binding, ok
}

// ByValue returns the binding for a value's dynamic type.
// Pointer types are dereferenced automatically.
func (r *Registry) ByValue(value any) (Binding, bool) {
	goType := reflect.TypeOf(value)
	if goType == nil {
		return Binding{}, false
	}
	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}
	return r.ByType(goType)
}

// Bindings returns all registered bindings sorted by name.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bindings := lo.Values(r.byName)
	slices.SortFunc(bindings, func(a, b Binding) int {
		return strings.Compare(a.Name, b.Name)
	})
	return bindings
}
