package models

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModel is returned by Lookup for an unregistered name.
var ErrUnknownModel = errors.New("unknown model")

// Registry maps model names to models. It is filled at construction and
// never changes afterwards.
type Registry struct {
	models map[string]Model
}

// NewRegistry builds a registry from ms. Names must be unique.
func NewRegistry(ms ...Model) (*Registry, error) {
	r := &Registry{models: make(map[string]Model, len(ms))}
	for _, m := range ms {
		if _, dup := r.models[m.Name()]; dup {
			return nil, fmt.Errorf("model %q registered twice", m.Name())
		}
		r.models[m.Name()] = m
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(NewHill5())
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the registry of built-in models.
func Default() *Registry { return defaultRegistry }

// Lookup returns the named model.
func (r *Registry) Lookup(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownModel, name, r.Names())
	}
	return m, nil
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
