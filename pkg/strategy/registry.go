package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/samber/lo"
)

// Definition describes a catalog entry. New must return a strategy holding its defaults.
type Definition struct {
	Name        string
	Description string
	Tags        []string
	New         func() Tunable
}

// Parameters returns the tunable parameters of a fresh instance.
func (d Definition) Parameters() []core.Parameter {
	return d.New().GetParameters()
}

// Registry maps strategy names to their definitions.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// Register adds definitions, failing on the first empty or duplicated name.
func (r *Registry) Register(definitions ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range definitions {
		if def.Name == "" || def.New == nil {
			return fmt.Errorf("register strategy: name and constructor are required")
		}
		if _, ok := r.definitions[def.Name]; ok {
			return fmt.Errorf("%w: %s", core.ErrDuplicateStrategy, def.Name)
		}
		r.definitions[def.Name] = def
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(definitions ...Definition) {
	if err := r.Register(definitions...); err != nil {
		panic(err)
	}
}

// Get returns the definition registered under name, or ErrUnknownStrategy
func (r *Registry) Get(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", core.ErrUnknownStrategy, name)
	}
	return def, nil
}

// Names returns the registered names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.definitions)
	sort.Strings(names)
	return names
}

// Definitions returns every definition sorted by name.
func (r *Registry) Definitions() []Definition {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(names, func(name string, _ int) Definition {
		return r.definitions[name]
	})
}

// New builds a strategy by name. Missing values fall back to the defaults and every
// value is validated against the parameter definitions before being applied.
func (r *Registry) New(name string, params core.ParameterSet) (Tunable, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	instance := def.New()
	definitions := instance.GetParameters()

	values := Defaults(definitions)
	for key, value := range params {
		values[key] = value
	}

	normalized, err := Validate(definitions, values)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}

	if err := instance.SetParameterValues(normalized); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return instance, nil
}
