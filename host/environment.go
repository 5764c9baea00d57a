package host

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/smartcontractkit/web3-mock/chain"
)

// ErrModuleNotFound is returned when resolving a module name nothing was substituted for.
var ErrModuleNotFound = errors.New("module not found")

// Provider is the surface a mocked provider exposes to the environment.
type Provider interface {
	// Family returns the chain family the provider serves.
	Family() chain.Family
	On(event string, fn Listener) func()
	Emit(event string, payload any) int
	SetFlag(name string, value bool)
	Flag(name string) bool
}

// Environment stands in for the global state code under test reads its providers from. It holds
// one installed provider per chain family, externally supplied providers that were annotated by a
// mock, and module substitutions.
type Environment struct {
	mu        sync.RWMutex
	providers map[chain.Family]Provider
	attached  []Provider
	modules   map[string]any
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		providers: make(map[chain.Family]Provider),
		modules:   make(map[string]any),
	}
}

// Provider returns the provider installed for family.
func (e *Environment) Provider(family chain.Family) (Provider, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.providers[family]

	return p, ok
}

// Install sets the provider for the family it serves, replacing any previous one.
func (e *Environment) Install(p Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.providers[p.Family()] = p
}

// Attach registers an external provider so that it receives triggered events. Attaching the same
// provider twice has no effect.
func (e *Environment) Attach(p Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range e.attached {
		if a == p {
			return
		}
	}
	e.attached = append(e.attached, p)
}

// Providers returns the installed providers ordered by family, followed by the attached ones.
// Every provider is listed once.
func (e *Environment) Providers() []Provider {
	e.mu.RLock()
	defer e.mu.RUnlock()

	families := make([]string, 0, len(e.providers))
	for f := range e.providers {
		families = append(families, string(f))
	}
	sort.Strings(families)

	out := make([]Provider, 0, len(e.providers)+len(e.attached))
	seen := make(map[Provider]struct{}, cap(out))
	add := func(p Provider) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, f := range families {
		add(e.providers[chain.Family(f)])
	}
	for _, p := range e.attached {
		add(p)
	}

	return out
}

// Trigger emits event with payload on every provider and returns the number of listeners called.
func (e *Environment) Trigger(event string, payload any) int {
	var n int
	for _, p := range e.Providers() {
		n += p.Emit(event, payload)
	}

	return n
}

// Require substitutes the module called name with v.
func (e *Environment) Require(name string, v any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.modules[name] = v
}

// Resolve returns what the module called name was substituted with.
func (e *Environment) Resolve(name string) (any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	return v, nil
}

// ResolveAs resolves the module called name and asserts it to T.
func ResolveAs[T any](e *Environment, name string) (T, error) {
	var zero T

	v, err := e.Resolve(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("module %s is %T, not %T", name, v, zero)
	}

	return t, nil
}

// Reset removes every provider and module substitution.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.providers = make(map[chain.Family]Provider)
	e.attached = nil
	e.modules = make(map[string]any)
}
