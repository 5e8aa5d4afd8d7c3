package verifier

import (
	"sort"
	"strings"
)

// SetUpFunc prepares a provider state and returns the message the provider
// produces in that state.
type SetUpFunc func() (Message, error)

// TearDownFunc undoes whatever the matching SetUpFunc did.
type TearDownFunc func() error

type ProviderState struct {
	Name     string
	SetUp    SetUpFunc
	TearDown TearDownFunc
}

// Registry maps provider state names to their handlers.
type Registry struct {
	states map[string]ProviderState
}

func NewRegistry() *Registry {
	return &Registry{states: map[string]ProviderState{}}
}

func (r *Registry) Register(state ProviderState) error {
	if strings.TrimSpace(state.Name) == "" {
		return configErrorf(ErrEmptyProviderState, "please supply a non empty provider state")
	}
	if state.SetUp == nil {
		return configErrorf(nil, "provider state '%s' has no set up function", state.Name)
	}
	if _, exists := r.states[state.Name]; exists {
		return configErrorf(ErrProviderStateAlreadyRegistered, "provider state '%s'", state.Name)
	}
	r.states[state.Name] = state
	return nil
}

func (r *Registry) Lookup(name string) (ProviderState, bool) {
	state, ok := r.states[name]
	return state, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.states))
	for name := range r.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
