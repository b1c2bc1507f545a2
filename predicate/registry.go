package predicate

import (
	"fmt"
	"sync"

	"facette.io/natsort"
	"github.com/amp-labs/amp-tablecheck/errors"
)

// Registry maps names to predicates so that serialized schemas can refer
// to checks by name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	elements map[string]Element
	series   map[string]Series
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		elements: make(map[string]Element),
		series:   make(map[string]Series),
	}
}

// Default returns a new registry holding the built-in predicates.
func Default() *Registry {
	r := NewRegistry()
	registerBuiltins(r)

	return r
}

// Register adds an element predicate under its Name, replacing any
// previous one.
func (r *Registry) Register(e Element) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.elements[e.Name()] = e
}

// RegisterSeries adds a series predicate under its Name.
func (r *Registry) RegisterSeries(s Series) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.series[s.Name()] = s
}

// Element looks up an element predicate.
func (r *Registry) Element(name string) (Element, error) { //nolint:ireturn
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.elements[name]
	if !ok {
		return nil, fmt.Errorf("%w: element predicate %q", errors.ErrUnknownPredicate, name)
	}

	return e, nil
}

// Series looks up a series predicate.
func (r *Registry) Series(name string) (Series, error) { //nolint:ireturn
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[name]
	if !ok {
		return nil, fmt.Errorf("%w: series predicate %q", errors.ErrUnknownPredicate, name)
	}

	return s, nil
}

// Names lists the registered element and series predicates in natural order.
func (r *Registry) Names() (elements []string, series []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name := range r.elements {
		elements = append(elements, name)
	}

	for name := range r.series {
		series = append(series, name)
	}

	natsort.Sort(elements)
	natsort.Sort(series)

	return elements, series
}
