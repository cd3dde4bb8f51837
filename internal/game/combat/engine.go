package combat

import (
	"fmt"
	"sync"
)

// Engine manages all live encounters, keyed by encounter ID.
// All methods are safe for concurrent use; each Encounter is still driven by a single goroutine.
type Engine struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
}

// NewEngine creates an empty Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{encounters: make(map[string]*Encounter)}
}

// Start registers enc under its ID.
//
// Precondition: enc must be non-nil with a non-empty ID.
// Postcondition: Returns an error if an encounter with the same ID is already live.
func (e *Engine) Start(enc *Encounter) error {
	if enc == nil || enc.ID() == "" {
		return fmt.Errorf("encounter must be non-nil with a non-empty id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.encounters[enc.ID()]; exists {
		return fmt.Errorf("encounter %q already active", enc.ID())
	}
	e.encounters[enc.ID()] = enc
	return nil
}

// Get returns the live encounter with id.
//
// Postcondition: Returns (encounter, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(id string) (*Encounter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	enc, ok := e.encounters[id]
	return enc, ok
}

// End disbands and removes the encounter with id. Unknown ids are ignored.
func (e *Engine) End(id string) {
	e.mu.Lock()
	enc, ok := e.encounters[id]
	delete(e.encounters, id)
	e.mu.Unlock()
	if ok {
		enc.Disband()
	}
}

// IDs returns the IDs of every live encounter.
func (e *Engine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.encounters))
	for id := range e.encounters {
		ids = append(ids, id)
	}
	return ids
}
