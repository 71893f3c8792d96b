// Package model provides the lifecycle state shared by long-lived analysis
// objects such as the pattern engine.
//
// An engine starts Uninitialized and becomes Ready once a dataset has been
// loaded. Every load stamps a new generation ID so results computed
// concurrently with a reload can be traced back to the dataset they saw.
//
// Example usage:
//
//	type Engine struct {
//		state *model.StateManager
//	}
//
//	func (e *Engine) Init(...) {
//		// swap data
//		gen := e.state.SetReady()
//		logger.Info("loaded", log.GenerationKey, gen)
//	}
package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of an engine.
type State int

const (
	// Uninitialized indicates no dataset has been loaded yet
	Uninitialized State = iota
	// Ready indicates a dataset is loaded and discovery calls are meaningful
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// StateManager tracks State behind a lock. The zero value is not usable;
// create one with NewStateManager.
type StateManager struct {
	mu         sync.RWMutex
	state      State
	generation uuid.UUID
	updatedAt  time.Time
}

// NewStateManager returns a manager in the Uninitialized state.
func NewStateManager() *StateManager {
	return &StateManager{state: Uninitialized, updatedAt: time.Now()}
}

// State returns the current state.
func (m *StateManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsReady reports whether the state is Ready.
func (m *StateManager) IsReady() bool {
	return m.State() == Ready
}

// SetReady moves to Ready and starts a new generation, returning its ID.
// Calling it again while Ready is allowed; it only bumps the generation.
func (m *StateManager) SetReady() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Ready
	m.generation = uuid.New()
	m.updatedAt = time.Now()
	return m.generation
}

// Generation returns the ID stamped by the last SetReady, or uuid.Nil.
func (m *StateManager) Generation() uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// UpdatedAt returns when the state last changed.
func (m *StateManager) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updatedAt
}

// Reset returns to Uninitialized and clears the generation.
func (m *StateManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Uninitialized
	m.generation = uuid.Nil
	m.updatedAt = time.Now()
}
