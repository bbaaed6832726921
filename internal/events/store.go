package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cicd-orchestrator/internal/models"
)

/**
 * Append-only, time/type-filterable event log
 * @description
 * - Append stamps the current time over any caller-supplied timestamp
 * - Events are immutable once appended and kept in insertion order
 * - The store itself never evicts; Clear is the only way to empty it
 */
type Store struct {
	mu     sync.RWMutex
	events []models.SystemEvent
}

func NewStore() *Store {
	return &Store{}
}

/**
 * Append an event to the log
 * @param {models.SystemEvent} ev - Event to record; timestamp is overwritten,
 *   an id is assigned when the caller left it empty
 * @returns {models.SystemEvent} The event as stored
 */
func (s *Store) Append(ev models.SystemEvent) models.SystemEvent {
	ev.Timestamp = time.Now()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return ev
}

/**
 * Get all events in append order
 * @returns {[]models.SystemEvent} Defensive copy of the full log
 */
func (s *Store) Events() []models.SystemEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SystemEvent, len(s.events))
	copy(out, s.events)
	return out
}

/**
 * Get events with timestamp >= since
 */
func (s *Store) EventsSince(since time.Time) []models.SystemEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SystemEvent
	for _, ev := range s.events {
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	return out
}

/**
 * Get events whose type matches exactly
 */
func (s *Store) EventsByType(eventType string) []models.SystemEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SystemEvent
	for _, ev := range s.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns the number of stored events.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

/**
 * Drop events older than the cutoff, returning how many were pruned
 * @description Used by the engine's cleanup maintenance task; the store does
 *   no eviction on its own
 */
func (s *Store) PruneBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	pruned := 0
	for _, ev := range s.events {
		if ev.Timestamp.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	return pruned
}
