// Package history keeps the in-memory record of one session's analyses.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/bugsqa/internal/domain"
)

// Clock returns the current time. Tests substitute a fixed sequence.
type Clock func() time.Time

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp records.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSatisfactionRate sets the static success rate reported by the store.
func WithSatisfactionRate(rate float64) Option {
	return func(s *Store) {
		if rate > 0 {
			s.satisfactionRate = rate
		}
	}
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store is an append-only list of bug records.
// Appends and clears are serialised; readers get copies.
type Store struct {
	mu               sync.Mutex
	records          []domain.BugRecord
	totalSolved      int
	satisfactionRate float64
	clock            Clock
	newID            func() string
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		satisfactionRate: domain.DefaultSatisfactionRate,
		clock:            time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stamps and stores a new record, returning a copy of it.
// The timestamp never precedes the previous record's, even if the clock moves backwards.
func (s *Store) Append(
	input, result string,
	severity domain.Severity,
	language domain.Language,
	complexity domain.Complexity,
	kind domain.InputKind,
) domain.BugRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if n := len(s.records); n > 0 {
		if prev := s.records[n-1].Timestamp; now.Before(prev) {
			now = prev
		}
	}

	record := domain.BugRecord{
		ID:         s.newID(),
		Sequence:   len(s.records) + 1,
		Input:      input,
		Result:     result,
		Severity:   severity,
		Language:   language,
		Complexity: complexity,
		Timestamp:  now,
		Kind:       kind,
	}
	s.records = append(s.records, record)
	s.totalSolved++
	return record
}

// Records returns a copy of all records in append order.
func (s *Store) Records() []domain.BugRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BugRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) []domain.BugRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]domain.BugRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Get returns the record with the given 1-based sequence number.
func (s *Store) Get(sequence int) (domain.BugRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sequence < 1 || sequence > len(s.records) {
		return domain.BugRecord{}, false
	}
	return s.records[sequence-1], true
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// TotalSolved counts appends since creation or the last Clear.
func (s *Store) TotalSolved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSolved
}

// SatisfactionRate is the configured static success percentage.
func (s *Store) SatisfactionRate() float64 {
	return s.satisfactionRate
}

// Snapshot copies the store's state for analytics, reports and exports.
func (s *Store) Snapshot() domain.HistorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]domain.BugRecord, len(s.records))
	copy(records, s.records)
	return domain.HistorySnapshot{
		Records:          records,
		TotalSolved:      s.totalSolved,
		SatisfactionRate: s.satisfactionRate,
	}
}

// Clear drops every record and resets the solved counter.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.totalSolved = 0
}

// InputRepr is the input string recorded for a report of the given kind.
func InputRepr(kind domain.InputKind, text, fileName string) string {
	switch kind {
	case domain.KindImage:
		return domain.ImageInputPlaceholder
	case domain.KindFile:
		return domain.FileInputPrefix + fileName
	default:
		return text
	}
}
