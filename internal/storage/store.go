package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"cloudvars/internal/clock"
	"cloudvars/internal/keylock"
)

const (
	// NamePrefix is the mandatory prefix for cloud variable names.
	NamePrefix = "Cloud"
	// DefaultValue is the value a variable holds before its first write.
	DefaultValue = "0"
	// MaxValueBytes is the maximum accepted value size in UTF-8 bytes.
	MaxValueBytes = 100_000
)

// Policy selects how concurrent writes to the same variable are
// resolved. It is fixed at store construction.
type Policy int

const (
	// StrictOrdering rejects writes whose client token is older than
	// the server's current token.
	StrictOrdering Policy = iota
	// LastWriteWins accepts every write; the physically last write to
	// complete holds the final value.
	LastWriteWins
)

// String returns the string representation of a Policy.
func (p Policy) String() string {
	switch p {
	case StrictOrdering:
		return "strict"
	case LastWriteWins:
		return "lww"
	default:
		return "unknown"
	}
}

// Record is the stored state of one cloud variable: its value and the
// ordering token of the write that produced it.
type Record struct {
	Value     string
	Timestamp int64
}

// namespace maps variable names to records within one project.
type namespace map[string]Record

// SetResult reports the outcome of an accepted write.
type SetResult struct {
	OldValue  string
	NewValue  string
	Timestamp int64
}

// Stats is a point-in-time summary of the store. The counts are read
// under one lock acquisition but concurrent writers may land between a
// caller's Stats and its next operation.
type Stats struct {
	ProjectCount  int
	VariableCount int
	ProjectIDs    []string
}

// Store holds all cloud variables, partitioned by project ID. It is
// safe for concurrent use: reads return copies, and writes to the same
// variable are serialized through a per-key lock registry.
type Store struct {
	mu       sync.RWMutex
	projects map[string]namespace
	locks    *keylock.Registry
	clock    clock.Source
	policy   Policy
	logger   zerolog.Logger
}

// New creates an empty store using the given clock source and conflict
// policy.
func New(src clock.Source, policy Policy) *Store {
	return &Store{
		projects: make(map[string]namespace),
		locks:    keylock.NewRegistry(),
		clock:    src,
		policy:   policy,
		logger:   zerolog.Nop(),
	}
}

// SetLogger replaces the store's logger. The default is a no-op logger.
func (s *Store) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// Policy returns the conflict policy the store was built with.
func (s *Store) Policy() Policy {
	return s.policy
}

// Get returns the current record for the variable, materializing it
// with the default value on first touch.
func (s *Store) Get(projectID, name string) (Record, error) {
	if err := validateKey(projectID, name); err != nil {
		return Record{}, err
	}
	rec := s.getOrCreate(projectID, name)

	s.logger.Debug().
		Str("project", projectID).
		Str("name", name).
		Str("value", rec.Value).
		Msg("variable read")

	return rec, nil
}

// GetAll returns a snapshot of all variable values in the project. An
// untouched project yields an empty map, and the project's namespace is
// materialized as a side effect.
func (s *Store) GetAll(projectID string) (map[string]string, error) {
	if projectID == "" {
		return nil, invalidArgf("project ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, exists := s.projects[projectID]
	if !exists {
		ns = make(namespace)
		s.projects[projectID] = ns
	}

	snapshot := make(map[string]string, len(ns))
	for name, rec := range ns {
		snapshot[name] = rec.Value
	}
	return snapshot, nil
}

// Set writes a new value for the variable, holding the per-key lock for
// the whole read-modify-write. Under StrictOrdering a clientTimestamp
// older than the server's token fails with a Conflict error carrying the
// server's value and token; under LastWriteWins clientTimestamp is
// ignored. A value over MaxValueBytes fails with ValueTooLarge, also
// carrying the server's current value.
func (s *Store) Set(projectID, name, value string, clientTimestamp int64) (SetResult, error) {
	if err := validateKey(projectID, name); err != nil {
		return SetResult{}, err
	}

	release := s.locks.Acquire(projectID, name)
	defer release()

	cur := s.getOrCreate(projectID, name)

	if len(value) > MaxValueBytes {
		return SetResult{}, &Error{
			Kind:            ValueTooLarge,
			Message:         "value exceeds maximum size",
			ServerValue:     cur.Value,
			ServerTimestamp: cur.Timestamp,
		}
	}

	if s.policy == StrictOrdering && clock.Compare(clientTimestamp, cur.Timestamp) == clock.Before {
		s.logger.Debug().
			Str("project", projectID).
			Str("name", name).
			Int64("client_ts", clientTimestamp).
			Int64("server_ts", cur.Timestamp).
			Msg("stale write rejected")

		return SetResult{}, &Error{
			Kind:            Conflict,
			Message:         "update rejected: server has newer value",
			ServerValue:     cur.Value,
			ServerTimestamp: cur.Timestamp,
		}
	}

	next := clock.Next(s.clock, cur.Timestamp)

	s.mu.Lock()
	s.projects[projectID][name] = Record{Value: value, Timestamp: next}
	s.mu.Unlock()

	s.logger.Debug().
		Str("project", projectID).
		Str("name", name).
		Str("old", cur.Value).
		Str("new", value).
		Int64("timestamp", next).
		Msg("variable updated")

	return SetResult{
		OldValue:  cur.Value,
		NewValue:  value,
		Timestamp: next,
	}, nil
}

// Stats returns a point-in-time summary of the store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		ProjectCount: len(s.projects),
		ProjectIDs:   make([]string, 0, len(s.projects)),
	}
	for id, ns := range s.projects {
		st.ProjectIDs = append(st.ProjectIDs, id)
		st.VariableCount += len(ns)
	}
	sort.Strings(st.ProjectIDs)
	return st
}

// Touched reports whether the variable has been materialized, without
// materializing it. It distinguishes "never touched" from "touched and
// holding the default value".
func (s *Store) Touched(projectID, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, exists := s.projects[projectID]
	if !exists {
		return false
	}
	_, exists = ns[name]
	return exists
}

// getOrCreate returns the variable's record, inserting the default
// record on first touch. The fast path is a read lock; the miss path
// re-checks under the write lock since another caller may have
// materialized the record in between.
func (s *Store) getOrCreate(projectID, name string) Record {
	s.mu.RLock()
	if ns, exists := s.projects[projectID]; exists {
		if rec, exists := ns[name]; exists {
			s.mu.RUnlock()
			return rec
		}
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, exists := s.projects[projectID]
	if !exists {
		ns = make(namespace)
		s.projects[projectID] = ns
	}
	rec, exists := ns[name]
	if !exists {
		rec = Record{Value: DefaultValue, Timestamp: s.clock.NowMillis()}
		ns[name] = rec
	}
	return rec
}

// validateKey checks the project ID and variable name preconditions
// shared by Get and Set.
func validateKey(projectID, name string) *Error {
	if projectID == "" {
		return invalidArgf("project ID is required")
	}
	if name == "" {
		return invalidArgf("variable name is required")
	}
	if !strings.HasPrefix(name, NamePrefix) {
		return invalidArgf("variable name must start with %q", NamePrefix)
	}
	return nil
}
