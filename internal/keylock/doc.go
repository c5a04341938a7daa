// Package keylock provides a registry of per-key mutexes so that writes
// to the same (project, variable) pair are serialized while writes to
// unrelated keys proceed in parallel. Locks are created on first use and
// never evicted; the registry's own mutex guards bookkeeping only, never
// the caller's critical section.
package keylock
