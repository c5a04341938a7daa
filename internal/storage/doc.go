// Package storage implements the in-memory cloud variable store. State
// is partitioned into per-project namespaces of named string variables,
// each carrying a millisecond ordering token. Writes to one variable are
// serialized through a per-key lock; the conflict policy chosen at
// construction decides whether stale client tokens are rejected or the
// last writer wins.
package storage
