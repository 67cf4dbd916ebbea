// Package memstore provides in-memory implementations of the store
// interfaces. All three stores share one Store so that a flashcard listing
// and a generation lookup observe the same data. Entities are copied on the
// way in and out; callers never hold references into the maps.
//
// WithTx returns the receiver unchanged: each operation is already atomic
// under the store mutex.
package memstore
