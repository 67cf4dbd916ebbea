// Package poll implements the client side of generation status: a
// Synchronizer that fetches a generation snapshot at a fixed cadence until
// the generation reaches a terminal status or the client runs out of
// patience.
//
// The next fetch is scheduled only after the previous one returns, so a
// slow fetch never causes overlapping ticks. A timeout is reported as an
// Update with TimedOut set; it says nothing about the server-side outcome.
package poll
