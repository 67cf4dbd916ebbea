// Package task runs background work on a fixed set of worker goroutines fed
// by a bounded queue.
//
// Tasks execute detached from the request that created them and cannot be
// cancelled. Runner.Stop closes the queue and waits until every queued and
// in-flight task has finished, so a server can drain before exiting. There is
// no task table: a task lost to a crash is not resumed.
package task
