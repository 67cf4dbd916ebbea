// Package events decouples request handling from background work.
//
// The generation service emits a TaskRequestEvent when a generation has been
// recorded; a handler registered on the emitter turns the event into a task
// and hands it to the task runner. A handler error is reported back to the
// emitter's caller, which is how a refused submission reaches the service.
package events
