// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the generation and flashcard services
// to JSON over HTTP; every route is scoped to the authenticated user.
package api
