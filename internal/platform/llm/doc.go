// Package llm is the provider client for an OpenAI-compatible chat
// completion endpoint (OpenRouter by default). It sends one system and one
// user message, retries transient failures with exponential backoff, and
// validates the response shape before handing the message content back.
//
// The client never touches the store; callers decide what a failure means
// for their own records.
package llm
