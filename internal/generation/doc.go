// Package generation turns input text into validated flashcard items. It
// builds the prompts, calls the provider client with a JSON-schema response
// format, parses the provider's content, and validates the batch as a whole.
// It also owns the error taxonomy used to describe generation failures to
// users.
package generation
