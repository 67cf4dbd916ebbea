package domain

import "time"

// Input bounds for a generation request, in characters (Unicode code points).
const (
	MinInputChars = 1000
	MaxInputChars = 10000
)

// Flashcard content bounds, in characters.
const (
	MaxFrontChars = 200
	MaxBackChars  = 500
)

// MaxErrorInfoChars bounds the message stored in GenerationLog.ErrorInfo.
const MaxErrorInfoChars = 1000

// Polling cadence and patience used by status consumers.
const (
	PollInterval    = 2000 * time.Millisecond
	MaxPollDuration = 45000 * time.Millisecond
)
