package main

import (
	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/poll"
)

// generationStartedMsg reports the id of an accepted generation.
type generationStartedMsg struct {
	id uuid.UUID
}

// pollUpdateMsg carries one synchronizer update into the program.
type pollUpdateMsg struct {
	update poll.Update
}

// cardSavedMsg reports a committed edit.
type cardSavedMsg struct {
	card *domain.Flashcard
}

// cardDeletedMsg reports a deleted card.
type cardDeletedMsg struct {
	id uuid.UUID
}

// errMsg reports a failed API call.
type errMsg struct {
	err     error
	context string
}
