package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/poll"
)

// generationAPI is the part of client.Client the program uses.
type generationAPI interface {
	CreateGeneration(ctx context.Context, text string) (uuid.UUID, error)
	UpdateFlashcard(ctx context.Context, id uuid.UUID, front, back *string) (*domain.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id uuid.UUID) error
}

// poller is the part of poll.Synchronizer the program uses.
type poller interface {
	Start(ctx context.Context, generationID uuid.UUID)
	Stop()
}

func createGenerationCmd(ctx context.Context, api generationAPI, text string) tea.Cmd {
	return func() tea.Msg {
		id, err := api.CreateGeneration(ctx, text)
		if err != nil {
			return errMsg{err: err, context: "submit"}
		}
		return generationStartedMsg{id: id}
	}
}

// waitForUpdateCmd blocks until the synchronizer delivers the next update.
func waitForUpdateCmd(updates <-chan poll.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return pollUpdateMsg{update: u}
	}
}

func updateCardCmd(ctx context.Context, api generationAPI, id uuid.UUID, front, back *string) tea.Cmd {
	return func() tea.Msg {
		card, err := api.UpdateFlashcard(ctx, id, front, back)
		if err != nil {
			return errMsg{err: err, context: "save"}
		}
		return cardSavedMsg{card: card}
	}
}

func deleteCardCmd(ctx context.Context, api generationAPI, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		if err := api.DeleteFlashcard(ctx, id); err != nil {
			return errMsg{err: err, context: "delete"}
		}
		return cardDeletedMsg{id: id}
	}
}
