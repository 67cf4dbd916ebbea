package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/client"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/poll"
)

type phase int

const (
	phaseInput phase = iota
	phaseSubmitting
	phasePolling
	phaseResult
	phaseEditing
)

// model is the root bubbletea model: text entry, then polling, then review
// of the proposals.
type model struct {
	ctx     context.Context
	api     generationAPI
	poller  poller
	updates <-chan poll.Update

	phase   phase
	input   textarea.Model
	spinner spinner.Model
	front   textinput.Model
	back    textinput.Model

	generationID uuid.UUID
	snapshot     *domain.GenerationSnapshot
	timedOut     bool
	elapsed      time.Duration
	cursor       int

	notice string
	err    error
}

// newModel builds the program model. A non-empty text is submitted as soon
// as the program starts.
func newModel(ctx context.Context, api generationAPI, p poller, updates <-chan poll.Update, text string) *model {
	ta := textarea.New()
	ta.Placeholder = "Paste the text to study..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(12)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primary)

	front := textinput.New()
	front.Prompt = "Front: "
	front.CharLimit = domain.MaxFrontChars
	back := textinput.New()
	back.Prompt = "Back:  "
	back.CharLimit = domain.MaxBackChars

	m := &model{
		ctx:     ctx,
		api:     api,
		poller:  p,
		updates: updates,
		phase:   phaseInput,
		input:   ta,
		spinner: sp,
		front:   front,
		back:    back,
	}
	if text != "" {
		m.input.SetValue(text)
		m.phase = phaseSubmitting
	}
	return m
}

func (m *model) Init() tea.Cmd {
	if m.phase == phaseSubmitting {
		return tea.Batch(m.spinner.Tick, createGenerationCmd(m.ctx, m.api, strings.TrimSpace(m.input.Value())))
	}
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 100 {
			width = 100
		}
		if width > 20 {
			m.input.SetWidth(width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase != phaseSubmitting && m.phase != phasePolling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generationStartedMsg:
		m.generationID = msg.id
		m.phase = phasePolling
		m.poller.Start(m.ctx, msg.id)
		return m, waitForUpdateCmd(m.updates)

	case pollUpdateMsg:
		return m.handlePollUpdate(msg.update)

	case cardSavedMsg:
		m.replaceCard(msg.card)
		m.notice = "Saved."
		return m, nil

	case cardDeletedMsg:
		m.removeCard(msg.id)
		m.notice = "Deleted."
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.context == "submit" {
			m.phase = phaseInput
			m.input.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.phase == phaseInput:
		m.input, cmd = m.input.Update(msg)
	case m.phase == phaseEditing && m.front.Focused():
		m.front, cmd = m.front.Update(msg)
	case m.phase == phaseEditing:
		m.back, cmd = m.back.Update(msg)
	}
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseInput:
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "ctrl+s":
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case phaseResult:
		return m.handleResultKey(msg)

	case phaseEditing:
		return m.handleEditKey(msg)
	}
	return m, nil
}

func (m *model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	n := utf8.RuneCountInString(text)
	if n < domain.MinInputChars || n > domain.MaxInputChars {
		m.err = errors.New(generation.CategoryInputLength.UserMessage())
		return m, nil
	}
	m.err = nil
	m.phase = phaseSubmitting
	m.input.Blur()
	return m, tea.Batch(m.spinner.Tick, createGenerationCmd(m.ctx, m.api, text))
}

func (m *model) handlePollUpdate(u poll.Update) (tea.Model, tea.Cmd) {
	if u.Snapshot != nil {
		m.snapshot = u.Snapshot
	}
	m.elapsed = u.Elapsed
	if !u.Final {
		return m, waitForUpdateCmd(m.updates)
	}
	m.timedOut = u.TimedOut
	m.phase = phaseResult
	m.cursor = 0
	return m, nil
}

func (m *model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := m.proposals()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cards)-1 {
			m.cursor++
		}
	case "e":
		if len(cards) == 0 {
			return m, nil
		}
		card := cards[m.cursor]
		m.front.SetValue(card.Front)
		m.back.SetValue(card.Back)
		m.back.Blur()
		m.phase = phaseEditing
		m.notice = ""
		return m, m.front.Focus()
	case "d":
		if len(cards) == 0 {
			return m, nil
		}
		m.notice = ""
		return m, deleteCardCmd(m.ctx, m.api, cards[m.cursor].ID)
	case "n":
		m.poller.Stop()
		m.reset()
		return m, textarea.Blink
	}
	return m, nil
}

func (m *model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.phase = phaseResult
		return m, nil
	case "tab", "shift+tab":
		if m.front.Focused() {
			m.front.Blur()
			return m, m.back.Focus()
		}
		m.back.Blur()
		return m, m.front.Focus()
	case "enter":
		return m.commitEdit()
	}

	var cmd tea.Cmd
	if m.front.Focused() {
		m.front, cmd = m.front.Update(msg)
	} else {
		m.back, cmd = m.back.Update(msg)
	}
	return m, cmd
}

// commitEdit sends only the fields that changed.
func (m *model) commitEdit() (tea.Model, tea.Cmd) {
	m.phase = phaseResult
	card := m.proposals()[m.cursor]

	var front, back *string
	if v := m.front.Value(); v != card.Front {
		front = &v
	}
	if v := m.back.Value(); v != card.Back {
		back = &v
	}
	if front == nil && back == nil {
		m.notice = "No changes."
		return m, nil
	}
	return m, updateCardCmd(m.ctx, m.api, card.ID, front, back)
}

func (m *model) reset() {
	m.phase = phaseInput
	m.generationID = uuid.Nil
	m.snapshot = nil
	m.timedOut = false
	m.elapsed = 0
	m.cursor = 0
	m.notice = ""
	m.err = nil
	m.input.Reset()
	m.input.Focus()
}

func (m *model) proposals() []*domain.Flashcard {
	if m.snapshot == nil {
		return nil
	}
	return m.snapshot.Proposals
}

func (m *model) replaceCard(card *domain.Flashcard) {
	for i, c := range m.proposals() {
		if c.ID == card.ID {
			m.snapshot.Proposals[i] = card
			return
		}
	}
}

func (m *model) removeCard(id uuid.UUID) {
	if m.snapshot == nil {
		return
	}
	cards := m.snapshot.Proposals
	for i, c := range cards {
		if c.ID == id {
			m.snapshot.Proposals = append(cards[:i], cards[i+1:]...)
			break
		}
	}
	if m.cursor >= len(m.snapshot.Proposals) && m.cursor > 0 {
		m.cursor--
	}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("scry · flashcard generation"))
	b.WriteString("\n")

	switch m.phase {
	case phaseInput:
		n := utf8.RuneCountInString(strings.TrimSpace(m.input.Value()))
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(typeStyle.Render(fmt.Sprintf("%d characters (%d-%d)", n, domain.MinInputChars, domain.MaxInputChars)))
		b.WriteString(helpStyle.Render("\nctrl+s submit · esc quit"))

	case phaseSubmitting:
		b.WriteString(m.spinner.View() + " Submitting...")

	case phasePolling:
		b.WriteString(fmt.Sprintf("%s Generating flashcards... %s", m.spinner.View(), m.elapsed.Round(time.Second)))
		b.WriteString(helpStyle.Render("\nctrl+c quit"))

	case phaseResult:
		b.WriteString(m.resultView())

	case phaseEditing:
		b.WriteString(m.front.View())
		b.WriteString("\n")
		b.WriteString(m.back.View())
		b.WriteString(helpStyle.Render("\ntab switch field · enter save · esc cancel"))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(errorText(m.err)))
	}
	return b.String() + "\n"
}

func (m *model) resultView() string {
	var b strings.Builder
	switch {
	case m.timedOut:
		b.WriteString(warnStyle.Render("Generation is taking longer than expected. Check back later."))
	case m.snapshot != nil && m.snapshot.Status == domain.GenerationStatusFailed:
		b.WriteString(errorStyle.Render(failureMessage(m.snapshot)))
	default:
		cards := m.proposals()
		b.WriteString(okStyle.Render(fmt.Sprintf("%d proposals", len(cards))))
		for i, card := range cards {
			style := cardStyle
			if i == m.cursor {
				style = selectedCardStyle
			}
			body := frontStyle.Render(card.Front) + "\n" + card.Back + "\n" + typeStyle.Render(string(card.Type))
			b.WriteString("\n")
			b.WriteString(style.Render(body))
		}
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(okStyle.Render(m.notice))
	}
	b.WriteString(helpStyle.Render("\n↑/↓ select · e edit · d delete · n new · q quit"))
	return b.String()
}

// failureMessage returns the user-facing text for a failed generation.
func failureMessage(s *domain.GenerationSnapshot) string {
	if s != nil && s.Log != nil && s.Log.ErrorCode != nil {
		return generation.Category(*s.Log.ErrorCode).UserMessage()
	}
	return generation.CategoryGeneric.UserMessage()
}

func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
