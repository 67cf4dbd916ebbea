package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/store"
)

// Store holds every table in memory behind one mutex.
type Store struct {
	mu          sync.RWMutex
	generations map[uuid.UUID]*domain.Generation
	logs        map[uuid.UUID]*domain.GenerationLog
	cards       map[uuid.UUID]*domain.Flashcard
	// seq orders cards by insertion since CreatedAt may collide
	seq     map[uuid.UUID]int64
	nextSeq int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		generations: make(map[uuid.UUID]*domain.Generation),
		logs:        make(map[uuid.UUID]*domain.GenerationLog),
		cards:       make(map[uuid.UUID]*domain.Flashcard),
		seq:         make(map[uuid.UUID]int64),
	}
}

// Generations returns the GenerationStore view of s.
func (s *Store) Generations() *GenerationStore { return &GenerationStore{s: s} }

// GenerationLogs returns the GenerationLogStore view of s.
func (s *Store) GenerationLogs() *GenerationLogStore { return &GenerationLogStore{s: s} }

// Flashcards returns the FlashcardStore view of s.
func (s *Store) Flashcards() *FlashcardStore { return &FlashcardStore{s: s} }

func copyGeneration(g *domain.Generation) *domain.Generation {
	c := *g
	if g.ResponseTime != nil {
		t := *g.ResponseTime
		c.ResponseTime = &t
	}
	if g.TokenCount != nil {
		n := *g.TokenCount
		c.TokenCount = &n
	}
	if g.Model != nil {
		m := *g.Model
		c.Model = &m
	}
	if g.GeneratedCount != nil {
		n := *g.GeneratedCount
		c.GeneratedCount = &n
	}
	return &c
}

func copyLog(l *domain.GenerationLog) *domain.GenerationLog {
	c := *l
	if l.ResponseTime != nil {
		t := *l.ResponseTime
		c.ResponseTime = &t
	}
	if l.TokenCount != nil {
		n := *l.TokenCount
		c.TokenCount = &n
	}
	if l.ErrorInfo != nil {
		e := *l.ErrorInfo
		c.ErrorInfo = &e
	}
	if l.ErrorCode != nil {
		e := *l.ErrorCode
		c.ErrorCode = &e
	}
	return &c
}

func copyCard(f *domain.Flashcard) *domain.Flashcard {
	c := *f
	if f.GenerationID != nil {
		id := *f.GenerationID
		c.GenerationID = &id
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// GenerationStore implements store.GenerationStore in memory.
type GenerationStore struct{ s *Store }

var _ store.GenerationStore = (*GenerationStore)(nil)

// Create implements store.GenerationStore.Create.
func (g *GenerationStore) Create(_ context.Context, gen *domain.Generation) error {
	if gen.UserID == uuid.Nil {
		return domain.ErrEmptyUserID
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	gen.ID = uuid.New()
	g.s.generations[gen.ID] = copyGeneration(gen)
	return nil
}

// GetByIDForUser implements store.GenerationStore.GetByIDForUser.
func (g *GenerationStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*domain.Generation, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	gen, ok := g.s.generations[id]
	if !ok || gen.UserID != userID {
		return nil, store.ErrGenerationNotFound
	}
	return copyGeneration(gen), nil
}

// ListByUser implements store.GenerationStore.ListByUser.
func (g *GenerationStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	var gens []*domain.Generation
	for _, gen := range g.s.generations {
		if gen.UserID == userID {
			gens = append(gens, copyGeneration(gen))
		}
	}
	sort.Slice(gens, func(i, j int) bool {
		if gens[i].RequestTime.Equal(gens[j].RequestTime) {
			return gens[i].ID.String() < gens[j].ID.String()
		}
		return gens[i].RequestTime.After(gens[j].RequestTime)
	})
	return page(gens, limit, offset), nil
}

// MarkCompleted implements store.GenerationStore.MarkCompleted.
func (g *GenerationStore) MarkCompleted(_ context.Context, id uuid.UUID, result domain.GenerationResult) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	gen, ok := g.s.generations[id]
	if !ok {
		return store.ErrGenerationNotFound
	}
	at := result.ResponseTime
	count := result.GeneratedCount
	gen.ResponseTime = &at
	gen.GeneratedCount = &count
	gen.TokenCount = nil
	if result.TokenCount != nil {
		n := *result.TokenCount
		gen.TokenCount = &n
	}
	gen.Model = nil
	if result.Model != nil {
		m := *result.Model
		gen.Model = &m
	}
	return nil
}

// MarkResponded implements store.GenerationStore.MarkResponded.
func (g *GenerationStore) MarkResponded(_ context.Context, id uuid.UUID, at time.Time) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	if gen, ok := g.s.generations[id]; ok && gen.ResponseTime == nil {
		gen.ResponseTime = &at
	}
	return nil
}

// WithTx implements store.GenerationStore.WithTx.
func (g *GenerationStore) WithTx(*sql.Tx) store.GenerationStore { return g }

// GenerationLogStore implements store.GenerationLogStore in memory.
type GenerationLogStore struct{ s *Store }

var _ store.GenerationLogStore = (*GenerationLogStore)(nil)

// Create implements store.GenerationLogStore.Create.
func (l *GenerationLogStore) Create(_ context.Context, genLog *domain.GenerationLog) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if _, ok := l.s.generations[genLog.GenerationID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := l.s.logs[genLog.GenerationID]; ok {
		return store.ErrDuplicate
	}
	l.s.logs[genLog.GenerationID] = copyLog(genLog)
	return nil
}

// GetByGenerationID implements store.GenerationLogStore.GetByGenerationID.
func (l *GenerationLogStore) GetByGenerationID(_ context.Context, generationID uuid.UUID) (*domain.GenerationLog, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	genLog, ok := l.s.logs[generationID]
	if !ok {
		return nil, store.ErrGenerationLogNotFound
	}
	return copyLog(genLog), nil
}

// MarkCompleted implements store.GenerationLogStore.MarkCompleted.
func (l *GenerationLogStore) MarkCompleted(_ context.Context, generationID uuid.UUID, at time.Time, tokenCount *int) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	genLog, ok := l.s.logs[generationID]
	if !ok || genLog.ErrorInfo != nil {
		return store.ErrGenerationLogNotFound
	}
	genLog.ResponseTime = &at
	genLog.TokenCount = nil
	if tokenCount != nil {
		n := *tokenCount
		genLog.TokenCount = &n
	}
	return nil
}

// RecordError implements store.GenerationLogStore.RecordError.
func (l *GenerationLogStore) RecordError(
	_ context.Context,
	generationID uuid.UUID,
	errorInfo, errorCode string,
	at time.Time,
) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	genLog, ok := l.s.logs[generationID]
	if !ok || genLog.ErrorInfo != nil {
		return false, nil
	}
	genLog.ErrorInfo = &errorInfo
	genLog.ErrorCode = &errorCode
	genLog.ResponseTime = &at
	return true, nil
}

// WithTx implements store.GenerationLogStore.WithTx.
func (l *GenerationLogStore) WithTx(*sql.Tx) store.GenerationLogStore { return l }

// FlashcardStore implements store.FlashcardStore in memory.
type FlashcardStore struct{ s *Store }

var _ store.FlashcardStore = (*FlashcardStore)(nil)

// CreateMany implements store.FlashcardStore.CreateMany.
func (f *FlashcardStore) CreateMany(_ context.Context, cards []*domain.Flashcard) error {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return err
		}
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, card := range cards {
		card.ID = uuid.New()
		f.s.nextSeq++
		f.s.seq[card.ID] = f.s.nextSeq
		f.s.cards[card.ID] = copyCard(card)
	}
	return nil
}

// GetByIDForUser implements store.FlashcardStore.GetByIDForUser.
func (f *FlashcardStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*domain.Flashcard, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	card, ok := f.s.cards[id]
	if !ok || card.UserID != userID {
		return nil, store.ErrFlashcardNotFound
	}
	return copyCard(card), nil
}

// Update implements store.FlashcardStore.Update. The mutator runs on a copy
// while the write lock is held.
func (f *FlashcardStore) Update(
	_ context.Context,
	id, userID uuid.UUID,
	fn store.FlashcardMutator,
) (*domain.Flashcard, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	stored, ok := f.s.cards[id]
	if !ok || stored.UserID != userID {
		return nil, store.ErrFlashcardNotFound
	}

	card := copyCard(stored)
	if err := fn(card); err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	card.ID, card.UserID = stored.ID, stored.UserID
	f.s.cards[id] = copyCard(card)
	return card, nil
}

// ListByGeneration implements store.FlashcardStore.ListByGeneration.
func (f *FlashcardStore) ListByGeneration(_ context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	cards := []*domain.Flashcard{}
	for _, card := range f.s.cards {
		if card.GenerationID != nil && *card.GenerationID == generationID {
			cards = append(cards, copyCard(card))
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return f.s.seq[cards[i].ID] < f.s.seq[cards[j].ID]
	})
	return cards, nil
}

// ListByUser implements store.FlashcardStore.ListByUser.
func (f *FlashcardStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	var cards []*domain.Flashcard
	for _, card := range f.s.cards {
		if card.UserID == userID {
			cards = append(cards, copyCard(card))
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return f.s.seq[cards[i].ID] > f.s.seq[cards[j].ID]
	})
	return page(cards, limit, offset), nil
}

// Delete implements store.FlashcardStore.Delete.
func (f *FlashcardStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	card, ok := f.s.cards[id]
	if !ok || card.UserID != userID {
		return store.ErrFlashcardNotFound
	}
	delete(f.s.cards, id)
	delete(f.s.seq, id)
	return nil
}

// WithTx implements store.FlashcardStore.WithTx.
func (f *FlashcardStore) WithTx(*sql.Tx) store.FlashcardStore { return f }
