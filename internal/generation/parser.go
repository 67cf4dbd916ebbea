package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/scry-gen/internal/domain"
)

// Item is one front/back pair proposed by the model.
type Item struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ParsedResponse is the decoded provider content.
type ParsedResponse struct {
	Flashcards []Item
}

// Parse decodes provider content of the form {"flashcards": [{front, back}]}.
// A surrounding markdown code fence is tolerated. Item text is returned as
// received; ValidateItems trims and checks it.
func Parse(content string) (*ParsedResponse, error) {
	body := stripCodeFence(strings.TrimSpace(content))
	if body == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: content is not a JSON object: %v", ErrMalformedResponse, err)
	}

	raw, ok := doc["flashcards"]
	if !ok {
		return nil, fmt.Errorf("%w: missing flashcards field", ErrMalformedResponse)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: flashcards is not an array", ErrMalformedResponse)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: flashcards array is empty", ErrMalformedResponse)
	}

	items := make([]Item, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &items[i]); err != nil {
			return nil, fmt.Errorf("%w: flashcard %d is not a {front, back} object", ErrMalformedResponse, i)
		}
	}

	return &ParsedResponse{Flashcards: items}, nil
}

// ValidateItems trims every item and checks the flashcard bounds. The first
// violation rejects the whole batch; on success the trimmed copies are
// returned.
func ValidateItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no flashcards", ErrValidation)
	}

	out := make([]Item, len(items))
	for i, item := range items {
		front := strings.TrimSpace(item.Front)
		back := strings.TrimSpace(item.Back)

		if err := domain.ValidateFront(front); err != nil {
			return nil, fmt.Errorf("%w: flashcard %d: %w", ErrValidation, i, err)
		}
		if err := domain.ValidateBack(back); err != nil {
			return nil, fmt.Errorf("%w: flashcard %d: %w", ErrValidation, i, err)
		}

		out[i] = Item{Front: front, Back: back}
	}

	return out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
