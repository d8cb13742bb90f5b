package source

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Budget rejects oversized submissions before any network round-trip.
type Budget struct {
	tokenizer *tiktoken.Tiktoken
	max       int
}

// TooLargeError reports a submission over the token budget.
type TooLargeError struct {
	Tokens int
	Max    int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("source is %d tokens, over the %d token budget: try a smaller document", e.Tokens, e.Max)
}

// NewBudget creates a budget with the given token cap. max <= 0
// disables the check.
func NewBudget(max int) (*Budget, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("get tokenizer: %w", err)
	}
	return &Budget{tokenizer: enc, max: max}, nil
}

// Count returns the token count for text.
func (b *Budget) Count(text string) int {
	return len(b.tokenizer.Encode(text, nil, nil))
}

// Check returns TooLargeError when text exceeds the budget.
func (b *Budget) Check(text string) error {
	if b.max <= 0 {
		return nil
	}
	if n := b.Count(text); n > b.max {
		return &TooLargeError{Tokens: n, Max: b.max}
	}
	return nil
}
