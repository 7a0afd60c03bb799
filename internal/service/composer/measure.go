package composer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/personabot/internal/config"
)

// Measurer reports the size of a prompt in budget units.
type Measurer interface {
	Measure(text string) int
	Unit() string
}

// RuneMeasurer counts Unicode code points.
type RuneMeasurer struct{}

func (RuneMeasurer) Measure(text string) int { return utf8.RuneCountInString(text) }

func (RuneMeasurer) Unit() string { return config.BudgetUnitChars }

const tokenEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// TokenMeasurer counts cl100k_base tokens. Special tokens are treated as text.
type TokenMeasurer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenMeasurer loads the encoding once per process. The first call may
// download the BPE ranks unless TIKTOKEN_CACHE_DIR holds them.
func NewTokenMeasurer() (*TokenMeasurer, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(tokenEncoding)
	})
	if encErr != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", tokenEncoding, encErr)
	}
	return &TokenMeasurer{enc: enc}, nil
}

func (m *TokenMeasurer) Measure(text string) int {
	return len(m.enc.Encode(text, nil, nil))
}

func (m *TokenMeasurer) Unit() string { return config.BudgetUnitTokens }

// NewMeasurer picks a measurer for a configured budget unit.
func NewMeasurer(unit string) (Measurer, error) {
	switch unit {
	case "", config.BudgetUnitChars:
		return RuneMeasurer{}, nil
	case config.BudgetUnitTokens:
		return NewTokenMeasurer()
	default:
		return nil, fmt.Errorf("unknown budget unit %q", unit)
	}
}
