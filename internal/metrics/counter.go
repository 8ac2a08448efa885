package metrics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// EstimatorSimple selects the bytes/4 approximation instead of a tokenizer.
const EstimatorSimple = "simple"

// Counter measures a piece of text.
type Counter interface {
	Count(text string) Stat
}

// NewCounter returns a Counter for estimator: EstimatorSimple, or a model
// name known to tiktoken such as "gpt-4o".
func NewCounter(estimator string) (Counter, error) {
	if estimator == "" || estimator == EstimatorSimple {
		return SimpleCounter{}, nil
	}
	return NewTiktokenCounter(estimator)
}

// SimpleCounter estimates one token per four bytes.
type SimpleCounter struct{}

func (SimpleCounter) Count(text string) Stat {
	return Stat{Bytes: len(text), Tokens: len(text) / 4, Lines: countLines(text)}
}

// TiktokenCounter counts tokens with a model's BPE encoding. The encoding is
// loaded once and shared by every worker.
type TiktokenCounter struct {
	model string
	enc   *tiktoken.Tiktoken
	mu    sync.Mutex
}

func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding for %q: %w", model, err)
	}
	return &TiktokenCounter{model: model, enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) Stat {
	c.mu.Lock()
	tokens := len(c.enc.Encode(text, nil, nil))
	c.mu.Unlock()
	return Stat{Bytes: len(text), Tokens: tokens, Lines: countLines(text)}
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
