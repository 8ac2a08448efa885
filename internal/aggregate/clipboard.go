package aggregate

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboard is returned when the system clipboard refuses a write.
var ErrClipboard = errors.New("clipboard unavailable")

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboard
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	return nil
}

// MemClipboard keeps the last write in memory.
type MemClipboard struct {
	Text string
	Err  error
}

func (c *MemClipboard) WriteAll(text string) error {
	if c.Err != nil {
		return fmt.Errorf("%w: %w", ErrClipboard, c.Err)
	}
	c.Text = text
	return nil
}
