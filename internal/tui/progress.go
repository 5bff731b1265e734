package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

const clearLine = "\r\x1b[K"

// Bar is a single line progress bar redrawn in place. A disabled bar
// draws nothing, which keeps piped output clean.
type Bar struct {
	out     io.Writer
	model   progress.Model
	enabled bool

	mu      sync.Mutex
	total   int
	current int
	message string
}

// NewBar creates a progress bar writing to out
func NewBar(out io.Writer, enabled bool) *Bar {
	return &Bar{
		out:     out,
		model:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		enabled: enabled,
	}
}

// Start resets the bar to zero of total steps
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.current = 0
	b.message = ""
	b.render()
}

// Advance moves the bar one step forward
func (b *Bar) Advance() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.total > 0 && b.current >= b.total {
		b.total = b.current + 1
	}
	b.current++
	b.render()
}

// SetMessage sets the text shown after the bar
func (b *Bar) SetMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = msg
	b.render()
}

// Clear erases the bar from the current line
func (b *Bar) Clear() {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprint(b.out, clearLine)
}

// Current returns the number of completed steps
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bar) render() {
	if !b.enabled {
		return
	}
	fmt.Fprint(b.out, clearLine+b.line())
}

func (b *Bar) line() string {
	percent := 0.0
	if b.total > 0 {
		percent = float64(b.current) / float64(b.total)
	}

	line := fmt.Sprintf(" %s %s %3.0f%%",
		counterStyle.Render(fmt.Sprintf("%d/%d", b.current, b.total)),
		b.model.ViewAs(percent),
		percent*100,
	)
	if b.message != "" {
		line += " " + messageStyle.Render("("+b.message+")")
	}
	return line
}
