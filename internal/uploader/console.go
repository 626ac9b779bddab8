package uploader

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleStatus prints every status change as a line on W.
type ConsoleStatus struct {
	W io.Writer
}

// SetStatus implements StatusSink.
func (s ConsoleStatus) SetStatus(text string) {
	fmt.Fprintln(s.W, text)
}

// TextPanel keeps the results in memory until the caller prints them.
type TextPanel struct {
	mu      sync.Mutex
	visible bool
	output  string
}

// Show implements ResultsPanel.
func (p *TextPanel) Show() {
	p.mu.Lock()
	p.visible = true
	p.mu.Unlock()
}

// SetOutput implements ResultsPanel.
func (p *TextPanel) SetOutput(text string) {
	p.mu.Lock()
	p.output = text
	p.mu.Unlock()
}

// Visible reports whether the panel has been revealed.
func (p *TextPanel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Output returns the current panel text.
func (p *TextPanel) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output
}
