package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ombicraft/launcher/internal/events"
)

var printer = message.NewPrinter(language.English)

var (
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	progressStyle = lipgloss.NewStyle().Faint(true)
)

// consoleSink prints session events for a terminal.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func newConsoleSink(out, err io.Writer) *consoleSink {
	return &consoleSink{out: out, err: err}
}

func (c *consoleSink) Log(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

func (c *consoleSink) Warn(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.err, warnStyle.Render("WARNING:"), text)
}

func (c *consoleSink) Error(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.err, errorStyle.Render("ERROR:"), text)
}

func (c *consoleSink) Progress(p events.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, progressStyle.Render(fmt.Sprintf("[%s] %d/%d", p.Kind, p.Current, p.Total)))
}

// formatBytes renders n with thousands separators, e.g. "1,048,576 bytes".
func formatBytes(n int64) string {
	return printer.Sprintf("%d bytes", n)
}
