package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MEKXH/toolgate/internal/approval"
	"github.com/MEKXH/toolgate/internal/sanitize"
)

var (
	promptHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#8E4EC6")).
				Padding(0, 1)

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8E4EC6")).
			Padding(0, 1)

	promptIDStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// consolePrompter shows approval requests on out and answers them with the
// next line read from in.
type consolePrompter struct {
	outMu  sync.Mutex
	inMu   sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	broker *approval.Broker
}

func newConsoleBroker(in io.Reader, out io.Writer, opts ...approval.Option) *approval.Broker {
	p := &consolePrompter{in: bufio.NewReader(in), out: out}
	p.broker = approval.NewBroker(append(opts, approval.WithNotifier(p))...)
	return p.broker
}

// Notify renders req and answers it asynchronously so Suspend can still
// observe cancellation.
func (p *consolePrompter) Notify(req approval.Request) {
	p.outMu.Lock()
	fmt.Fprintln(p.out, renderPrompt(req))
	fmt.Fprint(p.out, "> ")
	p.outMu.Unlock()

	go p.answer(req.ID)
}

func (p *consolePrompter) answer(id string) {
	p.inMu.Lock()
	line, err := p.in.ReadString('\n')
	p.inMu.Unlock()
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("failed to read decision", "request_id", sanitize.Identifier(id), "error", sanitize.Value(err, sanitize.DefaultMaxLength))
	}

	if _, err := p.broker.Decide(id, strings.TrimSpace(line)); err != nil {
		slog.Debug("decision arrived after request closed", "request_id", sanitize.Identifier(id))
	}
}

func renderPrompt(req approval.Request) string {
	header := promptHeaderStyle.Render("Approval required")
	template := "request {request_id}"
	values := map[string]any{"request_id": req.ID}
	if !req.ExpiresAt.IsZero() {
		template += ", expires {expires_at}"
		values["expires_at"] = req.ExpiresAt.Format(time.RFC3339)
	}
	line := sanitize.Message(template, values)
	id := promptIDStyle.Render(line)
	return lipgloss.JoinVertical(lipgloss.Left, header, id, promptBoxStyle.Render(req.Message))
}
