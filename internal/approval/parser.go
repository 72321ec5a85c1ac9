package approval

import (
	"log/slog"
	"strings"

	"github.com/MEKXH/toolgate/internal/sanitize"
)

// DefaultKeywords are the substrings that mark a decision as approval.
var DefaultKeywords = []string{
	"approved",
	"approve",
	"yes",
	"proceed",
	"continue",
	"ok",
	"okay",
	"accepted",
	"accept",
	"[approved]",
}

// Parser classifies free-text decisions. The zero value uses DefaultKeywords.
type Parser struct {
	keywords []string
	logger   *slog.Logger
}

// NewParser builds a parser over keywords, falling back to DefaultKeywords
// when none are usable.
func NewParser(keywords ...string) Parser {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		normalized = append(normalized, kw)
	}
	if len(normalized) == 0 {
		return Parser{}
	}
	return Parser{keywords: normalized}
}

// WithLogger returns a copy of p that logs rejections to l instead of
// slog.Default().
func (p Parser) WithLogger(l *slog.Logger) Parser {
	p.logger = l
	return p
}

// Keywords returns the keywords in use.
func (p Parser) Keywords() []string {
	return append([]string(nil), p.active()...)
}

// Approved reports whether decision contains any approval keyword.
// Matching is case-insensitive and substring based, so "unacceptable"
// matches "accept".
func (p Parser) Approved(decision string) bool {
	normalized := strings.ToLower(strings.TrimSpace(decision))
	if normalized == "" {
		p.log().Warn("empty approval decision, treating as rejection")
		return false
	}

	for _, kw := range p.active() {
		if strings.Contains(normalized, kw) {
			return true
		}
	}

	p.log().Warn("no approval keyword in decision, treating as rejection",
		"decision", sanitize.Feedback(decision))
	return false
}

func (p Parser) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

func (p Parser) active() []string {
	if len(p.keywords) == 0 {
		return DefaultKeywords
	}
	return p.keywords
}
