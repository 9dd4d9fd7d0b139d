package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/pretty"

	"osintbot/internal/config"
)

// Result carries one executed lookup through delivery and bookkeeping.
// Envelope and Pretty keep the raw upstream content for the audit trail;
// Sanitized is the only form shown to the requesting user.
type Result struct {
	Command   string
	Query     string
	Envelope  []byte
	Pretty    string
	Sanitized string
	FileName  string
	Oversized bool
	IsError   bool
}

// Pipeline resolves lookup commands against the catalog, invokes the
// upstream service and prepares the response for delivery. Upstream failures
// arrive here as regular error payloads, so there is no failure branch: the
// only routing decision is inline message versus file attachment.
type Pipeline struct {
	commands    map[string]config.Command
	branding    config.Branding
	footer      string
	inlineLimit int
	upstream    *UpstreamClient
	sanitizer   *Sanitizer
}

func NewPipeline(cfg config.Config, upstream *UpstreamClient, sanitizer *Sanitizer) *Pipeline {
	limit := cfg.InlineLimit
	if limit <= 0 {
		limit = 4000
	}
	return &Pipeline{
		commands:    cfg.Commands,
		branding:    cfg.Branding,
		footer:      cfg.LookupFooter,
		inlineLimit: limit,
		upstream:    upstream,
		sanitizer:   sanitizer,
	}
}

// Resolve looks the command up in the catalog.
func (p *Pipeline) Resolve(name string) (config.Command, bool) {
	cmd, ok := p.commands[name]
	return cmd, ok
}

// Execute runs one lookup end to end. The second return value reports
// whether the command exists; an unknown command does nothing else.
func (p *Pipeline) Execute(ctx context.Context, name, query string) (Result, bool) {
	cmd, ok := p.commands[name]
	if !ok {
		return Result{}, false
	}
	payload, isError := p.upstream.Invoke(ctx, cmd.URL, query)
	return p.render(name, cmd, query, payload, isError), true
}

func (p *Pipeline) render(name string, cmd config.Command, query string, payload []byte, isError bool) Result {
	envelope := BuildEnvelope(payload, p.branding)
	prettyText := strings.TrimSpace(string(pretty.Pretty(envelope)))
	sanitized := p.sanitizer.Clean(prettyText, cmd.ExtraDenylist)

	rendered := utf8.RuneCountInString(prettyText) + utf8.RuneCountInString(p.footer)

	return Result{
		Command:   name,
		Query:     query,
		Envelope:  envelope,
		Pretty:    prettyText,
		Sanitized: sanitized,
		FileName:  fmt.Sprintf("%s_%s.txt", name, truncateRunes(query, 20)),
		Oversized: rendered >= p.inlineLimit,
		IsError:   isError,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
