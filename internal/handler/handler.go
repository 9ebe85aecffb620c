// Package handler drives one lookup: it selects provider clients, fetches
// from them in a fixed order while reporting progress, downgrades failures of
// optional providers to warnings and hands back a typed report.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/entity"
	"github.com/kluth/wtfis/internal/progress"
)

var warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)

// State is the position of a handler in its single pass.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateWarningsReady
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateWarningsReady:
		return "warnings-ready"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Handler runs one fetch pass for one entity.
type Handler interface {
	Entity() entity.Entity
	State() State
	// Fetch queries every provider in order, emitting progress events. Errors
	// from mandatory providers abort the pass and are returned.
	Fetch(ctx context.Context, emit progress.Emit) error
	Warnings() []string
	// PrintWarnings writes accumulated warnings to w.
	PrintWarnings(w io.Writer)
	// Report returns the result bundle once Fetch has succeeded.
	Report() (Report, error)
}

// New builds the handler variant matching the entity kind.
func New(e entity.Entity, cl Clients, maxResolutions int, logger *slog.Logger) Handler {
	b := newBase(e, cl, logger)
	if e.IsIP() {
		return &IPHandler{base: b}
	}
	return &DomainHandler{base: b, maxResolutions: maxResolutions}
}

// base carries the state shared by both handler variants.
type base struct {
	entity   entity.Entity
	clients  Clients
	logger   *slog.Logger
	state    State
	warnings []string
	emit     progress.Emit

	enrich Enrichments
}

func newBase(e entity.Entity, cl Clients, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return base{entity: e, clients: cl, logger: logger, state: StateIdle}
}

func (b *base) Entity() entity.Entity { return b.entity }
func (b *base) State() State          { return b.state }

// Warnings returns a copy of the warnings recorded so far.
func (b *base) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

func (b *base) PrintWarnings(w io.Writer) {
	for _, msg := range b.warnings {
		fmt.Fprintln(w, warningStyle.Render("WARNING:")+" "+msg)
	}
	if b.state == StateWarningsReady {
		b.state = StateDone
	}
}

// run wraps a variant's fetch sequence with the state transitions.
func (b *base) run(ctx context.Context, emit progress.Emit, pass func(ctx context.Context) error) error {
	if b.state != StateIdle {
		return ErrAlreadyFetched
	}
	if emit == nil {
		emit = func(progress.Event) {}
	}
	b.emit = emit
	b.state = StateFetching
	attrs := []any{"entity", b.entity.String(), "kind", b.entity.Kind().String(), "optional", b.clients.optional()}
	if b.entity.IsIP() {
		attrs = append(attrs, "public", b.entity.IsPublic())
	}
	b.logger.Debug("fetch started", attrs...)

	if err := pass(ctx); err != nil {
		b.state = StateFailed
		b.logger.Debug("fetch aborted", "entity", b.entity.String(), "error", err)
		return err
	}

	b.state = StateWarningsReady
	b.logger.Debug("fetch finished", "entity", b.entity.String(), "warnings", len(b.warnings))
	return nil
}

func (b *base) ready() error {
	if b.state != StateWarningsReady && b.state != StateDone {
		return ErrNotFetched
	}
	return nil
}

func (b *base) start(label string, weight int) {
	b.emit(progress.PhaseStart{Label: label, Weight: weight})
}

func (b *base) advance(amount int) {
	b.emit(progress.PhaseAdvance{Amount: amount})
}

// mandatory runs a call whose failure aborts the pass.
func mandatory[T any](provider string, call func() (T, error)) (T, error) {
	v, err := call()
	if err != nil {
		var zero T
		return zero, &ProviderError{Provider: provider, Err: err}
	}
	return v, nil
}

// optional runs a call whose failure is recorded as a warning. ok is false
// when the call failed and the result must stay unset.
func optional[T any](b *base, provider string, call func() (T, error)) (T, bool) {
	v, err := call()
	if err != nil {
		b.warnings = append(b.warnings, warning(provider, err))
		b.logger.Debug("optional provider failed", "provider", provider, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// fetchOptional queries the configured optional providers in their fixed
// order: Shodan, URLhaus, GreyNoise, AbuseIPDB. Per-IP providers are skipped
// when there are no addresses to enrich.
func (b *base) fetchOptional(ctx context.Context, ips []string, host, kind string) {
	if c, ok := b.clients.Shodan.Get(); ok && len(ips) > 0 {
		b.start("Fetching IP data from Shodan", 50)
		if m, ok := optional(b, "Shodan", func() (clients.ShodanMap, error) { return c.GetHosts(ctx, ips...) }); ok {
			b.enrich.Shodan = m
		}
		b.advance(50)
	}

	if c, ok := b.clients.URLhaus.Get(); ok {
		b.start(fmt.Sprintf("Fetching %s data from URLhaus", kind), 50)
		if h, ok := optional(b, "URLhaus", func() (clients.URLhausHost, error) { return c.GetHost(ctx, host) }); ok {
			b.enrich.URLhaus = &h
		}
		b.advance(50)
	}

	if c, ok := b.clients.GreyNoise.Get(); ok && len(ips) > 0 {
		b.start("Fetching IP data from GreyNoise", 50)
		if m, ok := optional(b, "GreyNoise", func() (clients.GreyNoiseMap, error) { return c.GetIPs(ctx, ips...) }); ok {
			b.enrich.GreyNoise = m
		}
		b.advance(50)
	}

	if c, ok := b.clients.AbuseIPDB.Get(); ok && len(ips) > 0 {
		b.start("Fetching IP data from AbuseIPDB", 50)
		if m, ok := optional(b, "AbuseIPDB", func() (clients.AbuseMap, error) { return c.CheckAll(ctx, ips...) }); ok {
			b.enrich.AbuseIPDB = m
		}
		b.advance(50)
	}
}
