package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kluth/wtfis/internal/config"
	"github.com/kluth/wtfis/internal/handler"
	"github.com/kluth/wtfis/internal/progress"
	"github.com/kluth/wtfis/internal/view"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ExitError carries the message and exit status of a failed run.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string { return e.Message }

func (e *ExitError) Unwrap() error { return e.Err }

func fail(err error) error {
	return &ExitError{Code: 1, Message: "Error: " + err.Error(), Err: err}
}

// app holds the process surroundings so tests can replace them.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	source     config.Source
	httpClient *http.Client
}

func newApp() *app {
	return &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		source: config.DefaultSource(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:   "wtfis <entity>",
		Short: "Passive hostname, domain and IP lookup tool",
		Long: fmt.Sprintf(`wtfis looks up a domain, FQDN or IP address across VirusTotal and optional
enrichment providers and prints a report.

Build Info: Commit %s, Date %s

Examples:  wtfis example.com
  wtfis 93.184.216.34 -s -g
  wtfis example.com --format json --output report.json`, commit, date),
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Entity = args[0]
			return a.lookup(cmd.Context(), cmd.Flags(), cfg)
		},
	}
	config.BindFlags(cmd.Flags(), cfg)
	cmd.AddCommand(newMcpCmd(a))
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fetchReport selects the clients and runs one fetch pass.
func (a *app) fetchReport(ctx context.Context, cfg *config.Config, r progress.Reporter, logger *slog.Logger) (handler.Handler, handler.Report, error) {
	cl, err := handler.SelectClients(cfg.HandlerOptions(), handler.HTTPFactory{HTTPClient: a.httpClient, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	h := handler.New(cfg.Target, cl, cfg.MaxResolutions, logger)
	if err := progress.Run(r, func(emit progress.Emit) error {
		return h.Fetch(ctx, emit)
	}); err != nil {
		return nil, nil, err
	}
	report, err := h.Report()
	if err != nil {
		return nil, nil, err
	}
	return h, report, nil
}

func (a *app) lookup(ctx context.Context, fs *pflag.FlagSet, cfg *config.Config) error {
	if err := config.Load(fs, cfg, a.source); err != nil {
		return fail(err)
	}
	logger := newLogger(a.stderr, cfg.Verbose)
	logger.Debug("configuration loaded", "entity", cfg.Target.String(), "format", cfg.Format, "max_resolutions", cfg.MaxResolutions)

	h, report, err := a.fetchReport(ctx, cfg, progress.New(a.stderr, cfg.Quiet), logger)
	if err != nil {
		return fail(err)
	}
	h.PrintWarnings(a.stderr)

	out, closeOut, err := a.resolveOutput(cfg.Output)
	if err != nil {
		return fail(err)
	}
	defer closeOut()

	if err := view.Render(out, report, cfg.ViewOptions()); err != nil {
		return fail(err)
	}
	return nil
}

func (a *app) resolveOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return a.stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
