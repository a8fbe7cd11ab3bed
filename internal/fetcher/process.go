package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	// diagnosticLimit caps how much of the child's error stream is kept
	diagnosticLimit = 4096
	// waitDelay bounds how long Wait blocks on output pipes after the child exits
	waitDelay = 2 * time.Second
)

// ProcessFetcher runs an external fetch executable once per request:
//
//	<executable> --symbol <S> --api-key <K> --output-path <P>
//
// The child's standard output is passed through; its error stream is captured
// and attached to the failure.
type ProcessFetcher struct {
	executable string
	timeout    time.Duration
	stdout     io.Writer
	stderr     io.Writer
	logger     *slog.Logger
}

// ProcessOption configures a ProcessFetcher
type ProcessOption func(*ProcessFetcher)

// WithTimeout kills a fetch that runs longer than d. Zero disables the limit.
func WithTimeout(d time.Duration) ProcessOption {
	return func(p *ProcessFetcher) {
		p.timeout = d
	}
}

// WithOutput sets where the child's output streams are copied. A nil stderr
// keeps the error stream captured only.
func WithOutput(stdout, stderr io.Writer) ProcessOption {
	return func(p *ProcessFetcher) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithLogger sets the logger used for per-process debug records
func WithLogger(logger *slog.Logger) ProcessOption {
	return func(p *ProcessFetcher) {
		p.logger = logger
	}
}

// NewProcessFetcher creates a fetcher that shells out to executable
func NewProcessFetcher(executable string, opts ...ProcessOption) *ProcessFetcher {
	p := &ProcessFetcher{
		executable: executable,
		stdout:     os.Stdout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Args returns the command line arguments for req, excluding the executable
func (p *ProcessFetcher) Args(req Request) []string {
	return []string{
		"--symbol", req.Symbol,
		"--api-key", req.APIKey,
		"--output-path", req.Destination,
	}
}

// Fetch runs the executable for req and waits for it to exit
func (p *ProcessFetcher) Fetch(ctx context.Context, req Request) Outcome {
	outcome := Outcome{Symbol: req.Symbol, Destination: req.Destination}

	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	diag := &tailBuffer{max: diagnosticLimit}

	cmd := exec.CommandContext(runCtx, p.executable, p.Args(req)...)
	cmd.Stdout = p.stdout
	cmd.Stderr = diag
	if p.stderr != nil {
		cmd.Stderr = io.MultiWriter(p.stderr, diag)
	}
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	p.logger.Debug("fetch process finished",
		"request", req,
		"duration", time.Since(start),
		"error", err)

	if err == nil {
		return outcome
	}

	if p.timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		outcome.Err = NewTimeoutError(p.timeout, err)
		return outcome
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.Err = NewExitError(exitErr.ExitCode(), diag.String(), err)
		return outcome
	}

	outcome.Err = NewStartError(err)
	return outcome
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

// String returns the captured text trimmed and folded onto one line
func (b *tailBuffer) String() string {
	lines := strings.Split(strings.TrimSpace(string(b.buf)), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "; ")
}
