package coordinator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"marketfetch/internal/config"
	"marketfetch/internal/fetcher"
	"marketfetch/internal/ratelimit"
)

// State is the lifecycle stage of a Coordinator
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Coordinator drives one fetch per configured symbol, strictly one after another
type Coordinator struct {
	fetcher fetcher.Fetcher
	out     io.Writer
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	state   State
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithOutput sets where status lines are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) {
		c.out = w
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMinInterval spaces the start of consecutive fetches by at least d
func WithMinInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.limiter.SetInterval(ratelimit.APIAlphaVantage, d)
	}
}

// New creates a new Coordinator around f
func New(f fetcher.Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher: f,
		out:     os.Stdout,
		logger:  slog.Default(),
		limiter: ratelimit.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle stage
func (c *Coordinator) State() State {
	return c.state
}

// Run makes sure the output directory exists, then fetches every symbol of the
// work list in order. Status lines are printed as it goes:
//   - before each fetch: "--- Downloading data for SYMBOL ---"
//   - on failure: "Error fetching data for SYMBOL: error message"
//
// A failed fetch never stops the loop. The only error Run returns is an
// OutputDirectoryError, in which case nothing has been fetched.
func (c *Coordinator) Run(ctx context.Context, cfg *config.Config) ([]fetcher.Outcome, error) {
	c.state = StateInitializing
	if err := EnsureOutputDir(cfg.OutputPath); err != nil {
		return nil, err
	}

	c.state = StateRunning
	symbols := WorkList(cfg.Assets)
	if len(symbols) == 0 {
		c.logger.Warn("no symbols configured", "assets", len(cfg.Assets))
	}
	c.logger.Debug("starting batch",
		"symbols", len(symbols),
		"output_path", cfg.OutputPath,
		"api_key", cfg.APIKey)

	outcomes := make([]fetcher.Outcome, 0, len(symbols))
	failed := 0
	for _, symbol := range symbols {
		outcome := c.fetchOne(ctx, fetcher.Request{
			Symbol:      symbol,
			APIKey:      cfg.APIKey.Reveal(),
			Destination: Destination(cfg.OutputPath, symbol),
		})
		if !outcome.OK() {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	c.state = StateCompleted
	c.logger.Debug("batch completed",
		"succeeded", len(outcomes)-failed,
		"failed", failed)

	return outcomes, nil
}

func (c *Coordinator) fetchOne(ctx context.Context, req fetcher.Request) fetcher.Outcome {
	fmt.Fprintf(c.out, "--- Downloading data for %s ---\n", req.Symbol)

	var outcome fetcher.Outcome
	if err := c.pace(ctx, req.Symbol); err != nil {
		outcome = fetcher.Outcome{Symbol: req.Symbol, Destination: req.Destination, Err: fetcher.NewCanceledError(err)}
	} else {
		outcome = c.fetcher.Fetch(ctx, req)
	}

	if !outcome.OK() {
		fmt.Fprintf(c.out, "Error fetching data for %s: %v\n", req.Symbol, outcome.Err)
	}
	return outcome
}

// pace holds the next fetch start back until the minimum interval has passed
func (c *Coordinator) pace(ctx context.Context, symbol string) error {
	if c.limiter.Allow(ratelimit.APIAlphaVantage) {
		return nil
	}

	start := time.Now()
	err := c.limiter.Wait(ctx, ratelimit.APIAlphaVantage)
	c.logger.Debug("fetch start paced",
		"symbol", symbol,
		"waited", time.Since(start),
		"error", err)
	return err
}
