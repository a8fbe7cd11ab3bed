// Command datafetcher downloads the daily price bars of one symbol from
// AlphaVantage and writes them to a bar file. It is the per-symbol executable
// driven by marketfetch.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"marketfetch/internal/alphavantage"
	"marketfetch/internal/barfile"
	"marketfetch/internal/fetcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("data_fetcher", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	symbol := flags.StringP("symbol", "s", "", "the stock symbol to fetch (eg AAPL)")
	apiKey := flags.StringP("api-key", "a", "", "AlphaVantage API key")
	outputPath := flags.StringP("output-path", "o", "", "the path to save the output .bin file")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	var missing []string
	for _, name := range []string{"symbol", "api-key", "output-path"} {
		if flags.Lookup(name).Value.String() == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(stderr, "Error: missing required flags: %v\n", missing)
		return 2
	}

	v := viper.New()
	v.SetDefault("alphavantage_base_url", alphavantage.DefaultBaseURL)
	v.BindEnv("alphavantage_base_url", "ALPHAVANTAGE_BASE_URL")

	fmt.Fprintf(stdout, "Fetching data for symbol: %s\n", *symbol)

	client := fetcher.NewHTTPClient(v.GetString("alphavantage_base_url"))
	bars, err := alphavantage.NewDailySeriesFetcher(*apiKey, client).Fetch(ctx, *symbol)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := barfile.WriteFile(*outputPath, bars); err != nil {
		fmt.Fprintf(stderr, "Error: failed to save %s: %v\n", *outputPath, err)
		return 1
	}

	fmt.Fprintf(stdout, "Successfully saved data to: %s\n", *outputPath)
	return 0
}
