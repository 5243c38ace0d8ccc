// Command repo-search prints a random sample of GitHub repositories matching
// the given filters. Each run prints its seed; passing it back with -seed and
// a later -page continues the same session without repeats.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
	"github.com/Sternrassler/gh-repo-sampler/pkg/logging"
	"github.com/Sternrassler/gh-repo-sampler/pkg/sampler"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	// A .env file is optional; real environment variables win.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr, envErr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer, envErr error) int {
	opts, err := parseFlags(args, getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger := logging.Setup(cliLogConfig(getenv, opts.Verbose, stderr))
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("Ignoring unreadable .env file")
	}

	svc, closeFn, err := newService(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer closeFn()

	resp := svc.Search(ctx, opts.Request)
	if !resp.Success {
		fmt.Fprintf(stderr, "Error: %s\n", resp.Error)
		if resp.Kind == sampler.KindRateLimited && opts.Request.GitHubToken == "" {
			fmt.Fprintln(stderr, "Consider using a GitHub token with -github-token or GITHUB_TOKEN")
		}
		if resp.Kind == sampler.KindValidation {
			return exitUsage
		}
		return exitFailure
	}

	if err := render(stdout, stderr, opts.Format, resp); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// cliLogConfig keeps the terminal quiet unless asked: warnings by default,
// debug with -v, and LOG_LEVEL still wins when set.
func cliLogConfig(getenv func(string) string, verbose bool, stderr io.Writer) logging.Config {
	cfg := logging.ConfigFromEnv(getenv)
	cfg.Output = stderr
	if getenv("LOG_PRETTY") == "" {
		cfg.Pretty = true
	}
	switch {
	case verbose:
		cfg.Level = logging.LevelDebug
	case getenv("LOG_LEVEL") == "":
		cfg.Level = logging.LevelWarn
	}
	return cfg
}

// newService wires a Redis-less client. The CLI makes one call per run, so a
// local limiter would never engage and is disabled.
func newService(opts options, logger zerolog.Logger) (*search.Service, func(), error) {
	ccfg := client.DefaultConfig(nil, opts.UserAgent)
	ccfg.BaseURL = opts.BaseURL
	ccfg.Timeout = opts.Timeout
	ccfg.RequestsPerSecond = 0

	gh, err := client.New(ccfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = gh.Close() }
	return search.NewService(sampler.New(gh, logger), "", logger), closeFn, nil
}
