package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
	"github.com/Sternrassler/gh-repo-sampler/pkg/presets"
	"github.com/Sternrassler/gh-repo-sampler/pkg/query"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
)

const defaultNumRepos = 5

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatCSV  = "csv"
)

type options struct {
	Request   search.Request
	Format    string
	Verbose   bool
	Timeout   time.Duration
	BaseURL   string
	UserAgent string
}

// parseFlags reads the command line on top of an optional preset. Flags given
// explicitly always win over the preset's values.
func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	var (
		opts     options
		preset   string
		language string
		topics   string
		minStars optionalInt
		maxStars optionalInt
		since    string
		numRepos int
		page     int
		seed     optionalInt64
		archived bool
		forks    bool
		sortBy   string
		token    string
	)

	fs := flag.NewFlagSet("repo-search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&preset, "preset", "", "Start from a preset (see the server's /api/presets)")
	fs.StringVar(&language, "language", "", "Programming language filter (e.g. python, go)")
	fs.StringVar(&topics, "topics", "", "Comma separated topics")
	fs.Var(&minStars, "min-stars", "Minimum number of stars")
	fs.Var(&maxStars, "max-stars", "Maximum number of stars")
	fs.StringVar(&since, "since", "", "Last push since a period or YYYY-MM-DD")
	fs.IntVar(&numRepos, "num-repos", defaultNumRepos, "Number of repositories per page")
	fs.IntVar(&page, "page", search.DefaultPage, "Page of the session to fetch")
	fs.Var(&seed, "seed", "Session seed printed by an earlier run")
	fs.BoolVar(&archived, "exclude-archived", false, "Exclude archived repositories")
	fs.BoolVar(&forks, "exclude-forks", false, "Exclude forked repositories")
	fs.StringVar(&sortBy, "sort-by", string(search.DefaultSort), "Sort by: stars, forks or updated")
	fs.StringVar(&token, "github-token", "", "GitHub token (default $GITHUB_TOKEN)")
	fs.StringVar(&opts.Format, "output", formatText, "Output format: text, json or csv")
	fs.BoolVar(&opts.Verbose, "v", false, "Debug logging on stderr")
	fs.DurationVar(&opts.Timeout, "timeout", client.DefaultConfig(nil, "").Timeout, "Timeout for the GitHub call")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: repo-search [flags]")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Time periods:")
		for _, p := range query.Periods() {
			fmt.Fprintf(stderr, "  %-8s %d days\n", p.Name, p.Days)
		}
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, "  repo-search -language python -min-stars 100 -num-repos 5")
		fmt.Fprintln(stderr, "  repo-search -preset rust-projects -output json")
		fmt.Fprintln(stderr, "  repo-search -language go -seed 4242 -page 2")
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	req := search.Request{NumRepos: defaultNumRepos}
	if preset != "" {
		p, err := presets.Get(preset)
		if err != nil {
			return options{}, err
		}
		req = p.Config.Request()
		if req.NumRepos == 0 {
			req.NumRepos = defaultNumRepos
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "language":
			req.Language = language
		case "topics":
			req.Topics = splitTopics(topics)
		case "min-stars":
			req.MinStars = minStars.value
		case "max-stars":
			req.MaxStars = maxStars.value
		case "since":
			req.Since = since
		case "num-repos":
			req.NumRepos = numRepos
		case "exclude-archived":
			req.ExcludeArchived = archived
		case "exclude-forks":
			req.ExcludeForks = forks
		case "sort-by":
			req.SortBy = sortBy
		}
	})
	req.Page = page
	req.Seed = seed.value

	if req.NumRepos <= 0 {
		return options{}, errors.New("num-repos must be greater than 0")
	}
	if page <= 0 {
		return options{}, errors.New("page must be greater than 0")
	}
	switch opts.Format {
	case formatText, formatJSON, formatCSV:
	default:
		return options{}, fmt.Errorf("unknown output format %q", opts.Format)
	}

	req.GitHubToken = token
	if req.GitHubToken == "" {
		req.GitHubToken = getenv("GITHUB_TOKEN")
	}

	opts.Request = req
	opts.BaseURL = envOr(getenv, "GITHUB_API_URL", client.DefaultBaseURL)
	opts.UserAgent = envOr(getenv, "USER_AGENT", "gh-repo-sampler/0.1.0")
	return opts, nil
}

func splitTopics(s string) search.Topics {
	var out search.Topics
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// optionalInt is an int flag that stays nil unless given.
type optionalInt struct{ value *int }

func (o *optionalInt) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value = &n
	return nil
}

type optionalInt64 struct{ value *int64 }

func (o *optionalInt64) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.FormatInt(*o.value, 10)
}

func (o *optionalInt64) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	o.value = &n
	return nil
}
