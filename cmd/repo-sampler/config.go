package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
)

// config is the process configuration read from the environment.
type config struct {
	Port           string
	RedisURL       string
	UserAgent      string
	GitHubToken    string
	GitHubAPIURL   string
	RPS            float64
	Burst          int
	RequestTimeout time.Duration
}

func loadConfig(getenv func(string) string) (config, error) {
	def := client.DefaultConfig(nil, "")
	cfg := config{
		Port:           envOr(getenv, "PORT", "5000"),
		RedisURL:       getenv("REDIS_URL"),
		UserAgent:      envOr(getenv, "USER_AGENT", "gh-repo-sampler/0.1.0"),
		GitHubToken:    getenv("GITHUB_TOKEN"),
		GitHubAPIURL:   envOr(getenv, "GITHUB_API_URL", client.DefaultBaseURL),
		RPS:            def.RequestsPerSecond,
		Burst:          def.Burst,
		RequestTimeout: def.Timeout,
	}

	if v := getenv("GITHUB_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config{}, fmt.Errorf("GITHUB_RPS: %w", err)
		}
		cfg.RPS = rps
	}
	if v := getenv("GITHUB_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return config{}, fmt.Errorf("GITHUB_BURST: %w", err)
		}
		cfg.Burst = burst
	}
	if v := getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return config{}, fmt.Errorf("PORT: %w", err)
	}

	return cfg, nil
}

func envOr(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
