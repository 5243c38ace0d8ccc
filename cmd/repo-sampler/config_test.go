package main

import (
	"testing"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, "gh-repo-sampler/0.1.0", cfg.UserAgent)
	assert.Equal(t, client.DefaultBaseURL, cfg.GitHubAPIURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.5, cfg.RPS)
	assert.Equal(t, 5, cfg.Burst)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"PORT":            "8080",
		"REDIS_URL":       "redis://localhost:6379/2",
		"USER_AGENT":      "me/1.0",
		"GITHUB_TOKEN":    "ghp_x",
		"GITHUB_API_URL":  "https://ghe.example.com/api/v3",
		"GITHUB_RPS":      "2.5",
		"GITHUB_BURST":    "1",
		"REQUEST_TIMEOUT": "3s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
	assert.Equal(t, "me/1.0", cfg.UserAgent)
	assert.Equal(t, "ghp_x", cfg.GitHubToken)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHubAPIURL)
	assert.Equal(t, 2.5, cfg.RPS)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for _, key := range []string{"GITHUB_RPS", "GITHUB_BURST", "REQUEST_TIMEOUT", "PORT"} {
		t.Run(key, func(t *testing.T) {
			_, err := loadConfig(envMap(map[string]string{key: "abc"}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestNewRedis(t *testing.T) {
	c, err := newRedis("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)
	c.Close()

	c, err = newRedis("redis://:secret@cache:6380/3")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", c.Options().Addr)
	assert.Equal(t, 3, c.Options().DB)
	c.Close()

	_, err = newRedis("http://nope")
	assert.Error(t, err)
}
