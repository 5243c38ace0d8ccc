// Command repo-sampler serves the repository sampling API.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
	"github.com/Sternrassler/gh-repo-sampler/pkg/logging"
	"github.com/Sternrassler/gh-repo-sampler/pkg/sampler"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A .env file is optional; real environment variables win.
	envErr := godotenv.Load()

	logger := logging.Setup(logging.ConfigFromEnv(os.Getenv))
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Ignoring unreadable .env file")
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = newRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("redis", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		log.Info().Str("redis", cfg.RedisURL).Msg("Connected to Redis")
	}

	ccfg := client.DefaultConfig(redisClient, cfg.UserAgent)
	ccfg.BaseURL = cfg.GitHubAPIURL
	ccfg.Token = cfg.GitHubToken
	ccfg.Timeout = cfg.RequestTimeout
	ccfg.RequestsPerSecond = cfg.RPS
	ccfg.Burst = cfg.Burst

	gh, err := client.New(ccfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GitHub client")
	}
	defer gh.Close()

	svc := search.NewService(sampler.New(gh, logger), cfg.GitHubToken, logger)

	srv := &server{
		search:    svc,
		rateLimit: gh,
		logger:    logging.NewLogger("http"),
		now:       time.Now,
	}
	if redisClient != nil {
		srv.ready = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
	}

	log.Info().
		Str("addr", httpServer.Addr).
		Str("user_agent", cfg.UserAgent).
		Bool("token", cfg.GitHubToken != "").
		Bool("redis", redisClient != nil).
		Msg("Starting repo-sampler")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}

// newRedis accepts either a redis:// URL or a bare host:port.
func newRedis(raw string) (*redis.Client, error) {
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: raw}), nil
}
