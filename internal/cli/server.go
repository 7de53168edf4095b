package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"debug-challenge/internal/app"
	"debug-challenge/internal/config"
	"debug-challenge/internal/infra/memory"
	"debug-challenge/internal/infra/postgres"
	infraredis "debug-challenge/internal/infra/redis"
	"debug-challenge/internal/logging"
	"debug-challenge/internal/security"
	"debug-challenge/internal/seed"
	transport "debug-challenge/internal/transport/http"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = config.DefaultPort
	}

	application, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.close()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      application.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("starting challenge server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type application struct {
	handler http.Handler
	close   func()
}

// buildApplication picks Postgres and Redis when configured and in-memory stores otherwise.
func buildApplication(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*application, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn().Msg("auth.secret is not set; using a random secret, sessions will not survive a restart")
	}
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	tokens := security.NewTokens([]byte(secret), tokenTTL)

	var (
		loader      memory.QuestionLoader = seed.NewFileLoader(cfg.Questions.SeedFile)
		accounts    app.AccountRepository = memory.NewAccountStore()
		submissions app.SubmissionLog     = memory.NewSubmissionLog()
	)
	if cfg.Postgres.URL != "" {
		if err := seedDatabase(ctx, cfg, logger, loader); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		loader = postgres.NewQuestionLoader(pool)
		accounts = postgres.NewAccountStore(pool)
		submissions = postgres.NewSubmissionLog(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var (
		questions app.QuestionRepository = memory.NewQuestionRepository(loader, questionTTL)
		sessions  app.SessionRepository  = memory.NewSessionStore(tokenTTL)
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			closeAll()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		cache := infraredis.NewQuestionRepository(client, loader, questionTTL)
		// questions may have been reseeded since the cache was filled
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("question cache invalidation failed")
		}
		questions = cache
		sessions = infraredis.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, tokenTTL))
	}

	challenge := app.NewChallengeService(accounts, questions, submissions, app.NewLeaderboardFeed(), app.Options{
		PointsPerCorrect:     cfg.Challenge.PointsPerCorrect,
		EnforceTimeLimit:     cfg.Challenge.EnforceTimeLimit,
		StrictQuestionLookup: cfg.Challenge.StrictQuestionLookup,
	}, logger)
	auth := app.NewAuthService(accounts, sessions, tokens, challenge, logger)

	server := transport.NewServer(challenge, auth, tokens, transport.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.SecureCookie,
	}, logger)

	logger.Info().
		Bool("postgres", cfg.Postgres.URL != "").
		Bool("redis", cfg.Redis.Addr != "").
		Bool("enforce_time_limit", cfg.Challenge.EnforceTimeLimit).
		Msg("application ready")

	return &application{
		handler: server.Routes(),
		close:   closeAll,
	}, nil
}
