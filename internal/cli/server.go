package cli

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adaptive-quiz-service/internal/adaptive"
	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	pgloader "adaptive-quiz-service/internal/infra/postgres"
	redisinfra "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/scoring"
	transport "adaptive-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the adaptive quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.MustStaticBankLoader(sampleBanks())
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var attempts app.AttemptStore
	var states app.StateStore
	var leaderboard app.Leaderboard
	if redisClient != nil {
		attempts = redisinfra.NewAttemptStore(redisClient, redisTTL)
		states = redisinfra.NewStateStore(redisClient)
		leaderboard = redisinfra.NewLeaderboard(redisClient)
	} else {
		attempts = memory.NewAttemptStore()
		states = memory.NewStateStore()
	}

	registry := scoring.NewDefaultRegistry()
	selector := adaptive.New(rand.NewSource(time.Now().UnixNano()))
	service := app.NewQuizService(attempts, banks, states, registry, selector, log, app.Options{
		Locale:        cfg.Scoring.Locale,
		DefaultPolicy: cfg.Scoring.DefaultPolicy,
		Leaderboard:   leaderboard,
	})
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting adaptive quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides minimal demo content; the Postgres loader replaces this
// in production.
func sampleBanks() map[string]domain.Bank {
	return map[string]domain.Bank{
		"general-1": {
			ID: "general-1",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "o1", Text: "3"},
						{ID: "o2", Text: "4", Correct: true},
						{ID: "o3", Text: "5"},
					},
					Points:     10,
					Difficulty: 1,
				},
				{
					ID:     "q2",
					Prompt: "What is 12 x 12?",
					Options: []domain.Option{
						{ID: "o1", Text: "144", Correct: true},
						{ID: "o2", Text: "124", PartialCreditPct: 0},
						{ID: "o3", Text: "142"},
					},
					Points:     10,
					Difficulty: 2,
				},
				{
					ID:     "q3",
					Prompt: "Which is closest to the square root of 200?",
					Options: []domain.Option{
						{ID: "o1", Text: "14", Correct: true},
						{ID: "o2", Text: "15", PartialCreditPct: 40},
						{ID: "o3", Text: "20"},
					},
					Points:     10,
					Difficulty: 3,
				},
			},
		},
	}
}
