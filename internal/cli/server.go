package cli

import (
	"context"
	"errors"
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

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/infra/memory"
	"quiz-runner/internal/infra/opentdb"
	"quiz-runner/internal/infra/postgres"
	redisinfra "quiz-runner/internal/infra/redis"
	"quiz-runner/internal/infra/schedule"
	"quiz-runner/internal/logger"
	transport "quiz-runner/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
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

	backends, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	ticker := schedule.NewCron(log.Named("ticker"))
	ticker.Start()
	defer ticker.Stop()

	service := newQuizService(cfg, backends, ticker, log)
	stopReaper, err := ticker.Every(time.Minute, func() {
		service.ReapIdle(context.Background(), time.Now())
	})
	if err != nil {
		return err
	}
	defer stopReaper()
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, log.Named("http")),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz runner",
			zap.String("addr", server.Addr),
			zap.String("source", cfg.Quiz.Source),
			zap.Int("per_question_seconds", cfg.Quiz.PerQuestionSeconds),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// backends holds the optional external stores named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, err
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
	}
	return b, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// scoreStore picks Postgres, then Redis, then process memory.
func (b *backends) scoreStore() app.ScoreStore {
	switch {
	case b.pool != nil:
		return postgres.NewScoreStore(b.pool)
	case b.redis != nil:
		return redisinfra.NewScoreStore(b.redis)
	default:
		return memory.NewScoreStore()
	}
}

func newQuizService(cfg config.Config, b *backends, ticker app.Scheduler, log *zap.Logger) *app.QuizService {
	var source app.QuestionLoader
	switch cfg.Quiz.Source {
	case config.SourceOpenTDB:
		source = opentdb.NewClient(
			cfg.OpenTDB.BaseURL,
			config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second),
			opentdb.WithLogger(log.Named("opentdb")),
		)
	case config.SourcePostgres:
		source = postgres.NewQuestionLoader(b.pool).
			WithShuffle(rand.New(rand.NewSource(time.Now().UnixNano())))
	default:
		source = memory.NewStaticQuestionLoader(sampleQuestions()).
			WithShuffle(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 0)
	var loader app.QuestionLoader
	var sessions app.SessionRepository
	if b.redis != nil {
		loader = redisinfra.NewQuestionRepository(b.redis, source, cacheTTL)
		sessions = redisinfra.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		loader = memory.NewQuestionRepository(source, cacheTTL)
		sessions = memory.NewSessionStore()
	}

	return app.NewQuizService(
		sessions,
		loader,
		app.NewHighScores(b.scoreStore()),
		ticker,
		app.Settings{
			PerQuestionSeconds: cfg.Quiz.PerQuestionSeconds,
			QuestionCount:      cfg.Quiz.QuestionCount,
			DefaultDifficulty:  cfg.Quiz.DefaultDifficulty,
			SessionTTL:         config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute),
		},
		log.Named("quiz"),
	)
}
