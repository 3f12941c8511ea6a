package main

import (
	"fmt"

	"github.com/jonathan/job-similarity/internal/config"
	"github.com/jonathan/job-similarity/internal/db"
	"github.com/jonathan/job-similarity/internal/logging"
	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/jonathan/job-similarity/internal/recommend"
	"github.com/jonathan/job-similarity/internal/server"
	"github.com/jonathan/job-similarity/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that answers similar-jobs requests from the PostgreSQL job store.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database.url is required")
	}

	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	store, err := db.Connect(ctx, db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	if serveMigrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return err
		}
		logger.Info("database schema applied")
	}

	engine, source, err := buildEngine(cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		DefaultLimit:    cfg.Engine.DefaultLimit,
		MaxLimit:        cfg.Engine.MaxLimit,
		RequestTimeout:  cfg.Engine.RequestTimeout,
		RateLimit:       ratelimit.FromSettings(cfg.RateLimit),
	}, engine, source,
		server.WithLogger(logger),
		server.WithHealthCheck(store.Ping),
		server.WithShutdownHook(store.Close),
	)

	return srv.Start()
}

// buildEngine wires the scorer and engine over store, behind a circuit breaker when enabled.
func buildEngine(cfg *config.Config, store db.JobSource, logger *zap.Logger) (*recommend.Engine, recommend.Store, error) {
	weights, err := cfg.WeightTable()
	if err != nil {
		return nil, nil, err
	}

	var source recommend.Store = store
	if cfg.Breaker.Enabled {
		source = db.NewGuarded("job_store", store, cfg.Breaker, logger)
	}

	scorer := ranking.NewScorer(weights,
		ranking.WithWorkers(cfg.Engine.Workers),
		ranking.WithSkillWeights(cfg.Engine.SkillWeights),
	)
	engine := recommend.NewEngine(source, source, scorer,
		recommend.WithCandidatePool(cfg.Engine.CandidatePool),
		recommend.WithLogger(logger),
	)
	return engine, source, nil
}
