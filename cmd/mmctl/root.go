package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"MillionaireMaker/internal/di"
	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
	internalrepo "MillionaireMaker/internal/repository"
	"MillionaireMaker/internal/services/generator"
	"MillionaireMaker/internal/services/model"
	"MillionaireMaker/internal/services/reduction"
	"MillionaireMaker/internal/usecase"
	"MillionaireMaker/pkg/cache"
	"MillionaireMaker/pkg/config"
	applogger "MillionaireMaker/pkg/logger"
	"MillionaireMaker/pkg/metrics"
	pkgpg "MillionaireMaker/pkg/postgres"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	drawsFile  string
	configPath string
	modelURL   string
	seed       uint64
	logLevel   string
}

// env is the engine stack a command runs against.
type env struct {
	engine *usecase.Engine
	draws  repository.DrawRepository
	rec    *metrics.Recorder
	l      *applogger.Logger
	close  func()
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "mmctl",
		Short: "Run lottery profiling and combination generation offline",
		Long: `mmctl runs the engine operations against a JSON draw file or the
Postgres draw history named by a service config file.

Examples:
  mmctl generate --draws draws.json --game lotto649 --count 5 --preset balanced
  mmctl autotune --config config/config.yaml --game dailyGrand
  mmctl check --draws draws.json --game lottoMax --main 1,2,3,4,5,6,7`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.drawsFile, "draws", "", "JSON draw history file keyed by game id")
	pf.StringVar(&g.configPath, "config", "", "service config file; its database is used when --draws is empty")
	pf.StringVar(&g.modelURL, "model-url", "", "external scoring model base URL (overrides the config)")
	pf.Uint64Var(&g.seed, "seed", 0, "random seed for reproducible output (0 picks one)")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		gamesCmd(),
		profileCmd(g),
		generateCmd(g),
		analyzeCmd(g),
		autotuneCmd(g),
		reductionCmd(g),
		checkCmd(g),
		addDrawCmd(g),
	)
	return root
}

// open builds the engine over the selected draw source.
func (g *globalFlags) open(cmd *cobra.Command) (*env, error) {
	lvl, err := zerolog.ParseLevel(g.logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l := applogger.NewWriter(cmd.ErrOrStderr(), lvl)

	var (
		draws   repository.DrawRepository
		closeFn = func() {}
		ecfg    = defaultEngineConfig()
		mcfg    model.BreakerSettings
		baseURL = g.modelURL
	)

	switch {
	case g.drawsFile != "":
		draws = internalrepo.NewFileDrawRepository(g.drawsFile)
	case g.configPath != "":
		cfg, err := config.LoadWithEnv(g.configPath)
		if err != nil {
			return nil, err
		}
		pg, err := pkgpg.NewClient(
			pkgpg.WithURL(cfg.Database.URL),
			pkgpg.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
		)
		if err != nil {
			return nil, fmt.Errorf("postgres client: %w", err)
		}
		repo := internalrepo.NewPostgresDrawRepository(pg.DB())
		repo.SetLogger(l)
		draws = repo
		closeFn = func() { _ = pg.Close() }
		ecfg = di.ProvideEngineConfig(cfg)
		mcfg = model.BreakerSettings{
			MaxRequests:         cfg.Model.Breaker.MaxRequests,
			Interval:            cfg.Model.Breaker.Interval,
			Timeout:             cfg.Model.Breaker.Timeout,
			ConsecutiveFailures: cfg.Model.Breaker.ConsecutiveFailures,
		}
		if baseURL == "" {
			baseURL = cfg.Model.BaseURL
		}
	default:
		return nil, errors.New("one of --draws or --config is required")
	}

	rec := metrics.New()
	pc := internalrepo.NewProfileCache(cache.NewMemoryCache(), 0)
	loader := usecase.NewProfileLoader(draws, pc, rec)
	loader.SetLogger(l)

	modelOpts := []model.Option{model.WithLogger(l)}
	if mcfg.ConsecutiveFailures > 0 {
		modelOpts = append(modelOpts, model.WithBreaker(mcfg))
	}
	mc := model.New(baseURL, modelOpts...)

	var opts []usecase.EngineOption
	if g.seed != 0 {
		src := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
		opts = append(opts, usecase.WithRandSource(func() *rand.Rand {
			return rand.New(rand.NewPCG(src.Uint64(), src.Uint64()))
		}))
	}
	engine := usecase.NewEngine(loader, mc, internalrepo.NopReportStore{}, internalrepo.NopPublisher{}, rec, ecfg, opts...)
	engine.SetLogger(l)

	return &env{engine: engine, draws: draws, rec: rec, l: l, close: closeFn}, nil
}

// run opens the stack, calls fn and prints its result as indented JSON.
func (g *globalFlags) run(cmd *cobra.Command, fn func(ctx context.Context, e *env) (interface{}, error)) error {
	e, err := g.open(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	out, err := fn(cmd.Context(), e)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// defaultEngineConfig mirrors the service defaults for file-backed runs.
func defaultEngineConfig() usecase.EngineConfig {
	return usecase.EngineConfig{
		Defaults:         models.DefaultFilterConfig(),
		MaxAttempts:      generator.DefaultMaxAttempts,
		ReductionSamples: reduction.DefaultSamples,
		MaxBatch:         100,
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
