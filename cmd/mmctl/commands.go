package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/usecase"
)

// engineFlags binds the settings shared by every engine operation.
type engineFlags struct {
	game     string
	preset   string
	enable   []string
	disable  []string
	poolSize int
	strategy string
	recent   float64
	older    float64
}

func (f *engineFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.game, "game", "", "game id: lottoMax, lotto649 or dailyGrand")
	fl.StringVar(&f.preset, "preset", "", "filter preset: default, balanced, strict, hot, cold or minimal")
	fl.StringSliceVar(&f.enable, "enable", nil, "filters to switch on")
	fl.StringSliceVar(&f.disable, "disable", nil, "filters to switch off")
	fl.IntVar(&f.poolSize, "pool-size", 0, "candidate pool size (5..50)")
	fl.StringVar(&f.strategy, "pool-strategy", "", "pool strategy: dynamic, frequency or model")
	fl.Float64Var(&f.recent, "recent-similarity", 0, "similarity threshold against draws of the last year (percent)")
	fl.Float64Var(&f.older, "older-similarity", 0, "similarity threshold against older draws (percent)")
	_ = cmd.MarkFlagRequired("game")
}

func (f *engineFlags) request() models.EngineRequest {
	req := models.EngineRequest{
		Game:         f.game,
		Preset:       f.preset,
		PoolSize:     f.poolSize,
		PoolStrategy: f.strategy,
	}
	if len(f.enable)+len(f.disable) > 0 {
		req.Filters = make(map[string]bool, len(f.enable)+len(f.disable))
		for _, k := range f.enable {
			req.Filters[k] = true
		}
		for _, k := range f.disable {
			req.Filters[k] = false
		}
	}
	if f.recent > 0 {
		req.RecentSimilarity = &f.recent
	}
	if f.older > 0 {
		req.OlderSimilarity = &f.older
	}
	return req
}

func gamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games, prize tables, filters and presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), usecase.Catalog())
		},
	}
}

func profileCmd(g *globalFlags) *cobra.Command {
	var game string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the statistical profile of a game's history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.Profile(ctx, &models.GameRequest{Game: game})
			})
		},
	}
	cmd.Flags().StringVar(&game, "game", "", "game id")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func generateCmd(g *globalFlags) *cobra.Command {
	var (
		ef    engineFlags
		count int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate combinations that pass the enabled filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.Generate(ctx, &models.GenerateRequest{EngineRequest: ef.request(), Count: count})
			})
		},
	}
	ef.bind(cmd)
	cmd.Flags().IntVar(&count, "count", 1, "number of combinations")
	return cmd
}

func analyzeCmd(g *globalFlags) *cobra.Command {
	var ef engineFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Back-test the pool and filters against the most recent draws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.Analyze(ctx, &models.AnalyzeRequest{EngineRequest: ef.request()})
			})
		},
	}
	ef.bind(cmd)
	return cmd
}

func autotuneCmd(g *globalFlags) *cobra.Command {
	var ef engineFlags
	cmd := &cobra.Command{
		Use:   "autotune",
		Short: "Recommend pool size, thresholds and ticket count from history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.AutoTune(ctx, &models.AutoTuneRequest{EngineRequest: ef.request()})
			})
		},
	}
	ef.bind(cmd)
	return cmd
}

func reductionCmd(g *globalFlags) *cobra.Command {
	var (
		ef       engineFlags
		samples  int
		useModel bool
	)
	cmd := &cobra.Command{
		Use:   "reduction",
		Short: "Estimate how far each filter shrinks the combination space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.Reduction(ctx, &models.ReductionRequest{
					EngineRequest: ef.request(),
					Samples:       samples,
					UseModel:      useModel,
				})
			})
		},
	}
	ef.bind(cmd)
	cmd.Flags().IntVar(&samples, "samples", 0, "Monte Carlo samples (0 uses the default)")
	cmd.Flags().BoolVar(&useModel, "use-model", false, "apply the external model as a final step")
	return cmd
}

func checkCmd(g *globalFlags) *cobra.Command {
	var (
		game   string
		ticket []int
		grand  int
		date   string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a ticket against the latest draw or the draw on --date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := &models.CheckRequest{Game: game, Main: ticket, Date: date}
			if grand > 0 {
				req.Grand = &grand
			}
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				return e.engine.Check(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&game, "game", "", "game id")
	cmd.Flags().IntSliceVar(&ticket, "main", nil, "ticket main numbers")
	cmd.Flags().IntVar(&grand, "grand", 0, "ticket grand number")
	cmd.Flags().StringVar(&date, "date", "", "draw date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("main")
	return cmd
}

// drawInput matches the draws topic message so both paths share validation.
type drawInput struct {
	Game  string `json:"game"`
	Date  string `json:"date"`
	Main  []int  `json:"main"`
	Grand *int   `json:"grand,omitempty"`
	Bonus *int   `json:"bonus,omitempty"`
}

func addDrawCmd(g *globalFlags) *cobra.Command {
	var (
		in           drawInput
		grand, bonus int
	)
	cmd := &cobra.Command{
		Use:   "add-draw",
		Short: "Validate a draw and store it in the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if grand > 0 {
				in.Grand = &grand
			}
			if bonus > 0 {
				in.Bonus = &bonus
			}
			return g.run(cmd, func(ctx context.Context, e *env) (interface{}, error) {
				msg, err := json.Marshal(in)
				if err != nil {
					return nil, err
				}
				h := usecase.NewKafkaDrawsHandler("", e.draws, e.engine.Loader(), e.rec)
				h.SetLogger(e.l)
				if err := h.Handle(ctx, msg); err != nil {
					return nil, fmt.Errorf("add draw: %w", err)
				}
				return e.engine.Profile(ctx, &models.GameRequest{Game: in.Game})
			})
		},
	}
	cmd.Flags().StringVar(&in.Game, "game", "", "game id")
	cmd.Flags().StringVar(&in.Date, "date", "", "draw date (YYYY-MM-DD)")
	cmd.Flags().IntSliceVar(&in.Main, "main", nil, "drawn main numbers")
	cmd.Flags().IntVar(&grand, "grand", 0, "drawn grand number")
	cmd.Flags().IntVar(&bonus, "bonus", 0, "drawn bonus number")
	for _, name := range []string{"game", "date", "main"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
