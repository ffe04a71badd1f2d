package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"q.log/twophase/api"
	"q.log/twophase/batch"
	"q.log/twophase/config"
	"q.log/twophase/instance"
	"q.log/twophase/model"
	"q.log/twophase/render"
	"q.log/twophase/simplex"
)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	cfgFile  string
	verbose  bool
	maximize bool
	timeout  time.Duration
	format   string

	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	solver *simplex.Solver
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:   "twophase",
		Short: "Solve linear programs with the two-phase simplex method",
		Long: `twophase solves linear programs with the two-phase tableau simplex method
and records every tableau it visits.

Problems are read from JSON or YAML request files or from fixed MPS files.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "YAML config file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.maximize, "maximize", false, "Maximize MPS objectives (MPS files carry no sense)")
	flags.DurationVar(&c.timeout, "timeout", 0, "Abort solving after this long (0 disables)")
	flags.Float64("tolerance", simplex.DefaultTolerance, "Zero tolerance of the pivot engine")
	flags.Int("max-iterations", simplex.DefaultMaxIterations, "Pivot cap per phase")
	flags.String("pricing", simplex.Dantzig.String(), "Pricing rule: dantzig or bland")
	flags.Int("workers", 4, "Concurrent solves in batch mode")
	flags.Int("precision", 4, "Decimals printed in tables and summaries")

	for key, flag := range map[string]string{
		"solver.tolerance":      "tolerance",
		"solver.max_iterations": "max-iterations",
		"solver.pricing":        "pricing",
		"batch.workers":         "workers",
		"output.precision":      "precision",
	} {
		if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(c.solveCmd(), c.batchCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	c.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	opts, err := cfg.SolverOptions()
	if err != nil {
		return err
	}
	c.solver = simplex.New(append(opts, simplex.WithLogger(c.logger))...)
	return nil
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *cli) solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <file>",
		Short: "Solve one problem and print its trace",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runSolve,
	}
	cmd.Flags().StringVarP(&c.format, "format", "f", "table", "Output format: table or json")
	return cmd
}

func (c *cli) runSolve(cmd *cobra.Command, args []string) error {
	if c.format != "table" && c.format != "json" {
		return fmt.Errorf("unknown format %q", c.format)
	}
	ctx, cancel := c.context(cmd)
	defer cancel()

	path := args[0]
	c.logger.Info("Solving", zap.String("file", path), zap.String("pricing", c.cfg.Solver.Pricing))
	lp, err := c.readProgram(path)
	if err != nil && !errors.Is(err, model.ErrInvalidProgram) {
		return err
	}
	var res *simplex.Result
	if err == nil {
		res, err = c.solver.Solve(ctx, lp)
	}
	if err != nil && !errors.Is(err, model.ErrInvalidProgram) && !errors.Is(err, simplex.ErrDidNotConverge) {
		c.logger.Error("Solve failed", zap.String("file", path), zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if c.format == "json" {
		resp := api.ErrorResponse(err)
		if err == nil {
			resp = api.FromResult(res)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if err != nil {
		return err
	}
	return render.Trace(out, res, c.cfg.Output.Precision)
}

func (c *cli) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <files...>",
		Short: "Solve several problems concurrently and print one summary per file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runBatch,
	}
}

func (c *cli) runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := c.context(cmd)
	defer cancel()

	errs := make([]error, len(args))
	var programs []model.LinearProgram
	var owners []int
	for i, path := range args {
		lp, err := c.readProgram(path)
		if err != nil {
			errs[i] = err
			continue
		}
		programs = append(programs, lp)
		owners = append(owners, i)
	}

	results := make([]*simplex.Result, len(args))
	for k, o := range batch.Solve(ctx, c.solver, programs, c.cfg.Batch.Workers, c.logger) {
		results[owners[k]], errs[owners[k]] = o.Result, o.Err
	}

	failed := 0
	out := cmd.OutOrStdout()
	for i, path := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "%s: error: %v\n", path, errs[i])
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", path, render.Summary(results[i], c.cfg.Output.Precision))
	}
	c.logger.Info("Batch finished", zap.Int("programs", len(args)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d problems failed", failed, len(args))
	}
	return nil
}

// readProgram loads a request file or, for .mps files, an MPS instance.
func (c *cli) readProgram(path string) (model.LinearProgram, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mps":
		return instance.NewReader(path, c.maximize).Read()
	case ".json", ".yaml", ".yml":
	default:
		return model.LinearProgram{}, fmt.Errorf("%w: unsupported file type %q", model.ErrInvalidProgram, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.LinearProgram{}, err
	}
	defer f.Close()

	req, err := api.ReadRequest(f)
	if err != nil {
		return model.LinearProgram{}, err
	}
	if err := req.Validate(); err != nil {
		return model.LinearProgram{}, err
	}
	return req.Program()
}
