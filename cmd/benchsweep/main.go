// Package main provides the CLI entry point for benchsweep, a driver
// for externally-built benchmark binaries that sweeps configuration
// spaces, samples resource usage, and writes CSV/JSON/markdown
// results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/report"
	"github.com/adamwrob/benchsweep/runner"
	"github.com/adamwrob/benchsweep/sweep"
	"github.com/adamwrob/benchsweep/sysinfo"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchsweep",
		Short: "Sweep-driven benchmark runner for external binaries",
		Long: `Benchsweep runs externally-built benchmark programs (NAS Parallel
Benchmark kernels, echo servers, producer/consumer tests) across a configured
space of classes, thread counts, and modes, sampling memory and CPU while each
run executes and parsing the program's textual report into structured metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		planPath  string
		binary    string
		target    string
		family    string
		classes   []string
		threads   []int
		modes     []string
		repeats   int
		timeout   time.Duration
		cooldown  time.Duration
		outputDir string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark sweep",
		Long: `Run every configuration point of a sweep, one subject process at a
time, and write per-run results plus a summary to the output directory. A plan
file describes multi-target sweeps; the flags cover the single-binary case.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := buildPlan(planPath, flagPlan{
				binary:   binary,
				target:   target,
				family:   family,
				classes:  classes,
				threads:  threads,
				modes:    modes,
				repeats:  repeats,
				timeout:  timeout,
				cooldown: cooldown,
			})
			if err != nil {
				return err
			}

			return runSweep(cmd.Context(), logger, plan, outputDir, asJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&planPath, "plan", "",
		"Path to a YAML sweep plan (overrides the flags below)")
	flags.StringVar(&binary, "binary", "",
		"Path to the benchmark binary (default: search conventional build dirs)")
	flags.StringVar(&target, "target", "rust",
		"Target implementation name (rust, cpp)")
	flags.StringVar(&family, "family", string(parse.FamilyNPB),
		"Output dialect family: npb, echo, prodcons")
	flags.StringSliceVar(&classes, "classes", []string{"S"},
		"Benchmark class/size identifiers")
	flags.IntSliceVar(&threads, "threads", []int{1, 2, 4, 8},
		"Thread counts to sweep, ascending")
	flags.StringSliceVar(&modes, "modes", nil,
		"Communication/implementation modes, if the family takes one")
	flags.IntVar(&repeats, "repeats", sweep.DefaultRepeats,
		"Iterations per configuration point")
	flags.DurationVar(&timeout, "timeout", sweep.DefaultTimeout,
		"Per-invocation timeout")
	flags.DurationVar(&cooldown, "cooldown", sweep.DefaultCooldown,
		"Pause between invocations")
	flags.StringVar(&outputDir, "out", "benchmark_results",
		"Directory for result files")
	flags.BoolVar(&asJSON, "json", false,
		"Print results as JSON instead of a markdown summary")

	return cmd
}

type flagPlan struct {
	binary   string
	target   string
	family   string
	classes  []string
	threads  []int
	modes    []string
	repeats  int
	timeout  time.Duration
	cooldown time.Duration
}

func buildPlan(planPath string, f flagPlan) (*sweep.Plan, error) {
	if planPath != "" {
		file, err := os.Open(planPath)
		if err != nil {
			return nil, fmt.Errorf("open plan %s: %w", planPath, err)
		}
		defer file.Close()

		plan, err := sweep.LoadPlan(file)
		if err != nil {
			return nil, fmt.Errorf("load plan %s: %w", planPath, err)
		}

		return plan, nil
	}

	binary := f.binary
	if binary == "" {
		var err error

		binary, err = runner.LocateBinary(runner.DefaultCandidates(f.target))
		if err != nil {
			return nil, err
		}
	}

	plan := &sweep.Plan{
		Targets: []sweep.Target{{
			Name:   f.target,
			Binary: binary,
			Family: parse.Family(f.family),
		}},
		Classes:  f.classes,
		Threads:  f.threads,
		Modes:    f.modes,
		Repeats:  f.repeats,
		Timeout:  f.timeout,
		Cooldown: f.cooldown,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

func runSweep(
	ctx context.Context,
	logger *slog.Logger,
	plan *sweep.Plan,
	outputDir string,
	asJSON bool,
) error {
	// SIGINT stops the sweep between invocations; the in-flight run
	// finishes and partial results are still written.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	sessionID := uuid.NewString()

	logger.Info("starting benchmark session",
		slog.String("session", sessionID),
		slog.Int("targets", len(plan.Targets)),
		slog.Any("classes", plan.Classes),
		slog.Any("threads", plan.Threads),
		slog.Int("repeats", plan.Repeats),
	)

	info := sysinfo.Collect(ctx, logger)
	tools := sysinfo.ProbeTools(logger, sysinfo.OptionalTools)

	if err := writeSystemInfo(outputDir, sessionID, info, tools); err != nil {
		return err
	}

	controller := sweep.NewController(runner.New(logger), logger)
	results := controller.Run(ctx, *plan)

	if len(results) == 0 {
		return fmt.Errorf("no results collected")
	}

	if err := writeResults(outputDir, sessionID, results); err != nil {
		return err
	}

	s := sweep.Summarize(results)
	logger.Info("session complete",
		slog.String("session", sessionID),
		slog.Int("runs", s.Total),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("verification_failed", s.VerifyFailed),
		slog.Int("execution_failed", s.ExecFailed),
	)

	if asJSON {
		return report.GenerateJSON(os.Stdout, results)
	}

	return report.Generate(os.Stdout, results)
}

func writeSystemInfo(
	dir, sessionID string,
	info sysinfo.Info,
	tools []sysinfo.Tool,
) error {
	path := filepath.Join(dir, "system_info_"+sessionID+".json")

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")

	payload := struct {
		System sysinfo.Info   `json:"system"`
		Tools  []sysinfo.Tool `json:"tools"`
	}{System: info, Tools: tools}

	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func writeResults(dir, sessionID string, results []runner.Result) error {
	csvPath := filepath.Join(dir, "results_"+sessionID+".csv")

	csvFile, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvPath, err)
	}
	defer csvFile.Close()

	if err := report.WriteCSV(csvFile, results); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}

	jsonPath := filepath.Join(dir, "results_"+sessionID+".json")

	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", jsonPath, err)
	}
	defer jsonFile.Close()

	if err := report.GenerateJSON(jsonFile, results); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	return nil
}
