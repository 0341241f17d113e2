package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/adamwrob/benchsweep/runner"
)

// Controller drives one sweep. Invocations run strictly one at a time
// so the subject under test never contends with a sibling run.
type Controller struct {
	runner *runner.Runner
	logger *slog.Logger

	// sleep is swapped out in tests so cooldowns don't slow them.
	sleep func(time.Duration)
}

// NewController creates a Controller executing through r.
func NewController(r *runner.Runner, logger *slog.Logger) *Controller {
	return &Controller{
		runner: r,
		logger: logger.With(slog.String("component", "sweep")),
		sleep:  time.Sleep,
	}
}

// Run walks the plan's configuration space in order and returns every
// result collected. Cancelling ctx stops the sweep between
// invocations: the in-flight invocation finishes (or times out)
// normally, and everything collected so far is returned. A failure at
// one point never blocks later points.
func (c *Controller) Run(ctx context.Context, plan Plan) []runner.Result {
	points := plan.Points()
	total := len(points) * plan.Repeats

	c.logger.Info("starting sweep",
		slog.Int("points", len(points)),
		slog.Int("repeats", plan.Repeats),
		slog.Int("invocations", total),
	)

	var results []runner.Result

	done := 0

	for _, pt := range points {
		var repeats []runner.Result

		for run := 1; run <= plan.Repeats; run++ {
			if ctx.Err() != nil {
				c.logger.Warn("sweep interrupted, keeping partial results",
					slog.Int("completed", done),
					slog.Int("planned", total),
				)

				return results
			}

			inv := pt.Invocation(run, plan.Timeout)

			// The invocation itself runs under an uncancelled
			// context so an interrupt never corrupts the record in
			// flight; only its own timeout can stop it.
			res := c.runner.Run(context.WithoutCancel(ctx), inv)
			done++

			c.logResult(res, done, total)

			results = append(results, res)
			repeats = append(repeats, res)

			if plan.Cooldown > 0 && done < total {
				c.sleep(plan.Cooldown)
			}
		}

		if plan.Repeats > 1 {
			if avg, ok := averageOf(repeats); ok {
				results = append(results, avg)
			}
		}
	}

	c.logger.Info("sweep complete", slog.Int("results", len(results)))

	return results
}

func (c *Controller) logResult(res runner.Result, done, total int) {
	attrs := []any{
		slog.Int("run", done),
		slog.Int("of", total),
		slog.String("class", res.Class),
		slog.Int("threads", res.Threads),
		slog.String("target", res.Language),
	}
	if res.Mode != "" {
		attrs = append(attrs, slog.String("mode", res.Mode))
	}

	if !res.Success {
		attrs = append(attrs,
			slog.String("error", string(res.ErrorClass)),
			slog.Int("exit_code", res.ExitCode),
		)
		c.logger.Error("invocation failed", attrs...)

		return
	}

	attrs = append(attrs,
		slog.Float64("seconds", res.ExecutionTime),
		slog.Bool("verified", res.Metrics.Verified),
	)
	c.logger.Info("invocation finished", attrs...)
}

// Summary counts sweep outcomes for the terminal report. Synthetic
// averaged records are tallied separately from real invocations.
type Summary struct {
	Total        int
	Succeeded    int
	VerifyFailed int
	ExecFailed   int
	Averaged     int
}

// Summarize tallies the outcome of every result in the list.
func Summarize(results []runner.Result) Summary {
	var s Summary

	for _, r := range results {
		if r.Averaged {
			s.Averaged++
			continue
		}

		s.Total++

		switch {
		case !r.Success:
			s.ExecFailed++
		case !r.Metrics.Verified:
			s.VerifyFailed++
		default:
			s.Succeeded++
		}
	}

	return s
}
