package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/sampler"
)

// maxStderrExcerpt bounds how much captured stderr a failed Result
// carries.
const maxStderrExcerpt = 2048

// Invocation is the immutable description of one benchmark run.
type Invocation struct {
	Binary   string
	Args     []string
	Class    string
	Threads  int
	Mode     string
	Language string
	Run      int
	Family   parse.Family
	Timeout  time.Duration
}

// Runner launches and manages single benchmark invocations.
type Runner struct {
	Logger         *slog.Logger
	SampleInterval time.Duration

	// attach is swapped out in tests to observe a fake process.
	attach func(pid int) (sampler.Process, error)
}

// New creates a Runner logging through logger.
func New(logger *slog.Logger) *Runner {
	return &Runner{
		Logger:         logger,
		SampleInterval: sampler.DefaultInterval,
		attach:         sampler.Attach,
	}
}

// Run executes one invocation end to end. It never returns an error:
// launch faults, non-zero exits, and timeouts all land in the Result's
// ErrorClass. The resource sampler runs concurrently with the wait and
// is fully stopped before its samples are aggregated.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	res := Result{
		Class:     inv.Class,
		Threads:   inv.Threads,
		Mode:      inv.Mode,
		Language:  inv.Language,
		Run:       inv.Run,
		Metrics:   parse.Extract("", inv.Family),
		Timestamp: time.Now(),
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	// Bounds the wait on output pipes if a killed child leaves
	// grandchildren holding them open.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("starting invocation",
		slog.String("binary", inv.Binary),
		slog.Any("args", inv.Args),
	)

	wallStart := time.Now()

	if err := cmd.Start(); err != nil {
		res.ErrorClass = ErrLaunch
		res.Stderr = excerpt(err.Error())
		res.ExitCode = -1

		return res
	}

	// The sampler starts right after launch so short-lived early
	// spikes are still seen.
	smp := r.startSampler(cmd.Process.Pid)

	waitErr := cmd.Wait()
	res.ExecutionTime = time.Since(wallStart).Seconds()

	var samples []sampler.Sample
	if smp != nil {
		samples = smp.Stop()
	}

	res.Resources = sampler.Aggregate(samples)
	res.ExitCode = cmd.ProcessState.ExitCode()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ErrorClass = ErrTimeout
		res.ExecutionTime = inv.Timeout.Seconds()
		res.Stderr = excerpt(stderr.String())

	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ErrorClass = ErrNonZeroExit
		} else {
			res.ErrorClass = ErrLaunch
		}

		res.Stderr = excerpt(stderr.String())

	default:
		res.Success = true
		res.Metrics = parse.Extract(stdout.String(), inv.Family)
	}

	return res
}

func (r *Runner) startSampler(pid int) *sampler.Sampler {
	attach := r.attach
	if attach == nil {
		attach = sampler.Attach
	}

	proc, err := attach(pid)
	if err != nil {
		// Sampling is best-effort; the run proceeds unmonitored.
		r.Logger.Warn("resource sampling unavailable",
			slog.Int("pid", pid),
			slog.String("error", err.Error()),
		)

		return nil
	}

	smp := sampler.New(proc, r.SampleInterval)
	smp.Start()

	return smp
}

func excerpt(s string) string {
	if len(s) > maxStderrExcerpt {
		return s[:maxStderrExcerpt]
	}

	return s
}
