package runner

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/sampler"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shellInvocation(script string, timeout time.Duration) Invocation {
	return Invocation{
		Binary:  "/bin/sh",
		Args:    []string{"-c", script},
		Class:   "S",
		Threads: 4,
		Family:  parse.FamilyNPB,
		Timeout: timeout,
	}
}

func TestRunSuccessParsesMetrics(t *testing.T) {
	script := `printf 'Verification    =               SUCCESSFUL\n' ;` +
		`printf 'Mop/s total     =   123.45\n'`

	res := New(testLogger()).Run(context.Background(),
		shellInvocation(script, 10*time.Second))

	if !res.Success {
		t.Fatalf("success = false, error class %q, stderr %q",
			res.ErrorClass, res.Stderr)
	}
	if !res.Metrics.Verified {
		t.Error("verification not detected")
	}
	if got := res.Metrics.Values["mops"]; got != 123.45 {
		t.Errorf("mops = %v, want 123.45", got)
	}
	if res.ExecutionTime <= 0 {
		t.Errorf("execution time = %v, want > 0", res.ExecutionTime)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	script := `echo 'boom' >&2; exit 3`

	res := New(testLogger()).Run(context.Background(),
		shellInvocation(script, 10*time.Second))

	if res.Success {
		t.Fatal("success = true for non-zero exit")
	}
	if res.ErrorClass != ErrNonZeroExit {
		t.Errorf("error class = %q, want %q", res.ErrorClass, ErrNonZeroExit)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "boom") {
		t.Errorf("stderr excerpt %q missing process output", res.Stderr)
	}
	// Metric keys stay at defaults; stdout is not parsed on failure.
	if got := res.Metrics.Values["mops"]; got != 0 {
		t.Errorf("mops = %v, want 0", got)
	}
}

func TestRunTimeout(t *testing.T) {
	res := New(testLogger()).Run(context.Background(),
		shellInvocation("sleep 30", 200*time.Millisecond))

	if res.Success {
		t.Fatal("success = true for timeout")
	}
	if res.ErrorClass != ErrTimeout {
		t.Errorf("error class = %q, want %q", res.ErrorClass, ErrTimeout)
	}
	if res.ExecutionTime != 0.2 {
		t.Errorf("execution time = %v, want the timeout ceiling 0.2",
			res.ExecutionTime)
	}
}

func TestRunLaunchError(t *testing.T) {
	inv := Invocation{
		Binary:  "/nonexistent/benchmark-binary",
		Class:   "S",
		Threads: 1,
		Family:  parse.FamilyNPB,
		Timeout: time.Second,
	}

	res := New(testLogger()).Run(context.Background(), inv)

	if res.Success {
		t.Fatal("success = true for missing binary")
	}
	if res.ErrorClass != ErrLaunch {
		t.Errorf("error class = %q, want %q", res.ErrorClass, ErrLaunch)
	}
	if res.Metrics.Values == nil {
		t.Error("metrics defaults missing on launch failure")
	}
}

func TestRunStderrExcerptBounded(t *testing.T) {
	script := `head -c 100000 /dev/zero | tr '\0' 'x' >&2; exit 1`

	res := New(testLogger()).Run(context.Background(),
		shellInvocation(script, 10*time.Second))

	if len(res.Stderr) > maxStderrExcerpt {
		t.Errorf("stderr excerpt %d bytes, cap is %d",
			len(res.Stderr), maxStderrExcerpt)
	}
}

// stubProcess stands in for the child so sampling can be observed
// without racing a real short-lived subprocess.
type stubProcess struct{}

func (stubProcess) RSS() (uint64, error)                 { return 4096, nil }
func (stubProcess) CPUPercent() (float64, error)         { return 12.5, nil }
func (stubProcess) Children() ([]sampler.Process, error) { return nil, nil }
func (stubProcess) Running() (bool, error)               { return true, nil }

func TestRunAggregatesResourceSamples(t *testing.T) {
	r := New(testLogger())
	r.SampleInterval = 5 * time.Millisecond
	r.attach = func(int) (sampler.Process, error) {
		return stubProcess{}, nil
	}

	res := r.Run(context.Background(),
		shellInvocation("sleep 0.2", 10*time.Second))

	if !res.Success {
		t.Fatalf("success = false: %q", res.Stderr)
	}
	if res.Resources.Samples == 0 {
		t.Fatal("no resource samples collected")
	}
	if res.Resources.PeakRSSBytes != 4096 {
		t.Errorf("peak rss = %d, want 4096", res.Resources.PeakRSSBytes)
	}
	if res.Resources.AvgCPUPercent != 12.5 {
		t.Errorf("avg cpu = %v, want 12.5", res.Resources.AvgCPUPercent)
	}
}

func TestLocateBinary(t *testing.T) {
	dir := t.TempDir()

	if _, err := LocateBinary([]string{dir + "/missing"}); err == nil {
		t.Error("expected error when no candidate exists")
	}
}
