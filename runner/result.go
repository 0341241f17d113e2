// Package runner executes single benchmark invocations against
// externally-built binaries, capturing output, wall-clock time, and
// resource usage. Every invocation produces exactly one Result, no
// matter how the child process fares.
package runner

import (
	"time"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/sampler"
)

// ErrorClass categorizes why an invocation failed.
type ErrorClass string

const (
	ErrNone        ErrorClass = ""
	ErrLaunch      ErrorClass = "launch error"
	ErrNonZeroExit ErrorClass = "non-zero exit"
	ErrTimeout     ErrorClass = "timeout"
)

// Result is the terminal record for one invocation. Success reflects
// the process outcome only; a run that exits zero but fails its own
// verification still has Success true, with the verification outcome
// in Metrics.Verified.
type Result struct {
	Class    string `json:"class"`
	Threads  int    `json:"threads"`
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
	Run      int    `json:"run"`

	Success    bool       `json:"success"`
	ErrorClass ErrorClass `json:"error_class,omitempty"`
	ExitCode   int        `json:"exit_code"`
	Stderr     string     `json:"stderr,omitempty"`

	// ExecutionTime is the orchestrator-measured wall clock in
	// seconds. The binary's self-reported time, when present, lives
	// in Metrics and is never folded into this field.
	ExecutionTime float64 `json:"execution_time_seconds"`

	Metrics   parse.Metrics `json:"metrics"`
	Resources sampler.Stats `json:"resources"`

	// Averaged marks synthetic records derived from repeat runs.
	Averaged  bool      `json:"averaged,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
