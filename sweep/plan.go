// Package sweep enumerates a benchmark configuration space and drives
// the runner once per point, collecting results in a deterministic
// order that survives interruption.
package sweep

import (
	"fmt"
	"strconv"
	"time"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/runner"
)

const (
	DefaultRepeats  = 3
	DefaultTimeout  = 5 * time.Minute
	DefaultCooldown = 500 * time.Millisecond
)

// Target is one implementation under test: a binary plus the dialect
// it speaks.
type Target struct {
	Name      string
	Binary    string
	Family    parse.Family
	ExtraArgs []string
}

// Plan describes the full configuration space of a sweep.
type Plan struct {
	Targets  []Target
	Classes  []string
	Threads  []int
	Modes    []string
	Repeats  int
	Timeout  time.Duration
	Cooldown time.Duration
}

// Validate checks the plan and fills defaults for unset knobs.
func (p *Plan) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("plan has no targets")
	}

	for i, t := range p.Targets {
		if t.Binary == "" {
			return fmt.Errorf("target %d (%s) has no binary", i, t.Name)
		}
	}

	if len(p.Classes) == 0 {
		return fmt.Errorf("plan has no benchmark classes")
	}

	if len(p.Threads) == 0 {
		return fmt.Errorf("plan has no thread counts")
	}

	for _, n := range p.Threads {
		if n < 1 {
			return fmt.Errorf("invalid thread count %d", n)
		}
	}

	if p.Repeats == 0 {
		p.Repeats = DefaultRepeats
	}

	if p.Repeats < 1 {
		return fmt.Errorf("invalid repeat count %d", p.Repeats)
	}

	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}

	// Zero means unset; a negative value disables the cooldown.
	if p.Cooldown == 0 {
		p.Cooldown = DefaultCooldown
	} else if p.Cooldown < 0 {
		p.Cooldown = 0
	}

	return nil
}

// Point is one node of the configuration cross product, before the
// repeat dimension is applied.
type Point struct {
	Class   string
	Mode    string
	Threads int
	Target  Target
}

// Points expands the cross product in fixed nested order: class, then
// mode, then thread count, then target. Result ordering, resumability,
// and the interrupt contract all rely on this order being stable.
func (p *Plan) Points() []Point {
	modes := p.Modes
	if len(modes) == 0 {
		modes = []string{""}
	}

	points := make([]Point, 0,
		len(p.Classes)*len(modes)*len(p.Threads)*len(p.Targets))

	for _, class := range p.Classes {
		for _, mode := range modes {
			for _, threads := range p.Threads {
				for _, target := range p.Targets {
					points = append(points, Point{
						Class:   class,
						Mode:    mode,
						Threads: threads,
						Target:  target,
					})
				}
			}
		}
	}

	return points
}

// Invocation materializes one run of this point.
func (pt Point) Invocation(run int, timeout time.Duration) runner.Invocation {
	return runner.Invocation{
		Binary:   pt.Target.Binary,
		Args:     pt.buildArgs(),
		Class:    pt.Class,
		Threads:  pt.Threads,
		Mode:     pt.Mode,
		Language: pt.Target.Name,
		Run:      run,
		Family:   pt.Target.Family,
		Timeout:  timeout,
	}
}

// buildArgs follows each family's CLI contract: NPB kernels take the
// class letter and thread count positionally, the concurrency
// benchmarks take flagged arguments.
func (pt Point) buildArgs() []string {
	threads := strconv.Itoa(pt.Threads)

	var args []string

	switch pt.Target.Family {
	case parse.FamilyProdCons:
		args = []string{"--threads", threads, "--items", pt.Class}
		if pt.Mode != "" {
			args = append(args, "--mode", pt.Mode)
		}
	case parse.FamilyEcho:
		args = []string{"--num-clients", pt.Class, "--num-threads", threads}
		if pt.Mode != "" {
			args = append(args, "--"+pt.Mode)
		}
	default:
		args = []string{pt.Class, threads}
	}

	return append(args, pt.Target.ExtraArgs...)
}
