package sweep

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamwrob/benchsweep/parse"
)

// planFile is the YAML schema for a sweep plan:
//
//	targets:
//	  - name: rust
//	    binary: ./target/release/is
//	    family: npb
//	classes: [S, W, A]
//	threads: [1, 2, 4, 8]
//	modes: [channel, queue]
//	repeats: 5
//	timeout: 5m
//	cooldown: 500ms
type planFile struct {
	Targets []struct {
		Name   string   `yaml:"name"`
		Binary string   `yaml:"binary"`
		Family string   `yaml:"family"`
		Args   []string `yaml:"args"`
	} `yaml:"targets"`
	Classes  []string `yaml:"classes"`
	Threads  []int    `yaml:"threads"`
	Modes    []string `yaml:"modes"`
	Repeats  int      `yaml:"repeats"`
	Timeout  string   `yaml:"timeout"`
	Cooldown string   `yaml:"cooldown"`
}

// LoadPlan decodes and validates a YAML sweep plan.
func LoadPlan(r io.Reader) (*Plan, error) {
	var pf planFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	plan := &Plan{
		Classes: pf.Classes,
		Threads: pf.Threads,
		Modes:   pf.Modes,
		Repeats: pf.Repeats,
	}

	for _, t := range pf.Targets {
		plan.Targets = append(plan.Targets, Target{
			Name:      t.Name,
			Binary:    t.Binary,
			Family:    parse.Family(t.Family),
			ExtraArgs: t.Args,
		})
	}

	var err error

	plan.Timeout, err = parseDuration(pf.Timeout, "timeout")
	if err != nil {
		return nil, err
	}

	plan.Cooldown, err = parseDuration(pf.Cooldown, "cooldown")
	if err != nil {
		return nil, err
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	return plan, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}

	return d, nil
}
