package sweep

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamwrob/benchsweep/parse"
)

func TestLoadPlan(t *testing.T) {
	input := `
targets:
  - name: rust
    binary: ./target/release/is
    family: npb
  - name: cpp
    binary: ./main_cpp
    family: prodcons
    args: [--no-csv]
classes: [S, W]
threads: [1, 2, 4]
modes: [channel, queue]
repeats: 5
timeout: 2m
cooldown: 250ms
`

	plan, err := LoadPlan(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, plan.Targets, 2)
	assert.Equal(t, "rust", plan.Targets[0].Name)
	assert.Equal(t, parse.FamilyNPB, plan.Targets[0].Family)
	assert.Equal(t, []string{"--no-csv"}, plan.Targets[1].ExtraArgs)
	assert.Equal(t, []string{"S", "W"}, plan.Classes)
	assert.Equal(t, []int{1, 2, 4}, plan.Threads)
	assert.Equal(t, 5, plan.Repeats)
	assert.Equal(t, 2*time.Minute, plan.Timeout)
	assert.Equal(t, 250*time.Millisecond, plan.Cooldown)
}

func TestLoadPlanDefaults(t *testing.T) {
	input := `
targets:
  - name: rust
    binary: ./is
classes: [S]
threads: [1]
`

	plan, err := LoadPlan(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, DefaultRepeats, plan.Repeats)
	assert.Equal(t, DefaultTimeout, plan.Timeout)
	assert.Equal(t, DefaultCooldown, plan.Cooldown)
}

func TestLoadPlanRejectsInvalid(t *testing.T) {
	_, err := LoadPlan(strings.NewReader("classes: [S]\nthreads: [1]\n"))
	assert.Error(t, err)

	_, err = LoadPlan(strings.NewReader("not: [valid"))
	assert.Error(t, err)

	badTimeout := `
targets:
  - name: rust
    binary: ./is
classes: [S]
threads: [1]
timeout: soon
`
	_, err = LoadPlan(strings.NewReader(badTimeout))
	assert.Error(t, err)
}
