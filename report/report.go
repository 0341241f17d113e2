// Package report serializes sweep results into CSV and JSON files and
// renders a markdown summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/adamwrob/benchsweep/runner"
	"github.com/adamwrob/benchsweep/sweep"
)

// throughputKeys are checked in order when picking a headline
// throughput figure for the summary table; each family populates a
// different one.
var throughputKeys = []string{
	"mops",
	"messages_per_second",
	"throughput_mbps",
	"operations_per_second",
	"mutex_ops_per_sec",
}

// GenerateJSON writes results as an indented JSON array.
func GenerateJSON(w io.Writer, results []runner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

// Generate writes a markdown summary: outcome counts, a comparison
// table over the successful records, and the failure list.
func Generate(w io.Writer, results []runner.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	s := sweep.Summarize(results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Runs: %d total, %d succeeded, %d failed verification, "+
		"%d failed execution\n",
		s.Total, s.Succeeded, s.VerifyFailed, s.ExecFailed)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Class | Mode | Threads | Target | Wall Time "+
		"| Throughput | Peak Mem | Avg CPU | Verified |")
	fmt.Fprintln(w, "|-------|------|---------|--------|-----------"+
		"|------------|----------|---------|----------|")

	for _, r := range results {
		if !r.Success {
			continue
		}

		name := r.Language
		if r.Averaged {
			name += " (avg)"
		}

		verified := "no"
		if r.Metrics.Verified {
			verified = "yes"
		}

		fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s | %s | %.1f%% | %s |\n",
			r.Class,
			orDash(r.Mode),
			r.Threads,
			name,
			formatSeconds(r.ExecutionTime),
			formatThroughput(r),
			formatBytes(r.Resources.PeakRSSBytes),
			r.Resources.AvgCPUPercent,
			verified,
		)
	}

	if best := bestPerClass(results); len(best) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Best per class")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Class | Fastest | Wall Time "+
			"| Highest Throughput | Throughput |")
		fmt.Fprintln(w, "|-------|---------|-----------"+
			"|--------------------|------------|")

		for _, b := range best {
			throughput := "-"
			if b.throughput > 0 {
				throughput = strconv.FormatFloat(b.throughput, 'f', 2, 64)
			}

			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				b.class,
				b.fastest,
				formatSeconds(b.wallTime),
				orDash(b.throughputTarget),
				throughput,
			)
		}
	}

	if s.ExecFailed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Failures")
		fmt.Fprintln(w)

		for _, r := range results {
			if r.Success {
				continue
			}

			fmt.Fprintf(w, "- class %s, %d threads, %s run %d: %s\n",
				r.Class, r.Threads, r.Language, r.Run, r.ErrorClass)
		}
	}

	return nil
}

// classBest holds the winning records for one benchmark class.
type classBest struct {
	class            string
	fastest          string
	wallTime         float64
	throughputTarget string
	throughput       float64
}

// bestPerClass reduces the successful individual records to one row
// per class: the fastest wall time and the highest headline
// throughput, each with the target that achieved it. Classes appear
// in sweep order; synthetic averaged records do not compete.
func bestPerClass(results []runner.Result) []classBest {
	var order []string

	byClass := make(map[string]*classBest)

	for _, r := range results {
		if !r.Success || r.Averaged {
			continue
		}

		b, ok := byClass[r.Class]
		if !ok {
			order = append(order, r.Class)
			b = &classBest{
				class:    r.Class,
				fastest:  r.Language,
				wallTime: r.ExecutionTime,
			}
			byClass[r.Class] = b
		} else if r.ExecutionTime < b.wallTime {
			b.wallTime = r.ExecutionTime
			b.fastest = r.Language
		}

		if v := headlineThroughput(r); v > b.throughput {
			b.throughput = v
			b.throughputTarget = r.Language
		}
	}

	best := make([]classBest, 0, len(order))
	for _, class := range order {
		best = append(best, *byClass[class])
	}

	return best
}

// headlineThroughput picks the first populated throughput figure for
// a record, checking keys in the throughputKeys order.
func headlineThroughput(r runner.Result) float64 {
	for _, key := range throughputKeys {
		if v := r.Metrics.Values[key]; v > 0 {
			return v
		}
	}

	return 0
}

func formatThroughput(r runner.Result) string {
	if v := headlineThroughput(r); v > 0 {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func formatSeconds(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}

	return fmt.Sprintf("%.3fs", sec)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}

// metricColumns returns the sorted union of numeric and textual metric
// names across all results, so the CSV covers every field any family
// populated.
func metricColumns(results []runner.Result) (values, labels []string) {
	valueSet := make(map[string]struct{})
	labelSet := make(map[string]struct{})

	for _, r := range results {
		for name := range r.Metrics.Values {
			valueSet[name] = struct{}{}
		}

		for name := range r.Metrics.Labels {
			labelSet[name] = struct{}{}
		}
	}

	for name := range valueSet {
		values = append(values, name)
	}

	for name := range labelSet {
		labels = append(labels, name)
	}

	sort.Strings(values)
	sort.Strings(labels)

	return values, labels
}
