package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/adamwrob/benchsweep/runner"
)

// fixedColumns lead every CSV row: the configuration identity, the
// outcome, and the orchestrator-level measurements. Metric columns
// follow, one per field in the union across all results.
var fixedColumns = []string{
	"class",
	"threads",
	"mode",
	"target",
	"run",
	"averaged",
	"success",
	"error_class",
	"exit_code",
	"execution_time_seconds",
	"verified",
	"peak_rss_bytes",
	"avg_rss_bytes",
	"avg_cpu_percent",
	"resource_samples",
}

// WriteCSV writes one row per result. Every row carries the same
// column set; fields a result's family does not recognize are left
// empty.
func WriteCSV(w io.Writer, results []runner.Result) error {
	values, labels := metricColumns(results)

	cw := csv.NewWriter(w)

	header := append([]string{}, fixedColumns...)
	header = append(header, values...)
	header = append(header, labels...)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Class,
			strconv.Itoa(r.Threads),
			r.Mode,
			r.Language,
			strconv.Itoa(r.Run),
			strconv.FormatBool(r.Averaged),
			strconv.FormatBool(r.Success),
			string(r.ErrorClass),
			strconv.Itoa(r.ExitCode),
			formatFloat(r.ExecutionTime),
			strconv.FormatBool(r.Metrics.Verified),
			strconv.FormatUint(r.Resources.PeakRSSBytes, 10),
			formatFloat(r.Resources.AvgRSSBytes),
			formatFloat(r.Resources.AvgCPUPercent),
			strconv.Itoa(r.Resources.Samples),
		}

		for _, name := range values {
			if v, ok := r.Metrics.Values[name]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}

		for _, name := range labels {
			row = append(row, r.Metrics.Labels[name])
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
