package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/runner"
	"github.com/adamwrob/benchsweep/sampler"
)

func sampleResults() []runner.Result {
	return []runner.Result{
		{
			Class:         "S",
			Threads:       4,
			Language:      "rust",
			Run:           1,
			Success:       true,
			ExecutionTime: 1.234,
			Metrics: parse.Metrics{
				Verified: true,
				Values:   map[string]float64{"mops": 123.45},
				Labels:   map[string]string{"class": "S"},
			},
			Resources: sampler.Stats{
				Samples:       12,
				PeakRSSBytes:  100 * 1024 * 1024,
				AvgRSSBytes:   90 * 1024 * 1024,
				AvgCPUPercent: 380.5,
			},
		},
		{
			Class:      "W",
			Threads:    8,
			Language:   "cpp",
			Run:        1,
			ErrorClass: runner.ErrTimeout,
			ExitCode:   -1,
			Metrics:    parse.Extract("", parse.FamilyNPB),
		},
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, sampleResults()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "1 succeeded") {
		t.Error("expected success count in summary")
	}
	if !strings.Contains(output, "1 failed execution") {
		t.Error("expected execution failure count in summary")
	}
	if !strings.Contains(output, "123.45") {
		t.Error("expected throughput in comparison table")
	}
	if !strings.Contains(output, "100 MB") {
		t.Error("expected formatted peak memory")
	}
	if !strings.Contains(output, "timeout") {
		t.Error("expected failure classification in failure list")
	}
}

func TestGenerateBestPerClass(t *testing.T) {
	record := func(class, lang string, wall, msgs float64, avg bool) runner.Result {
		return runner.Result{
			Class:         class,
			Threads:       4,
			Language:      lang,
			Run:           1,
			Success:       true,
			Averaged:      avg,
			ExecutionTime: wall,
			Metrics: parse.Metrics{
				Verified: true,
				Values:   map[string]float64{"messages_per_second": msgs},
			},
		}
	}

	results := []runner.Result{
		record("S", "rust", 2.5, 4000, false),
		record("S", "cpp", 1.2, 9000, false),
		record("W", "rust", 10.0, 1500, false),
		// Synthetic averages never win a class.
		record("W", "cpp", 0.1, 99999, true),
	}

	best := bestPerClass(results)
	if len(best) != 2 {
		t.Fatalf("got %d classes, want 2", len(best))
	}

	if best[0].class != "S" || best[1].class != "W" {
		t.Errorf("class order = %s, %s, want S, W", best[0].class, best[1].class)
	}
	if best[0].fastest != "cpp" || best[0].wallTime != 1.2 {
		t.Errorf("fastest for S = %s (%v), want cpp (1.2)",
			best[0].fastest, best[0].wallTime)
	}
	if best[0].throughputTarget != "cpp" || best[0].throughput != 9000 {
		t.Errorf("top throughput for S = %s (%v), want cpp (9000)",
			best[0].throughputTarget, best[0].throughput)
	}
	if best[1].fastest != "rust" || best[1].throughput != 1500 {
		t.Errorf("W winner = %s (%v), want rust (1500)",
			best[1].fastest, best[1].throughput)
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "### Best per class") {
		t.Error("expected best-per-class section in summary")
	}
	if !strings.Contains(output, "| S | cpp | 1.200s | cpp | 9000.00 |") {
		t.Errorf("missing best row for class S in:\n%s", output)
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, nil); err == nil {
		t.Error("expected error for empty result list")
	}
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateJSON(&buf, sampleResults()); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var decoded []runner.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d results, want 2", len(decoded))
	}
	if decoded[0].ExecutionTime != 1.234 {
		t.Errorf("execution_time = %v, want 1.234", decoded[0].ExecutionTime)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	header := rows[0]

	colIdx := func(name string) int {
		for i, c := range header {
			if c == name {
				return i
			}
		}
		t.Fatalf("column %q missing from header %v", name, header)
		return -1
	}

	// Config columns come before metric columns.
	if header[0] != "class" || header[1] != "threads" {
		t.Errorf("unexpected leading columns: %v", header[:2])
	}

	if got := rows[1][colIdx("mops")]; got != "123.45" {
		t.Errorf("mops cell = %q, want 123.45", got)
	}
	if got := rows[2][colIdx("error_class")]; got != "timeout" {
		t.Errorf("error_class cell = %q, want timeout", got)
	}

	// Both rows share the full column set.
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			t.Errorf("row %d has %d cells, header has %d",
				i+1, len(row), len(header))
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "-"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{100 * 1024 * 1024, "100 MB"},
	}

	for _, c := range cases {
		if got := formatBytes(c.in); got != c.want {
			t.Errorf("formatBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
