package parse

import (
	"regexp"
	"strings"
)

// A run is verified when one line carries both tokens, whatever the
// spacing between them.
const (
	verifyMarker  = "Verification"
	successMarker = "SUCCESSFUL"
)

// field describes how to recognize one metric line. Extraction is by
// label substring plus separator, or by a label-specific regexp when
// the value is embedded mid-line.
type field struct {
	name string
	// label is the substring that identifies the line. When sep is
	// empty the value is everything after the label.
	label string
	// sep, when set, is the separator scanned for after the label
	// ("=" for the NPB dialect).
	sep string
	// require and exclude disambiguate labels that are substrings of
	// one another ("Messages:" vs "Messages/s:"). exclude is matched
	// case-insensitively and must be given in lowercase.
	require string
	exclude string
	// re, when set, replaces label matching entirely; group selects
	// the capture group holding the value (default 1).
	re    *regexp.Regexp
	group int
	// text fields land in Metrics.Labels instead of Metrics.Values.
	text bool
}

// extract returns the raw field value from line, if the line matches.
func (f *field) extract(line string) (string, bool) {
	if f.re != nil {
		sub := f.re.FindStringSubmatch(line)
		if sub == nil {
			return "", false
		}

		g := f.group
		if g == 0 {
			g = 1
		}

		return strings.TrimSpace(sub[g]), true
	}

	idx := strings.Index(line, f.label)
	if idx < 0 {
		return "", false
	}

	if f.require != "" && !strings.Contains(line, f.require) {
		return "", false
	}

	if f.exclude != "" &&
		strings.Contains(strings.ToLower(line), f.exclude) {
		return "", false
	}

	rest := line[idx+len(f.label):]

	if f.sep != "" {
		_, after, found := strings.Cut(rest, f.sep)
		if !found {
			return "", false
		}

		rest = after
	}

	return strings.TrimSpace(rest), true
}

type dialect struct {
	fields []field
}

var dialects = map[Family]dialect{
	FamilyNPB:      npbDialect,
	FamilyEcho:     echoDialect,
	FamilyProdCons: prodConsDialect,
}

// npbDialect matches the IS/EP/CG report format:
//
//	Mop/s total     =   123.45
//	Time in seconds =     1.07
//	Verification    =               SUCCESSFUL
var npbDialect = dialect{fields: []field{
	{name: "mops", label: "Mop/s total", sep: "="},
	{name: "time_reported", label: "Time in seconds", sep: "="},
	{name: "total_threads", label: "Total threads", sep: "="},
	{name: "iterations", label: "Iterations", sep: "="},
	{name: "class", label: "class_npb", sep: "=", text: true},
	{name: "size", label: "Size", sep: "=", exclude: "class", text: true},
	{name: "operation_type", label: "Operation type", sep: "=", text: true},
	{name: "version", label: "Version", sep: "=", text: true},
}}

// echoDialect matches the echo server summary format:
//
//	EXECUTION TIME: 12.345 s
//	Peak concurrent: 128
//	Throughput: 87.5 MB/s
var echoDialect = dialect{fields: []field{
	{name: "execution_time", label: "EXECUTION TIME:"},
	{name: "total_connections", label: "Total:", exclude: "connections"},
	{name: "active_connections", label: "Active:"},
	{name: "peak_connections", label: "Peak concurrent:"},
	{name: "connection_rate", label: "Rate:", require: "conn/s"},
	{name: "avg_connection_duration_ms", label: "Avg duration:"},
	{name: "total_messages", label: "Messages:", exclude: "messages/s"},
	{name: "messages_per_second", label: "Messages/s:"},
	{name: "total_bytes", label: "Bytes:", require: "MB)"},
	{name: "throughput_mbps", label: "Throughput:", require: "MB/s"},
	{name: "avg_bytes_per_message", label: "Avg bytes/message:"},
	{name: "messages_per_connection", label: "Messages/connection:"},
	{name: "task_spawns", label: "Total tasks spawned:"},
	{name: "avg_spawn_time_us", label: "Avg spawn time:"},
	{name: "tasks_per_second", label: "Tasks per second:"},
	{name: "async_operations", label: "Total operations:"},
	{name: "avg_operation_time_us", label: "Avg operation time:"},
	{name: "operations_per_second", label: "Operations per second:"},
}}

// prodConsDialect matches the producer/consumer summary format:
//
//	Total time: 1.234 s
//	Consumed: 10000 (8123.4/s)
//	Efficiency: 99.8%
var prodConsDialect = dialect{fields: []field{
	{name: "execution_time", re: regexp.MustCompile(`Total time:\s+([\d.]+)\s+s`)},
	{name: "produced", re: regexp.MustCompile(`Produced:\s+(\d+)\s+\(([\d.]+)/s\)`)},
	{name: "consumed", re: regexp.MustCompile(`Consumed:\s+(\d+)\s+\(([\d.]+)/s\)`)},
	{name: "messages_per_second", re: regexp.MustCompile(`Consumed:\s+(\d+)\s+\(([\d.]+)/s\)`), group: 2},
	{name: "efficiency_percent", re: regexp.MustCompile(`Efficiency:\s+([\d.]+)%`)},
	{name: "mutex_ops_per_sec", re: regexp.MustCompile(`Operations:\s+\d+\s+\(([\d.]+)\s+ops/s\)`)},
	{name: "avg_mutex_time_us", re: regexp.MustCompile(`Avg lock time:\s+([\d.]+)\s+.s`)},
	{name: "peak_memory_mb", re: regexp.MustCompile(`Peak memory:\s+([\d.]+)\s+MB`)},
}}
