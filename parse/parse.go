// Package parse extracts structured metrics from the textual reports
// printed by benchmark binaries. Parsing is pure and deterministic:
// the same text and family always produce the same Metrics.
package parse

import (
	"strconv"
	"strings"
)

// Family identifies the output dialect of a benchmark binary.
type Family string

const (
	// FamilyNPB covers the NAS Parallel Benchmark kernels (IS, EP, CG),
	// which all print "key = value" report lines.
	FamilyNPB Family = "npb"
	// FamilyEcho covers the TCP echo server benchmarks, which print
	// "Label: value unit" lines.
	FamilyEcho Family = "echo"
	// FamilyProdCons covers the producer/consumer concurrency
	// benchmarks, which print "Label: value (rate)" lines.
	FamilyProdCons Family = "prodcons"
)

const defaultLabel = "N/A"

// Metrics holds everything extracted from one report. Every numeric
// field recognized for the family is present in Values (default 0) and
// every textual field is present in Labels (default "N/A"), so
// downstream aggregation never has to check key presence.
type Metrics struct {
	Verified bool
	Values   map[string]float64
	Labels   map[string]string
}

// Extract parses the captured stdout of one benchmark run. An
// unrecognized family falls back to the NPB dialect, which covers the
// largest common field set.
func Extract(text string, family Family) Metrics {
	d, ok := dialects[family]
	if !ok {
		d = dialects[FamilyNPB]
	}

	m := Metrics{
		Values: make(map[string]float64, len(d.fields)),
		Labels: make(map[string]string),
	}

	for _, f := range d.fields {
		if f.text {
			m.Labels[f.name] = defaultLabel
		} else {
			m.Values[f.name] = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !m.Verified && strings.Contains(line, verifyMarker) &&
			strings.Contains(line, successMarker) {
			m.Verified = true
		}

		for _, f := range d.fields {
			raw, ok := f.extract(line)
			if !ok {
				continue
			}

			if f.text {
				m.Labels[f.name] = raw
				continue
			}

			// A value that fails numeric conversion leaves the
			// field at its previous value. Later matches overwrite
			// earlier ones, so a final summary line beats a running
			// total printed above it.
			if v, ok := parseNumber(raw); ok {
				m.Values[f.name] = v
			}
		}
	}

	return m
}

// parseNumber converts a raw field value to a float64, tolerating a
// trailing unit token ("12.5 MB/s", "5000 conn/s").
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, true
	}

	first, _, _ := strings.Cut(raw, " ")

	v, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
