package sweep

import (
	"maps"

	"github.com/adamwrob/benchsweep/parse"
	"github.com/adamwrob/benchsweep/runner"
	"github.com/adamwrob/benchsweep/sampler"
)

// averageOf derives one synthetic record from the successful repeats
// at a configuration point: the arithmetic mean of every numeric
// field. Categorical fields are constant across repeats by
// construction of the sweep and are carried from the first success.
// A point where every repeat failed yields no average.
func averageOf(repeats []runner.Result) (runner.Result, bool) {
	var ok []runner.Result

	for _, r := range repeats {
		if r.Success && !r.Averaged {
			ok = append(ok, r)
		}
	}

	if len(ok) == 0 {
		return runner.Result{}, false
	}

	first := ok[0]
	n := float64(len(ok))

	avg := runner.Result{
		Class:     first.Class,
		Threads:   first.Threads,
		Mode:      first.Mode,
		Language:  first.Language,
		Success:   true,
		Averaged:  true,
		Timestamp: first.Timestamp,
		Metrics: parse.Metrics{
			Verified: true,
			Values:   make(map[string]float64, len(first.Metrics.Values)),
			Labels:   maps.Clone(first.Metrics.Labels),
		},
	}

	var peakSum, rssSum, cpuSum, sampleSum float64

	for _, r := range ok {
		avg.ExecutionTime += r.ExecutionTime

		for name, v := range r.Metrics.Values {
			avg.Metrics.Values[name] += v
		}

		avg.Metrics.Verified = avg.Metrics.Verified && r.Metrics.Verified

		peakSum += float64(r.Resources.PeakRSSBytes)
		rssSum += r.Resources.AvgRSSBytes
		cpuSum += r.Resources.AvgCPUPercent
		sampleSum += float64(r.Resources.Samples)
	}

	avg.ExecutionTime /= n

	for name := range avg.Metrics.Values {
		avg.Metrics.Values[name] /= n
	}

	avg.Resources = sampler.Stats{
		Samples:       int(sampleSum / n),
		PeakRSSBytes:  uint64(peakSum / n),
		AvgRSSBytes:   rssSum / n,
		AvgCPUPercent: cpuSum / n,
	}

	return avg, true
}
