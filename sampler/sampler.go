// Package sampler polls a running benchmark process for resource usage
// while the executor waits on it. Sampling is best-effort monitoring,
// not accounting: a process that disappears between the liveness check
// and the metrics read simply yields no sample that tick.
package sampler

import (
	"time"
)

// DefaultInterval is the polling period between resource samples.
const DefaultInterval = 100 * time.Millisecond

// Process is the view of a running process the sampler needs. The
// production implementation wraps gopsutil; tests inject fakes.
type Process interface {
	// RSS returns the current resident set size in bytes.
	RSS() (uint64, error)
	// CPUPercent returns the instantaneous CPU utilization.
	CPUPercent() (float64, error)
	// Children returns the currently live child processes.
	Children() ([]Process, error)
	// Running reports whether the process is still alive.
	Running() (bool, error)
}

// Sample is one timestamped resource snapshot: memory summed over the
// process and its live descendants, plus the process's own CPU share.
type Sample struct {
	Time       time.Time
	RSSBytes   uint64
	CPUPercent float64
}

// Sampler records Samples for one process until stopped. The sample
// slice is owned by the sampling goroutine until Stop returns it, so
// no locking is needed at the executor boundary.
type Sampler struct {
	proc     Process
	interval time.Duration
	done     chan struct{}
	finished chan struct{}
	samples  []Sample
}

// New creates a Sampler for proc. A non-positive interval falls back
// to DefaultInterval.
func New(proc Process, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Sampler{
		proc:     proc,
		interval: interval,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start launches the sampling goroutine. It returns immediately.
func (s *Sampler) Start() {
	go s.loop()
}

// Stop signals the sampling goroutine, waits for it to quiesce, and
// returns the collected samples in chronological order. It is safe to
// call after the loop has already exited on its own.
func (s *Sampler) Stop() []Sample {
	select {
	case <-s.done:
	default:
		close(s.done)
	}

	<-s.finished

	return s.samples
}

func (s *Sampler) loop() {
	defer close(s.finished)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		alive, err := s.proc.Running()
		if err != nil || !alive {
			return
		}

		if sample, ok := snapshot(s.proc); ok {
			s.samples = append(s.samples, sample)
		}
	}
}

// snapshot reads one sample from proc and its descendants. Any read
// error means the group is mid-teardown; the tick is skipped.
func snapshot(proc Process) (Sample, bool) {
	rss, err := proc.RSS()
	if err != nil {
		return Sample{}, false
	}

	cpu, err := proc.CPUPercent()
	if err != nil {
		return Sample{}, false
	}

	// Children that vanish between enumeration and read are ignored;
	// the rest of the group still counts.
	children, err := proc.Children()
	if err == nil {
		for _, child := range children {
			rss += descendantRSS(child)
		}
	}

	return Sample{Time: time.Now(), RSSBytes: rss, CPUPercent: cpu}, true
}

// descendantRSS sums resident memory over p and its whole subtree, so
// a subject that forks workers of its own is still fully counted.
func descendantRSS(p Process) uint64 {
	var total uint64

	if rss, err := p.RSS(); err == nil {
		total += rss
	}

	children, err := p.Children()
	if err != nil {
		return total
	}

	for _, child := range children {
		total += descendantRSS(child)
	}

	return total
}

// Stats summarizes one invocation's sample sequence.
type Stats struct {
	Samples       int     `json:"samples"`
	PeakRSSBytes  uint64  `json:"peak_rss_bytes"`
	AvgRSSBytes   float64 `json:"avg_rss_bytes"`
	AvgCPUPercent float64 `json:"avg_cpu_percent"`
}

// Aggregate reduces a sample sequence to its peak and means. An empty
// sequence yields zero Stats.
func Aggregate(samples []Sample) Stats {
	stats := Stats{Samples: len(samples)}
	if len(samples) == 0 {
		return stats
	}

	var rssSum, cpuSum float64

	for _, s := range samples {
		if s.RSSBytes > stats.PeakRSSBytes {
			stats.PeakRSSBytes = s.RSSBytes
		}

		rssSum += float64(s.RSSBytes)
		cpuSum += s.CPUPercent
	}

	stats.AvgRSSBytes = rssSum / float64(len(samples))
	stats.AvgCPUPercent = cpuSum / float64(len(samples))

	return stats
}
