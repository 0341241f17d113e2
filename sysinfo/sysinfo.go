// Package sysinfo captures the host context a sweep ran under, plus
// the availability of optional profiling tools. Everything here is
// best-effort: a probe that fails narrows the recorded context, never
// the sweep itself.
package sysinfo

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info describes the machine a sweep ran on.
type Info struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	Kernel        string  `json:"kernel"`
	CPUModel      string  `json:"cpu_model"`
	LogicalCores  int     `json:"logical_cores"`
	PhysicalCores int     `json:"physical_cores"`
	MemoryGB      float64 `json:"memory_gb"`
}

// Collect gathers host information. Individual probe failures are
// logged and leave their fields zero.
func Collect(ctx context.Context, logger *slog.Logger) Info {
	info := Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		info.Kernel = h.KernelVersion
	} else {
		logger.Warn("host info unavailable", slog.String("error", err.Error()))
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	} else if err != nil {
		logger.Warn("cpu info unavailable", slog.String("error", err.Error()))
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	}

	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCores = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryGB = float64(vm.Total) / (1 << 30)
	} else {
		logger.Warn("memory info unavailable", slog.String("error", err.Error()))
	}

	return info
}

// Tool records whether an optional external helper was found on PATH.
type Tool struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
}

// OptionalTools are the profiling helpers a sweep can use when
// present: CPU-binding control, topology introspection, and hardware
// performance counters.
var OptionalTools = []string{"hwloc-bind", "lstopo", "perf"}

// ProbeTools checks each optional tool on PATH. A missing tool is
// logged and skipped; it never aborts a sweep, it only narrows which
// optional metrics get collected.
func ProbeTools(logger *slog.Logger, names []string) []Tool {
	tools := make([]Tool, 0, len(names))

	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			logger.Info("optional tool not found, skipping",
				slog.String("tool", name))
			tools = append(tools, Tool{Name: name})

			continue
		}

		tools = append(tools, Tool{Name: name, Path: path, Available: true})
	}

	return tools
}
