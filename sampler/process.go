package sampler

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// osProcess adapts a gopsutil process handle to the Process interface.
type osProcess struct {
	p *process.Process
}

// Attach returns a Process for the given PID.
func Attach(pid int) (Process, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("attach to pid %d: %w", pid, err)
	}

	return &osProcess{p: p}, nil
}

func (o *osProcess) RSS() (uint64, error) {
	info, err := o.p.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return info.RSS, nil
}

func (o *osProcess) CPUPercent() (float64, error) {
	return o.p.CPUPercent()
}

func (o *osProcess) Children() ([]Process, error) {
	kids, err := o.p.Children()
	if err != nil {
		return nil, err
	}

	out := make([]Process, 0, len(kids))
	for _, kid := range kids {
		out = append(out, &osProcess{p: kid})
	}

	return out, nil
}

func (o *osProcess) Running() (bool, error) {
	return o.p.IsRunning()
}
