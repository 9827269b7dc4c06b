// Package sysstats samples the cost of the running process so the TUI can
// show what materializing more items does to memory and CPU.
package sysstats

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Sample is one reading of process and host load.
type Sample struct {
	RSSMB            float64 `json:"rss_mb"`
	CPUPercent       float64 `json:"cpu_percent"`
	Threads          int32   `json:"threads"`
	SystemRAMPercent float64 `json:"system_ram_percent"`
}

type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// ProcessSampler reads a single process through gopsutil.
type ProcessSampler struct {
	proc *process.Process
}

// NewProcessSampler samples the current process.
func NewProcessSampler(ctx context.Context) (*ProcessSampler, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}
	return &ProcessSampler{proc: p}, nil
}

func (s *ProcessSampler) Sample(ctx context.Context) (Sample, error) {
	info, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to get memory info: %w", err)
	}

	out := Sample{RSSMB: float64(info.RSS) / (1024 * 1024)}

	// CPU, threads and host memory are best effort
	if pct, err := s.proc.CPUPercentWithContext(ctx); err == nil {
		out.CPUPercent = pct
	}
	if n, err := s.proc.NumThreadsWithContext(ctx); err == nil {
		out.Threads = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.SystemRAMPercent = vm.UsedPercent
	}
	return out, nil
}
