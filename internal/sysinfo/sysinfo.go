// Package sysinfo samples host CPU, memory, and disk usage.
package sysinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const bytesPerGB = 1024 * 1024 * 1024

// Resources is a point-in-time view of host resource usage.
type Resources struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryAvailableGB float64 `json:"memory_available_gb"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskFreeGB        float64 `json:"disk_free_gb"`
}

// Sampler collects Resources. CPU usage is measured over Interval; zero
// compares against the previous call.
type Sampler struct {
	Interval time.Duration
	DiskPath string
}

// NewSampler returns a Sampler measuring CPU over one second on the root filesystem.
func NewSampler() *Sampler {
	return &Sampler{Interval: time.Second, DiskPath: "/"}
}

// Sample reads current usage. Any collector failure fails the whole sample.
func (s *Sampler) Sample(ctx context.Context) (*Resources, error) {
	cpuPercent, err := cpu.PercentWithContext(ctx, s.Interval, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU metrics: %w", err)
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory metrics: %w", err)
	}

	diskInfo, err := disk.UsageWithContext(ctx, s.DiskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk metrics: %w", err)
	}

	r := &Resources{
		MemoryPercent:     memInfo.UsedPercent,
		MemoryAvailableGB: float64(memInfo.Available) / bytesPerGB,
		DiskPercent:       diskInfo.UsedPercent,
		DiskFreeGB:        float64(diskInfo.Free) / bytesPerGB,
	}
	if len(cpuPercent) > 0 {
		r.CPUPercent = cpuPercent[0]
	}
	return r, nil
}
