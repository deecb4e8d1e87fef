package metrics

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a snapshot of the miner process and its host.
type ProcessStats struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryRSSBytes    uint64  `json:"memory_rss_bytes"`
	HostMemoryPercent float64 `json:"host_memory_percent"`
	Goroutines        int     `json:"goroutines"`
}

var (
	selfOnce sync.Once
	self     *process.Process
	selfErr  error
)

func currentProcess() (*process.Process, error) {
	selfOnce.Do(func() {
		self, selfErr = process.NewProcess(int32(os.Getpid()))
	})
	return self, selfErr
}

// ReadProcessStats samples CPU and memory usage of the running miner.
func ReadProcessStats() (ProcessStats, error) {
	proc, err := currentProcess()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("failed to open process: %w", err)
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("failed to read process cpu: %w", err)
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("failed to read process memory: %w", err)
	}
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("failed to read host memory: %w", err)
	}

	return ProcessStats{
		CPUPercent:        cpuPercent,
		MemoryRSSBytes:    memInfo.RSS,
		HostMemoryPercent: vmStat.UsedPercent,
		Goroutines:        runtime.NumGoroutine(),
	}, nil
}

func sampleProcess(pick func(ProcessStats) float64) func() float64 {
	return func() float64 {
		stats, err := ReadProcessStats()
		if err != nil {
			return 0
		}
		return pick(stats)
	}
}
