// system.go captures system state at error time.

package apm

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// CaptureSystemState captures system metrics at the current moment.
// The startTime parameter is used to calculate process uptime. Process
// metrics the platform cannot provide are left zero.
func CaptureSystemState(startTime time.Time) *SystemState {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname()

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0
	}

	state := &SystemState{
		MemoryBytes:    int64(memStats.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       uptimeMs,
		HostName:       hostname,
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return state
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		state.RSSBytes = int64(mem.RSS)
	}
	if threads, err := proc.NumThreads(); err == nil {
		state.ThreadCount = threads
	}
	return state
}
