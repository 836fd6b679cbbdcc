package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is a point-in-time view of the process, reported by the
// detailed health check. Prometheus scrapes the same figures through the
// Go and process collectors.
type RuntimeStats struct {
	GoRoutines    int           `json:"goroutines"`
	HeapAllocMB   uint64        `json:"heap_alloc_mb"`
	SystemMB      uint64        `json:"system_mb"`
	GCCount       uint32        `json:"gc_count"`
	LastGCPause   time.Duration `json:"last_gc_pause_ns"`
	CPUCount      int           `json:"cpu_count"`
	Uptime        time.Duration `json:"uptime_ns"`
	UptimeSeconds float64       `json:"uptime_seconds"`
}

// CollectRuntimeStats reads the Go runtime counters
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(startTime)
	return RuntimeStats{
		GoRoutines:    runtime.NumGoroutine(),
		HeapAllocMB:   memStats.HeapAlloc / 1024 / 1024,
		SystemMB:      memStats.Sys / 1024 / 1024,
		GCCount:       memStats.NumGC,
		LastGCPause:   time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		CPUCount:      runtime.NumCPU(),
		Uptime:        uptime,
		UptimeSeconds: uptime.Seconds(),
	}
}
