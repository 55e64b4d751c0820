// Package profiling provides lightweight operation counters and timers for
// parse and normalize calls.
package profiling

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Profiler accumulates operation counts and cumulative latencies. All methods
// are safe for concurrent use.
type Profiler struct {
	startTime time.Time

	parseOps     atomic.Int64
	normalizeOps atomic.Int64

	// cumulative durations in microseconds
	parseMicros     atomic.Int64
	normalizeMicros atomic.Int64
}

// NewProfiler creates a profiler with the clock started.
func NewProfiler() *Profiler {
	return &Profiler{startTime: time.Now()}
}

// RecordParse records one parse operation and its duration.
func (p *Profiler) RecordParse(d time.Duration) {
	p.parseOps.Add(1)
	p.parseMicros.Add(d.Microseconds())
}

// RecordNormalize records one normalize operation and its duration.
func (p *Profiler) RecordNormalize(d time.Duration) {
	p.normalizeOps.Add(1)
	p.normalizeMicros.Add(d.Microseconds())
}

// Elapsed returns the time since the profiler was created.
func (p *Profiler) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// Reset zeroes all counters. The clock is not restarted.
func (p *Profiler) Reset() {
	p.parseOps.Store(0)
	p.normalizeOps.Store(0)
	p.parseMicros.Store(0)
	p.normalizeMicros.Store(0)
}

// Summary is a point-in-time snapshot of profiler state.
type Summary struct {
	TotalOperations      int64
	TotalRuntime         time.Duration
	AverageParseTime     time.Duration
	AverageNormalizeTime time.Duration
	ResidentMemoryBytes  int64 // -1 when unavailable
}

// Summary returns the current counters as a snapshot.
func (p *Profiler) Summary() Summary {
	parseOps := p.parseOps.Load()
	normOps := p.normalizeOps.Load()

	s := Summary{
		TotalOperations:     parseOps + normOps,
		TotalRuntime:        p.Elapsed(),
		ResidentMemoryBytes: sampleResidentMemory(),
	}
	if parseOps > 0 {
		s.AverageParseTime = time.Duration(p.parseMicros.Load()/parseOps) * time.Microsecond
	}
	if normOps > 0 {
		s.AverageNormalizeTime = time.Duration(p.normalizeMicros.Load()/normOps) * time.Microsecond
	}
	return s
}

// OperationsPerSecond computes throughput over the profiler's lifetime.
func (s Summary) OperationsPerSecond() float64 {
	secs := s.TotalRuntime.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.TotalOperations) / secs
}

// sampleResidentMemory reads VmRSS from /proc/self/status. Returns -1 on
// platforms without procfs.
func sampleResidentMemory() int64 {
	status, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return -1
	}
	for _, line := range strings.Split(string(status), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return -1
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return -1
		}
		return kb * 1024
	}
	return -1
}

// FormatBytes renders a byte count as a human-readable string.
func FormatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d %s", bytes, units[idx])
	}
	return fmt.Sprintf("%.2f %s", size, units[idx])
}
