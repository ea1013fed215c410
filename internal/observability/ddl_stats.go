// Package observability provides DDL execution statistics for monitoring.
package observability

import (
	"sort"
	"sync"
	"time"

	"github.com/meridiandb/meridian/internal/errors"
)

// DDLStats tracks DDL statement outcomes by kind and failure category.
type DDLStats struct {
	mu        sync.RWMutex
	kinds     map[string]*KindStats
	failures  map[string]int64 // error category → count
	startedAt time.Time
}

// KindStats holds statistics for one statement kind.
type KindStats struct {
	Kind        string        `json:"kind"`
	Succeeded   int64         `json:"succeeded"`
	Failed      int64         `json:"failed"`
	ColumnCount int64         `json:"columns_analyzed"`
	TotalTime   time.Duration `json:"-"`
	LastSeen    time.Time     `json:"last_seen"`
}

// Summary is the exported snapshot of all statistics.
type Summary struct {
	UptimeSeconds int64              `json:"uptime_seconds"`
	Statements    []KindStats        `json:"statements"`
	Failures      map[string]int64   `json:"failures_by_category"`
	AvgLatency    map[string]float64 `json:"avg_latency_ms"`
}

// NewDDLStats creates a new statistics tracker.
func NewDDLStats() *DDLStats {
	return &DDLStats{
		kinds:     make(map[string]*KindStats),
		failures:  make(map[string]int64),
		startedAt: time.Now(),
	}
}

// RecordSuccess records a completed statement.
// kind: the statement kind (e.g., "CREATE_TABLE")
// columns: number of column definitions analyzed
// This method is O(1) and thread-safe.
func (d *DDLStats) RecordSuccess(kind string, columns int, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.kind(kind)
	stats.Succeeded++
	stats.ColumnCount += int64(columns)
	stats.TotalTime += elapsed
	stats.LastSeen = time.Now()
}

// RecordFailure records a failed statement, bucketing by error category.
func (d *DDLStats) RecordFailure(kind string, err error, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.kind(kind)
	stats.Failed++
	stats.TotalTime += elapsed
	stats.LastSeen = time.Now()

	category := string(errors.GetCategory(err))
	if category == "" {
		category = "OTHER"
	}
	d.failures[category]++
}

func (d *DDLStats) kind(kind string) *KindStats {
	stats, exists := d.kinds[kind]
	if !exists {
		stats = &KindStats{Kind: kind}
		d.kinds[kind] = stats
	}
	return stats
}

// Snapshot returns a copy of all statistics, statement kinds sorted by
// total volume descending.
func (d *DDLStats) Snapshot() Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	summary := Summary{
		UptimeSeconds: int64(time.Since(d.startedAt).Seconds()),
		Statements:    make([]KindStats, 0, len(d.kinds)),
		Failures:      make(map[string]int64, len(d.failures)),
		AvgLatency:    make(map[string]float64, len(d.kinds)),
	}

	for _, s := range d.kinds {
		summary.Statements = append(summary.Statements, *s)
		total := s.Succeeded + s.Failed
		if total > 0 {
			summary.AvgLatency[s.Kind] = float64(s.TotalTime.Milliseconds()) / float64(total)
		}
	}
	for category, count := range d.failures {
		summary.Failures[category] = count
	}

	sort.Slice(summary.Statements, func(i, j int) bool {
		ti := summary.Statements[i].Succeeded + summary.Statements[i].Failed
		tj := summary.Statements[j].Succeeded + summary.Statements[j].Failed
		return ti > tj
	})

	return summary
}
