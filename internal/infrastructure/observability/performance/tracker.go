// Package performance provides lightweight operation tracking for request
// handling, with per-site attribution.
package performance

import (
	"strconv"
	"sync"
	"time"
)

// Marker records a single tracked operation from start to completion.
type Marker struct {
	ID        string
	Operation string
	SiteID    string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	Metadata  map[string]string

	tracker *Tracker
	mu      sync.Mutex
	done    bool
}

// Complete finalizes the marker and records its duration.
func (m *Marker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return
	}
	m.done = true
	m.EndTime = time.Now().UTC()
	m.Duration = m.EndTime.Sub(m.StartTime)
	if m.tracker != nil {
		m.tracker.record(m)
	}
}

// SetSuccess marks the operation outcome.
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Success = success
}

// SetError attaches an error message to the marker.
func (m *Marker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.Error = err.Error()
	}
}

// AddMetadata attaches a key/value pair to the marker.
func (m *Marker) AddMetadata(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metadata[key] = value
}

// Tracker aggregates completed markers into per-operation statistics.
type Tracker struct {
	mu         sync.RWMutex
	maxRecent  int
	recent     []*Marker
	counts     map[string]int64
	failures   map[string]int64
	totalTimes map[string]time.Duration
	started    time.Time
	nextID     int64
}

// NewTracker creates a tracker retaining up to maxRecent completed markers.
func NewTracker(maxRecent int) *Tracker {
	if maxRecent <= 0 {
		maxRecent = 1000
	}
	return &Tracker{
		maxRecent:  maxRecent,
		counts:     make(map[string]int64),
		failures:   make(map[string]int64),
		totalTimes: make(map[string]time.Duration),
		started:    time.Now().UTC(),
	}
}

// StartOperation begins tracking a named operation for a site.
func (t *Tracker) StartOperation(operation, siteID string) *Marker {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.mu.Unlock()

	return &Marker{
		ID:        operation + "-" + strconv.FormatInt(id, 10),
		Operation: operation,
		SiteID:    siteID,
		StartTime: time.Now().UTC(),
		Success:   true,
		Metadata:  make(map[string]string),
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[m.Operation]++
	if !m.Success {
		t.failures[m.Operation]++
	}
	t.totalTimes[m.Operation] += m.Duration

	t.recent = append(t.recent, m)
	if len(t.recent) > t.maxRecent {
		t.recent = t.recent[len(t.recent)-t.maxRecent:]
	}
}

// OperationStats summarizes one tracked operation.
type OperationStats struct {
	Operation   string        `json:"operation"`
	Count       int64         `json:"count"`
	Failures    int64         `json:"failures"`
	AverageTime time.Duration `json:"averageTime"`
}

// Stats returns aggregate statistics for all tracked operations.
func (t *Tracker) Stats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make([]OperationStats, 0, len(t.counts))
	for op, count := range t.counts {
		avg := time.Duration(0)
		if count > 0 {
			avg = t.totalTimes[op] / time.Duration(count)
		}
		stats = append(stats, OperationStats{
			Operation:   op,
			Count:       count,
			Failures:    t.failures[op],
			AverageTime: avg,
		})
	}
	return stats
}

// Uptime reports how long this tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
