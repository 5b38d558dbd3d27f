package observability

import (
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"session-lab/domain/event"
)

// ChannelUsage is the last sampled fill level of one queue.
type ChannelUsage struct {
	Name     string `json:"name"`
	Length   int    `json:"length"`
	Capacity int    `json:"capacity"`
	sampled  time.Time
}

// MonitoringStats aggregates every engine metric shown by the debug inspector.
type MonitoringStats struct {
	// --- ENGINE METRICS ---
	LiveSessions       int    `json:"live_sessions"`
	ResponsesAccepted  uint64 `json:"responses_accepted"`
	ResponsesReplaced  uint64 `json:"responses_replaced"`
	ProfanityRejected  uint64 `json:"profanity_rejected"`
	SubscribersDropped uint64 `json:"subscribers_dropped"`
	WorkerRestarts     uint64 `json:"worker_restarts"`

	// --- PROCESS METRICS ---
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`

	// --- SYSTEM METRICS ---
	AllocMemMb uint64         `json:"alloc_mem_mb"`
	NumGC      uint32         `json:"num_gc"`
	Channels   []ChannelUsage `json:"channels"`
	UpdatedAt  string         `json:"updated_at"`
}

// MonitoringManager keeps live engine telemetry for the debug inspector.
// It is registered as a telemetry handler and never blocks the pipeline.
type MonitoringManager struct {
	log *slog.Logger
	mu  sync.Mutex

	accepted   atomic.Uint64
	replaced   atomic.Uint64
	profanity  atomic.Uint64
	dropped    atomic.Uint64
	restarts   atomic.Uint64
	process    event.ProcessStats
	channels   map[string]ChannelUsage
	staleAfter time.Duration
	lastUpdate time.Time
}

var _ event.Handler = (*MonitoringManager)(nil)

// NewMonitoringManager builds a monitor. Queues not sampled within staleAfter,
// such as the inbox of an ended session, are dropped from the report.
func NewMonitoringManager(log *slog.Logger, staleAfter time.Duration) *MonitoringManager {
	return &MonitoringManager{log: log, channels: make(map[string]ChannelUsage), staleAfter: staleAfter}
}

func (mm *MonitoringManager) Handle(e event.Event) {
	switch p := e.Payload.(type) {
	case event.ResponseAccepted:
		mm.accepted.Add(1)
		if p.Replaced {
			mm.replaced.Add(1)
		}
	case event.ProfanityRejected:
		mm.profanity.Add(1)
	case event.SubscriberDropped:
		mm.dropped.Add(1)
	case event.WorkerRestartedAfterPanic:
		mm.restarts.Add(1)
	case event.ProcessStats:
		mm.mu.Lock()
		mm.process = p
		mm.lastUpdate = e.CreatedAt
		mm.mu.Unlock()
	case event.ChannelCapacity:
		mm.mu.Lock()
		mm.channels[p.ChannelName] = ChannelUsage{Name: p.ChannelName, Length: p.Length, Capacity: p.Capacity, sampled: e.CreatedAt}
		mm.mu.Unlock()
	}
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.Lock()
	stats := MonitoringStats{
		LiveSessions: mm.process.Sessions,
		PID:          mm.process.PID,
		CPUPercent:   mm.process.CPUPercent,
		RSSBytes:     mm.process.RSS,
		Channels:     make([]ChannelUsage, 0, len(mm.channels)),
	}
	for name, c := range mm.channels {
		if mm.staleAfter > 0 && time.Since(c.sampled) > mm.staleAfter {
			delete(mm.channels, name)
			continue
		}
		stats.Channels = append(stats.Channels, c)
	}
	slices.SortFunc(stats.Channels, func(a, b ChannelUsage) int { return strings.Compare(a.Name, b.Name) })
	if !mm.lastUpdate.IsZero() {
		stats.UpdatedAt = mm.lastUpdate.Format("15:04:05")
	}
	mm.mu.Unlock()

	stats.ResponsesAccepted = mm.accepted.Load()
	stats.ResponsesReplaced = mm.replaced.Load()
	stats.ProfanityRejected = mm.profanity.Load()
	stats.SubscribersDropped = mm.dropped.Load()
	stats.WorkerRestarts = mm.restarts.Load()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	mm.log.Debug("monitoring snapshot", "sessions", stats.LiveSessions, "accepted", stats.ResponsesAccepted)
	return stats
}
