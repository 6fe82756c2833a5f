package repository

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer defines hooks for observability and metrics collection.
// Hooks run after the operation completes and outside the resource lock.
type Observer interface {
	// OnCreate is called after a successful create operation.
	OnCreate(kind TypeID, id string, duration time.Duration)

	// OnRead is called after a successful get by id or key.
	OnRead(kind TypeID, id string, duration time.Duration)

	// OnQuery is called after a successful query with the number of results returned.
	OnQuery(kind TypeID, count int, duration time.Duration)

	// OnUpdate is called after a successful update. changed is false when the
	// actions left the resource as it was and no new version was written.
	OnUpdate(kind TypeID, id string, version int, changed bool, duration time.Duration)

	// OnDelete is called after a successful delete operation.
	OnDelete(kind TypeID, id string, duration time.Duration)

	// OnError is called when an operation fails.
	OnError(kind TypeID, operation string, err error)
}

// NoopObserver is a no-op implementation of Observer for when metrics are disabled.
type NoopObserver struct{}

func (NoopObserver) OnCreate(kind TypeID, id string, duration time.Duration)                     {}
func (NoopObserver) OnRead(kind TypeID, id string, duration time.Duration)                       {}
func (NoopObserver) OnQuery(kind TypeID, count int, duration time.Duration)                      {}
func (NoopObserver) OnUpdate(kind TypeID, id string, version int, changed bool, d time.Duration) {}
func (NoopObserver) OnDelete(kind TypeID, id string, duration time.Duration)                     {}
func (NoopObserver) OnError(kind TypeID, operation string, err error)                            {}

// MetricsObserver collects basic metrics about repository operations.
// All counters use atomic operations so one observer can be shared by every
// repository of a registry.
type MetricsObserver struct {
	createCount    atomic.Int64
	readCount      atomic.Int64
	queryCount     atomic.Int64
	updateCount    atomic.Int64
	noopCount      atomic.Int64
	deleteCount    atomic.Int64
	errorCount     atomic.Int64
	conflictCount  atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewMetricsObserver creates a new thread-safe metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (m *MetricsObserver) OnCreate(kind TypeID, id string, duration time.Duration) {
	m.createCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnRead(kind TypeID, id string, duration time.Duration) {
	m.readCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnQuery(kind TypeID, count int, duration time.Duration) {
	m.queryCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnUpdate(kind TypeID, id string, version int, changed bool, duration time.Duration) {
	if changed {
		m.updateCount.Add(1)
	} else {
		m.noopCount.Add(1)
	}
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnDelete(kind TypeID, id string, duration time.Duration) {
	m.deleteCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnError(kind TypeID, operation string, err error) {
	m.errorCount.Add(1)
	var cm *ConcurrentModificationError
	if errors.As(err, &cm) {
		m.conflictCount.Add(1)
	}
}

// Snapshot returns a thread-safe copy of the current metrics.
func (m *MetricsObserver) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CreateCount:   m.createCount.Load(),
		ReadCount:     m.readCount.Load(),
		QueryCount:    m.queryCount.Load(),
		UpdateCount:   m.updateCount.Load(),
		NoopCount:     m.noopCount.Load(),
		DeleteCount:   m.deleteCount.Load(),
		ErrorCount:    m.errorCount.Load(),
		ConflictCount: m.conflictCount.Load(),
		TotalLatency:  time.Duration(m.totalLatencyNs.Load()),
	}
}

// Reset clears all metrics counters to zero.
func (m *MetricsObserver) Reset() {
	m.createCount.Store(0)
	m.readCount.Store(0)
	m.queryCount.Store(0)
	m.updateCount.Store(0)
	m.noopCount.Store(0)
	m.deleteCount.Store(0)
	m.errorCount.Store(0)
	m.conflictCount.Store(0)
	m.totalLatencyNs.Store(0)
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	CreateCount   int64         `json:"createCount"`
	ReadCount     int64         `json:"readCount"`
	QueryCount    int64         `json:"queryCount"`
	UpdateCount   int64         `json:"updateCount"`
	NoopCount     int64         `json:"noopUpdateCount"`
	DeleteCount   int64         `json:"deleteCount"`
	ErrorCount    int64         `json:"errorCount"`
	ConflictCount int64         `json:"conflictCount"`
	TotalLatency  time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the total number of successful operations.
func (s MetricsSnapshot) TotalOperations() int64 {
	return s.CreateCount + s.ReadCount + s.QueryCount + s.UpdateCount + s.NoopCount + s.DeleteCount
}

// LoggingObserver writes one debug record per operation and one warn record
// per failure.
type LoggingObserver struct {
	log *slog.Logger
}

// NewLoggingObserver creates an observer writing to log. A nil logger discards.
func NewLoggingObserver(log *slog.Logger) *LoggingObserver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LoggingObserver{log: log}
}

func (l *LoggingObserver) OnCreate(kind TypeID, id string, duration time.Duration) {
	l.log.Debug("resource created", "kind", kind, "id", id, "duration", duration)
}

func (l *LoggingObserver) OnRead(kind TypeID, id string, duration time.Duration) {
	l.log.Debug("resource read", "kind", kind, "id", id, "duration", duration)
}

func (l *LoggingObserver) OnQuery(kind TypeID, count int, duration time.Duration) {
	l.log.Debug("resources queried", "kind", kind, "count", count, "duration", duration)
}

func (l *LoggingObserver) OnUpdate(kind TypeID, id string, version int, changed bool, duration time.Duration) {
	l.log.Debug("resource updated", "kind", kind, "id", id, "version", version, "changed", changed, "duration", duration)
}

func (l *LoggingObserver) OnDelete(kind TypeID, id string, duration time.Duration) {
	l.log.Debug("resource deleted", "kind", kind, "id", id, "duration", duration)
}

func (l *LoggingObserver) OnError(kind TypeID, operation string, err error) {
	l.log.Warn("operation failed", "kind", kind, "operation", operation, "error", err)
}

// MultiObserver fans every hook out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnCreate(kind TypeID, id string, duration time.Duration) {
	for _, o := range m {
		o.OnCreate(kind, id, duration)
	}
}

func (m MultiObserver) OnRead(kind TypeID, id string, duration time.Duration) {
	for _, o := range m {
		o.OnRead(kind, id, duration)
	}
}

func (m MultiObserver) OnQuery(kind TypeID, count int, duration time.Duration) {
	for _, o := range m {
		o.OnQuery(kind, count, duration)
	}
}

func (m MultiObserver) OnUpdate(kind TypeID, id string, version int, changed bool, duration time.Duration) {
	for _, o := range m {
		o.OnUpdate(kind, id, version, changed, duration)
	}
}

func (m MultiObserver) OnDelete(kind TypeID, id string, duration time.Duration) {
	for _, o := range m {
		o.OnDelete(kind, id, duration)
	}
}

func (m MultiObserver) OnError(kind TypeID, operation string, err error) {
	for _, o := range m {
		o.OnError(kind, operation, err)
	}
}
