package api

import (
	"time"

	"github.com/getmockd/commercemock/pkg/repository"
)

// HealthResponse is returned by GET /-/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    int       `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// KindStats reports the stored resources of one kind.
type KindStats struct {
	TypeID repository.TypeID `json:"typeId"`
	Path   string            `json:"path"`
	Count  int               `json:"count"`
}

// ProjectStats reports the stored resources of one project.
type ProjectStats struct {
	Key   string      `json:"key"`
	Kinds []KindStats `json:"kinds"`
}

// MetricsResponse is returned by GET /-/metrics.
type MetricsResponse struct {
	Operations repository.MetricsSnapshot `json:"operations"`
	Projects   []ProjectStats             `json:"projects"`
}

// ResetResponse is returned by POST /-/reset.
type ResetResponse struct {
	Project string `json:"project,omitempty"`
	Removed int    `json:"removed"`
}
