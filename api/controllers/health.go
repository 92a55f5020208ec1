package controllers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps lists the backing stores probed by the health endpoints. Redis
// is optional.
type HealthDeps struct {
	DB      Pinger
	Redis   Pinger
	Started time.Time
	Now     func() time.Time
}

func (d HealthDeps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

type uptimeInfo struct {
	Seconds int64  `json:"seconds"`
	Human   string `json:"human"`
}

type memoryInfo struct {
	Alloc     string `json:"alloc"`
	HeapInuse string `json:"heapInuse"`
	Sys       string `json:"sys"`
}

type storeState struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}

type healthResponse struct {
	Status      string     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Uptime      uptimeInfo `json:"uptime"`
	Version     string     `json:"version"`
	Memory      memoryInfo `json:"memory"`
	Database    storeState `json:"database"`
	Redis       storeState `json:"redis"`
	Environment string     `json:"environment"`
}

type probeResponse struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HealthStatus reports process and store state. The response is 503 when the
// database cannot be reached.
func HealthStatus(cfg *config.Config, deps HealthDeps, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := deps.now()
		uptime := now.Sub(deps.Started)
		if deps.Started.IsZero() || uptime < 0 {
			uptime = 0
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		resp := healthResponse{
			Status:    "ok",
			Timestamp: now.UTC(),
			Uptime: uptimeInfo{
				Seconds: int64(uptime / time.Second),
				Human:   formatUptime(uptime),
			},
			Version: cfg.App.Version,
			Memory: memoryInfo{
				Alloc:     megabytes(mem.Alloc),
				HeapInuse: megabytes(mem.HeapInuse),
				Sys:       megabytes(mem.Sys),
			},
			Database:    probe(r.Context(), deps.DB, logg, "database"),
			Redis:       probe(r.Context(), deps.Redis, logg, "redis"),
			Environment: cfg.App.Env,
		}

		status := http.StatusOK
		if !resp.Database.Connected {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, resp)
	}
}

// HealthReady succeeds once the database answers pings.
func HealthReady(deps HealthDeps, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state := probe(r.Context(), deps.DB, logg, "database"); !state.Connected {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, probeResponse{
				Status:  "not ready",
				Message: "Application is not ready to receive traffic",
			})
			return
		}
		responses.WriteSuccess(w, probeResponse{
			Status:  "ready",
			Message: "Application is ready to receive traffic",
		})
	}
}

func HealthLive(deps HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := deps.now().UTC()
		responses.WriteSuccess(w, probeResponse{
			Status:    "alive",
			Message:   "Application is alive",
			Timestamp: &now,
		})
	}
}

func probe(ctx context.Context, p Pinger, logg *logger.Logger, name string) storeState {
	if p == nil {
		return storeState{State: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		if logg != nil {
			logg.Warn(logg.WithFields(ctx, map[string]any{"store": name, "error": err.Error()}), "health.ping_failed")
		}
		return storeState{Enabled: true, State: "disconnected"}
	}
	return storeState{Enabled: true, Connected: true, State: "connected"}
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}

// formatUptime renders d as e.g. "1d 2h 3m 4s", omitting zero leading units.
func formatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
