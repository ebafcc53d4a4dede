package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"runtime"
	"time"

	"automind-api/pkg/apierror"
	"automind-api/pkg/response"
)

// StatsSource supplies row counts for the dashboard.
type StatsSource interface {
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	ActiveSessions(ctx context.Context) (int64, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store     StatsSource
	sessions  SessionCounter
	storeType string
	cacheType string
	loginKey  string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. An empty loginKey disables
// every admin endpoint.
func NewAdminHandler(store StatsSource, sessions SessionCounter, storeType, cacheType, loginKey string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		sessions:  sessions,
		storeType: storeType,
		cacheType: cacheType,
		loginKey:  loginKey,
		startTime: time.Now(),
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	presented := r.Header.Get("X-Login-Key")
	if h.loginKey == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.loginKey)) == 1
}

// VerifyLogin handles POST /api/v1/admin/login
func (h *AdminHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Error(w, apierror.Unauthorized("Invalid login key"))
		return
	}
	response.OK(w, map[string]bool{"valid": true})
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Error(w, apierror.Unauthorized("Invalid login key"))
		return
	}

	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType
	stats["cache_type"] = h.cacheType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	if h.sessions != nil {
		count, err := h.sessions.ActiveSessions(ctx)
		if err == nil {
			stats["sessions"] = map[string]interface{}{
				"active": count,
				"status": "connected",
			}
		} else {
			stats["sessions"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	}

	if h.store != nil {
		storeStats, err := h.store.GetStats(ctx)
		if err == nil {
			storeStats["status"] = "connected"
			stats["store"] = storeStats
		} else {
			stats["store"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
