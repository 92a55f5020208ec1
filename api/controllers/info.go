package controllers

import (
	"net/http"
	"time"

	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/pkg/config"
)

const serviceName = "Shipping Line API"

type bannerResponse struct {
	Message       string    `json:"message"`
	Version       string    `json:"version"`
	Status        string    `json:"status"`
	Documentation string    `json:"documentation"`
	Timestamp     time.Time `json:"timestamp"`
}

type catalogResponse struct {
	Name        string                       `json:"name"`
	Version     string                       `json:"version"`
	Description string                       `json:"description"`
	Endpoints   map[string]map[string]string `json:"endpoints"`
}

var endpointCatalog = map[string]map[string]string{
	"auth": {
		"login":   "POST /api/auth/login",
		"logout":  "POST /api/auth/logout",
		"me":      "GET /api/auth/me",
		"refresh": "POST /api/auth/refresh",
		"check":   "GET /api/auth/check",
	},
	"vessels": {
		"list":       "GET /api/vessels",
		"create":     "POST /api/vessels",
		"get":        "GET /api/vessels/{id}",
		"update":     "PUT /api/vessels/{id}",
		"delete":     "DELETE /api/vessels/{id}",
		"stats":      "GET /api/vessels/stats",
		"bulkDelete": "DELETE /api/vessels/bulk",
	},
	"health": {
		"status": "GET /api/health",
		"ready":  "GET /api/health/ready",
		"live":   "GET /api/health/live",
	},
}

// ServiceBanner answers the root path.
func ServiceBanner(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, bannerResponse{
			Message:       serviceName,
			Version:       cfg.App.Version,
			Status:        "operational",
			Documentation: "/api",
			Timestamp:     time.Now().UTC(),
		})
	}
}

// APICatalog lists the public endpoints.
func APICatalog(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalogResponse{
			Name:        serviceName,
			Version:     cfg.App.Version,
			Description: "REST API for managing vessel schedules",
			Endpoints:   endpointCatalog,
		})
	}
}
