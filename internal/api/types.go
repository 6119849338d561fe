package api

import (
	"encoding/json"
	"net/http"

	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/stats"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// StatsResponse is the counters payload returned by /api/v1/stats.
type StatsResponse stats.Stats

// CheckResponse is the classification result for a single domain.
type CheckResponse struct {
	Domain   string `json:"domain"`
	Path     string `json:"path,omitempty"`
	Blocked  bool   `json:"blocked"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// FiltersResponse describes the live filter snapshot.
type FiltersResponse struct {
	// Loaded is false until the first compilation has been published.
	Loaded bool              `json:"loaded"`
	Index  filter.IndexStats `json:"index"`
}

// RefreshResponse reports the outcome of a refresh request.
type RefreshResponse struct {
	Status string `json:"status"` // "scheduled" or "already_pending"
}

// HealthCheckResponse returns health check results.
type HealthCheckResponse struct {
	Healthy bool                   `json:"healthy"`
	Checks  map[string]CheckResult `json:"checks"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
