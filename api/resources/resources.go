// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/errors"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Transactions *TransactionHandlers
	Readings     *ReadingHandlers
	HealthCheck  func(w http.ResponseWriter, r *http.Request)
	Metrics      func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *chainservice.ChainService) *Resources {
	return &Resources{
		Transactions: &TransactionHandlers{service: svc},
		Readings:     &ReadingHandlers{service: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// HealthCheckHandler dispatches to the configured health check. Routes are
// registered before the server wires the check in, so the indirection keeps
// the late assignment visible to the router.
func (r *Resources) HealthCheckHandler(w http.ResponseWriter, req *http.Request) {
	if r.HealthCheck != nil {
		r.HealthCheck(w, req)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MetricsHandler dispatches to the configured metrics handler
func (r *Resources) MetricsHandler(w http.ResponseWriter, req *http.Request) {
	if r.Metrics != nil {
		r.Metrics(w, req)
		return
	}
	http.NotFound(w, req)
}

// errorResponse is the uniform failure envelope. Every handler error,
// whatever raised it internally, leaves the process in this shape.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(errorResponse{
		Success:   false,
		Error:     err.Message,
		Details:   err.Details,
		RequestID: err.RequestID,
	})
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// decodeBody parses a JSON request body into a raw map, keeping numbers as
// json.Number so the validator can tell "25.5" from 2550.
func decodeBody(r *http.Request) (map[string]any, *errors.APIError) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.NewValidationError("invalid request body", err)
	}
	return raw, nil
}

// firstString pulls an optional string field out of a raw body
func firstString(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
