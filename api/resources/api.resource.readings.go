// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"net/http"
	"strconv"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/validate"
)

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	service *chainservice.ChainService
}

// CreateReading serves the direct path: human-scale values are normalized,
// encoded, signed with the server-held key and committed in one call.
func (h *ReadingHandlers) CreateReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	raw, apiErr := decodeBody(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	reading, err := validate.Normalize(raw, validate.HumanUnits)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	result, err := h.service.SubmitDirect(r.Context(), *reading)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Sensor data committed to the ledger",
		"transactionDigest": result.Digest,
		"explorerUrl":       result.ExplorerURL,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

// ListReadings queries the ledger for the readings stored under the
// configured owner address.
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	readings, err := h.service.ListChainReadings(r.Context())
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"readings":  readings,
		"count":     len(readings),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListSubmissions lists locally archived confirmed writes
func (h *ReadingHandlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, errors.NewValidationError(
				"limit must be a non-negative integer", err).WithRequestID(requestID))
			return
		}
		limit = parsed
	}

	submissions, err := h.service.ListSubmissions(r.Context(), limit)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"submissions": submissions,
		"count":       len(submissions),
	})
}
