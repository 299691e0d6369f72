// FilePath: api/resources/api.resource.transactions.go
package resources

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/validate"
)

const signingInstructions = "Sign the txBytes value with the device key, then POST {txBytes, signature} to /api/v1/tx/submit"

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// TransactionHandlers encapsulates the transaction pipeline HTTP handlers
type TransactionHandlers struct {
	service *chainservice.ChainService
}

// BuildTransaction serves the first phase of the two-phase flow: a device
// posts pre-scaled integers and receives complete unsigned transaction bytes
// to sign offline.
func (h *TransactionHandlers) BuildTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	raw, apiErr := decodeBody(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	reading, err := validate.Normalize(raw, validate.Prescaled)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	unsigned, err := h.service.BuildUnsigned(r.Context(), *reading)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"txBytes":      hex.EncodeToString(unsigned.TxBytes),
		"data":         unsigned.Reading,
		"instructions": signingInstructions,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// SubmitTransaction serves the second phase: the same bytes come back as hex
// together with the device's signature.
func (h *TransactionHandlers) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	raw, apiErr := decodeBody(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	txHex := firstString(raw, "txBytes")
	signature := firstString(raw, "signature")
	if txHex == "" || signature == "" {
		respondWithError(w, errors.NewValidationError(
			"txBytes and signature are required", nil).WithRequestID(requestID))
		return
	}

	txBytes, err := hex.DecodeString(txHex)
	if err != nil {
		respondWithError(w, errors.NewValidationError(
			"txBytes is not valid hex", err).WithRequestID(requestID))
		return
	}

	result, err := h.service.SubmitSigned(r.Context(), txBytes, signature)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"digest":      result.Digest,
		"explorerUrl": result.ExplorerURL,
		"effects":     result.Effects,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// SponsoredTransaction serves constrained devices: four pre-scaled integers
// and a signature, with the device identity coming from server configuration
// rather than the request.
func (h *TransactionHandlers) SponsoredTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	raw, apiErr := decodeBody(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	signature := firstString(raw, "signature")
	if signature == "" {
		respondWithError(w, errors.NewValidationError(
			"signature is required", nil).WithRequestID(requestID))
		return
	}

	// The configured identity takes the place of the body fields the
	// constrained device never sends.
	device := h.service.Device()
	raw["deviceId"] = device.ID
	raw["sensorType"] = device.SensorType
	raw["location"] = device.Location

	reading, err := validate.Normalize(raw, validate.Prescaled)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	result, err := h.service.SubmitSponsored(r.Context(), *reading, signature)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"digest":        result.Digest,
		"explorerUrl":   result.ExplorerURL,
		"effects":       result.Effects,
		"events":        result.Events,
		"objectChanges": result.ObjectChanges,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

type gasContextQuery struct {
	SenderAddress string `schema:"senderAddress"`
}

// GasContext reports the current object references an external signer needs
// to build byte-identical transactions on its own.
func (h *TransactionHandlers) GasContext(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query gasContextQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError(
			"invalid query parameters", err).WithRequestID(requestID))
		return
	}

	gc, err := h.service.ResolveGasContext(r.Context(), query.SenderAddress)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"context":   gc,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
