// FilePath: internal/chainservice/chainservice.submit.go
package chainservice

import (
	"context"
	"encoding/base64"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
	"github.com/verdantlabs/chainsense/internal/sui"
)

// SubmitSigned submits previously built bytes with a signature computed over
// exactly those bytes. No re-derivation happens here: the coordinator trusts
// the caller to round-trip the bytes unchanged, because any drift invalidates
// the signature and the ledger rejects the execution.
func (s *ChainService) SubmitSigned(ctx context.Context, txBytes []byte, signature string) (*SubmissionResult, error) {
	if len(txBytes) == 0 {
		return nil, errors.NewValidationError("txBytes must not be empty", nil)
	}
	if signature == "" {
		return nil, errors.NewValidationError("signature must not be empty", nil)
	}
	return s.execute(ctx, txBytes, signature)
}

// SubmitSponsored serves constrained devices that send only the four raw
// values and a signature: the server rebuilds the canonical bytes for the
// configured device identity and executes them with the device's signature.
// If ledger state moved since the device built its own copy (a different gas
// coin, a bumped version), the signature no longer matches and the ledger
// rejects. That race is accepted, not worked around.
func (s *ChainService) SubmitSponsored(ctx context.Context, reading models.SensorReading, signature string) (*SubmissionResult, error) {
	if signature == "" {
		return nil, errors.NewValidationError("signature must not be empty", nil)
	}

	reading.DeviceID = s.device.ID
	reading.SensorType = s.device.SensorType
	reading.Location = s.device.Location

	txc, err := s.resolveTxContext(ctx, s.cfg.SenderAddress)
	if err != nil {
		return nil, err
	}
	txBytes, err := sui.BuildSensorTransaction(reading, txc)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, txBytes, signature)
}

// DirectResult is the trimmed response of the in-process signing path
type DirectResult struct {
	Digest      string `json:"digest"`
	ExplorerURL string `json:"explorerUrl"`
}

// SubmitDirect builds, signs with the process-held key and submits in one
// call. Used when this service itself is the trusted writer; external
// devices go through BuildUnsigned/SubmitSigned instead.
func (s *ChainService) SubmitDirect(ctx context.Context, reading models.SensorReading) (*DirectResult, error) {
	if s.signer == nil {
		return nil, errors.NewConfigurationError("signing key is not configured", nil)
	}

	txc, err := s.resolveTxContext(ctx, s.signer.Address())
	if err != nil {
		return nil, err
	}
	txBytes, err := sui.BuildSensorTransaction(reading, txc)
	if err != nil {
		return nil, err
	}

	signature := s.signer.SignTransaction(txBytes)
	result, err := s.execute(ctx, txBytes, signature)
	if err != nil {
		return nil, err
	}
	return &DirectResult{Digest: result.Digest, ExplorerURL: result.ExplorerURL}, nil
}

// execute runs one signed submission against the ledger, classifies the
// outcome and archives confirmed writes.
func (s *ChainService) execute(ctx context.Context, txBytes []byte, signature string) (*SubmissionResult, error) {
	txB64 := base64.StdEncoding.EncodeToString(txBytes)

	result, err := s.ledger.ExecuteTransactionBlock(ctx, txB64, signature)
	if err != nil {
		if errors.IsRetryable(err) {
			s.metrics.SubmissionRecorded("transport_failure")
		} else {
			s.metrics.SubmissionRecorded("rejected")
		}
		return nil, err
	}

	if status, statusErr := result.Status(); status != "" && status != "success" {
		s.metrics.SubmissionRecorded("rejected")
		msg := statusErr
		if msg == "" {
			msg = status
		}
		return nil, errors.NewSubmissionRejectedError(msg, nil)
	}

	s.metrics.SubmissionRecorded("confirmed")
	nuts.L.Infof("[ChainService] Transaction confirmed: %s", result.Digest)
	s.archiveSubmission(ctx, txBytes, result.Digest)

	return &SubmissionResult{
		Digest:        result.Digest,
		ExplorerURL:   s.cfg.ExplorerURL(result.Digest),
		Effects:       result.Effects,
		Events:        result.Events,
		ObjectChanges: result.ObjectChanges,
	}, nil
}

// archiveSubmission records a confirmed write in the local archive. The
// reading is recovered from the submitted bytes themselves, so the archive
// reflects what was actually committed, not what a caller claimed.
func (s *ChainService) archiveSubmission(ctx context.Context, txBytes []byte, digest string) {
	if s.archive == nil {
		return
	}
	call, err := sui.DecodeSensorTransaction(txBytes)
	if err != nil {
		nuts.L.Warnf("[ChainService] cannot decode confirmed tx %s for archive: %v", digest, err)
		return
	}
	submission := &models.Submission{
		Digest:      digest,
		DeviceID:    call.Reading.DeviceID,
		SensorType:  call.Reading.SensorType,
		Temperature: call.Reading.TemperatureScaled,
		Humidity:    call.Reading.HumidityScaled,
		EC:          call.Reading.Conductivity,
		PH:          call.Reading.AcidityScaled,
		Location:    call.Reading.Location,
		Status:      "confirmed",
	}
	if err := s.archive.Insert(ctx, submission); err != nil {
		nuts.L.Warnf("[ChainService] failed to archive submission %s: %v", digest, err)
	}
}
