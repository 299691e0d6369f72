// FilePath: internal/chainservice/chainservice.go
package chainservice

import (
	"context"
	"encoding/json"

	"github.com/verdantlabs/chainsense/internal/config"
	"github.com/verdantlabs/chainsense/internal/models"
	"github.com/verdantlabs/chainsense/internal/monitoring"
	"github.com/verdantlabs/chainsense/internal/repository"
	"github.com/verdantlabs/chainsense/internal/sui"
)

// Ledger is the opaque capability the pipeline consumes from the chain:
// fetch objects and coins, resolve the gas price, execute signed bytes.
// *sui.Client implements it; tests substitute fakes.
type Ledger interface {
	GetObject(ctx context.Context, id string) (*sui.ObjectData, error)
	GetCoins(ctx context.Context, owner string) ([]sui.Coin, error)
	GetOwnedObjects(ctx context.Context, owner, structType string) ([]*sui.ObjectData, error)
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
	ExecuteTransactionBlock(ctx context.Context, txBytesB64, signature string) (*sui.ExecutionResult, error)
}

// ChainService orchestrates the transaction pipeline: normalize, encode,
// hand off for signing, submit. It never holds caller key material and never
// retries a submission on a caller's behalf.
type ChainService struct {
	ledger  Ledger
	signer  *sui.Signer
	cfg     config.SuiConfig
	device  config.DeviceConfig
	archive repository.SubmissionRepository
	metrics *monitoring.Service
}

// New creates a ChainService. signer and archive may be nil: without a
// signer the direct path fails with a configuration error, without an
// archive confirmed submissions simply are not recorded locally.
func New(
	ledger Ledger,
	signer *sui.Signer,
	cfg config.SuiConfig,
	device config.DeviceConfig,
	archive repository.SubmissionRepository,
	metrics *monitoring.Service,
) *ChainService {
	return &ChainService{
		ledger:  ledger,
		signer:  signer,
		cfg:     cfg,
		device:  device,
		archive: archive,
		metrics: metrics,
	}
}

// Device reports the configured device identity used by the sponsored path
func (s *ChainService) Device() config.DeviceConfig {
	return s.device
}

// UnsignedTransaction pairs the immutable serialized bytes with the reading
// they encode. Created per request and discarded after submission; an
// external signer signs TxBytes blind, so they must never be mutated.
type UnsignedTransaction struct {
	TxBytes []byte
	Reading models.SensorReading
}

// SubmissionResult is a confirmed ledger execution
type SubmissionResult struct {
	Digest        string          `json:"digest"`
	ExplorerURL   string          `json:"explorerUrl"`
	Effects       json.RawMessage `json:"effects,omitempty"`
	Events        json.RawMessage `json:"events,omitempty"`
	ObjectChanges json.RawMessage `json:"objectChanges,omitempty"`
}

// GasContext is everything an external signer needs to reference current
// ledger state when building its own byte-identical transaction.
type GasContext struct {
	SenderAddress     string         `json:"senderAddress"`
	GasObject         sui.ObjectRef  `json:"gasObject"`
	SensorObject      *sui.ObjectRef `json:"sensorObject,omitempty"`
	ReferenceGasPrice uint64         `json:"referenceGasPrice"`
}
