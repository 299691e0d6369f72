// FilePath: internal/chainservice/chainservice.build.go
package chainservice

import (
	"context"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
	"github.com/verdantlabs/chainsense/internal/sui"
)

// BuildUnsigned encodes a canonical reading into unsigned transaction bytes
// for the two-phase flow. The configured sender pays gas, so the bytes are
// complete and an external device can sign them blind.
func (s *ChainService) BuildUnsigned(ctx context.Context, reading models.SensorReading) (*UnsignedTransaction, error) {
	txc, err := s.resolveTxContext(ctx, s.cfg.SenderAddress)
	if err != nil {
		return nil, err
	}

	txBytes, err := sui.BuildSensorTransaction(reading, txc)
	if err != nil {
		return nil, err
	}

	s.metrics.TxBuilt()
	nuts.L.Infof("[ChainService] Built unsigned tx for device %s (%d bytes, gas coin %s v%d)",
		reading.DeviceID, len(txBytes), txc.GasPayment.ObjectID, txc.GasPayment.Version)

	return &UnsignedTransaction{TxBytes: txBytes, Reading: reading}, nil
}

// resolveTxContext assembles the encode context: sender, clock reference and
// a freshly queried gas coin. Gas-coin selection is fetch-then-pick-first and
// deliberately not atomic; a concurrent submission that spends the same coin
// surfaces as a version-conflict rejection at execution time.
func (s *ChainService) resolveTxContext(ctx context.Context, sender string) (sui.TxContext, error) {
	if sender == "" {
		return sui.TxContext{}, errors.NewConfigurationError("sender address is not configured", nil)
	}
	if s.cfg.PackageID == "" {
		return sui.TxContext{}, errors.NewConfigurationError("sensor package id is not configured", nil)
	}

	coins, err := s.ledger.GetCoins(ctx, sender)
	if err != nil {
		return sui.TxContext{}, err
	}
	if len(coins) == 0 {
		return sui.TxContext{}, errors.NewNoGasError(fmt.Sprintf("sender %s has no SUI coins for gas", sender))
	}
	gasRef, err := coins[0].Ref()
	if err != nil {
		return sui.TxContext{}, errors.NewInternalError("parse gas coin reference", err)
	}

	price := s.cfg.GasPrice
	if price == 0 {
		price, err = s.ledger.GetReferenceGasPrice(ctx)
		if err != nil {
			return sui.TxContext{}, err
		}
	}

	return sui.TxContext{
		Sender:    sender,
		PackageID: s.cfg.PackageID,
		Clock: sui.SharedObjectRef{
			ObjectID:             s.cfg.ClockObjectID,
			InitialSharedVersion: s.cfg.ClockInitialVersion,
			Mutable:              false,
		},
		GasPayment: gasRef,
		GasPrice:   price,
		GasBudget:  s.cfg.GasBudget,
	}, nil
}

// ResolveGasContext reports the object references an external signer needs.
// The sender may be overridden per request; the write path and this read
// path otherwise share one configured address, so signer and server agree on
// whose coins are spent.
func (s *ChainService) ResolveGasContext(ctx context.Context, senderOverride string) (*GasContext, error) {
	sender := senderOverride
	if sender == "" {
		sender = s.cfg.SenderAddress
	}
	if sender == "" {
		return nil, errors.NewValidationError(
			"sender address is required: pass senderAddress or configure a default", nil)
	}

	coins, err := s.ledger.GetCoins(ctx, sender)
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, errors.NewNoGasError(fmt.Sprintf("sender %s has no SUI coins for gas", sender))
	}
	gasRef, err := coins[0].Ref()
	if err != nil {
		return nil, errors.NewInternalError("parse gas coin reference", err)
	}

	gc := &GasContext{
		SenderAddress: sender,
		GasObject:     gasRef,
	}

	if s.cfg.SensorObjectID != "" {
		obj, err := s.ledger.GetObject(ctx, s.cfg.SensorObjectID)
		if err != nil {
			return nil, err
		}
		gc.SensorObject = &sui.ObjectRef{
			ObjectID: obj.ObjectID,
			Version:  obj.Version,
			Digest:   obj.Digest,
		}
	}

	price, err := s.ledger.GetReferenceGasPrice(ctx)
	if err != nil {
		nuts.L.Warnf("[ChainService] reference gas price unavailable: %v", err)
		price = s.cfg.GasPrice
	}
	gc.ReferenceGasPrice = price

	return gc, nil
}
