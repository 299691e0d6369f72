// FilePath: internal/chainservice/chainservice.readings.go
package chainservice

import (
	"context"
	"encoding/json"
	"strconv"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
)

// chainReadingFields mirrors the Move struct's field layout as the fullnode
// reports it. The node renders u64 values as JSON strings.
type chainReadingFields struct {
	Temperature json.Number `json:"temperature"`
	Humidity    json.Number `json:"humidity"`
	EC          json.Number `json:"ec"`
	PH          json.Number `json:"ph"`
	DeviceID    string      `json:"device_id"`
	SensorType  string      `json:"sensor_type"`
	Location    string      `json:"location"`
	Timestamp   json.Number `json:"timestamp"`
}

// ListChainReadings fetches the readings stored on the ledger under the
// configured sender address. Objects whose content does not parse are
// skipped with a warning rather than failing the whole query.
func (s *ChainService) ListChainReadings(ctx context.Context) ([]models.ChainReading, error) {
	if s.cfg.SenderAddress == "" {
		return nil, errors.NewConfigurationError("sender address is not configured", nil)
	}
	if s.cfg.PackageID == "" {
		return nil, errors.NewConfigurationError("sensor package id is not configured", nil)
	}

	objects, err := s.ledger.GetOwnedObjects(ctx, s.cfg.SenderAddress, s.cfg.ReadingStructType())
	if err != nil {
		return nil, err
	}

	readings := make([]models.ChainReading, 0, len(objects))
	for _, obj := range objects {
		var fields chainReadingFields
		if err := json.Unmarshal(obj.Fields, &fields); err != nil {
			nuts.L.Warnf("[ChainService] skipping unreadable object %s: %v", obj.ObjectID, err)
			continue
		}
		readings = append(readings, models.ChainReading{
			ObjectID:    obj.ObjectID,
			Temperature: numberToU64(fields.Temperature),
			Humidity:    numberToU64(fields.Humidity),
			EC:          numberToU64(fields.EC),
			PH:          numberToU64(fields.PH),
			DeviceID:    fields.DeviceID,
			SensorType:  fields.SensorType,
			Location:    fields.Location,
			Timestamp:   numberToU64(fields.Timestamp),
		})
	}
	return readings, nil
}

// ListSubmissions lists locally archived confirmed writes
func (s *ChainService) ListSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	if s.archive == nil {
		return nil, errors.NewNotFoundError("submission archive is not enabled", nil)
	}
	return s.archive.List(ctx, limit)
}

func numberToU64(n json.Number) uint64 {
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
