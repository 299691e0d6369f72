// FilePath: internal/validate/validate.go
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
)

// ScalingConvention selects how raw numeric values are interpreted. The two
// entry points use different unit conventions and the choice is always made
// explicitly by the caller: guessing between them risks a 100x magnitude
// error being written immutably to the ledger.
type ScalingConvention int

const (
	// Prescaled expects integers already in the contract's fixed-point
	// units, bounds-checked against the scaled domain. Machine-facing.
	Prescaled ScalingConvention = iota
	// HumanUnits expects human-readable floats, scaled here by x100
	// (x1 for conductivity), bounds-checked against the human domain.
	HumanUnits
)

// RequiredFields are the keys every reading payload must carry
var RequiredFields = []string{"temperature", "humidity", "ec", "ph", "deviceId", "sensorType"}

// Contract-side bounds for the scaled integer representation
const (
	MaxTemperatureScaled = 10000
	MaxHumidityScaled    = 10000
	MaxConductivity      = 50000
	MaxAcidityScaled     = 1400
)

// Normalize converts a raw field mapping into a canonical SensorReading or a
// validation error listing every problem found. Missing required keys are
// reported before any numeric parsing; the four numeric fields are then
// validated independently so a caller sees all out-of-domain fields in one
// round trip.
func Normalize(raw map[string]any, conv ScalingConvention) (*models.SensorReading, error) {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingFieldError(missing)
	}

	var problems []string
	reading := &models.SensorReading{}

	switch conv {
	case Prescaled:
		reading.TemperatureScaled = parseScaled(raw["temperature"], "temperature", MaxTemperatureScaled, &problems)
		reading.HumidityScaled = parseScaled(raw["humidity"], "humidity", MaxHumidityScaled, &problems)
		reading.Conductivity = parseScaled(raw["ec"], "ec", MaxConductivity, &problems)
		reading.AcidityScaled = parseScaled(raw["ph"], "ph", MaxAcidityScaled, &problems)
	case HumanUnits:
		reading.TemperatureScaled = parseHuman(raw["temperature"], "temperature", -50, 100, 100, "°C", &problems)
		reading.HumidityScaled = parseHuman(raw["humidity"], "humidity", 0, 100, 100, "%", &problems)
		reading.Conductivity = parseHuman(raw["ec"], "ec", 0, 5000, 1, " µS/cm", &problems)
		reading.AcidityScaled = parseHuman(raw["ph"], "ph", 0, 14, 100, "", &problems)
	default:
		return nil, errors.NewInternalError(fmt.Sprintf("unknown scaling convention %d", conv), nil)
	}

	reading.DeviceID = asString(raw["deviceId"])
	if reading.DeviceID == "" {
		problems = append(problems, "deviceId must be a non-empty string")
	}
	reading.SensorType = asString(raw["sensorType"])
	if reading.SensorType == "" {
		problems = append(problems, "sensorType must be a non-empty string")
	}
	reading.Location = asString(raw["location"])

	if len(problems) > 0 {
		return nil, errors.NewValidationError(strings.Join(problems, ", "), nil).WithDetails(problems)
	}
	return reading, nil
}

// parseScaled validates an already-scaled integer against [0, max]
func parseScaled(v any, field string, max int64, problems *[]string) uint64 {
	n, err := toInt(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s must be an integer", field))
		return 0
	}
	if n < 0 || n > max {
		*problems = append(*problems, fmt.Sprintf("%s out of range [0, %d]", field, max))
		return 0
	}
	return uint64(n)
}

// parseHuman validates a human-unit float against [lo, hi] and scales it into
// the contract's fixed-point form. The contract argument is an unsigned
// integer, so a value that scales below zero is rejected here rather than
// wrapped.
func parseHuman(v any, field string, lo, hi float64, scale int64, unit string, problems *[]string) uint64 {
	f, err := toFloat(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s must be a number", field))
		return 0
	}
	if f < lo || f > hi {
		*problems = append(*problems, fmt.Sprintf("%s must be between %g and %g%s", field, lo, hi, unit))
		return 0
	}
	scaled := int64(math.Floor(f * float64(scale)))
	if scaled < 0 {
		*problems = append(*problems, fmt.Sprintf("%s below the contract minimum of 0%s", field, unit))
		return 0
	}
	return uint64(scaled)
}

// toFloat accepts the ways JSON clients send numbers: native numbers,
// json.Number, or numeric strings
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
