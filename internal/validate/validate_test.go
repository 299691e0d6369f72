// FilePath: internal/validate/validate_test.go
package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/verdantlabs/chainsense/internal/errors"
)

func validPrescaled() map[string]any {
	return map[string]any{
		"temperature": json.Number("2550"),
		"humidity":    json.Number("6050"),
		"ec":          json.Number("1500"),
		"ph":          json.Number("680"),
		"deviceId":    "esp32-device",
		"sensorType":  "soil",
		"location":    "greenhouse-3",
	}
}

func TestNormalizePrescaled(t *testing.T) {
	reading, err := Normalize(validPrescaled(), Prescaled)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if reading.TemperatureScaled != 2550 {
		t.Errorf("temperature = %d, want 2550", reading.TemperatureScaled)
	}
	if reading.HumidityScaled != 6050 {
		t.Errorf("humidity = %d, want 6050", reading.HumidityScaled)
	}
	if reading.Conductivity != 1500 {
		t.Errorf("ec = %d, want 1500", reading.Conductivity)
	}
	if reading.AcidityScaled != 680 {
		t.Errorf("ph = %d, want 680", reading.AcidityScaled)
	}
	if reading.DeviceID != "esp32-device" || reading.SensorType != "soil" || reading.Location != "greenhouse-3" {
		t.Errorf("identity fields not carried through: %+v", reading)
	}
}

func TestNormalizeHumanUnitsScaling(t *testing.T) {
	raw := map[string]any{
		"temperature": "25.5",
		"humidity":    60.5,
		"ec":          json.Number("1500"),
		"ph":          6.8,
		"deviceId":    "web-client",
		"sensorType":  "hydroponic",
	}
	reading, err := Normalize(raw, HumanUnits)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if reading.TemperatureScaled != 2550 {
		t.Errorf("temperature scaled = %d, want 2550", reading.TemperatureScaled)
	}
	if reading.HumidityScaled != 6050 {
		t.Errorf("humidity scaled = %d, want 6050", reading.HumidityScaled)
	}
	if reading.Conductivity != 1500 {
		t.Errorf("ec = %d, want 1500 (x1 scale)", reading.Conductivity)
	}
	if reading.AcidityScaled != 680 {
		t.Errorf("ph scaled = %d, want 680", reading.AcidityScaled)
	}
	if reading.Location != "" {
		t.Errorf("location should default to empty, got %q", reading.Location)
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	raw := validPrescaled()
	delete(raw, "temperature")
	delete(raw, "deviceId")

	_, err := Normalize(raw, Prescaled)
	if err == nil {
		t.Fatal("expected missing-field error")
	}
	apiErr := errors.AsAPIError(err)
	if apiErr.Type != errors.ErrorTypeMissingField {
		t.Fatalf("error type = %s, want %s", apiErr.Type, errors.ErrorTypeMissingField)
	}
	if apiErr.Code != 400 {
		t.Errorf("code = %d, want 400", apiErr.Code)
	}
	fields, ok := apiErr.Details.([]string)
	if !ok {
		t.Fatalf("details = %T, want []string", apiErr.Details)
	}
	if len(fields) != 2 || fields[0] != "temperature" || fields[1] != "deviceId" {
		t.Errorf("missing fields = %v, want [temperature deviceId]", fields)
	}
}

func TestNormalizePrescaledOutOfRange(t *testing.T) {
	raw := validPrescaled()
	raw["temperature"] = json.Number("10001")

	_, err := Normalize(raw, Prescaled)
	if err == nil {
		t.Fatal("expected validation error for temperature 10001")
	}
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "temperature") {
		t.Errorf("error does not name the offending field: %v", err)
	}
}

func TestNormalizeCollectsAllProblems(t *testing.T) {
	raw := validPrescaled()
	raw["temperature"] = json.Number("20000")
	raw["ph"] = json.Number("1500")
	raw["deviceId"] = "   "

	_, err := Normalize(raw, Prescaled)
	if err == nil {
		t.Fatal("expected validation error")
	}
	apiErr := errors.AsAPIError(err)
	problems, ok := apiErr.Details.([]string)
	if !ok {
		t.Fatalf("details = %T, want []string", apiErr.Details)
	}
	if len(problems) != 3 {
		t.Errorf("problems = %v, want all 3 violations in one pass", problems)
	}
}

func TestNormalizeHumanUnitsDomain(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"temperature above range", "temperature", 150.0},
		{"temperature below range", "temperature", -51.0},
		{"humidity above range", "humidity", 101.0},
		{"ec above range", "ec", 5001.0},
		{"ph above range", "ph", 14.5},
		{"not a number", "humidity", "damp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{
				"temperature": 20.0,
				"humidity":    50.0,
				"ec":          1000.0,
				"ph":          7.0,
				"deviceId":    "d1",
				"sensorType":  "soil",
			}
			raw[tt.field] = tt.value
			_, err := Normalize(raw, HumanUnits)
			if err == nil {
				t.Fatalf("expected rejection for %s=%v", tt.field, tt.value)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error does not name %s: %v", tt.field, err)
			}
		})
	}
}

func TestNormalizeHumanNegativeScaled(t *testing.T) {
	raw := map[string]any{
		"temperature": -10.5,
		"humidity":    50.0,
		"ec":          1000.0,
		"ph":          7.0,
		"deviceId":    "d1",
		"sensorType":  "soil",
	}
	// -10.5 is inside the human domain but scales below the contract's
	// unsigned minimum, so it must be rejected rather than wrapped.
	_, err := Normalize(raw, HumanUnits)
	if err == nil {
		t.Fatal("expected rejection for negative scaled temperature")
	}
	if !strings.Contains(err.Error(), "temperature") {
		t.Errorf("error does not name temperature: %v", err)
	}
}

func TestNormalizeConventionIsExplicit(t *testing.T) {
	raw := validPrescaled()
	raw["temperature"] = "25.5"

	// A float under the prescaled convention is an error, never silently
	// reinterpreted as a human-unit value.
	_, err := Normalize(raw, Prescaled)
	if err == nil {
		t.Fatal("expected integer requirement under prescaled convention")
	}
	if !strings.Contains(err.Error(), "temperature must be an integer") {
		t.Errorf("unexpected error: %v", err)
	}
}
