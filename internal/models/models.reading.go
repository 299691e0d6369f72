// FilePath: internal/models/models.reading.go
package models

// SensorReading is the canonical fixed-point form of one sensor measurement.
// All four numeric fields are already scaled the way the on-chain contract
// stores them: hundredths of a unit for temperature, humidity and pH, raw
// µS/cm for conductivity.
type SensorReading struct {
	TemperatureScaled uint64 `json:"temperature"`
	HumidityScaled    uint64 `json:"humidity"`
	Conductivity      uint64 `json:"ec"`
	AcidityScaled     uint64 `json:"ph"`
	DeviceID          string `json:"deviceId"`
	SensorType        string `json:"sensorType"`
	Location          string `json:"location"`
}

// ChainReading is a reading as stored on the ledger, fetched back through the
// owned-objects query. Values stay in their scaled integer form; the
// presentation layer decides how to render them.
type ChainReading struct {
	ObjectID    string `json:"objectId"`
	Temperature uint64 `json:"temperature"`
	Humidity    uint64 `json:"humidity"`
	EC          uint64 `json:"ec"`
	PH          uint64 `json:"ph"`
	DeviceID    string `json:"deviceId"`
	SensorType  string `json:"sensorType"`
	Location    string `json:"location"`
	Timestamp   uint64 `json:"timestamp"`
}
