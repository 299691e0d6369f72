// FilePath: internal/models/models.submission.go
package models

import "time"

// Submission is one confirmed ledger write, archived for dashboard queries
type Submission struct {
	ID          string    `json:"id" db:"id"`
	Digest      string    `json:"digest" db:"digest"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	SensorType  string    `json:"sensor_type" db:"sensor_type"`
	Temperature uint64    `json:"temperature" db:"temperature"`
	Humidity    uint64    `json:"humidity" db:"humidity"`
	EC          uint64    `json:"ec" db:"ec"`
	PH          uint64    `json:"ph" db:"ph"`
	Location    string    `json:"location" db:"location"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
