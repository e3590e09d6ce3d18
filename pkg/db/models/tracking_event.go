package models

import (
	"encoding/json"
	"time"
)

// TrackingEvent records an immutable checkpoint in a shipment's journey.
// Rows are append-only; nothing updates or deletes them.
type TrackingEvent struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ShipmentID int64           `gorm:"column:shipment_id;not null;index"`
	EventType  string          `gorm:"column:event_type;type:text;not null"`
	Location   string          `gorm:"column:location;type:text;not null"`
	Latitude   float64         `gorm:"column:latitude;not null;default:0"`
	Longitude  float64         `gorm:"column:longitude;not null;default:0"`
	Status     string          `gorm:"column:status;type:text;not null"`
	Message    string          `gorm:"column:message;type:text"`
	Details    json.RawMessage `gorm:"column:details;type:jsonb"`
	Timestamp  time.Time       `gorm:"column:timestamp;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
