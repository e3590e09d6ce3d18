package models

import (
	"encoding/json"
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
)

// Shipment is a booking of a logistics space by a shipper. Status only
// ever moves forward through the lifecycle.
type Shipment struct {
	ID                 int64                `gorm:"column:id;primaryKey;autoIncrement"`
	LogisticsSpaceID   int64                `gorm:"column:logistics_space_id;not null;index"`
	UserID             int64                `gorm:"column:user_id;not null;index"`
	GoodsType          string               `gorm:"column:goods_type;type:text;not null"`
	Weight             float64              `gorm:"column:weight;not null"`
	Length             float64              `gorm:"column:length;not null"`
	Width              float64              `gorm:"column:width;not null"`
	Height             float64              `gorm:"column:height;not null"`
	Status             enums.ShipmentStatus `gorm:"column:status;type:text;not null;default:pending"`
	AdditionalServices json.RawMessage      `gorm:"column:additional_services;type:jsonb"`
	TransactionID      *int64               `gorm:"column:transaction_id"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
