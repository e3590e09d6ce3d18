package models

import (
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// LogisticsSpace is a transport capacity listing offered by a logistics
// provider. TokenID is the mocked on-chain identifier minted at listing
// time and never changes afterwards.
type LogisticsSpace struct {
	ID            int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64             `gorm:"column:user_id;not null;index"`
	TokenID       string            `gorm:"column:token_id;type:text;not null;uniqueIndex"`
	Source        string            `gorm:"column:source;type:text;not null"`
	Destination   string            `gorm:"column:destination;type:text;not null"`
	Length        float64           `gorm:"column:length;not null"`
	Width         float64           `gorm:"column:width;not null"`
	Height        float64           `gorm:"column:height;not null"`
	MaxWeight     float64           `gorm:"column:max_weight;not null"`
	VehicleType   string            `gorm:"column:vehicle_type;type:text;not null"`
	Status        enums.SpaceStatus `gorm:"column:status;type:text;not null;default:available"`
	DepartureDate time.Time         `gorm:"column:departure_date;not null"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
