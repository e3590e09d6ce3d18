package models

import (
	"encoding/json"
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Transaction is the payment record backing a shipment. The unique index
// on shipment_id enforces at most one transaction per shipment at the
// storage layer.
type Transaction struct {
	ID               int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	ShipmentID       int64                   `gorm:"column:shipment_id;not null;uniqueIndex:idx_transactions_shipment_id"`
	UserID           int64                   `gorm:"column:user_id;not null;index"`
	Amount           decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency         string                  `gorm:"column:currency;type:text;not null;default:USD"`
	PaymentMethod    enums.PaymentMethod     `gorm:"column:payment_method;type:text;not null"`
	PaymentDetails   json.RawMessage         `gorm:"column:payment_details;type:jsonb"`
	Status           enums.TransactionStatus `gorm:"column:status;type:text;not null;default:pending"`
	BlockchainTxHash *string                 `gorm:"column:blockchain_tx_hash"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
