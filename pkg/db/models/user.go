package models

import (
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
)

// User represents the canonical identity entity. Wallet address is
// optional and only set for accounts created through a wallet login.
type User struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Username      string         `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email         string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	Role          enums.UserRole `gorm:"column:role;type:text;not null;default:user"`
	WalletAddress *string        `gorm:"column:wallet_address;uniqueIndex"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
