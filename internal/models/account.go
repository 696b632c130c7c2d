package models

import (
	"time"
)

// Account is a ledger account, keyed by caller identity. Balances are in
// integer value units.
type Account struct {
	Identity string `gorm:"primaryKey;type:varchar(100)"`
	Balance  uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Account) TableName() string {
	return "ledger_accounts"
}
