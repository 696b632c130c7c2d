package models

import (
	"time"
)

// LedgerEntry is one balance movement. Amount is signed: negative for
// debits, positive for credits.
type LedgerEntry struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Identity string `gorm:"type:varchar(100);not null;index"`

	EntryType    string `gorm:"type:varchar(20);not null;index"`
	Amount       int64  `gorm:"not null"`
	BalanceAfter uint64 `gorm:"not null"`
	Reference    string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
