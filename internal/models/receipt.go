package models

import (
	"time"
)

// Receipt is the durable record of one settled purchase, including the fee
// split and any overpayment refund. TransferStatus is "completed" unless a
// ledger credit failed after the sale committed, in which case the receipt
// keeps the sale and records "transfer_failed" for reconciliation.
type Receipt struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	AuctionID uint64 `gorm:"not null;index"`

	Item   string `gorm:"type:text;not null"`
	Seller string `gorm:"type:varchar(100);not null;index"`
	Buyer  string `gorm:"type:varchar(100);not null;index"`

	Price          uint64 `gorm:"not null"`
	Fee            uint64 `gorm:"not null"`
	SellerProceeds uint64 `gorm:"not null"`
	Refund         uint64 `gorm:"not null;default:0"`

	TransferStatus string `gorm:"type:varchar(20);not null;default:'completed';index"`
	FailureReason  string `gorm:"type:text"`

	SettledAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Receipt) TableName() string {
	return "receipts"
}
