package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatsSnapshot is a periodic aggregate over the registry and receipts.
type StatsSnapshot struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	ActiveCount  int64 `gorm:"not null"`
	SoldCount    int64 `gorm:"not null"`
	StoppedCount int64 `gorm:"not null"`
	ExpiredCount int64 `gorm:"not null"`

	SaleVolume decimal.Decimal `gorm:"type:numeric(30,0);not null;default:0"`
	FeeVolume  decimal.Decimal `gorm:"type:numeric(30,0);not null;default:0"`

	// Average discount taken at sale, percent of starting price.
	AvgDiscountPct decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	// Sold share of all closed-or-expired auctions, percent.
	SellThroughPct decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (StatsSnapshot) TableName() string {
	return "stats_snapshots"
}
