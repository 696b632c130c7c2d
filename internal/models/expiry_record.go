package models

import (
	"time"
)

// ExpiryRecord marks an auction observed past its end time while still
// unsold. Reporting only: the registry never stores expiry as a state.
type ExpiryRecord struct {
	AuctionID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Seller    string `gorm:"type:varchar(100);not null;index"`

	LastPrice uint64 `gorm:"not null"`
	EndsAt    int64  `gorm:"not null"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ExpiryRecord) TableName() string {
	return "auction_expiries"
}
