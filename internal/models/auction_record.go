package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuctionRecord is the persisted mirror of an arena auction. The in-memory
// registry stays authoritative; rows exist for querying, reporting, and
// rehydration at boot. Ids are engine-assigned from 0, never generated here.
type AuctionRecord struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement:false"`
	Seller string `gorm:"type:varchar(100);not null;index"`

	StartingPrice uint64 `gorm:"not null"`
	DiscountRate  uint64 `gorm:"not null"`
	Item          string `gorm:"type:text;not null"`

	StartAt int64 `gorm:"not null"`
	EndsAt  int64 `gorm:"not null;index"`

	Status     string `gorm:"type:varchar(20);not null;index"`
	FinalPrice uint64 `gorm:"not null;default:0"`
	Buyer      string `gorm:"type:varchar(100)"`

	Params datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AuctionRecord) TableName() string {
	return "auctions"
}
