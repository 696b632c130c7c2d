package db

import (
	"aucengine/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.AuctionRecord{},
		&models.Receipt{},
		&models.ExpiryRecord{},
		&models.StatsSnapshot{},
	)
}
