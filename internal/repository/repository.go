package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"aucengine/internal/models"
)

type ListAuctionsParams struct {
	Limit   int
	Offset  int
	Seller  *string
	Status  *string
	OrderBy string
	Asc     *bool
}

type ListReceiptsParams struct {
	Limit     int
	Offset    int
	AuctionID *uint64
	Seller    *string
	Buyer     *string
	Since     *time.Time
}

// Repository persists the auction mirror, the ledger, receipts, and
// reporting aggregates.
type Repository interface {
	// InTx runs fn against a transaction-scoped repository; writes made
	// through it commit or roll back together.
	InTx(ctx context.Context, fn func(repo Repository) error) error

	// Ledger accounts.
	GetAccount(ctx context.Context, identity string) (*models.Account, error)
	CreateAccount(ctx context.Context, item *models.Account) error
	UpdateAccountBalance(ctx context.Context, identity string, balance uint64) error
	InsertLedgerEntry(ctx context.Context, item *models.LedgerEntry) error
	ListLedgerEntries(ctx context.Context, identity string, limit int) ([]models.LedgerEntry, error)

	// Auction mirror.
	UpsertAuctionRecord(ctx context.Context, item *models.AuctionRecord) error
	GetAuctionRecord(ctx context.Context, id uint64) (*models.AuctionRecord, error)
	ListAuctionRecords(ctx context.Context, params ListAuctionsParams) ([]models.AuctionRecord, error)
	CountAuctionRecords(ctx context.Context, params ListAuctionsParams) (int64, error)
	ListAllAuctionRecords(ctx context.Context) ([]models.AuctionRecord, error)

	// Receipts.
	InsertReceipt(ctx context.Context, item *models.Receipt) error
	ListReceipts(ctx context.Context, params ListReceiptsParams) ([]models.Receipt, error)
	CountReceipts(ctx context.Context, params ListReceiptsParams) (int64, error)
	SumFeesSince(ctx context.Context, since time.Time) (decimal.Decimal, error)

	// Expiry reporting.
	UpsertExpiryRecord(ctx context.Context, item *models.ExpiryRecord) error
	ListExpiryRecords(ctx context.Context, limit, offset int) ([]models.ExpiryRecord, error)
	CountExpiryRecords(ctx context.Context) (int64, error)

	// Stats.
	InsertStatsSnapshot(ctx context.Context, item *models.StatsSnapshot) error
	LatestStatsSnapshot(ctx context.Context) (*models.StatsSnapshot, error)
}
