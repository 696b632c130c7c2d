package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aucengine/internal/models"
	"aucengine/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(repo repository.Repository) error) error {
	if s == nil || s.db == nil {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// --- Ledger -----------------------------------------------------------------

func (s *Store) GetAccount(ctx context.Context, identity string) (*models.Account, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Account
	err := s.db.WithContext(ctx).First(&item, "identity = ?", identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpdateAccountBalance(ctx context.Context, identity string, balance uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("identity = ?", identity).
		Update("balance", balance).Error
}

func (s *Store) InsertLedgerEntry(ctx context.Context, item *models.LedgerEntry) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListLedgerEntries(ctx context.Context, identity string, limit int) ([]models.LedgerEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 200)
	var items []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Auction mirror ---------------------------------------------------------

func (s *Store) UpsertAuctionRecord(ctx context.Context, item *models.AuctionRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"final_price",
			"buyer",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetAuctionRecord(ctx context.Context, id uint64) (*models.AuctionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AuctionRecord
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) auctionQuery(ctx context.Context, params repository.ListAuctionsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AuctionRecord{})
	if params.Seller != nil && strings.TrimSpace(*params.Seller) != "" {
		query = query.Where("seller = ?", strings.TrimSpace(*params.Seller))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListAuctionRecords(ctx context.Context, params repository.ListAuctionsParams) ([]models.AuctionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.auctionQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.AuctionRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAuctionRecords(ctx context.Context, params repository.ListAuctionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.auctionQuery(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListAllAuctionRecords(ctx context.Context) ([]models.AuctionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AuctionRecord
	if err := s.db.WithContext(ctx).
		Model(&models.AuctionRecord{}).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Receipts ---------------------------------------------------------------

func (s *Store) InsertReceipt(ctx context.Context, item *models.Receipt) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) receiptQuery(ctx context.Context, params repository.ListReceiptsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Receipt{})
	if params.AuctionID != nil {
		query = query.Where("auction_id = ?", *params.AuctionID)
	}
	if params.Seller != nil && strings.TrimSpace(*params.Seller) != "" {
		query = query.Where("seller = ?", strings.TrimSpace(*params.Seller))
	}
	if params.Buyer != nil && strings.TrimSpace(*params.Buyer) != "" {
		query = query.Where("buyer = ?", strings.TrimSpace(*params.Buyer))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("settled_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListReceipts(ctx context.Context, params repository.ListReceiptsParams) ([]models.Receipt, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Receipt
	err := s.receiptQuery(ctx, params).
		Order("settled_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountReceipts(ctx context.Context, params repository.ListReceiptsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.receiptQuery(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) SumFeesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	if s == nil || s.db == nil {
		return decimal.Zero, nil
	}
	var out struct {
		Total decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Select("COALESCE(SUM(fee),0) AS total").
		Where("settled_at >= ?", since).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

// --- Expiry reporting -------------------------------------------------------

func (s *Store) UpsertExpiryRecord(ctx context.Context, item *models.ExpiryRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) ListExpiryRecords(ctx context.Context, limit, offset int) ([]models.ExpiryRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 200)
	offset = normalizeOffset(offset)
	var items []models.ExpiryRecord
	err := s.db.WithContext(ctx).
		Order("recorded_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountExpiryRecords(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ExpiryRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --- Stats ------------------------------------------------------------------

func (s *Store) InsertStatsSnapshot(ctx context.Context, item *models.StatsSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) LatestStatsSnapshot(ctx context.Context) (*models.StatsSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.StatsSnapshot
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// --- helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 2000 {
		return 2000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	switch column {
	case "id", "ends_at", "created_at", "status":
	default:
		column = fallback
	}
	dir := "desc"
	if asc != nil && *asc {
		dir = "asc"
	}
	return query.Order(column + " " + dir)
}
