package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"aucengine/internal/models"
	"aucengine/internal/repository"
)

var errStubCredit = errors.New("balance update rejected")

// stubRepo is an in-memory repository.Repository for service tests.
type stubRepo struct {
	accounts  map[string]*models.Account
	entries   []models.LedgerEntry
	auctions  map[uint64]*models.AuctionRecord
	receipts  []models.Receipt
	expiries  map[uint64]*models.ExpiryRecord
	snapshots []models.StatsSnapshot

	failCreditFor string // identity whose balance updates fail
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		accounts: map[string]*models.Account{},
		auctions: map[uint64]*models.AuctionRecord{},
		expiries: map[uint64]*models.ExpiryRecord{},
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(repo repository.Repository) error) error {
	return fn(s)
}

func (s *stubRepo) GetAccount(ctx context.Context, identity string) (*models.Account, error) {
	if a, ok := s.accounts[identity]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) CreateAccount(ctx context.Context, item *models.Account) error {
	if _, ok := s.accounts[item.Identity]; ok {
		return nil
	}
	copied := *item
	s.accounts[item.Identity] = &copied
	return nil
}

func (s *stubRepo) UpdateAccountBalance(ctx context.Context, identity string, balance uint64) error {
	if identity == s.failCreditFor {
		return errStubCredit
	}
	a, ok := s.accounts[identity]
	if !ok {
		return nil
	}
	a.Balance = balance
	return nil
}

func (s *stubRepo) InsertLedgerEntry(ctx context.Context, item *models.LedgerEntry) error {
	s.entries = append(s.entries, *item)
	return nil
}

func (s *stubRepo) ListLedgerEntries(ctx context.Context, identity string, limit int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.Identity == identity {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *stubRepo) UpsertAuctionRecord(ctx context.Context, item *models.AuctionRecord) error {
	copied := *item
	s.auctions[item.ID] = &copied
	return nil
}

func (s *stubRepo) GetAuctionRecord(ctx context.Context, id uint64) (*models.AuctionRecord, error) {
	if a, ok := s.auctions[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) ListAuctionRecords(ctx context.Context, params repository.ListAuctionsParams) ([]models.AuctionRecord, error) {
	out := make([]models.AuctionRecord, 0, len(s.auctions))
	for _, a := range s.auctions {
		if params.Seller != nil && a.Seller != *params.Seller {
			continue
		}
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountAuctionRecords(ctx context.Context, params repository.ListAuctionsParams) (int64, error) {
	items, _ := s.ListAuctionRecords(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) ListAllAuctionRecords(ctx context.Context) ([]models.AuctionRecord, error) {
	return s.ListAuctionRecords(ctx, repository.ListAuctionsParams{})
}

func (s *stubRepo) InsertReceipt(ctx context.Context, item *models.Receipt) error {
	s.receipts = append(s.receipts, *item)
	return nil
}

func (s *stubRepo) ListReceipts(ctx context.Context, params repository.ListReceiptsParams) ([]models.Receipt, error) {
	var out []models.Receipt
	for _, r := range s.receipts {
		if params.AuctionID != nil && r.AuctionID != *params.AuctionID {
			continue
		}
		if params.Seller != nil && r.Seller != *params.Seller {
			continue
		}
		if params.Buyer != nil && r.Buyer != *params.Buyer {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) CountReceipts(ctx context.Context, params repository.ListReceiptsParams) (int64, error) {
	items, _ := s.ListReceipts(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) SumFeesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range s.receipts {
		if r.SettledAt.Before(since) {
			continue
		}
		sum = sum.Add(decimal.NewFromUint64(r.Fee))
	}
	return sum, nil
}

func (s *stubRepo) UpsertExpiryRecord(ctx context.Context, item *models.ExpiryRecord) error {
	copied := *item
	s.expiries[item.AuctionID] = &copied
	return nil
}

func (s *stubRepo) ListExpiryRecords(ctx context.Context, limit, offset int) ([]models.ExpiryRecord, error) {
	out := make([]models.ExpiryRecord, 0, len(s.expiries))
	for _, e := range s.expiries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuctionID < out[j].AuctionID })
	return out, nil
}

func (s *stubRepo) CountExpiryRecords(ctx context.Context) (int64, error) {
	return int64(len(s.expiries)), nil
}

func (s *stubRepo) InsertStatsSnapshot(ctx context.Context, item *models.StatsSnapshot) error {
	s.snapshots = append(s.snapshots, *item)
	return nil
}

func (s *stubRepo) LatestStatsSnapshot(ctx context.Context) (*models.StatsSnapshot, error) {
	if len(s.snapshots) == 0 {
		return nil, nil
	}
	copied := s.snapshots[len(s.snapshots)-1]
	return &copied, nil
}

var _ repository.Repository = (*stubRepo)(nil)
