package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aucengine/internal/auction"
	"aucengine/internal/events"
	"aucengine/internal/ledger"
	"aucengine/internal/models"
	"aucengine/internal/repository"
)

// SettlementService orchestrates engine mutations with ledger movements,
// receipt persistence, and event emission. The engine commits the sale
// before any credit is attempted; a failed credit never reopens the
// auction (irreversible-close), it marks the receipt transfer_failed.
type SettlementService struct {
	Engine *auction.Registry
	Book   *ledger.Book
	Repo   repository.Repository
	Hub    *events.Hub
	Logger *zap.Logger

	// Now supplies unix seconds; settlement assumes it is non-decreasing
	// across calls. Defaults to wall clock.
	Now func() int64

	// DefaultDuration substitutes a zero create duration. Zero means the
	// engine's built-in default window.
	DefaultDuration uint64
}

type CreateParams struct {
	StartingPrice uint64 `json:"starting_price"`
	DiscountRate  uint64 `json:"discount_rate"`
	Item          string `json:"item"`
	Duration      uint64 `json:"duration"`
}

func (s *SettlementService) now() int64 {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().Unix()
}

// CreateAuction validates and appends a new auction, then mirrors it.
func (s *SettlementService) CreateAuction(ctx context.Context, seller string, params CreateParams) (auction.Auction, error) {
	duration := params.Duration
	if duration == 0 {
		duration = s.DefaultDuration
	}
	a, err := s.Engine.Create(seller, params.StartingPrice, params.DiscountRate, params.Item, duration, s.now())
	if err != nil {
		return auction.Auction{}, err
	}
	raw, _ := json.Marshal(params)
	record := recordFromAuction(a)
	record.Params = raw
	if err := s.Repo.UpsertAuctionRecord(ctx, record); err != nil && s.Logger != nil {
		s.Logger.Warn("auction mirror write failed", zap.Uint64("auction_id", a.ID), zap.Error(err))
	}
	if s.Logger != nil {
		s.Logger.Info("auction created",
			zap.Uint64("auction_id", a.ID),
			zap.String("seller", seller),
			zap.Uint64("starting_price", a.StartingPrice),
			zap.Int64("ends_at", a.EndsAt),
		)
	}
	return a, nil
}

// Buy settles a purchase: debit the buyer's offered value, commit the sale,
// then route proceeds, fee, and refund. The debit is reversed when the
// engine rejects the purchase; credits after the sale committed are not.
func (s *SettlementService) Buy(ctx context.Context, id uint64, offered uint64, buyer string) (*models.Receipt, error) {
	ref := fmt.Sprintf("auction:%d:buy", id)
	if err := s.Book.Debit(ctx, buyer, offered, ref); err != nil {
		return nil, err
	}

	settled, err := s.Engine.Buy(id, offered, buyer, s.now())
	if err != nil {
		if rerr := s.Book.Credit(ctx, buyer, offered, ledger.EntryRefund, ref+":reversal"); rerr != nil && s.Logger != nil {
			s.Logger.Error("debit reversal failed",
				zap.Uint64("auction_id", id),
				zap.String("buyer", buyer),
				zap.Error(rerr),
			)
		}
		return nil, err
	}

	transferStatus := "completed"
	failure := ""
	if err := s.Book.Credit(ctx, settled.Seller, settled.SellerProceeds, ledger.EntryCredit, ref); err != nil {
		transferStatus, failure = "transfer_failed", "seller_credit: "+err.Error()
	}
	if err := s.Book.Credit(ctx, s.Engine.Owner(), settled.Fee, ledger.EntryFee, ref); err != nil {
		transferStatus, failure = "transfer_failed", appendReason(failure, "fee_credit: "+err.Error())
	}
	if settled.Refund > 0 {
		if err := s.Book.Credit(ctx, buyer, settled.Refund, ledger.EntryRefund, ref); err != nil {
			transferStatus, failure = "transfer_failed", appendReason(failure, "refund: "+err.Error())
		}
	}

	if a, gerr := s.Engine.Get(id); gerr == nil {
		if err := s.Repo.UpsertAuctionRecord(ctx, recordFromAuction(a)); err != nil && s.Logger != nil {
			s.Logger.Warn("auction mirror write failed", zap.Uint64("auction_id", id), zap.Error(err))
		}
	}

	settledAt := time.Unix(settled.SettledAt, 0).UTC()
	receipt := &models.Receipt{
		ID:             uuid.New().String(),
		AuctionID:      settled.AuctionID,
		Item:           settled.Item,
		Seller:         settled.Seller,
		Buyer:          settled.Buyer,
		Price:          settled.Price,
		Fee:            settled.Fee,
		SellerProceeds: settled.SellerProceeds,
		Refund:         settled.Refund,
		TransferStatus: transferStatus,
		FailureReason:  failure,
		SettledAt:      settledAt,
	}
	if err := s.Repo.InsertReceipt(ctx, receipt); err != nil && s.Logger != nil {
		s.Logger.Warn("receipt write failed", zap.Uint64("auction_id", id), zap.Error(err))
	}

	if s.Hub != nil {
		s.Hub.Publish(events.AuctionClosed{
			AuctionID:  settled.AuctionID,
			Item:       settled.Item,
			FinalPrice: settled.Price,
			Buyer:      settled.Buyer,
			At:         settledAt,
		})
	}

	if s.Logger != nil {
		s.Logger.Info("auction settled",
			zap.Uint64("auction_id", settled.AuctionID),
			zap.Uint64("price", settled.Price),
			zap.Uint64("fee", settled.Fee),
			zap.Uint64("refund", settled.Refund),
			zap.String("buyer", buyer),
		)
	}

	if transferStatus != "completed" {
		return receipt, fmt.Errorf("auction %d settled but transfers incomplete: %s", id, failure)
	}
	return receipt, nil
}

// Stop closes an unsold auction administratively and mirrors the change.
func (s *SettlementService) Stop(ctx context.Context, id uint64, caller string) error {
	if err := s.Engine.Stop(id, caller); err != nil {
		return err
	}
	if a, err := s.Engine.Get(id); err == nil {
		if err := s.Repo.UpsertAuctionRecord(ctx, recordFromAuction(a)); err != nil && s.Logger != nil {
			s.Logger.Warn("auction mirror write failed", zap.Uint64("auction_id", id), zap.Error(err))
		}
	}
	if s.Logger != nil {
		s.Logger.Info("auction stopped", zap.Uint64("auction_id", id), zap.String("caller", caller))
	}
	return nil
}

// Price returns the current decayed price at service time.
func (s *SettlementService) Price(id uint64) (uint64, int64, error) {
	now := s.now()
	price, err := s.Engine.CurrentPrice(id, now)
	return price, now, err
}

// Rehydrate loads the persisted mirror back into the arena. Called once at
// boot, before the registry serves traffic.
func (s *SettlementService) Rehydrate(ctx context.Context) error {
	records, err := s.Repo.ListAllAuctionRecords(ctx)
	if err != nil {
		return err
	}
	items := make([]auction.Auction, 0, len(records))
	for _, r := range records {
		items = append(items, auctionFromRecord(r))
	}
	if err := s.Engine.Restore(items); err != nil {
		return err
	}
	if gaps := s.Engine.Len() - len(items); gaps > 0 && s.Logger != nil {
		s.Logger.Warn("arena restored with missing mirror rows closed out",
			zap.Int("gaps", gaps),
		)
	}
	return nil
}

func appendReason(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "; " + next
}
