package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"aucengine/internal/auction"
	"aucengine/internal/models"
	"aucengine/internal/repository"
)

// StatsService aggregates registry state into periodic snapshots: sale and
// fee volume, average discount taken at sale, and sell-through rate.
type StatsService struct {
	Engine *auction.Registry
	Repo   repository.Repository
	Logger *zap.Logger

	Now func() int64
}

func (s *StatsService) now() int64 {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().Unix()
}

// Compute builds a snapshot without persisting it.
func (s *StatsService) Compute() *models.StatsSnapshot {
	now := s.now()
	var active, sold, stopped, expired int64
	saleVolume := decimal.Zero
	feeVolume := decimal.Zero
	discountSum := decimal.Zero
	feeRate := decimal.NewFromUint64(s.Engine.FeeRatePercent())

	for _, a := range s.Engine.Snapshot() {
		switch a.Status {
		case auction.StatusSold:
			sold++
			price := decimal.NewFromUint64(a.FinalPrice)
			start := decimal.NewFromUint64(a.StartingPrice)
			saleVolume = saleVolume.Add(price)
			feeVolume = feeVolume.Add(price.Mul(feeRate).Div(decimal.NewFromInt(100)).Floor())
			if start.IsPositive() {
				discountSum = discountSum.Add(
					start.Sub(price).Div(start).Mul(decimal.NewFromInt(100)),
				)
			}
		case auction.StatusStopped:
			stopped++
		default:
			if now >= a.EndsAt {
				expired++
			} else {
				active++
			}
		}
	}

	snapshot := &models.StatsSnapshot{
		ActiveCount:    active,
		SoldCount:      sold,
		StoppedCount:   stopped,
		ExpiredCount:   expired,
		SaleVolume:     saleVolume,
		FeeVolume:      feeVolume,
		AvgDiscountPct: decimal.Zero,
		SellThroughPct: decimal.Zero,
	}
	if sold > 0 {
		snapshot.AvgDiscountPct = discountSum.Div(decimal.NewFromInt(sold)).Round(4)
	}
	closed := sold + stopped + expired
	if closed > 0 {
		snapshot.SellThroughPct = decimal.NewFromInt(sold).
			Div(decimal.NewFromInt(closed)).
			Mul(decimal.NewFromInt(100)).
			Round(4)
	}
	return snapshot
}

// Refresh persists a fresh snapshot.
func (s *StatsService) Refresh(ctx context.Context) error {
	if s == nil || s.Engine == nil || s.Repo == nil {
		return nil
	}
	snapshot := s.Compute()
	if err := s.Repo.InsertStatsSnapshot(ctx, snapshot); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("stats snapshot",
			zap.Int64("active", snapshot.ActiveCount),
			zap.Int64("sold", snapshot.SoldCount),
			zap.String("fee_volume", snapshot.FeeVolume.String()),
			zap.String("sell_through_pct", snapshot.SellThroughPct.String()),
		)
	}
	return nil
}

// Latest returns the most recent persisted snapshot, or a freshly computed
// one when none exists yet.
func (s *StatsService) Latest(ctx context.Context) (*models.StatsSnapshot, error) {
	item, err := s.Repo.LatestStatsSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return s.Compute(), nil
	}
	return item, nil
}
