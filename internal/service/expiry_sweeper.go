package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aucengine/internal/auction"
	"aucengine/internal/models"
	"aucengine/internal/repository"
)

// ExpirySweeper records auctions observed past their end time while still
// unsold. Reporting only: expiry is a call-time condition and the sweeper
// never mutates registry state.
type ExpirySweeper struct {
	Engine *auction.Registry
	Repo   repository.Repository
	Logger *zap.Logger

	Now func() int64
}

func (s *ExpirySweeper) now() int64 {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().Unix()
}

func (s *ExpirySweeper) RunOnce(ctx context.Context) error {
	if s == nil || s.Engine == nil || s.Repo == nil {
		return nil
	}
	now := s.now()
	recorded := 0
	for _, a := range s.Engine.Snapshot() {
		if a.Closed() || now < a.EndsAt {
			continue
		}
		err := s.Repo.UpsertExpiryRecord(ctx, &models.ExpiryRecord{
			AuctionID:  a.ID,
			Seller:     a.Seller,
			LastPrice:  auction.PriceAt(a, now),
			EndsAt:     a.EndsAt,
			RecordedAt: time.Unix(now, 0).UTC(),
		})
		if err != nil {
			return err
		}
		recorded++
	}
	if recorded > 0 && s.Logger != nil {
		s.Logger.Info("expiry sweep recorded", zap.Int("auctions", recorded))
	}
	return nil
}
