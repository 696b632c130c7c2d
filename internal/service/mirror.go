package service

import (
	"aucengine/internal/auction"
	"aucengine/internal/models"
)

func recordFromAuction(a auction.Auction) *models.AuctionRecord {
	return &models.AuctionRecord{
		ID:            a.ID,
		Seller:        a.Seller,
		StartingPrice: a.StartingPrice,
		DiscountRate:  a.DiscountRate,
		Item:          a.Item,
		StartAt:       a.StartAt,
		EndsAt:        a.EndsAt,
		Status:        string(a.Status),
		FinalPrice:    a.FinalPrice,
		Buyer:         a.Buyer,
	}
}

func auctionFromRecord(r models.AuctionRecord) auction.Auction {
	return auction.Auction{
		ID:            r.ID,
		Seller:        r.Seller,
		StartingPrice: r.StartingPrice,
		DiscountRate:  r.DiscountRate,
		Item:          r.Item,
		StartAt:       r.StartAt,
		EndsAt:        r.EndsAt,
		Status:        auction.Status(r.Status),
		FinalPrice:    r.FinalPrice,
		Buyer:         r.Buyer,
	}
}
