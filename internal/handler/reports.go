package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aucengine/internal/repository"
	"aucengine/internal/service"
)

type ReportHandler struct {
	Repo  repository.Repository
	Stats *service.StatsService
}

func (h *ReportHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/receipts", h.receipts)
	r.GET("/api/v1/expiries", h.expiries)
	r.GET("/api/v1/stats", h.stats)
}

// @Summary List settlement receipts
// @Tags reports
// @Produce json
// @Param auction_id query int false "filter by auction"
// @Param buyer query string false "filter by buyer"
// @Param seller query string false "filter by seller"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/receipts [get]
func (h *ReportHandler) receipts(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	var auctionID *uint64
	if v := strings.TrimSpace(c.Query("auction_id")); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			auctionID = &id
		}
	}
	var seller *string
	if v := strings.TrimSpace(c.Query("seller")); v != "" {
		seller = &v
	}
	var buyer *string
	if v := strings.TrimSpace(c.Query("buyer")); v != "" {
		buyer = &v
	}
	var since *time.Time
	if v := strings.TrimSpace(c.Query("since")); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			utc := ts.UTC()
			since = &utc
		}
	}
	params := repository.ListReceiptsParams{
		Limit:     limit,
		Offset:    offset,
		AuctionID: auctionID,
		Seller:    seller,
		Buyer:     buyer,
		Since:     since,
	}
	items, err := h.Repo.ListReceipts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountReceipts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary List auctions that lapsed unsold
// @Tags reports
// @Produce json
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/expiries [get]
func (h *ReportHandler) expiries(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListExpiryRecords(c.Request.Context(), limit, offset)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountExpiryRecords(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Aggregate auction statistics
// @Tags reports
// @Produce json
// @Success 200 {object} models.StatsSnapshot
// @Router /api/v1/stats [get]
func (h *ReportHandler) stats(c *gin.Context) {
	if h.Stats == nil {
		Error(c, http.StatusInternalServerError, "stats unavailable", nil)
		return
	}
	snap, err := h.Stats.Latest(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, snap, nil)
}
