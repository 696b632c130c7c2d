package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"aucengine/internal/auction"
	"aucengine/internal/auth"
	"aucengine/internal/ledger"
	"aucengine/internal/repository"
	"aucengine/internal/service"
)

type AuctionHandler struct {
	Service *service.SettlementService
	Repo    repository.Repository
}

func (h *AuctionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/auctions")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.GET("/:id/price", h.price)
	group.POST("/:id/buy", h.buy)
	group.POST("/:id/stop", h.stop)

	r.GET("/api/v1/owner", h.owner)
}

// @Summary Create a declining-price auction
// @Tags auctions
// @Accept json
// @Produce json
// @Param request body service.CreateParams true "auction parameters"
// @Success 200 {object} auction.Auction
// @Router /api/v1/auctions [post]
func (h *AuctionHandler) create(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req service.CreateParams
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Item = strings.TrimSpace(req.Item)
	if req.Item == "" {
		Error(c, http.StatusBadRequest, "item required", nil)
		return
	}
	seller := auth.Identity(c)
	if seller == "" {
		Error(c, http.StatusUnauthorized, "missing caller identity", nil)
		return
	}
	a, err := h.Service.CreateAuction(c.Request.Context(), seller, req)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, a, nil)
}

// @Summary List auctions
// @Tags auctions
// @Produce json
// @Param status query string false "active|sold|stopped"
// @Param seller query string false "filter by seller"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/auctions [get]
func (h *AuctionHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	var seller *string
	if v := strings.TrimSpace(c.Query("seller")); v != "" {
		seller = &v
	}
	var status *string
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status = &v
	}
	params := repository.ListAuctionsParams{
		Limit:   limit,
		Offset:  offset,
		Seller:  seller,
		Status:  status,
		OrderBy: "id",
		Asc:     boolPtr(true),
	}
	items, err := h.Repo.ListAuctionRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountAuctionRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get one auction
// @Tags auctions
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} auction.Auction
// @Router /api/v1/auctions/{id} [get]
func (h *AuctionHandler) get(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	a, err := h.Service.Engine.Get(id)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, a, nil)
}

// @Summary Current decayed price
// @Tags auctions
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} map[string]any
// @Router /api/v1/auctions/{id}/price [get]
func (h *AuctionHandler) price(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	price, at, err := h.Service.Price(id)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{"auction_id": id, "price": price, "at": at}, nil)
}

type buyRequest struct {
	Value uint64 `json:"offered_value"`
}

// @Summary Buy at the current price
// @Tags auctions
// @Accept json
// @Produce json
// @Param id path int true "auction id"
// @Param request body buyRequest true "offered value"
// @Success 200 {object} models.Receipt
// @Router /api/v1/auctions/{id}/buy [post]
func (h *AuctionHandler) buy(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	buyer := auth.Identity(c)
	if buyer == "" {
		Error(c, http.StatusUnauthorized, "missing caller identity", nil)
		return
	}
	receipt, err := h.Service.Buy(c.Request.Context(), id, req.Value, buyer)
	if err != nil {
		if receipt != nil {
			// Sale committed but a payout leg failed; surface the receipt.
			Ok(c, receipt, map[string]any{"warning": err.Error()})
			return
		}
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, receipt, nil)
}

// @Summary Stop an unsold auction
// @Tags auctions
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} map[string]any
// @Router /api/v1/auctions/{id}/stop [post]
func (h *AuctionHandler) stop(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	caller := auth.Identity(c)
	if caller == "" {
		Error(c, http.StatusUnauthorized, "missing caller identity", nil)
		return
	}
	if err := h.Service.Stop(c.Request.Context(), id, caller); err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{"auction_id": id, "status": auction.StatusStopped}, nil)
}

// @Summary Operator identity and fee rate
// @Tags auctions
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/owner [get]
func (h *AuctionHandler) owner(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	Ok(c, gin.H{
		"owner":            h.Service.Engine.Owner(),
		"fee_rate_percent": h.Service.Engine.FeeRatePercent(),
	}, nil)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, auction.ErrStopped), errors.Is(err, auction.ErrExpired):
		return http.StatusConflict
	case errors.Is(err, auction.ErrInvalidPricing):
		return http.StatusBadRequest
	case errors.Is(err, auction.ErrInsufficientValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func uint64Param(c *gin.Context, key string) (uint64, bool) {
	val := strings.TrimSpace(c.Param(key))
	if val == "" {
		return 0, false
	}
	out, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return out, true
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolPtr(v bool) *bool { return &v }

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}
