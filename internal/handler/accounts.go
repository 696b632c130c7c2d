package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aucengine/internal/auth"
	"aucengine/internal/ledger"
)

type AccountHandler struct {
	Book *ledger.Book
}

func (h *AccountHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/accounts")
	group.GET("/:identity", h.get)
	group.GET("/:identity/entries", h.entries)
	group.POST("/deposit", h.deposit)
	group.POST("/withdraw", h.withdraw)
}

// @Summary Account balance
// @Tags accounts
// @Produce json
// @Param identity path string true "account identity"
// @Success 200 {object} map[string]any
// @Router /api/v1/accounts/{identity} [get]
func (h *AccountHandler) get(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	identity := strings.TrimSpace(c.Param("identity"))
	if identity == "" {
		Error(c, http.StatusBadRequest, "identity required", nil)
		return
	}
	balance, err := h.Book.Balance(c.Request.Context(), identity)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"identity": identity, "balance": balance}, nil)
}

// @Summary Recent ledger entries for an account
// @Tags accounts
// @Produce json
// @Param identity path string true "account identity"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/accounts/{identity}/entries [get]
func (h *AccountHandler) entries(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	identity := strings.TrimSpace(c.Param("identity"))
	if identity == "" {
		Error(c, http.StatusBadRequest, "identity required", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	items, err := h.Book.Entries(c.Request.Context(), identity, limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type fundsRequest struct {
	Amount uint64 `json:"amount"`
}

// @Summary Deposit funds into the caller's account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body fundsRequest true "amount"
// @Success 200 {object} map[string]any
// @Router /api/v1/accounts/deposit [post]
func (h *AccountHandler) deposit(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == 0 {
		Error(c, http.StatusBadRequest, "positive amount required", nil)
		return
	}
	identity := auth.Identity(c)
	if identity == "" {
		Error(c, http.StatusUnauthorized, "missing caller identity", nil)
		return
	}
	if err := h.Book.Deposit(c.Request.Context(), identity, req.Amount, "deposit"); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	balance, err := h.Book.Balance(c.Request.Context(), identity)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"identity": identity, "balance": balance}, nil)
}

// @Summary Withdraw funds from the caller's account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body fundsRequest true "amount"
// @Success 200 {object} map[string]any
// @Router /api/v1/accounts/withdraw [post]
func (h *AccountHandler) withdraw(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == 0 {
		Error(c, http.StatusBadRequest, "positive amount required", nil)
		return
	}
	identity := auth.Identity(c)
	if identity == "" {
		Error(c, http.StatusUnauthorized, "missing caller identity", nil)
		return
	}
	if err := h.Book.Withdraw(c.Request.Context(), identity, req.Amount, "withdraw"); err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	balance, err := h.Book.Balance(c.Request.Context(), identity)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"identity": identity, "balance": balance}, nil)
}
