package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Auction Settlement Service

Declining-price auctions with ledger-backed settlement.

## Auth

All /api/* routes need a caller identity: either a Bearer token or the
X-Auc-Identity header. Health endpoints and the event stream are public.

## Routes

- GET  /healthz
- GET  /readyz
- GET  /swagger/index.html
- POST /api/v1/auctions
- GET  /api/v1/auctions
- GET  /api/v1/auctions/:id
- GET  /api/v1/auctions/:id/price
- POST /api/v1/auctions/:id/buy
- POST /api/v1/auctions/:id/stop
- GET  /api/v1/owner
- GET  /api/v1/accounts/:identity
- GET  /api/v1/accounts/:identity/entries
- POST /api/v1/accounts/deposit
- POST /api/v1/accounts/withdraw
- GET  /api/v1/receipts
- GET  /api/v1/expiries
- GET  /api/v1/stats
- GET  /ws/events

## Settlement

A buy debits the offered value from the buyer's account, closes the
auction at the decayed price, then credits the seller (price minus fee),
the operator (fee), and refunds any overpayment to the buyer.
`)
	})
}
