package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fundcore/internal/engine"
	"fundcore/internal/logger"
	"fundcore/internal/store"
	"fundcore/internal/store/model"
)

// Router exposes the order/fund API plus the admin operations that feed the
// settlement engine (share price publication, manual sweeps).
type Router struct {
	store  store.Store
	engine *engine.Service
}

func NewRouter(st store.Store, eng *engine.Service) *Router {
	return &Router{store: st, engine: eng}
}

// Register mounts the API under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/funds", r.handleFundList)
	group.GET("/funds/:id", r.handleFundDetail)
	group.GET("/exchangeRate", r.handleExchangeRate)
	group.GET("/orders", r.handleOrderList)
	group.GET("/orders/:id", r.handleOrderDetail)
	group.POST("/orders", r.handleCreateOrder)

	group.POST("/admin/sharePrices", r.handleCreateSharePrice)
	group.POST("/admin/exchangeRates", r.handleCreateExchangeRate)
	group.POST("/admin/processOrders", r.handleProcessOrders)
}

func (r *Router) handleFundList(c *gin.Context) {
	funds, err := r.store.Funds().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list funds"})
		return
	}
	if funds == nil {
		funds = []model.FundModel{}
	}
	c.JSON(http.StatusOK, gin.H{"funds": funds, "count": len(funds)})
}

func (r *Router) handleFundDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fund id"})
		return
	}
	ctx := c.Request.Context()
	fund, err := r.store.Funds().FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load fund"})
		return
	}
	if fund == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fund not found"})
		return
	}
	prices, err := r.store.SharePrices().ListByFund(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load share prices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fund": fund, "sharePrices": prices})
}

func (r *Router) handleExchangeRate(c *gin.Context) {
	currency := strings.ToLower(strings.TrimSpace(c.Query("currency")))
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency is required"})
		return
	}
	rate, err := r.store.Rates().Latest(c.Request.Context(), currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load exchange rate"})
		return
	}
	if rate == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rate published for currency"})
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (r *Router) handleOrderList(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Query("accountId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId is required"})
		return
	}
	orders, err := r.store.Orders().ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []model.OrderModel{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (r *Router) handleOrderDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := r.store.Orders().FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrderRequest is the JSON body for POST /orders.
type CreateOrderRequest struct {
	AccountID int64           `json:"accountId"`
	FundID    int64           `json:"fundId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

func (r *Router) handleCreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := r.engine.PlaceOrder(c.Request.Context(), req.AccountID, req.FundID, req.Amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrAgreementNotSigned):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User have to sign the agreement first."})
		case errors.Is(err, engine.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User balance is not enough."})
		case errors.Is(err, engine.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Order amount must be positive."})
		default:
			// Rate lookup failures and storage errors are internal.
			logger.Errorf("placing order failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// CreateSharePriceRequest simulates a new share price publication. This is
// the external admin trigger the settlement engine waits on.
type CreateSharePriceRequest struct {
	FundID int64           `json:"fundId"`
	Value  decimal.Decimal `json:"value"`
}

func (r *Router) handleCreateSharePrice(c *gin.Context) {
	var req CreateSharePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !req.Value.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "share price value must be positive"})
		return
	}
	price := &model.SharePriceModel{
		FundID:      req.FundID,
		Value:       req.Value,
		EffectiveAt: timeNow(),
	}
	if err := r.store.SharePrices().Insert(c.Request.Context(), price); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to insert share price"})
		return
	}
	c.JSON(http.StatusCreated, price)
}

// CreateExchangeRateRequest publishes a new USD→currency rate.
type CreateExchangeRateRequest struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

func (r *Router) handleCreateExchangeRate(c *gin.Context) {
	var req CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" || !req.Rate.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency and a positive rate are required"})
		return
	}
	rate := &model.ExchangeRateModel{
		Currency:    currency,
		Rate:        req.Rate,
		PublishedAt: timeNow(),
	}
	if err := r.store.Rates().Insert(c.Request.Context(), rate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to insert exchange rate"})
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// ProcessOrdersRequest triggers a settlement sweep on demand.
type ProcessOrdersRequest struct {
	Limit int `json:"limit"`
}

func (r *Router) handleProcessOrders(c *gin.Context) {
	var req ProcessOrdersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	ids, err := r.engine.SettleDueOrders(c.Request.Context(), req.Limit)
	if err != nil {
		logger.Errorf("settlement sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement sweep failed"})
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Done processing! Notifications will be sent by another system.",
		"processedOrderIds": ids,
	})
}
