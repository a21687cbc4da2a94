package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/exchange"
	"github.com/werkyrie/shopdesk/internal/logger"
	"github.com/werkyrie/shopdesk/internal/metrics"
	"github.com/werkyrie/shopdesk/internal/mirror"
	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/view"
)

// OrderHandler serves the orders collection. Orders are immutable after
// creation: there is no update route. The shops mirror is consulted to
// denormalize the client name at order time.
type OrderHandler struct {
	orders  *mirror.Mirror[model.Order]
	shops   *mirror.Mirror[model.Shop]
	engine  view.Engine[model.Order]
	perPage int
}

// NewOrderHandler creates an order handler over the orders and shops mirrors.
func NewOrderHandler(orders *mirror.Mirror[model.Order], shops *mirror.Mirror[model.Shop], perPage int) *OrderHandler {
	return &OrderHandler{orders: orders, shops: shops, engine: view.Orders(), perPage: perPage}
}

// List derives the filtered, sorted, paginated order view.
func (h *OrderHandler) List(c echo.Context) error {
	params := viewParams(c, h.perPage)
	result := h.engine.Apply(h.orders.Snapshot(), params,
		view.OrderLocationFilter(c.QueryParam("location")),
	)
	return c.JSON(http.StatusOK, echo.Map{
		"orders":      result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"loading":     h.orders.Loading(),
		"error":       h.orders.Err(),
	})
}

type orderRequest struct {
	ShopID     string          `json:"shopId" validate:"required"`
	ClientName string          `json:"clientName"`
	Amount     decimal.Decimal `json:"amount"`
	Location   string          `json:"location" validate:"required"`
}

// record builds the order, resolving the client name from the shops mirror
// when the caller did not supply one. The shop reference stays soft: an
// unknown shop code is accepted with an empty client name.
func (h *OrderHandler) record(req orderRequest) model.Order {
	clientName := req.ClientName
	if clientName == "" {
		for _, shop := range h.shops.Snapshot() {
			if shop.ShopID == req.ShopID {
				clientName = shop.ClientName
				break
			}
		}
	}
	return model.Order{
		ShopID:     req.ShopID,
		ClientName: clientName,
		Amount:     req.Amount,
		Location:   req.Location,
		CreatedAt:  time.Now().UTC(),
	}
}

// Create adds one order.
func (h *OrderHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse order creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if !h.orders.Create(c.Request().Context(), h.record(req)) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.orders.Err()})
	}

	log.Info("Order created", zap.String("shop_id", req.ShopID))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Order created successfully"})
}

// CreateBulk adds several orders as one atomic batch.
func (h *OrderHandler) CreateBulk(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Orders []orderRequest `json:"orders" validate:"required,min=1,dive"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse bulk order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	orders := make([]model.Order, 0, len(req.Orders))
	for _, row := range req.Orders {
		orders = append(orders, h.record(row))
	}
	if !h.orders.CreateMany(c.Request().Context(), orders) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.orders.Err()})
	}

	log.Info("Bulk orders created", zap.Int("count", len(orders)))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Orders created successfully",
		"count":   len(orders),
	})
}

// Delete removes one order.
func (h *OrderHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid order ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order ID"})
	}
	if _, ok := h.orders.Find(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	if !h.orders.Delete(c.Request().Context(), id) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.orders.Err()})
	}

	log.Info("Order deleted", zap.Int64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Order deleted successfully"})
}

// BatchDelete removes every selected order in one batch write.
func (h *OrderHandler) BatchDelete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !h.orders.DeleteMany(c.Request().Context(), req.IDs) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.orders.Err()})
	}
	logger.FromEcho(c).Info("Orders deleted", zap.Int("count", len(req.IDs)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Selected orders deleted successfully"})
}

type orderExportRequest struct {
	Format  string   `json:"format" validate:"required"`
	Scope   string   `json:"scope"`
	Columns []string `json:"columns"`
	Filters struct {
		Location  string           `json:"location"`
		DateFrom  *time.Time       `json:"dateFrom"`
		DateTo    *time.Time       `json:"dateTo"`
		AmountMin *decimal.Decimal `json:"amountMin"`
		AmountMax *decimal.Decimal `json:"amountMax"`
	} `json:"filters"`
	View struct {
		Search   string `json:"search"`
		Location string `json:"location"`
	} `json:"view"`
	SelectedIDs []int64 `json:"selectedIds"`
}

// Export serializes the selected scope of orders as a CSV or JSON download.
func (h *OrderHandler) Export(c echo.Context) error {
	log := logger.FromEcho(c)

	var req orderExportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse export request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	format, ok := exchange.ParseFormat(req.Format)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid format"})
	}
	scope := exchange.ScopeAll
	if req.Scope != "" {
		scope, ok = exchange.ParseScope(req.Scope)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scope"})
		}
	}

	all := h.orders.Snapshot()
	filtered := h.engine.Apply(all, view.Params{Search: req.View.Search, PerPage: len(all) + 1},
		view.OrderLocationFilter(req.View.Location),
	).Filtered

	settings := exchange.OrderExportSettings{
		Format:    format,
		Scope:     scope,
		Columns:   req.Columns,
		Location:  req.Filters.Location,
		DateFrom:  req.Filters.DateFrom,
		DateTo:    req.Filters.DateTo,
		AmountMin: req.Filters.AmountMin,
		AmountMax: req.Filters.AmountMax,
	}
	orders := exchange.SelectOrders(all, filtered, req.SelectedIDs, settings)

	var buf bytes.Buffer
	if err := exchange.WriteOrders(&buf, orders, settings); err != nil {
		log.Error("Failed to serialize export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	metrics.RecordExport(h.orders.Name(), string(format))
	log.Info("Orders exported",
		zap.Int("count", len(orders)),
		zap.String("format", string(format)))

	return sendExport(c, exchange.Filename("orders", format), format, buf.Bytes())
}
