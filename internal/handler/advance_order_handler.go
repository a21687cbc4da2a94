package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/logger"
	"github.com/werkyrie/shopdesk/internal/mirror"
	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/view"
)

// AdvanceOrderHandler serves the advance-orders collection: created, viewed,
// deleted; never mutated.
type AdvanceOrderHandler struct {
	advanceOrders *mirror.Mirror[model.AdvanceOrder]
	engine        view.Engine[model.AdvanceOrder]
	perPage       int
}

// NewAdvanceOrderHandler creates a handler over the advance-orders mirror.
func NewAdvanceOrderHandler(advanceOrders *mirror.Mirror[model.AdvanceOrder], perPage int) *AdvanceOrderHandler {
	return &AdvanceOrderHandler{
		advanceOrders: advanceOrders,
		engine:        view.AdvanceOrders(),
		perPage:       perPage,
	}
}

// List derives the filtered, sorted, paginated advance-order view.
func (h *AdvanceOrderHandler) List(c echo.Context) error {
	params := viewParams(c, h.perPage)
	result := h.engine.Apply(h.advanceOrders.Snapshot(), params,
		view.RequestTypeFilter(c.QueryParam("request_type")),
	)
	return c.JSON(http.StatusOK, echo.Map{
		"advance_orders": result.Items,
		"total":          result.Total,
		"total_pages":    result.TotalPages,
		"page":           result.Page,
		"loading":        h.advanceOrders.Loading(),
		"error":          h.advanceOrders.Err(),
	})
}

// Create adds one advance order.
func (h *AdvanceOrderHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		OrderID     string `json:"orderId" validate:"required"`
		ShopID      string `json:"shopId" validate:"required"`
		RequestType string `json:"requestType"`
		Message     string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse advance order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	requestType := model.RequestTypeSystemMessage
	if req.RequestType != "" {
		parsed, ok := model.ParseRequestType(req.RequestType)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request type"})
		}
		requestType = parsed
	}

	advanceOrder := model.AdvanceOrder{
		OrderID:     req.OrderID,
		ShopID:      req.ShopID,
		RequestType: requestType,
		Message:     req.Message,
		CreatedAt:   time.Now().UTC(),
	}
	if !h.advanceOrders.Create(c.Request().Context(), advanceOrder) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.advanceOrders.Err()})
	}

	log.Info("Advance order created",
		zap.String("order_id", req.OrderID),
		zap.String("shop_id", req.ShopID))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Advance order created successfully"})
}

// Delete removes one advance order.
func (h *AdvanceOrderHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid advance order ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid advance order ID"})
	}
	if _, ok := h.advanceOrders.Find(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "advance order not found"})
	}
	if !h.advanceOrders.Delete(c.Request().Context(), id) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.advanceOrders.Err()})
	}

	log.Info("Advance order deleted", zap.Int64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Advance order deleted successfully"})
}

// BatchDelete removes every selected advance order in one batch write.
func (h *AdvanceOrderHandler) BatchDelete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !h.advanceOrders.DeleteMany(c.Request().Context(), req.IDs) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.advanceOrders.Err()})
	}
	logger.FromEcho(c).Info("Advance orders deleted", zap.Int("count", len(req.IDs)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Selected advance orders deleted successfully"})
}
