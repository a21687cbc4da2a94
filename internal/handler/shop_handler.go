package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/bulkedit"
	"github.com/werkyrie/shopdesk/internal/exchange"
	"github.com/werkyrie/shopdesk/internal/logger"
	"github.com/werkyrie/shopdesk/internal/metrics"
	"github.com/werkyrie/shopdesk/internal/mirror"
	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/view"
)

// ShopHandler serves the shops collection: listing through the view engine,
// CRUD, batch edits, CSV import and CSV/JSON export.
type ShopHandler struct {
	shops   *mirror.Mirror[model.Shop]
	engine  view.Engine[model.Shop]
	perPage int
}

// NewShopHandler creates a shop handler over the shops mirror.
func NewShopHandler(shops *mirror.Mirror[model.Shop], perPage int) *ShopHandler {
	return &ShopHandler{shops: shops, engine: view.Shops(), perPage: perPage}
}

// List derives the filtered, sorted, paginated shop view.
func (h *ShopHandler) List(c echo.Context) error {
	params := viewParams(c, h.perPage)
	result := h.engine.Apply(h.shops.Snapshot(), params,
		view.ShopStatusFilter(c.QueryParam("status")),
		view.ShopTagsFilter(splitList(c.QueryParam("tags"))),
	)
	return c.JSON(http.StatusOK, echo.Map{
		"shops":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"loading":     h.shops.Loading(),
		"error":       h.shops.Err(),
	})
}

type shopRequest struct {
	ShopID      string          `json:"shopId" validate:"required"`
	ClientName  string          `json:"clientName" validate:"required"`
	Status      string          `json:"status"`
	Tags        []string        `json:"tags"`
	CreditScore int             `json:"creditScore" validate:"min=0,max=100"`
	Balance     decimal.Decimal `json:"balance"`
}

// Create adds one shop. The id is assigned by the mirror.
func (h *ShopHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req shopRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse shop creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	status := model.ShopStatusActive
	if req.Status != "" {
		parsed, ok := model.ParseShopStatus(req.Status)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		status = parsed
	}

	shop := model.Shop{
		ShopID:      req.ShopID,
		ClientName:  req.ClientName,
		Status:      status,
		Tags:        model.NormalizeTags(req.Tags),
		CreditScore: model.ClampCreditScore(req.CreditScore),
		Balance:     req.Balance,
	}
	if !h.shops.Create(c.Request().Context(), shop) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}

	log.Info("Shop created", zap.String("shop_id", shop.ShopID))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Shop created successfully"})
}

// Update applies a partial edit to one shop.
func (h *ShopHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid shop ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop ID"})
	}

	var req struct {
		ShopID      *string          `json:"shopId"`
		ClientName  *string          `json:"clientName"`
		Status      *string          `json:"status"`
		Tags        *[]string        `json:"tags"`
		CreditScore *int             `json:"creditScore"`
		Balance     *decimal.Decimal `json:"balance"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse shop update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	fields := map[string]any{}
	if req.ShopID != nil {
		fields["shopId"] = *req.ShopID
	}
	if req.ClientName != nil {
		fields["clientName"] = *req.ClientName
	}
	if req.Status != nil {
		status, ok := model.ParseShopStatus(*req.Status)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		fields["status"] = string(status)
	}
	if req.Tags != nil {
		fields["tags"] = model.NormalizeTags(*req.Tags)
	}
	if req.CreditScore != nil {
		fields["creditScore"] = model.ClampCreditScore(*req.CreditScore)
	}
	if req.Balance != nil {
		fields["balance"] = *req.Balance
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	if _, ok := h.shops.Find(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
	}
	if !h.shops.Update(c.Request().Context(), id, fields) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}

	log.Info("Shop updated", zap.Int64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Shop updated successfully"})
}

// Delete removes one shop.
func (h *ShopHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid shop ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop ID"})
	}
	if _, ok := h.shops.Find(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
	}
	if !h.shops.Delete(c.Request().Context(), id) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}

	log.Info("Shop deleted", zap.Int64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Shop deleted successfully"})
}

type idsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

// BatchDelete removes every selected shop in one batch write.
func (h *ShopHandler) BatchDelete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !h.shops.DeleteMany(c.Request().Context(), req.IDs) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}
	logger.FromEcho(c).Info("Shops deleted", zap.Int("count", len(req.IDs)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Selected shops deleted successfully"})
}

// BatchStatus sets the status of every selected shop in one batch write.
func (h *ShopHandler) BatchStatus(c echo.Context) error {
	var req struct {
		IDs    []int64 `json:"ids" validate:"required,min=1"`
		Status string  `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	status, ok := model.ParseShopStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if !h.shops.SetFields(c.Request().Context(), req.IDs, map[string]any{"status": string(status)}) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}
	logger.FromEcho(c).Info("Shop status updated",
		zap.Int("count", len(req.IDs)),
		zap.String("status", string(status)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Status updated for selected shops"})
}

// BatchBalance resolves a bulk balance adjustment into final values and
// commits them as one batch write.
func (h *ShopHandler) BatchBalance(c echo.Context) error {
	var req struct {
		IDs    []int64         `json:"ids" validate:"required,min=1"`
		Action string          `json:"action" validate:"required"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	adjust, ok := bulkedit.ParseAdjustment(req.Action)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid action"})
	}

	balances := bulkedit.Balances(h.shops.Snapshot(), req.IDs, adjust, req.Amount)
	values := make(map[int64]any, len(balances))
	for id, balance := range balances {
		values[id] = balance
	}
	if !h.shops.SetFieldValues(c.Request().Context(), "balance", values) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}
	logger.FromEcho(c).Info("Shop balances updated", zap.Int("count", len(values)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Balances updated for selected shops"})
}

// BatchCreditScore resolves a bulk credit-score adjustment, clamped into
// [0, 100], and commits it as one batch write.
func (h *ShopHandler) BatchCreditScore(c echo.Context) error {
	var req struct {
		IDs    []int64 `json:"ids" validate:"required,min=1"`
		Action string  `json:"action" validate:"required"`
		Points int     `json:"points"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	adjust, ok := bulkedit.ParseAdjustment(req.Action)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid action"})
	}

	scores := bulkedit.CreditScores(h.shops.Snapshot(), req.IDs, adjust, req.Points)
	values := make(map[int64]any, len(scores))
	for id, score := range scores {
		values[id] = score
	}
	if !h.shops.SetFieldValues(c.Request().Context(), "creditScore", values) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}
	logger.FromEcho(c).Info("Shop credit scores updated", zap.Int("count", len(values)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Credit scores updated for selected shops"})
}

// BatchTags resolves a bulk tag edit into full replacement arrays and
// commits them as one batch write.
func (h *ShopHandler) BatchTags(c echo.Context) error {
	var req struct {
		IDs    []int64  `json:"ids" validate:"required,min=1"`
		Action string   `json:"action" validate:"required"`
		Tags   []string `json:"tags"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	action, ok := bulkedit.ParseTagAction(req.Action)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid action"})
	}

	tags := bulkedit.Tags(h.shops.Snapshot(), req.IDs, action, req.Tags)
	values := make(map[int64]any, len(tags))
	for id, replacement := range tags {
		values[id] = replacement
	}
	if !h.shops.SetFieldValues(c.Request().Context(), "tags", values) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
	}
	logger.FromEcho(c).Info("Shop tags updated", zap.Int("count", len(values)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Tags updated for selected shops"})
}

// Import parses an uploaded CSV and, unless dry_run=true, commits the valid
// non-duplicate rows as one batch insert. The per-row report is returned
// either way.
func (h *ShopHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)

	body, err := importBody(c)
	if err != nil {
		log.Error("Failed to read import upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read uploaded file"})
	}

	rows, err := exchange.ParseShopsCSV(bytes.NewReader(body), h.shops.Snapshot())
	if err != nil {
		log.Error("Failed to parse import CSV", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not parse CSV file"})
	}

	committable := exchange.Committable(rows)
	invalid, duplicates := 0, 0
	for _, row := range rows {
		if row.Duplicate {
			duplicates++
		} else if !row.Valid() {
			invalid++
		}
	}

	dryRun := c.QueryParam("dry_run") == "true"
	imported := 0
	if !dryRun && len(committable) > 0 {
		if !h.shops.CreateMany(c.Request().Context(), committable) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": h.shops.Err()})
		}
		imported = len(committable)
	}

	if !dryRun {
		metrics.RecordImport("imported", imported)
		metrics.RecordImport("invalid", invalid)
		metrics.RecordImport("duplicate", duplicates)
		log.Info("Shops imported",
			zap.Int("imported", imported),
			zap.Int("invalid", invalid),
			zap.Int("duplicates", duplicates))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"rows":       rows,
		"valid":      len(committable),
		"invalid":    invalid,
		"duplicates": duplicates,
		"imported":   imported,
		"dry_run":    dryRun,
	})
}

// importBody reads the CSV payload from a multipart upload or the raw body.
func importBody(c echo.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return io.ReadAll(src)
	}
	return io.ReadAll(c.Request().Body)
}

type shopExportRequest struct {
	Format  string   `json:"format" validate:"required"`
	Scope   string   `json:"scope"`
	Columns []string `json:"columns"`
	Filters struct {
		Status         string           `json:"status"`
		Tags           []string         `json:"tags"`
		CreditScoreMin *int             `json:"creditScoreMin"`
		CreditScoreMax *int             `json:"creditScoreMax"`
		BalanceMin     *decimal.Decimal `json:"balanceMin"`
		BalanceMax     *decimal.Decimal `json:"balanceMax"`
	} `json:"filters"`
	View struct {
		Search string   `json:"search"`
		Status string   `json:"status"`
		Tags   []string `json:"tags"`
	} `json:"view"`
	SelectedIDs []int64 `json:"selectedIds"`
}

// Export serializes the selected scope of shops as a CSV or JSON download.
func (h *ShopHandler) Export(c echo.Context) error {
	log := logger.FromEcho(c)

	var req shopExportRequest
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

	all := h.shops.Snapshot()
	filtered := h.engine.Apply(all, view.Params{Search: req.View.Search, PerPage: len(all) + 1},
		view.ShopStatusFilter(req.View.Status),
		view.ShopTagsFilter(req.View.Tags),
	).Filtered

	settings := exchange.ShopExportSettings{
		Format:         format,
		Scope:          scope,
		Columns:        req.Columns,
		Status:         req.Filters.Status,
		Tags:           req.Filters.Tags,
		CreditScoreMin: req.Filters.CreditScoreMin,
		CreditScoreMax: req.Filters.CreditScoreMax,
		BalanceMin:     req.Filters.BalanceMin,
		BalanceMax:     req.Filters.BalanceMax,
	}
	shops := exchange.SelectShops(all, filtered, req.SelectedIDs, settings)

	var buf bytes.Buffer
	if err := exchange.WriteShops(&buf, shops, settings); err != nil {
		log.Error("Failed to serialize export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	metrics.RecordExport(h.shops.Name(), string(format))
	log.Info("Shops exported",
		zap.Int("count", len(shops)),
		zap.String("format", string(format)))

	return sendExport(c, exchange.Filename("shops", format), format, buf.Bytes())
}

// sendExport writes the serialized export as a file download.
func sendExport(c echo.Context, filename string, format exchange.Format, payload []byte) error {
	contentType := "text/csv"
	if format == exchange.FormatJSON {
		contentType = "application/json"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, contentType, payload)
}
