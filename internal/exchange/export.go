package exchange

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/werkyrie/shopdesk/internal/model"
)

// Format selects the export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format label.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), true
	}
	return "", false
}

// Scope selects which records an export covers.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFiltered Scope = "filtered"
	ScopeSelected Scope = "selected"
)

// ParseScope validates a scope label.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeAll, ScopeFiltered, ScopeSelected:
		return Scope(s), true
	}
	return "", false
}

// Column pairs an export column key with its human-facing CSV header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ShopColumns lists the exportable shop columns.
var ShopColumns = []Column{
	{Key: "shopId", Label: "Shop ID"},
	{Key: "clientName", Label: "Client Name"},
	{Key: "status", Label: "Status"},
	{Key: "tags", Label: "Tags"},
	{Key: "creditScore", Label: "Credit Score"},
	{Key: "balance", Label: "Balance"},
}

// OrderColumns lists the exportable order columns.
var OrderColumns = []Column{
	{Key: "id", Label: "Order ID"},
	{Key: "shopId", Label: "Shop ID"},
	{Key: "clientName", Label: "Client Name"},
	{Key: "amount", Label: "Amount"},
	{Key: "location", Label: "Location"},
	{Key: "createdAt", Label: "Date"},
}

const exportTimeLayout = "2006-01-02 15:04:05"

// ShopExportSettings selects and filters shops for export. Nil range bounds
// are unbounded; tag filtering here requires every selected tag (unlike the
// table view, which passes on any).
type ShopExportSettings struct {
	Format         Format
	Scope          Scope
	Columns        []string
	Status         string
	Tags           []string
	CreditScoreMin *int
	CreditScoreMax *int
	BalanceMin     *decimal.Decimal
	BalanceMax     *decimal.Decimal
}

// SelectShops resolves the export scope and applies the export filters.
func SelectShops(all, filtered []model.Shop, selectedIDs []int64, s ShopExportSettings) []model.Shop {
	scoped := scopeShops(all, filtered, selectedIDs, s.Scope)
	out := make([]model.Shop, 0, len(scoped))
	for _, shop := range scoped {
		if s.Status != "" && s.Status != "all" && string(shop.Status) != s.Status {
			continue
		}
		if !hasAllTags(shop.Tags, s.Tags) {
			continue
		}
		if s.CreditScoreMin != nil && shop.CreditScore < *s.CreditScoreMin {
			continue
		}
		if s.CreditScoreMax != nil && shop.CreditScore > *s.CreditScoreMax {
			continue
		}
		if s.BalanceMin != nil && shop.Balance.LessThan(*s.BalanceMin) {
			continue
		}
		if s.BalanceMax != nil && shop.Balance.GreaterThan(*s.BalanceMax) {
			continue
		}
		out = append(out, shop)
	}
	return out
}

// WriteShops serializes shops in the requested format, projecting to the
// given column keys. Unknown keys are ignored; an empty list exports every
// column.
func WriteShops(w io.Writer, shops []model.Shop, s ShopExportSettings) error {
	columns := selectColumns(ShopColumns, s.Columns)
	rows := make([]map[string]any, 0, len(shops))
	for _, shop := range shops {
		row := make(map[string]any, len(columns))
		for _, col := range columns {
			row[col.Key] = shopValue(shop, col.Key)
		}
		rows = append(rows, row)
	}
	return writeRows(w, s.Format, columns, rows)
}

func shopValue(shop model.Shop, key string) any {
	switch key {
	case "id":
		return shop.ID
	case "shopId":
		return shop.ShopID
	case "clientName":
		return shop.ClientName
	case "status":
		return string(shop.Status)
	case "tags":
		return append([]string{}, shop.Tags...)
	case "creditScore":
		return shop.CreditScore
	case "balance":
		return shop.Balance
	}
	return nil
}

// OrderExportSettings selects and filters orders for export.
type OrderExportSettings struct {
	Format    Format
	Scope     Scope
	Columns   []string
	Location  string
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
}

// SelectOrders resolves the export scope and applies the export filters.
func SelectOrders(all, filtered []model.Order, selectedIDs []int64, s OrderExportSettings) []model.Order {
	scoped := scopeOrders(all, filtered, selectedIDs, s.Scope)
	out := make([]model.Order, 0, len(scoped))
	for _, order := range scoped {
		if s.Location != "" && s.Location != "all" && order.Location != s.Location {
			continue
		}
		if s.DateFrom != nil && order.CreatedAt.Before(*s.DateFrom) {
			continue
		}
		if s.DateTo != nil && order.CreatedAt.After(*s.DateTo) {
			continue
		}
		if s.AmountMin != nil && order.Amount.LessThan(*s.AmountMin) {
			continue
		}
		if s.AmountMax != nil && order.Amount.GreaterThan(*s.AmountMax) {
			continue
		}
		out = append(out, order)
	}
	return out
}

// WriteOrders serializes orders in the requested format.
func WriteOrders(w io.Writer, orders []model.Order, s OrderExportSettings) error {
	columns := selectColumns(OrderColumns, s.Columns)
	rows := make([]map[string]any, 0, len(orders))
	for _, order := range orders {
		row := make(map[string]any, len(columns))
		for _, col := range columns {
			row[col.Key] = orderValue(order, col.Key)
		}
		rows = append(rows, row)
	}
	return writeRows(w, s.Format, columns, rows)
}

func orderValue(order model.Order, key string) any {
	switch key {
	case "id":
		return order.ID
	case "shopId":
		return order.ShopID
	case "clientName":
		return order.ClientName
	case "amount":
		return order.Amount
	case "location":
		return order.Location
	case "createdAt":
		return order.CreatedAt.Format(exportTimeLayout)
	}
	return nil
}

// Filename builds the download filename for an export.
func Filename(base string, f Format) string {
	return base + "." + string(f)
}

func scopeShops(all, filtered []model.Shop, selectedIDs []int64, scope Scope) []model.Shop {
	switch scope {
	case ScopeFiltered:
		return filtered
	case ScopeSelected:
		want := idSet(selectedIDs)
		out := make([]model.Shop, 0, len(selectedIDs))
		for _, shop := range all {
			if _, ok := want[shop.ID]; ok {
				out = append(out, shop)
			}
		}
		return out
	}
	return all
}

func scopeOrders(all, filtered []model.Order, selectedIDs []int64, scope Scope) []model.Order {
	switch scope {
	case ScopeFiltered:
		return filtered
	case ScopeSelected:
		want := idSet(selectedIDs)
		out := make([]model.Order, 0, len(selectedIDs))
		for _, order := range all {
			if _, ok := want[order.ID]; ok {
				out = append(out, order)
			}
		}
		return out
	}
	return all
}

func idSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func hasAllTags(have, want []string) bool {
	for _, tag := range want {
		found := false
		for _, h := range have {
			if h == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func selectColumns(available []Column, keys []string) []Column {
	if len(keys) == 0 {
		return available
	}
	out := make([]Column, 0, len(keys))
	for _, key := range keys {
		for _, col := range available {
			if col.Key == key {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

// writeRows serializes projected rows as CSV (labeled headers, array values
// joined with "; ", quoting left to the encoder) or an indented JSON array.
func writeRows(w io.Writer, format Format, columns []Column, rows []map[string]any) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	cw := csv.NewWriter(w)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Label
	}
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cellString(row[col.Key])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "; ")
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case decimal.Decimal:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
