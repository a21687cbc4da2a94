package exchange

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werkyrie/shopdesk/internal/model"
)

func exportShops() []model.Shop {
	return []model.Shop{
		{ID: 1, ShopID: "SH001", ClientName: "Acme Trading", Status: model.ShopStatusActive,
			Tags: []string{"VIP", "With Loan"}, CreditScore: 85, Balance: decimal.RequireFromString("1200.50")},
		{ID: 2, ShopID: "SH002", ClientName: "Beta, Inc.", Status: model.ShopStatusOnHold,
			Tags: []string{"VIP"}, CreditScore: 60, Balance: decimal.NewFromInt(300)},
		{ID: 3, ShopID: "SH003", ClientName: "Gamma Retail", Status: model.ShopStatusActive,
			Tags: []string{}, CreditScore: 40, Balance: decimal.NewFromInt(-20)},
	}
}

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSelectShopsScopes(t *testing.T) {
	all := exportShops()
	filtered := all[:1]

	out := SelectShops(all, filtered, nil, ShopExportSettings{Scope: ScopeAll})
	assert.Len(t, out, 3)

	out = SelectShops(all, filtered, nil, ShopExportSettings{Scope: ScopeFiltered})
	assert.Len(t, out, 1)

	out = SelectShops(all, filtered, []int64{2, 3}, ShopExportSettings{Scope: ScopeSelected})
	require.Len(t, out, 2)
	assert.Equal(t, "SH002", out[0].ShopID)
	assert.Equal(t, "SH003", out[1].ShopID)
}

func TestSelectShopsTagFilterRequiresEveryTag(t *testing.T) {
	out := SelectShops(exportShops(), nil, nil, ShopExportSettings{
		Scope: ScopeAll,
		Tags:  []string{"VIP", "With Loan"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "SH001", out[0].ShopID)
}

func TestSelectShopsRanges(t *testing.T) {
	out := SelectShops(exportShops(), nil, nil, ShopExportSettings{
		Scope:          ScopeAll,
		CreditScoreMin: intPtr(50),
		CreditScoreMax: intPtr(80),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "SH002", out[0].ShopID)

	out = SelectShops(exportShops(), nil, nil, ShopExportSettings{
		Scope:      ScopeAll,
		BalanceMin: decPtr("0"),
	})
	assert.Len(t, out, 2)
}

func TestSelectShopsStatusFilter(t *testing.T) {
	out := SelectShops(exportShops(), nil, nil, ShopExportSettings{
		Scope:  ScopeAll,
		Status: string(model.ShopStatusOnHold),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "SH002", out[0].ShopID)

	out = SelectShops(exportShops(), nil, nil, ShopExportSettings{Scope: ScopeAll, Status: "all"})
	assert.Len(t, out, 3)
}

func TestWriteShopsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteShops(&buf, exportShops()[:2], ShopExportSettings{Format: FormatCSV})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Shop ID,Client Name,Status,Tags,Credit Score,Balance", lines[0])
	assert.Equal(t, "SH001,Acme Trading,Active,VIP; With Loan,85,1200.5", lines[1])
	// Comma in the client name forces quoting.
	assert.Equal(t, `SH002,"Beta, Inc.",On Hold,VIP,60,300`, lines[2])
}

func TestWriteShopsCSVColumnSubset(t *testing.T) {
	var buf bytes.Buffer
	err := WriteShops(&buf, exportShops()[:1], ShopExportSettings{
		Format:  FormatCSV,
		Columns: []string{"clientName", "balance", "bogus"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Client Name,Balance", lines[0])
	assert.Equal(t, "Acme Trading,1200.5", lines[1])
}

func TestWriteShopsJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteShops(&buf, exportShops()[:1], ShopExportSettings{
		Format:  FormatJSON,
		Columns: []string{"shopId", "tags", "creditScore"},
	})
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "SH001", rows[0]["shopId"])
	assert.Equal(t, []any{"VIP", "With Loan"}, rows[0]["tags"])
	assert.Equal(t, float64(85), rows[0]["creditScore"])
}

func exportOrders() []model.Order {
	return []model.Order{
		{ID: 1, ShopID: "SH001", ClientName: "Acme Trading", Amount: decimal.NewFromInt(100),
			Location: "Japan", CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 2, ShopID: "SH002", ClientName: "Beta Goods", Amount: decimal.NewFromInt(500),
			Location: "Canada", CreatedAt: time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)},
		{ID: 3, ShopID: "SH001", ClientName: "Acme Trading", Amount: decimal.NewFromInt(50),
			Location: "Japan", CreatedAt: time.Date(2025, 4, 2, 18, 45, 0, 0, time.UTC)},
	}
}

func TestSelectOrdersFilters(t *testing.T) {
	out := SelectOrders(exportOrders(), nil, nil, OrderExportSettings{
		Scope:    ScopeAll,
		Location: "Japan",
	})
	assert.Len(t, out, 2)

	out = SelectOrders(exportOrders(), nil, nil, OrderExportSettings{
		Scope:    ScopeAll,
		DateFrom: timePtr(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		DateTo:   timePtr(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)),
	})
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)

	out = SelectOrders(exportOrders(), nil, nil, OrderExportSettings{
		Scope:     ScopeAll,
		AmountMin: decPtr("60"),
		AmountMax: decPtr("200"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestWriteOrdersCSVDateFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOrders(&buf, exportOrders()[:1], OrderExportSettings{Format: FormatCSV})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Order ID,Shop ID,Client Name,Amount,Location,Date", lines[0])
	assert.Equal(t, "1,SH001,Acme Trading,100,Japan,2025-03-01 10:00:00", lines[1])
}

func TestParseFormatScope(t *testing.T) {
	_, ok := ParseFormat("xlsx")
	assert.False(t, ok)
	f, ok := ParseFormat("json")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)

	_, ok = ParseScope("page")
	assert.False(t, ok)
	s, ok := ParseScope("selected")
	assert.True(t, ok)
	assert.Equal(t, ScopeSelected, s)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "shops.csv", Filename("shops", FormatCSV))
	assert.Equal(t, "orders.json", Filename("orders", FormatJSON))
}
