package exchange

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werkyrie/shopdesk/internal/model"
)

func TestParseShopsCSVFullRow(t *testing.T) {
	csv := "Shop ID,Client Name,Status,Tags,Credit Score,Balance\n" +
		"SH001,Acme Trading,On Hold,VIP;With Loan,88,1250.75\n"

	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.True(t, row.Valid())
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "SH001", row.Shop.ShopID)
	assert.Equal(t, "Acme Trading", row.Shop.ClientName)
	assert.Equal(t, model.ShopStatusOnHold, row.Shop.Status)
	assert.Equal(t, []string{"VIP", "With Loan"}, row.Shop.Tags)
	assert.Equal(t, 88, row.Shop.CreditScore)
	assert.True(t, row.Shop.Balance.Equal(decimal.RequireFromString("1250.75")))
}

func TestParseShopsCSVHeaderSynonyms(t *testing.T) {
	variants := []string{
		"shopid,clientname\nSH001,Acme\n",
		"shop_id,client_name\nSH001,Acme\n",
		"Shop ID , Client Name\nSH001,Acme\n",
		"SHOPID,CLIENT\nSH001,Acme\n",
	}
	for _, csv := range variants {
		rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "SH001", rows[0].Shop.ShopID)
		assert.Equal(t, "Acme", rows[0].Shop.ClientName)
	}
}

func TestParseShopsCSVDefaults(t *testing.T) {
	csv := "shopId,clientName\nSH001,Acme\n"
	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)

	shop := rows[0].Shop
	assert.Equal(t, model.ShopStatusActive, shop.Status)
	assert.Equal(t, []string{}, shop.Tags)
	assert.Equal(t, 0, shop.CreditScore)
	assert.True(t, shop.Balance.IsZero())
}

func TestParseShopsCSVInvalidValuesFallBack(t *testing.T) {
	csv := "shopId,clientName,status,creditScore,balance\n" +
		"SH001,Acme,Dormant,250,not-a-number\n"
	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)

	shop := rows[0].Shop
	assert.True(t, rows[0].Valid())
	assert.Equal(t, model.ShopStatusActive, shop.Status)
	assert.Equal(t, 0, shop.CreditScore)
	assert.True(t, shop.Balance.IsZero())
}

func TestParseShopsCSVMissingRequiredFields(t *testing.T) {
	csv := "shopId,clientName\n,Acme\nSH002,\n"
	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.False(t, rows[0].Valid())
	assert.Contains(t, rows[0].Errors, "Shop ID is required")

	assert.False(t, rows[1].Valid())
	assert.Contains(t, rows[1].Errors, "Client name is required")
}

func TestParseShopsCSVDuplicateDetection(t *testing.T) {
	existing := []model.Shop{{ID: 1, ShopID: "SH001"}}
	csv := "shopId,clientName\nSH001,Acme\nSH002,Beta\n"

	rows, err := ParseShopsCSV(strings.NewReader(csv), existing)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Duplicate)
	assert.Contains(t, rows[0].Errors, "Shop ID already exists")
	assert.False(t, rows[1].Duplicate)

	committable := Committable(rows)
	require.Len(t, committable, 1)
	assert.Equal(t, "SH002", committable[0].ShopID)
}

func TestParseShopsCSVSkipsBlankRows(t *testing.T) {
	csv := "shopId,clientName\nSH001,Acme\n,,\n  , \nSH002,Beta\n"
	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 5, rows[1].Line)
}

func TestParseShopsCSVShortRows(t *testing.T) {
	// A data row with fewer cells than the header must not fail.
	csv := "shopId,clientName,balance\nSH001,Acme\n"
	rows, err := ParseShopsCSV(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Valid())
	assert.True(t, rows[0].Shop.Balance.IsZero())
}

func TestParseShopsCSVEmptyFile(t *testing.T) {
	_, err := ParseShopsCSV(strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseShopsCSVHeaderOnly(t *testing.T) {
	rows, err := ParseShopsCSV(strings.NewReader("shopId,clientName\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCommittableExcludesInvalidAndDuplicate(t *testing.T) {
	rows := []ParsedShop{
		{Shop: model.Shop{ShopID: "SH001"}},
		{Shop: model.Shop{ShopID: "SH002"}, Errors: []string{"Client name is required"}},
		{Shop: model.Shop{ShopID: "SH003"}, Duplicate: true, Errors: []string{"Shop ID already exists"}},
	}
	out := Committable(rows)
	require.Len(t, out, 1)
	assert.Equal(t, "SH001", out[0].ShopID)
}
