// Package exchange moves shop and order records across the file boundary:
// CSV import with per-row validation, CSV and JSON export with scope
// selection and column projection.
package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/werkyrie/shopdesk/internal/model"
)

// ErrEmptyFile is returned when an uploaded CSV contains no rows at all.
var ErrEmptyFile = errors.New("csv file is empty")

// ParsedShop is one candidate record parsed from an import row.
type ParsedShop struct {
	Shop      model.Shop `json:"shop"`
	Line      int        `json:"line"`
	Errors    []string   `json:"errors,omitempty"`
	Duplicate bool       `json:"duplicate"`
}

// Valid reports whether the row can be committed.
func (p ParsedShop) Valid() bool {
	return len(p.Errors) == 0
}

// Recognized header synonyms per shop field. Headers are matched after
// lower-casing and trimming.
var shopHeaderFields = map[string]string{
	"shopid":       "shopId",
	"shop_id":      "shopId",
	"shop id":      "shopId",
	"client":       "clientName",
	"clientname":   "clientName",
	"client_name":  "clientName",
	"client name":  "clientName",
	"status":       "status",
	"tags":         "tags",
	"creditscore":  "creditScore",
	"credit_score": "creditScore",
	"credit score": "creditScore",
	"balance":      "balance",
}

// ParseShopsCSV parses an uploaded CSV into candidate shops. Line 1 is the
// header row. Rows missing required fields carry per-row errors; rows whose
// shop code matches an existing shop are flagged as duplicates. Neither
// condition aborts the parse.
func ParseShopsCSV(r io.Reader, existing []model.Shop) ([]ParsedShop, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	codes := make(map[string]struct{}, len(existing))
	for _, shop := range existing {
		codes[shop.ShopID] = struct{}{}
	}

	parsed := make([]ParsedShop, 0, len(records)-1)
	for i, record := range records[1:] {
		if blankRow(record) {
			continue
		}
		row := ParsedShop{
			Line: i + 2, // 1-based, after the header
			Shop: model.Shop{
				Status:  model.ShopStatusActive,
				Tags:    []string{},
				Balance: decimal.Zero,
			},
		}

		for col, header := range headers {
			value := ""
			if col < len(record) {
				value = strings.TrimSpace(record[col])
			}
			applyShopField(&row.Shop, shopHeaderFields[header], value)
		}

		if row.Shop.ShopID == "" {
			row.Errors = append(row.Errors, "Shop ID is required")
		}
		if row.Shop.ClientName == "" {
			row.Errors = append(row.Errors, "Client name is required")
		}
		if row.Shop.ShopID != "" {
			if _, ok := codes[row.Shop.ShopID]; ok {
				row.Duplicate = true
				row.Errors = append(row.Errors, "Shop ID already exists")
			}
		}

		parsed = append(parsed, row)
	}
	return parsed, nil
}

// applyShopField sets one recognized field, falling back to the defaults
// already present on the shop when the value does not parse or is out of
// range.
func applyShopField(shop *model.Shop, field, value string) {
	switch field {
	case "shopId":
		shop.ShopID = value
	case "clientName":
		shop.ClientName = value
	case "status":
		if status, ok := model.ParseShopStatus(value); ok {
			shop.Status = status
		}
	case "tags":
		if value != "" {
			shop.Tags = model.NormalizeTags(strings.Split(value, ";"))
		}
	case "creditScore":
		if score, err := strconv.Atoi(value); err == nil && score >= 0 && score <= 100 {
			shop.CreditScore = score
		}
	case "balance":
		if balance, err := decimal.NewFromString(value); err == nil {
			shop.Balance = balance
		}
	}
}

// Committable returns the shops from valid, non-duplicate rows.
func Committable(rows []ParsedShop) []model.Shop {
	out := make([]model.Shop, 0, len(rows))
	for _, row := range rows {
		if row.Valid() && !row.Duplicate {
			out = append(out, row.Shop)
		}
	}
	return out
}

func blankRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
