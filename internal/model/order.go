package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a transactional request mirrored from the remote store. Orders
// are immutable after creation. The shop reference is soft: an order may
// carry a shop code that no longer resolves, and views must tolerate that.
type Order struct {
	ID         int64           `json:"id"`
	ShopID     string          `json:"shopId"`
	ClientName string          `json:"clientName"`
	Amount     decimal.Decimal `json:"amount"`
	Location   string          `json:"location"`
	CreatedAt  time.Time       `json:"createdAt"`
	Ref        Ref             `json:"-"`
}

// LocationOptions lists the countries an order can be placed from.
var LocationOptions = []string{
	"Albania",
	"Argentina",
	"Australia",
	"Canada",
	"France",
	"Germany",
	"Italy",
	"Japan",
	"Malaysia",
	"Netherlands",
	"Philippines",
	"Russia",
	"Singapore",
	"South Korea",
	"Spain",
	"Switzerland",
	"Thailand",
	"Turkey",
	"United Arab Emirates",
	"United Kingdom",
	"United States",
	"Vietnam",
	"China",
}
