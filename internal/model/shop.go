package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShopStatus is the lifecycle state of a shop account.
type ShopStatus string

const (
	ShopStatusActive   ShopStatus = "Active"
	ShopStatusOnHold   ShopStatus = "On Hold"
	ShopStatusInactive ShopStatus = "Inactive"
)

// ShopStatuses lists every valid shop status.
var ShopStatuses = []ShopStatus{ShopStatusActive, ShopStatusOnHold, ShopStatusInactive}

// ParseShopStatus validates a status label.
func ParseShopStatus(s string) (ShopStatus, bool) {
	for _, status := range ShopStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// TagOptions is the canonical tag vocabulary. Tags are free-form labels;
// this list only seeds filter controls.
var TagOptions = []string{
	"New Shop",
	"With Loan",
	"Frozen",
	"Hold Withdrawal",
	"No Product",
	"Old Client",
	"VIP",
}

// Shop is a managed seller account mirrored from the remote store.
type Shop struct {
	ID          int64           `json:"id"`
	ShopID      string          `json:"shopId"`
	ClientName  string          `json:"clientName"`
	Status      ShopStatus      `json:"status"`
	Tags        []string        `json:"tags"`
	CreditScore int             `json:"creditScore"`
	Balance     decimal.Decimal `json:"balance"`
	Ref         Ref             `json:"-"`
}

// ClampCreditScore forces a score into the valid [0, 100] range.
func ClampCreditScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NormalizeTags trims tags, drops empties and removes duplicates while
// preserving first-occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
