// Package bulkedit resolves bulk adjustments across selected shops into the
// final per-record values a batch write commits. Resolution is client-side
// arithmetic; the mirror commits the result as one atomic batch.
package bulkedit

import (
	"github.com/shopspring/decimal"

	"github.com/werkyrie/shopdesk/internal/model"
)

// Adjustment is how a bulk numeric edit combines with the current value.
type Adjustment string

const (
	AdjustAdd      Adjustment = "add"
	AdjustSubtract Adjustment = "subtract"
	AdjustSet      Adjustment = "set"
)

// ParseAdjustment validates an adjustment label.
func ParseAdjustment(s string) (Adjustment, bool) {
	switch Adjustment(s) {
	case AdjustAdd, AdjustSubtract, AdjustSet:
		return Adjustment(s), true
	}
	return "", false
}

// TagAction is how a bulk tag edit combines with a shop's current tags.
type TagAction string

const (
	TagAdd     TagAction = "add"
	TagRemove  TagAction = "remove"
	TagReplace TagAction = "replace"
)

// ParseTagAction validates a tag action label.
func ParseTagAction(s string) (TagAction, bool) {
	switch TagAction(s) {
	case TagAdd, TagRemove, TagReplace:
		return TagAction(s), true
	}
	return "", false
}

// Balances computes the new balance for every selected shop. Ids that do
// not resolve to a shop are skipped.
func Balances(shops []model.Shop, ids []int64, adjust Adjustment, amount decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(ids))
	for _, shop := range selected(shops, ids) {
		switch adjust {
		case AdjustAdd:
			out[shop.ID] = shop.Balance.Add(amount)
		case AdjustSubtract:
			out[shop.ID] = shop.Balance.Sub(amount)
		case AdjustSet:
			out[shop.ID] = amount
		}
	}
	return out
}

// CreditScores computes the new credit score for every selected shop. Every
// result is clamped into [0, 100] regardless of the input or delta.
func CreditScores(shops []model.Shop, ids []int64, adjust Adjustment, points int) map[int64]int {
	out := make(map[int64]int, len(ids))
	for _, shop := range selected(shops, ids) {
		var score int
		switch adjust {
		case AdjustAdd:
			score = shop.CreditScore + points
		case AdjustSubtract:
			score = shop.CreditScore - points
		case AdjustSet:
			score = points
		}
		out[shop.ID] = model.ClampCreditScore(score)
	}
	return out
}

// Tags computes the full replacement tag array for every selected shop.
func Tags(shops []model.Shop, ids []int64, action TagAction, tags []string) map[int64][]string {
	tags = model.NormalizeTags(tags)
	out := make(map[int64][]string, len(ids))
	for _, shop := range selected(shops, ids) {
		switch action {
		case TagAdd:
			out[shop.ID] = model.NormalizeTags(append(append([]string{}, shop.Tags...), tags...))
		case TagRemove:
			kept := make([]string, 0, len(shop.Tags))
			for _, have := range shop.Tags {
				if !contains(tags, have) {
					kept = append(kept, have)
				}
			}
			out[shop.ID] = kept
		case TagReplace:
			out[shop.ID] = append([]string{}, tags...)
		}
	}
	return out
}

func selected(shops []model.Shop, ids []int64) []model.Shop {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.Shop, 0, len(ids))
	for _, shop := range shops {
		if _, ok := want[shop.ID]; ok {
			out = append(out, shop)
		}
	}
	return out
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
