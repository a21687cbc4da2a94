package view

import "github.com/werkyrie/shopdesk/internal/model"

// Shop sort fields.
const (
	ShopSortClientName  = "clientName"
	ShopSortCreditScore = "creditScore"
	ShopSortBalance     = "balance"
)

// Shops returns the view engine for the shops collection.
func Shops() Engine[model.Shop] {
	return Engine[model.Shop]{
		DefaultSort: ShopSortClientName,
		SearchText: func(s model.Shop) []string {
			return append([]string{s.ShopID, s.ClientName}, s.Tags...)
		},
		Compare: map[string]func(a, b model.Shop) int{
			ShopSortClientName: func(a, b model.Shop) int {
				return CompareStrings(a.ClientName, b.ClientName)
			},
			ShopSortCreditScore: func(a, b model.Shop) int {
				return a.CreditScore - b.CreditScore
			},
			ShopSortBalance: func(a, b model.Shop) int {
				return a.Balance.Cmp(b.Balance)
			},
		},
	}
}

// ShopStatusFilter passes shops with exactly the given status; "" and "all"
// pass everything.
func ShopStatusFilter(status string) func(model.Shop) bool {
	return func(s model.Shop) bool {
		if status == "" || status == FilterAll {
			return true
		}
		return string(s.Status) == status
	}
}

// ShopTagsFilter passes shops carrying at least one of the given tags. An
// empty selection passes everything.
func ShopTagsFilter(tags []string) func(model.Shop) bool {
	return func(s model.Shop) bool {
		if len(tags) == 0 {
			return true
		}
		for _, want := range tags {
			for _, have := range s.Tags {
				if have == want {
					return true
				}
			}
		}
		return false
	}
}
