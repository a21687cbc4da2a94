package view

import "github.com/werkyrie/shopdesk/internal/model"

// Order sort fields.
const (
	OrderSortClientName = "clientName"
	OrderSortAmount     = "amount"
	OrderSortCreatedAt  = "createdAt"
)

// Orders returns the view engine for the orders collection.
func Orders() Engine[model.Order] {
	return Engine[model.Order]{
		DefaultSort: OrderSortCreatedAt,
		SearchText: func(o model.Order) []string {
			return []string{o.ShopID, o.ClientName, o.Location}
		},
		Compare: map[string]func(a, b model.Order) int{
			OrderSortClientName: func(a, b model.Order) int {
				return CompareStrings(a.ClientName, b.ClientName)
			},
			OrderSortAmount: func(a, b model.Order) int {
				return a.Amount.Cmp(b.Amount)
			},
			OrderSortCreatedAt: func(a, b model.Order) int {
				return a.CreatedAt.Compare(b.CreatedAt)
			},
		},
	}
}

// OrderLocationFilter passes orders from exactly the given location; "" and
// "all" pass everything.
func OrderLocationFilter(location string) func(model.Order) bool {
	return func(o model.Order) bool {
		if location == "" || location == FilterAll {
			return true
		}
		return o.Location == location
	}
}
