package view

import "github.com/werkyrie/shopdesk/internal/model"

// Advance-order sort fields.
const (
	AdvanceOrderSortOrderID     = "orderId"
	AdvanceOrderSortShopID      = "shopId"
	AdvanceOrderSortRequestType = "requestType"
	AdvanceOrderSortCreatedAt   = "createdAt"
)

// AdvanceOrders returns the view engine for the advance-orders collection.
func AdvanceOrders() Engine[model.AdvanceOrder] {
	return Engine[model.AdvanceOrder]{
		DefaultSort: AdvanceOrderSortCreatedAt,
		SearchText: func(a model.AdvanceOrder) []string {
			return []string{a.OrderID, a.ShopID, a.Message}
		},
		Compare: map[string]func(a, b model.AdvanceOrder) int{
			AdvanceOrderSortOrderID: func(a, b model.AdvanceOrder) int {
				return CompareStrings(a.OrderID, b.OrderID)
			},
			AdvanceOrderSortShopID: func(a, b model.AdvanceOrder) int {
				return CompareStrings(a.ShopID, b.ShopID)
			},
			AdvanceOrderSortRequestType: func(a, b model.AdvanceOrder) int {
				return CompareStrings(string(a.RequestType), string(b.RequestType))
			},
			AdvanceOrderSortCreatedAt: func(a, b model.AdvanceOrder) int {
				return a.CreatedAt.Compare(b.CreatedAt)
			},
		},
	}
}

// RequestTypeFilter passes advance orders with exactly the given request
// type; "" and "all" pass everything.
func RequestTypeFilter(requestType string) func(model.AdvanceOrder) bool {
	return func(a model.AdvanceOrder) bool {
		if requestType == "" || requestType == FilterAll {
			return true
		}
		return string(a.RequestType) == requestType
	}
}
