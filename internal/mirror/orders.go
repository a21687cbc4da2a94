package mirror

import (
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

// NewOrders creates the orders mirror.
func NewOrders(st store.Store, log *zap.Logger) *Mirror[model.Order] {
	return New(st.Collection(CollectionOrders), Codec[model.Order]{
		Singular: "order",
		Plural:   "orders",
		Decode:   decodeOrder,
		Encode:   encodeOrder,
		ID:       func(o model.Order) int64 { return o.ID },
		Ref:      func(o model.Order) model.Ref { return o.Ref },
		WithID: func(o model.Order, id int64) model.Order {
			o.ID = id
			return o
		},
	}, log)
}

func decodeOrder(doc store.Document) model.Order {
	f := doc.Fields
	return model.Order{
		ID:         model.CoerceInt64(f["id"]),
		ShopID:     model.CoerceString(f["shopId"]),
		ClientName: model.CoerceString(f["clientName"]),
		Amount:     model.CoerceDecimal(f["amount"]),
		Location:   model.CoerceString(f["location"]),
		CreatedAt:  model.CoerceTime(f["createdAt"]),
		Ref:        model.SyncedRef(doc.Handle),
	}
}

func encodeOrder(o model.Order) map[string]any {
	return map[string]any{
		"id":         o.ID,
		"shopId":     o.ShopID,
		"clientName": o.ClientName,
		"amount":     o.Amount,
		"location":   o.Location,
		"createdAt":  o.CreatedAt,
	}
}
