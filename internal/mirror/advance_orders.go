package mirror

import (
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

// NewAdvanceOrders creates the advance-orders mirror.
func NewAdvanceOrders(st store.Store, log *zap.Logger) *Mirror[model.AdvanceOrder] {
	return New(st.Collection(CollectionAdvanceOrders), Codec[model.AdvanceOrder]{
		Singular: "advance order",
		Plural:   "advance orders",
		Decode:   decodeAdvanceOrder,
		Encode:   encodeAdvanceOrder,
		ID:       func(a model.AdvanceOrder) int64 { return a.ID },
		Ref:      func(a model.AdvanceOrder) model.Ref { return a.Ref },
		WithID: func(a model.AdvanceOrder, id int64) model.AdvanceOrder {
			a.ID = id
			return a
		},
	}, log)
}

func decodeAdvanceOrder(doc store.Document) model.AdvanceOrder {
	f := doc.Fields
	requestType, ok := model.ParseRequestType(model.CoerceString(f["requestType"]))
	if !ok {
		requestType = model.RequestTypeSystemMessage
	}
	return model.AdvanceOrder{
		ID:          model.CoerceInt64(f["id"]),
		OrderID:     model.CoerceString(f["orderId"]),
		ShopID:      model.CoerceString(f["shopId"]),
		RequestType: requestType,
		Message:     model.CoerceString(f["message"]),
		CreatedAt:   model.CoerceTime(f["createdAt"]),
		Ref:         model.SyncedRef(doc.Handle),
	}
}

func encodeAdvanceOrder(a model.AdvanceOrder) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"orderId":     a.OrderID,
		"shopId":      a.ShopID,
		"requestType": string(a.RequestType),
		"message":     a.Message,
		"createdAt":   a.CreatedAt,
	}
}
