package mirror

import (
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

// Collection names in the remote store.
const (
	CollectionShops         = "shops"
	CollectionOrders        = "orders"
	CollectionAdvanceOrders = "advance_orders"
)

// NewShops creates the shops mirror.
func NewShops(st store.Store, log *zap.Logger) *Mirror[model.Shop] {
	return New(st.Collection(CollectionShops), Codec[model.Shop]{
		Singular: "shop",
		Plural:   "shops",
		Decode:   decodeShop,
		Encode:   encodeShop,
		ID:       func(s model.Shop) int64 { return s.ID },
		Ref:      func(s model.Shop) model.Ref { return s.Ref },
		WithID: func(s model.Shop, id int64) model.Shop {
			s.ID = id
			return s
		},
	}, log)
}

func decodeShop(doc store.Document) model.Shop {
	f := doc.Fields
	status, ok := model.ParseShopStatus(model.CoerceString(f["status"]))
	if !ok {
		status = model.ShopStatusActive
	}
	return model.Shop{
		ID:          model.CoerceInt64(f["id"]),
		ShopID:      model.CoerceString(f["shopId"]),
		ClientName:  model.CoerceString(f["clientName"]),
		Status:      status,
		Tags:        model.CoerceStrings(f["tags"]),
		CreditScore: model.CoerceInt(f["creditScore"]),
		Balance:     model.CoerceDecimal(f["balance"]),
		Ref:         model.SyncedRef(doc.Handle),
	}
}

func encodeShop(s model.Shop) map[string]any {
	return map[string]any{
		"id":          s.ID,
		"shopId":      s.ShopID,
		"clientName":  s.ClientName,
		"status":      string(s.Status),
		"tags":        model.NormalizeTags(s.Tags),
		"creditScore": model.ClampCreditScore(s.CreditScore),
		"balance":     s.Balance,
	}
}
