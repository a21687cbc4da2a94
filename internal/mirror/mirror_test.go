package mirror

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

func seedShop(t *testing.T, st store.Store, id int64, code string) {
	t.Helper()
	_, err := st.Collection(CollectionShops).Insert(context.Background(), map[string]any{
		"id":          id,
		"shopId":      code,
		"clientName":  "Client " + code,
		"status":      "Active",
		"tags":        []string{},
		"creditScore": 50,
		"balance":     decimal.Zero,
	})
	require.NoError(t, err)
}

func startShops(t *testing.T, st store.Store) *Mirror[model.Shop] {
	t.Helper()
	m := NewShops(st, zap.NewNop())
	m.Start()
	t.Cleanup(m.Stop)
	return m
}

func mirrorIDs(shops []model.Shop) []int64 {
	ids := make([]int64, len(shops))
	for i, s := range shops {
		ids[i] = s.ID
	}
	return ids
}

func TestStartDeliversInitialSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	seedShop(t, st, 2, "SH002")

	m := startShops(t, st)
	assert.False(t, m.Loading())
	assert.Empty(t, m.Err())
	assert.ElementsMatch(t, []int64{1, 2}, mirrorIDs(m.Snapshot()))
}

func TestCreateAssignsNextID(t *testing.T) {
	st := store.NewMemoryStore()
	for _, id := range []int64{1, 2, 3, 5} {
		seedShop(t, st, id, "SH00"+string(rune('0'+id)))
	}
	m := startShops(t, st)

	ok := m.Create(context.Background(), model.Shop{ShopID: "SH006", ClientName: "New Client"})
	require.True(t, ok)

	// The id fills after the maximum, not the gap at 4.
	created, found := m.Find(6)
	require.True(t, found)
	assert.Equal(t, "SH006", created.ShopID)
	assert.True(t, created.Ref.Synced())
}

func TestCreateOnEmptyCollectionStartsAtOne(t *testing.T) {
	st := store.NewMemoryStore()
	m := startShops(t, st)

	require.True(t, m.Create(context.Background(), model.Shop{ShopID: "SH001", ClientName: "First"}))
	_, found := m.Find(1)
	assert.True(t, found)
}

func TestCreateManyAssignsSequentialIDs(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 7, "SH007")
	m := startShops(t, st)

	ok := m.CreateMany(context.Background(), []model.Shop{
		{ShopID: "SH008", ClientName: "A"},
		{ShopID: "SH009", ClientName: "B"},
	})
	require.True(t, ok)
	assert.ElementsMatch(t, []int64{7, 8, 9}, mirrorIDs(m.Snapshot()))
}

func TestCreateManyEmptyIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	m := startShops(t, st)
	assert.True(t, m.CreateMany(context.Background(), nil))
	assert.Empty(t, m.Snapshot())
}

func TestUpdateWritesThrough(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	m := startShops(t, st)

	ok := m.Update(context.Background(), 1, map[string]any{"clientName": "Renamed"})
	require.True(t, ok)

	shop, found := m.Find(1)
	require.True(t, found)
	assert.Equal(t, "Renamed", shop.ClientName)
	// Untouched fields survive the partial update.
	assert.Equal(t, "SH001", shop.ShopID)
}

func TestUpdateUnknownIDFails(t *testing.T) {
	st := store.NewMemoryStore()
	m := startShops(t, st)

	ok := m.Update(context.Background(), 42, map[string]any{"clientName": "X"})
	assert.False(t, ok)
	assert.Equal(t, "Failed to update shop. Please try again.", m.Err())
}

func TestDeleteRemovesRecord(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	seedShop(t, st, 2, "SH002")
	m := startShops(t, st)

	require.True(t, m.Delete(context.Background(), 1))
	assert.ElementsMatch(t, []int64{2}, mirrorIDs(m.Snapshot()))
}

func TestDeleteUnknownIDFails(t *testing.T) {
	st := store.NewMemoryStore()
	m := startShops(t, st)

	assert.False(t, m.Delete(context.Background(), 9))
	assert.Equal(t, "Failed to delete shop. Please try again.", m.Err())
}

func TestDeleteManySkipsUnresolvedIDs(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	seedShop(t, st, 2, "SH002")
	seedShop(t, st, 3, "SH003")
	m := startShops(t, st)

	ok := m.DeleteMany(context.Background(), []int64{1, 3, 99})
	require.True(t, ok)
	assert.ElementsMatch(t, []int64{2}, mirrorIDs(m.Snapshot()))
}

func TestDeleteManyAllUnresolvedSucceedsWithoutWrite(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	m := startShops(t, st)

	assert.True(t, m.DeleteMany(context.Background(), []int64{50, 51}))
	assert.Len(t, m.Snapshot(), 1)
}

func TestSetFieldsAppliesToEveryResolvedID(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	seedShop(t, st, 2, "SH002")
	m := startShops(t, st)

	ok := m.SetFields(context.Background(), []int64{1, 2, 7}, map[string]any{"status": "On Hold"})
	require.True(t, ok)
	for _, shop := range m.Snapshot() {
		assert.Equal(t, model.ShopStatusOnHold, shop.Status)
	}
}

func TestSetFieldValuesWritesPerRecordValues(t *testing.T) {
	st := store.NewMemoryStore()
	seedShop(t, st, 1, "SH001")
	seedShop(t, st, 2, "SH002")
	m := startShops(t, st)

	ok := m.SetFieldValues(context.Background(), "creditScore", map[int64]any{
		1: 90,
		2: 10,
	})
	require.True(t, ok)

	first, _ := m.Find(1)
	second, _ := m.Find(2)
	assert.Equal(t, 90, first.CreditScore)
	assert.Equal(t, 10, second.CreditScore)
}

func TestDecodeShopFallsBackOnBadStatus(t *testing.T) {
	shop := decodeShop(store.Document{
		Handle: "h-1",
		Fields: map[string]any{
			"id":     float64(3),
			"shopId": "SH003",
			"status": "Dormant",
		},
	})
	assert.Equal(t, int64(3), shop.ID)
	assert.Equal(t, model.ShopStatusActive, shop.Status)
	assert.Equal(t, []string{}, shop.Tags)
	assert.True(t, shop.Ref.Synced())
}

func TestEncodeShopNormalizes(t *testing.T) {
	fields := encodeShop(model.Shop{
		ID:          4,
		ShopID:      "SH004",
		Status:      model.ShopStatusActive,
		Tags:        []string{" VIP ", "VIP", ""},
		CreditScore: 130,
	})
	assert.Equal(t, []string{"VIP"}, fields["tags"])
	assert.Equal(t, 100, fields["creditScore"])
}

func TestAdvanceOrderMirrorRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	m := NewAdvanceOrders(st, zap.NewNop())
	m.Start()
	t.Cleanup(m.Stop)

	ok := m.Create(context.Background(), model.AdvanceOrder{
		OrderID:     "AO-1",
		ShopID:      "SH001",
		RequestType: model.RequestTypeBuyerInquiry,
		Message:     "Where is my order?",
	})
	require.True(t, ok)

	ao, found := m.Find(1)
	require.True(t, found)
	assert.Equal(t, model.RequestTypeBuyerInquiry, ao.RequestType)
	assert.Equal(t, "Where is my order?", ao.Message)
}
