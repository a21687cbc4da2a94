package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "hello", CoerceString("hello"))
	assert.Equal(t, "42", CoerceString(json.Number("42")))
	assert.Equal(t, "1.5", CoerceString(float64(1.5)))
	assert.Equal(t, "7", CoerceString(int64(7)))
	assert.Equal(t, "true", CoerceString(true))
	assert.Equal(t, "", CoerceString(nil))
	assert.Equal(t, "", CoerceString([]string{"x"}))
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 5, CoerceInt(5))
	assert.Equal(t, 5, CoerceInt(int64(5)))
	assert.Equal(t, 5, CoerceInt(float64(5.9)))
	assert.Equal(t, 5, CoerceInt(json.Number("5")))
	assert.Equal(t, 5, CoerceInt("5"))
	assert.Equal(t, 0, CoerceInt("five"))
	assert.Equal(t, 0, CoerceInt(nil))
}

func TestCoerceInt64(t *testing.T) {
	assert.Equal(t, int64(9), CoerceInt64(int64(9)))
	assert.Equal(t, int64(9), CoerceInt64(9))
	assert.Equal(t, int64(9), CoerceInt64(float64(9)))
	assert.Equal(t, int64(9), CoerceInt64(json.Number("9")))
	assert.Equal(t, int64(9), CoerceInt64("9"))
	assert.Equal(t, int64(0), CoerceInt64(""))
}

func TestCoerceDecimal(t *testing.T) {
	d := decimal.RequireFromString("12.34")
	assert.True(t, CoerceDecimal(d).Equal(d))
	assert.True(t, CoerceDecimal("12.34").Equal(d))
	assert.True(t, CoerceDecimal(json.Number("12.34")).Equal(d))
	assert.True(t, CoerceDecimal(float64(12.34)).Equal(d))
	assert.True(t, CoerceDecimal(int64(5)).Equal(decimal.NewFromInt(5)))
	assert.True(t, CoerceDecimal("bogus").IsZero())
	assert.True(t, CoerceDecimal(nil).IsZero())
}

func TestCoerceStrings(t *testing.T) {
	src := []string{"a", "b"}
	out := CoerceStrings(src)
	assert.Equal(t, src, out)

	// The result must not alias the input.
	out[0] = "mutated"
	assert.Equal(t, "a", src[0])

	assert.Equal(t, []string{"a", "1"}, CoerceStrings([]any{"a", float64(1)}))
	assert.Equal(t, []string{}, CoerceStrings(nil))
	assert.Equal(t, []string{}, CoerceStrings("not-a-list"))
}

func TestCoerceTime(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, ts, CoerceTime(ts))
	assert.Equal(t, ts, CoerceTime("2025-06-01T12:30:00Z"))
	assert.Equal(t, ts, CoerceTime(float64(ts.Unix())))
	assert.Equal(t, ts, CoerceTime(ts.Unix()))
	assert.True(t, CoerceTime("yesterday").IsZero())
	assert.True(t, CoerceTime(nil).IsZero())
}

func TestClampCreditScore(t *testing.T) {
	assert.Equal(t, 0, ClampCreditScore(-10))
	assert.Equal(t, 0, ClampCreditScore(0))
	assert.Equal(t, 55, ClampCreditScore(55))
	assert.Equal(t, 100, ClampCreditScore(100))
	assert.Equal(t, 100, ClampCreditScore(240))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"VIP", "Frozen"},
		NormalizeTags([]string{" VIP ", "Frozen", "VIP", ""}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}

func TestParseShopStatus(t *testing.T) {
	status, ok := ParseShopStatus("On Hold")
	assert.True(t, ok)
	assert.Equal(t, ShopStatusOnHold, status)

	_, ok = ParseShopStatus("on hold")
	assert.False(t, ok)
}

func TestRef(t *testing.T) {
	pending := PendingRef()
	assert.False(t, pending.Synced())
	_, ok := pending.Handle()
	assert.False(t, ok)

	synced := SyncedRef("doc-1")
	assert.True(t, synced.Synced())
	handle, ok := synced.Handle()
	assert.True(t, ok)
	assert.Equal(t, "doc-1", handle)
}
