package bulkedit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/werkyrie/shopdesk/internal/model"
)

func editShops() []model.Shop {
	return []model.Shop{
		{ID: 1, ShopID: "SH001", CreditScore: 85, Balance: decimal.NewFromInt(100),
			Tags: []string{"VIP"}},
		{ID: 2, ShopID: "SH002", CreditScore: 72, Balance: decimal.NewFromInt(250),
			Tags: []string{"With Loan", "VIP"}},
		{ID: 3, ShopID: "SH003", CreditScore: 78, Balance: decimal.RequireFromString("10.50"),
			Tags: []string{}},
		{ID: 4, ShopID: "SH004", CreditScore: 65, Balance: decimal.NewFromInt(-40),
			Tags: []string{"Frozen"}},
		{ID: 5, ShopID: "SH005", CreditScore: 70, Balance: decimal.NewFromInt(0),
			Tags: []string{"Old Client"}},
	}
}

func TestParseAdjustment(t *testing.T) {
	for _, label := range []string{"add", "subtract", "set"} {
		got, ok := ParseAdjustment(label)
		assert.True(t, ok)
		assert.Equal(t, Adjustment(label), got)
	}
	_, ok := ParseAdjustment("multiply")
	assert.False(t, ok)
}

func TestParseTagAction(t *testing.T) {
	for _, label := range []string{"add", "remove", "replace"} {
		got, ok := ParseTagAction(label)
		assert.True(t, ok)
		assert.Equal(t, TagAction(label), got)
	}
	_, ok := ParseTagAction("")
	assert.False(t, ok)
}

func TestBalancesAdd(t *testing.T) {
	out := Balances(editShops(), []int64{1, 3}, AdjustAdd, decimal.NewFromInt(50))
	assert.Len(t, out, 2)
	assert.True(t, out[1].Equal(decimal.NewFromInt(150)))
	assert.True(t, out[3].Equal(decimal.RequireFromString("60.50")))
}

func TestBalancesSubtractCanGoNegative(t *testing.T) {
	out := Balances(editShops(), []int64{5}, AdjustSubtract, decimal.NewFromInt(25))
	assert.True(t, out[5].Equal(decimal.NewFromInt(-25)))
}

func TestBalancesSet(t *testing.T) {
	out := Balances(editShops(), []int64{2, 4}, AdjustSet, decimal.NewFromInt(1000))
	assert.True(t, out[2].Equal(decimal.NewFromInt(1000)))
	assert.True(t, out[4].Equal(decimal.NewFromInt(1000)))
}

func TestBalancesSkipsUnknownIDs(t *testing.T) {
	out := Balances(editShops(), []int64{1, 99}, AdjustAdd, decimal.NewFromInt(1))
	assert.Len(t, out, 1)
	_, ok := out[99]
	assert.False(t, ok)
}

func TestCreditScoresAddSubset(t *testing.T) {
	// Scores 85, 72, 78, 65, 70; add 10 to the shops holding 72 and 65.
	out := CreditScores(editShops(), []int64{2, 4}, AdjustAdd, 10)
	assert.Equal(t, map[int64]int{2: 82, 4: 75}, out)
}

func TestCreditScoresClamped(t *testing.T) {
	out := CreditScores(editShops(), []int64{1}, AdjustAdd, 50)
	assert.Equal(t, 100, out[1])

	out = CreditScores(editShops(), []int64{4}, AdjustSubtract, 200)
	assert.Equal(t, 0, out[4])

	out = CreditScores(editShops(), []int64{3}, AdjustSet, 250)
	assert.Equal(t, 100, out[3])

	out = CreditScores(editShops(), []int64{3}, AdjustSet, -5)
	assert.Equal(t, 0, out[3])
}

func TestTagsAddDeduplicates(t *testing.T) {
	out := Tags(editShops(), []int64{2}, TagAdd, []string{"VIP", "New Shop"})
	assert.Equal(t, []string{"With Loan", "VIP", "New Shop"}, out[2])
}

func TestTagsRemove(t *testing.T) {
	out := Tags(editShops(), []int64{2, 4}, TagRemove, []string{"VIP"})
	assert.Equal(t, []string{"With Loan"}, out[2])
	assert.Equal(t, []string{"Frozen"}, out[4])
}

func TestTagsReplace(t *testing.T) {
	out := Tags(editShops(), []int64{1, 3}, TagReplace, []string{"Hold Withdrawal"})
	assert.Equal(t, []string{"Hold Withdrawal"}, out[1])
	assert.Equal(t, []string{"Hold Withdrawal"}, out[3])
}

func TestTagsNormalizesInput(t *testing.T) {
	out := Tags(editShops(), []int64{3}, TagReplace, []string{" VIP ", "", "VIP"})
	assert.Equal(t, []string{"VIP"}, out[3])
}
