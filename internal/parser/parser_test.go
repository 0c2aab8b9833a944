package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

func TestParsePositional(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.ParsedRequest
	}{
		{
			name: "basic",
			text: "150000 groceries vegetable purchase",
			want: model.ParsedRequest{Amount: 150000, Category: "groceries", Description: "vegetable purchase"},
		},
		{
			name: "thousands separators stripped",
			text: "1,250,000 equipment new fridge for the kitchen",
			want: model.ParsedRequest{Amount: 1250000, Category: "equipment", Description: "new fridge for the kitchen"},
		},
		{
			name: "hangul category",
			text: "45000 식자재 양파 10kg",
			want: model.ParsedRequest{Amount: 45000, Category: "식자재", Description: "양파 10kg"},
		},
		{
			name: "description split at first boundary after category",
			text: "500 misc a b c",
			want: model.ParsedRequest{Amount: 500, Category: "misc", Description: "a b c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseKeyword(t *testing.T) {
	t.Run("amount and description", func(t *testing.T) {
		got, ok := Parse("결제요청 35000원 점심 회식비")
		require.True(t, ok)
		assert.Equal(t, int64(35000), got.Amount)
		assert.Equal(t, "점심", got.VendorName)
		assert.Equal(t, "회식비", got.Description)
	})

	t.Run("space-split keyword", func(t *testing.T) {
		got, ok := Parse("결제 요청 35,000 소모품")
		require.True(t, ok)
		assert.Equal(t, int64(35000), got.Amount)
		assert.Equal(t, "소모품", got.Description)
		assert.Equal(t, DefaultCategory, got.Category)
		assert.Empty(t, got.VendorName)
	})

	t.Run("amount only", func(t *testing.T) {
		got, ok := Parse("결제요청 120000")
		require.True(t, ok)
		assert.Equal(t, int64(120000), got.Amount)
		assert.Empty(t, got.Description)
	})
}

func TestParseLabeled(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		got, ok := Parse("amount: 150,000원\ncategory: groceries\ncontent: vegetable purchase")
		require.True(t, ok)
		assert.Equal(t, model.ParsedRequest{
			Amount:      150000,
			Category:    "groceries",
			Description: "vegetable purchase",
		}, *got)
	})

	t.Run("label order does not matter", func(t *testing.T) {
		got, ok := Parse("vendor: coupang\ncontent: office chairs\namount: 420,000\ncategory: furniture")
		require.True(t, ok)
		assert.Equal(t, int64(420000), got.Amount)
		assert.Equal(t, "furniture", got.Category)
		assert.Equal(t, "office chairs", got.Description)
		assert.Equal(t, "coupang", got.VendorName)
	})

	t.Run("korean labels", func(t *testing.T) {
		got, ok := Parse("금액: 99,000\n분류: 수리비\n내용: 냉장고 수리\n업체: 삼성서비스")
		require.True(t, ok)
		assert.Equal(t, int64(99000), got.Amount)
		assert.Equal(t, "수리비", got.Category)
		assert.Equal(t, "냉장고 수리", got.Description)
		assert.Equal(t, "삼성서비스", got.VendorName)
	})

	t.Run("category defaults when absent", func(t *testing.T) {
		got, ok := Parse("please handle this\namount: 70000")
		require.True(t, ok)
		assert.Equal(t, DefaultCategory, got.Category)
		assert.Empty(t, got.VendorName)
	})

	t.Run("description falls back to truncated raw text", func(t *testing.T) {
		long := "amount: 50000 " + strings.Repeat("x", 200)
		got, ok := Parse(long)
		require.True(t, ok)
		assert.Len(t, []rune(got.Description), 100)
		assert.Equal(t, string([]rune(long)[:100]), got.Description)
	})
}

func TestParseNoMatch(t *testing.T) {
	for _, text := range []string{
		"hello there",
		"",
		"   ",
		"점심 먹으러 갑니다",
		"meeting at 3pm tomorrow",
	} {
		t.Run(text, func(t *testing.T) {
			got, ok := Parse(text)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}
