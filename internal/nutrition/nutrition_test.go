package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baiirun/chew/internal/model"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"2x", 2},
		{"x2", 2},
		{"1x", 1},
		{"12x", 12},
		{"400", 400},
		{"", 0},
		{"x", 0},
		{"abc", 0},
		{"99999999999999999999999999", 0}, // overflow
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(tt.token))
		})
	}
}

func TestTotal(t *testing.T) {
	items := []model.Item{
		{Food: "rice", Count: "2x", Cal: "400"},
		{Food: "milk", Count: "2x", Cal: "100"},
		{Food: "grapes", Count: "1x", Cal: "100"},
		{Food: "cantoloupe", Count: "1x", Cal: ""},
		{Food: "granola bars", Count: "x2", Cal: ""},
	}

	assert.Equal(t, 800+200+100, Total(items))
}

func TestTotal_SkipsDone(t *testing.T) {
	items := []model.Item{
		{Food: "rice", Count: "2x", Cal: "400"},
		{Food: "milk", Count: "2x", Cal: "100", Done: true},
	}
	assert.Equal(t, 800, Total(items))
}

func TestTotal_Empty(t *testing.T) {
	assert.Equal(t, 0, Total(nil))
}

func TestTotal_MalformedDataContributesZero(t *testing.T) {
	items := []model.Item{
		{Food: "bad", Count: "", Cal: "300"},
		{Food: "worse", Count: "lots", Cal: "many"},
		{Food: "good", Count: "3x", Cal: "10"},
	}
	assert.Equal(t, 30, Total(items))
}

func TestToggleDoneRemovesExactContribution(t *testing.T) {
	items := []model.Item{
		{ID: "a", Count: "2x", Cal: "400"},
		{ID: "b", Count: "x3", Cal: "50"},
		{ID: "c", Count: "1x", Cal: "120"},
	}
	before := Total(items)

	for i := range items {
		toggled := append([]model.Item(nil), items...)
		toggled[i].Done = true
		assert.Equal(t, before-Contribution(items[i]), Total(toggled), "toggling %s", items[i].ID)
	}
}

func TestMissing(t *testing.T) {
	assert.False(t, Missing(model.Item{Count: "2x", Cal: "400"}))
	assert.True(t, Missing(model.Item{Count: "1x", Cal: ""}))
	assert.True(t, Missing(model.Item{Count: "", Cal: "100"}))
}
