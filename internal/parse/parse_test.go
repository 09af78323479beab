package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SampleLines(t *testing.T) {
	tests := []struct {
		line  string
		food  string
		count string
		cal   string
	}{
		{"cantoloupe", "cantoloupe", DefaultCount, ""},
		{"grapes 100", "grapes", DefaultCount, "100"},
		{"granola bars x2", "granola bars", "x2", ""},
		{"rice 2x 400", "rice", "2x", "400"},
		{"milk 100 2x", "milk", "2x", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			e := Extract(tt.line)
			assert.Equal(t, tt.food, e.Food)
			assert.Equal(t, tt.count, e.CountValue())
			assert.Equal(t, tt.cal, e.CalValue())
		})
	}
}

func TestExtract_AbsentTokensAreNil(t *testing.T) {
	e := Extract("cantoloupe")
	assert.Nil(t, e.Count)
	assert.Nil(t, e.Cal)

	e = Extract("granola bars x2")
	require.NotNil(t, e.Count)
	assert.Nil(t, e.Cal)
}

func TestExtract_Empty(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		e := Extract(line)
		assert.Equal(t, "", e.Food, "line %q", line)
		assert.Equal(t, DefaultCount, e.CountValue())
		assert.Nil(t, e.Cal)
	}
}

func TestExtract_Positions(t *testing.T) {
	e := Extract("rice 2x 400")
	require.NotNil(t, e.Count)
	require.NotNil(t, e.Cal)

	assert.Equal(t, Annotation{Value: "2x", Index: 5, Length: 2}, *e.Count)
	// Offset of "400" in the original line, not in the shortened one.
	assert.Equal(t, Annotation{Value: "400", Index: 8, Length: 3}, *e.Cal)

	e = Extract("milk 100 2x")
	assert.Equal(t, Annotation{Value: "2x", Index: 9, Length: 2}, *e.Count)
	assert.Equal(t, Annotation{Value: "100", Index: 5, Length: 3}, *e.Cal)
}

func TestExtract_PositionsCountRunes(t *testing.T) {
	e := Extract("crème brûlée 2x 350")
	require.NotNil(t, e.Count)
	require.NotNil(t, e.Cal)

	assert.Equal(t, "crème brûlée", e.Food)
	assert.Equal(t, 13, e.Count.Index)
	assert.Equal(t, 16, e.Cal.Index)
}

func TestExtract_IsIdempotent(t *testing.T) {
	lines := []string{
		"cantoloupe",
		"grapes 100",
		"granola bars x2",
		"rice 2x 400",
		"milk 100 2x",
		"  big   2x apple  250 ",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			first := Extract(line)
			again := Extract(first.Food)

			assert.Nil(t, again.Count)
			assert.Nil(t, again.Cal)
			assert.Equal(t, first.Food, again.Food)
		})
	}
}

func TestExtract_CollapsesWhitespaceAtCut(t *testing.T) {
	tests := []struct {
		line string
		food string
	}{
		{"big 2x apple", "big apple"},
		{"big 2x apple 90", "big apple"},
		{"2x apple", "apple"},
		{"apple\t2x\t90", "apple"},
		{"oat 40 milk", "oat milk"},
		{"  apple  ", "apple"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.food, Extract(tt.line).Food)
		})
	}
}

func TestExtract_FirstCountWins(t *testing.T) {
	e := Extract("eggs 2x x3")
	assert.Equal(t, "2x", e.CountValue())
	// The second count token keeps its text; its digits are the leftmost
	// run left over, so they become the calorie value.
	assert.Equal(t, "3", e.CalValue())
	assert.Equal(t, "eggs x", e.Food)

	e = Extract("eggs x3 2x")
	assert.Equal(t, "x3", e.CountValue())
}

func TestExtract_MultiDigitCount(t *testing.T) {
	e := Extract("almonds 12x 7")
	assert.Equal(t, "12x", e.CountValue())
	assert.Equal(t, "7", e.CalValue())
	assert.Equal(t, "almonds", e.Food)

	e = Extract("almonds x12")
	assert.Equal(t, "x12", e.CountValue())
	assert.Equal(t, "almonds", e.Food)
}

func TestExtract_UppercaseXIsNotACount(t *testing.T) {
	e := Extract("toast 2X")
	assert.Nil(t, e.Count)
	assert.Equal(t, "2", e.CalValue())
	assert.Equal(t, "toast X", e.Food)
}

func TestExtract_RepeatedTextRemovedAtOffset(t *testing.T) {
	// "2x" appears twice; only the first occurrence is cut.
	e := Extract("2x tea 2x")
	require.NotNil(t, e.Count)
	assert.Equal(t, 0, e.Count.Index)
	assert.Equal(t, "tea x", e.Food)
	assert.Equal(t, "2", e.CalValue())
	assert.Equal(t, 7, e.Cal.Index)
}
