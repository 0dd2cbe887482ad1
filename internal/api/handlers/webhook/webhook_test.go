package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/search"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"fits", "короткий текст", 100, []string{"короткий текст"}},
		{"no limit", "abc", 0, []string{"abc"}},
		{"line boundaries", "аааа\nбббб\nвввв", 10, []string{"аааа\nбббб", "вввв"}},
		{"long line is hard split", "абвгдежзий", 4, []string{"абвг", "дежз", "ий"}},
		{"blank lines are dropped", "аа\n\n\n\nбб", 3, []string{"аа", "бб"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitText(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			for _, chunk := range got {
				if tt.limit > 0 {
					assert.LessOrEqual(t, len([]rune(chunk)), tt.limit)
				}
			}
		})
	}
}

func TestSplitTextKeepsAllContent(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = strings.Repeat("щ", 30)
	}
	text := strings.Join(lines, "\n")

	chunks := SplitText(text, 100)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.ReplaceAll(text, "\n", ""), strings.ReplaceAll(strings.Join(chunks, ""), "\n", ""))
}

func TestContinuations(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newContinuations(time.Minute)
	c.now = func() time.Time { return now }

	c.set("s1", []string{"две", "три"})

	chunk, more, ok := c.pop("s1")
	assert.True(t, ok)
	assert.True(t, more)
	assert.Equal(t, "две", chunk)

	chunk, more, ok = c.pop("s1")
	assert.True(t, ok)
	assert.False(t, more)
	assert.Equal(t, "три", chunk)

	_, _, ok = c.pop("s1")
	assert.False(t, ok)
}

func TestContinuationsExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newContinuations(time.Minute)
	c.now = func() time.Time { return now }

	c.set("old", []string{"x"})
	now = now.Add(2 * time.Minute)
	c.set("new", []string{"y"})

	_, _, ok := c.pop("old")
	assert.False(t, ok)
	chunk, _, ok := c.pop("new")
	assert.True(t, ok)
	assert.Equal(t, "y", chunk)
}

func TestIsContinue(t *testing.T) {
	assert.True(t, isContinue("Читай дальше!"))
	assert.True(t, isContinue("продолжай"))
	assert.False(t, isContinue("дальше"))
}

func titles(buttons []Button) []string {
	out := make([]string, len(buttons))
	for i, b := range buttons {
		out[i] = b.Title
	}
	return out
}

func TestButtonsFor(t *testing.T) {
	results := make([]search.ScoredRecipe, 2)

	tests := []struct {
		name  string
		reply dialog.Reply
		want  []string
	}{
		{
			name:  "last page of a list",
			reply: dialog.Reply{Kind: dialog.KindList, Results: results, First: 6, Page: 2, TotalPages: 2},
			want:  []string{"6", "7", buttonOther},
		},
		{
			name:  "list with more pages",
			reply: dialog.Reply{Kind: dialog.KindList, Results: results, First: 1, Page: 1, TotalPages: 3},
			want:  []string{"1", "2", buttonMore, buttonOther},
		},
		{
			name:  "detail",
			reply: dialog.Reply{Kind: dialog.KindDetail},
			want:  []string{buttonOther, buttonRecommend},
		},
		{
			name:  "farewell",
			reply: dialog.Reply{Kind: dialog.KindFarewell},
			want:  []string{},
		},
		{
			name:  "prompt",
			reply: dialog.Reply{Kind: dialog.KindPrompt},
			want:  []string{buttonRecommend, buttonHelp},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(buttonsFor(tt.reply)))
		})
	}
}
