package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"recipe-assistant/internal/pkg/common"
)

func results(n int) []ScoredRecipe {
	out := make([]ScoredRecipe, n)
	for i := range out {
		out[i] = ScoredRecipe{Recipe: common.Recipe{Title: fmt.Sprintf("R%d", i+1)}, Position: i}
	}
	return out
}

func TestPager(t *testing.T) {
	p := NewPager(5)
	all := results(7)

	tests := []struct {
		page int
		want []string
	}{
		{0, []string{"R1", "R2", "R3", "R4", "R5"}},
		{1, []string{"R6", "R7"}},
		{2, []string{}},
		{-1, []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			assert.Equal(t, tt.want, titles(p.Page(all, tt.page)))
		})
	}

	assert.Equal(t, 2, p.TotalPages(7))
	assert.Equal(t, 1, p.TotalPages(5))
	assert.Equal(t, 0, p.TotalPages(0))
	assert.True(t, p.HasPage(7, 1))
	assert.False(t, p.HasPage(7, 2))
	assert.Equal(t, 6, p.GlobalIndex(1, 0))
}

func TestPagerIsPure(t *testing.T) {
	p := NewPager(0)
	all := results(12)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, p.Page(all, 1), p.Page(all, 1))
}
