package search

// DefaultPageSize 每頁顯示數量
const DefaultPageSize = 5

// Pager 將結果切成固定大小的頁，page 從 0 開始
type Pager struct {
	Size int
}

// NewPager size 不大於 0 時使用預設值
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{Size: size}
}

// Page 回傳第 page 頁，超出範圍回傳空切片
func (p Pager) Page(results []ScoredRecipe, page int) []ScoredRecipe {
	start := page * p.Size
	if page < 0 || start >= len(results) {
		return []ScoredRecipe{}
	}
	end := start + p.Size
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

// TotalPages ceil(n / size)
func (p Pager) TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.Size - 1) / p.Size
}

// HasPage 第 page 頁是否有內容
func (p Pager) HasPage(n, page int) bool {
	return page >= 0 && page*p.Size < n
}

// GlobalIndex 頁內位置（從 0 開始）轉為全域編號（從 1 開始）
func (p Pager) GlobalIndex(page, local int) int {
	return page*p.Size + local + 1
}
