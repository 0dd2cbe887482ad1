package common

import "strings"

// Recipe 食譜資料（與 recipes.json 欄位一致）
// 可選欄位使用指標，nil 代表來源沒有該欄位
type Recipe struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Tags        []string `json:"tags"`
	Time        *string  `json:"time,omitempty"`
	Temperature *string  `json:"temperature,omitempty"`
	Mode        *string  `json:"mode,omitempty"`
	SourceID    int64    `json:"message_id"`
	PostedAt    string   `json:"post_date,omitempty"`
	ParsedAt    string   `json:"parsed_date,omitempty"`
	ForAirfryer bool     `json:"for_airfryer,omitempty"`
}

// StringValue 取出可選字串，nil 或空白時回傳 ""
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// StringPtr 建立字串指標
func StringPtr(s string) *string {
	return &s
}

// UniqueTags 去除重複標籤並保持順序
func (r Recipe) UniqueTags() []string {
	seen := make(map[string]bool, len(r.Tags))
	out := make([]string, 0, len(r.Tags))
	for _, tag := range r.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
