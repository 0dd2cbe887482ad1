package dialog

import (
	"fmt"
	"strings"

	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/pkg/common"
)

// Kind 回覆類型，傳輸層依此決定按鈕
type Kind string

const (
	KindList      Kind = "list"
	KindDetail    Kind = "detail"
	KindPrompt    Kind = "prompt"
	KindError     Kind = "error"
	KindSmallTalk Kind = "smalltalk"
	KindFarewell  Kind = "farewell"
)

// Reply 一個回合的結構化回覆
type Reply struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// Results 目前頁面的結果
	Results []search.ScoredRecipe `json:"results,omitempty"`
	Recipe  *common.Recipe        `json:"recipe,omitempty"`
	// Page 從 1 開始
	Page int `json:"page,omitempty"`
	// First 本頁第一筆的全域編號
	First      int  `json:"first,omitempty"`
	TotalPages int  `json:"total_pages,omitempty"`
	Total      int  `json:"total,omitempty"`
	EndSession bool `json:"end_session,omitempty"`
}

// Formatter 將結果轉為文字
type Formatter struct {
	pager search.Pager
}

// NewFormatter 使用與引擎相同的分頁
func NewFormatter(pager search.Pager) Formatter {
	return Formatter{pager: pager}
}

// decorations 步驟中要移除的裝飾符號
var decorations = strings.NewReplacer("▪", "", "\uFE0F", "", "♨", "", "🔥", "")

// List 第 page 頁（從 0 開始）的列表；heading 為空時使用搜尋結果標題
func (f Formatter) List(heading string, all []search.ScoredRecipe, page int) Reply {
	window := f.pager.Page(all, page)
	total := len(all)
	totalPages := f.pager.TotalPages(total)
	start := f.pager.GlobalIndex(page, 0)
	end := start + len(window) - 1

	if heading == "" {
		heading = fmt.Sprintf(msgFoundHeading, total, pluralRecipes(total), start, end)
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	for i, r := range window {
		b.WriteString("\n")
		b.WriteString(listLine(f.pager.GlobalIndex(page, i), r.Recipe))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, msgPageIndicator, page+1, totalPages)
	b.WriteString("\n")
	b.WriteString(msgNavigationHint)

	return Reply{
		Kind:       KindList,
		Text:       b.String(),
		Results:    window,
		Page:       page + 1,
		First:      start,
		TotalPages: totalPages,
		Total:      total,
	}
}

func listLine(n int, r common.Recipe) string {
	line := fmt.Sprintf("%d. %s", n, r.Title)
	if t := common.StringValue(r.Time); t != "" {
		line += fmt.Sprintf(" (%s)", t)
	}
	if tags := r.UniqueTags(); len(tags) > 0 {
		if len(tags) > 3 {
			tags = tags[:3]
		}
		line += fmt.Sprintf(" [%s]", strings.Join(tags, ", "))
	}
	return line
}

// Detail 單一食譜；heading 可為空
func (f Formatter) Detail(heading string, r common.Recipe) Reply {
	text := RecipeText(r)
	if heading != "" {
		text = heading + "\n\n" + text
	}
	recipe := r
	return Reply{Kind: KindDetail, Text: text, Recipe: &recipe}
}

// RecipeText 食譜的多行文字
func RecipeText(r common.Recipe) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Title))
	if d := common.StringValue(r.Description); d != "" {
		b.WriteString("\n")
		b.WriteString(d)
	}

	var params []string
	if t := common.StringValue(r.Temperature); t != "" {
		params = append(params, "Температура: "+t)
	}
	if t := common.StringValue(r.Time); t != "" {
		params = append(params, "Время: "+t)
	}
	if m := common.StringValue(r.Mode); m != "" {
		params = append(params, "Режим: "+m)
	}
	if len(params) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(params, "\n"))
	}

	if len(r.Ingredients) > 0 {
		b.WriteString("\n\nИнгредиенты:")
		for _, ing := range r.Ingredients {
			if ing = strings.TrimSpace(ing); ing != "" {
				b.WriteString("\n  - ")
				b.WriteString(ing)
			}
		}
	}

	n := 0
	for _, step := range r.Steps {
		step = strings.TrimSpace(decorations.Replace(step))
		if step == "" {
			continue
		}
		if n == 0 {
			b.WriteString("\n\nПриготовление:")
		}
		n++
		fmt.Fprintf(&b, "\n  %d. %s", n, step)
	}

	if tags := r.UniqueTags(); len(tags) > 0 {
		b.WriteString("\n\nКатегории: ")
		b.WriteString(strings.Join(tags, ", "))
	}
	return b.String()
}

// Prompt 一般提示
func (f Formatter) Prompt(text string) Reply {
	return Reply{Kind: KindPrompt, Text: text}
}

// Error 錯誤提示
func (f Formatter) Error(text string) Reply {
	return Reply{Kind: KindError, Text: text}
}

// SmallTalk 社交回覆；道別時結束會話
func (f Formatter) SmallTalk(intent Intent, text string) Reply {
	if intent == IntentFarewell {
		return Reply{Kind: KindFarewell, Text: text, EndSession: true}
	}
	return Reply{Kind: KindSmallTalk, Text: text}
}
