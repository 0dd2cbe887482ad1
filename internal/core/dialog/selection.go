package dialog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/search"
)

// selectionResult 選擇結果
type selectionResult int

const (
	// selectionNone 不像是選擇，交給後續意圖處理
	selectionNone selectionResult = iota
	selectionFound
	// selectionInvalid 看起來是選擇但超出範圍
	selectionInvalid
)

var numberPattern = regexp.MustCompile(`^[+-]?\d+$`)

// fillerWords 選擇前去掉的字
var fillerWords = map[string]struct{}{
	"давай": {}, "покажи": {}, "хочу": {}, "выбери": {}, "выбираю": {}, "можно": {},
	"рецепт": {}, "номер": {}, "вариант": {}, "пожалуйста": {},
}

// ordinalWords 序數詞，對應目前頁面中的位置
var ordinalWords = buildOrdinals()

func buildOrdinals() map[string]int {
	stems := []struct {
		forms []string
		n     int
	}{
		{[]string{"первое", "первый", "первую", "первой", "первая"}, 1},
		{[]string{"второе", "второй", "вторую", "вторая"}, 2},
		{[]string{"третье", "третий", "третью", "третьей", "третья"}, 3},
		{[]string{"четвертое", "четвертый", "четвертую", "четвертой", "четвертая"}, 4},
		{[]string{"пятое", "пятый", "пятую", "пятой", "пятая"}, 5},
		{[]string{"шестое", "шестой", "шестую", "шестая"}, 6},
		{[]string{"седьмое", "седьмой", "седьмую", "седьмая"}, 7},
		{[]string{"восьмое", "восьмой", "восьмую", "восьмая"}, 8},
		{[]string{"девятое", "девятый", "девятую", "девятой", "девятая"}, 9},
		{[]string{"десятое", "десятый", "десятую", "десятой", "десятая"}, 10},
		{[]string{"последнее", "последний", "последнюю", "последней", "последняя"}, -1},
	}
	out := make(map[string]int)
	for _, s := range stems {
		for _, f := range s.forms {
			out[f] = s.n
		}
	}
	return out
}

// Selector 從目前結果中解析使用者的選擇
type Selector struct {
	minFuzzy int
}

// NewSelector minFuzzy 為模糊比對的最低分數
func NewSelector(minFuzzy int) Selector {
	if minFuzzy <= 0 {
		minFuzzy = 80
	}
	return Selector{minFuzzy: minFuzzy}
}

// cleanSelection 去掉贅字後的折疊文字
func cleanSelection(utterance string) string {
	tokens := nlp.Tokenize(utterance)
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := fillerWords[t]; !ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return strings.Join(tokens, " ")
	}
	return strings.Join(kept, " ")
}

// Resolve 數字對應全部結果，序數對應目前頁面，名稱先精確或子字串再模糊比對
func (s Selector) Resolve(state *SessionState, utterance string) (search.ScoredRecipe, selectionResult) {
	clean := cleanSelection(utterance)
	if clean == "" || len(state.AllResults) == 0 {
		return search.ScoredRecipe{}, selectionNone
	}

	// 切詞會去掉正負號，數字先看原始輸入
	number := clean
	if raw := strings.TrimSpace(utterance); numberPattern.MatchString(raw) {
		number = raw
	}
	if numberPattern.MatchString(number) {
		n, err := strconv.Atoi(number)
		if err != nil || n < 1 || n > len(state.AllResults) {
			return search.ScoredRecipe{}, selectionInvalid
		}
		return state.AllResults[n-1], selectionFound
	}

	if n, ok := ordinalWords[clean]; ok {
		if n == -1 {
			n = len(state.LastShown)
		}
		if n < 1 || n > len(state.LastShown) {
			return search.ScoredRecipe{}, selectionInvalid
		}
		return state.LastShown[n-1], selectionFound
	}

	return s.byName(state.AllResults, clean)
}

func (s Selector) byName(results []search.ScoredRecipe, clean string) (search.ScoredRecipe, selectionResult) {
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = strings.Join(nlp.Tokenize(r.Recipe.Title), " ")
		if titles[i] == clean {
			return r, selectionFound
		}
	}
	if utf8.RuneCountInString(clean) >= 3 {
		for i, r := range results {
			if strings.Contains(titles[i], clean) {
				return r, selectionFound
			}
		}
	}

	best, bestScore := -1, 0
	for i := range results {
		if score := ScoreMatch(clean, titles[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= s.minFuzzy {
		return results[best], selectionFound
	}
	return search.ScoredRecipe{}, selectionNone
}
