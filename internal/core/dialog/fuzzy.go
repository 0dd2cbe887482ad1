package dialog

import (
	"strings"
	"unicode/utf8"
)

// levenshtein 以 rune 為單位的編輯距離
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// similarity 1 - 距離/較長字串長度，範圍 0..1
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// ScoreMatch 查詢與標題的相似分數 0..100，兩者皆應已折疊
//
//	完全相同 100、前綴 90、某個詞的開頭 80、子字串 60~85，
//	其餘取整體相似度；單詞查詢另外與標題每個詞比較
func ScoreMatch(query, title string) int {
	if query == "" || title == "" {
		return 0
	}
	if query == title {
		return 100
	}
	if strings.HasPrefix(title, query) {
		return 90
	}
	words := strings.Fields(title)
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			return 80
		}
	}
	if strings.Contains(title, query) {
		ratio := float64(utf8.RuneCountInString(query)) / float64(utf8.RuneCountInString(title))
		return 60 + int(ratio*25)
	}

	best := int(similarity(query, title) * 100)
	if !strings.Contains(query, " ") {
		for _, w := range words {
			if s := int(similarity(query, w) * 100); s > best {
				best = s
			}
		}
	}
	return best
}
