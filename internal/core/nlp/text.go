package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var yoReplacer = strings.NewReplacer("ё", "е", "Ё", "е")

// Fold 轉為俄文小寫並將 ё 統一為 е
// cases.Caser 不可跨 goroutine 共用，因此每次建立
func Fold(text string) string {
	lower := cases.Lower(language.Russian).String(strings.TrimSpace(text))
	return yoReplacer.Replace(lower)
}

// Tokenize 以字母與數字為界切詞，回傳折疊後的詞
func Tokenize(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsShort 兩個字元以內的詞不做詞形還原
func IsShort(word string) bool {
	return utf8.RuneCountInString(word) <= 2
}
