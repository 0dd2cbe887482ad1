// Package dialog 管理每個會話的搜尋、分頁與選擇狀態
package dialog

import (
	"strings"

	"recipe-assistant/internal/core/nlp"
)

// Intent 使用者意圖
type Intent string

const (
	IntentSearch    Intent = "search"
	IntentNextPage  Intent = "next_page"
	IntentAbandon   Intent = "abandon"
	IntentGreeting  Intent = "greeting"
	IntentFarewell  Intent = "farewell"
	IntentSmallTalk Intent = "smalltalk"
	IntentThanks    Intent = "thanks"
	IntentHelp      Intent = "help"
	IntentRecommend Intent = "recommend"
)

// Social 問候、道別、閒聊、感謝與說明
func (i Intent) Social() bool {
	switch i {
	case IntentGreeting, IntentFarewell, IntentSmallTalk, IntentThanks, IntentHelp:
		return true
	}
	return false
}

// matchMode 比對方式
type matchMode int

const (
	// matchWhole 整句等於片語
	matchWhole matchMode = iota
	// matchContains 句中連續出現片語
	matchContains
	// matchPrefix 句首為片語
	matchPrefix
)

type phraseRule struct {
	intent  Intent
	mode    matchMode
	phrases [][]string
}

// KeywordClassifier 以俄文片語判斷意圖，依規則順序取第一個命中者
type KeywordClassifier struct {
	rules []phraseRule
}

func rule(intent Intent, mode matchMode, phrases ...string) phraseRule {
	r := phraseRule{intent: intent, mode: mode}
	for _, p := range phrases {
		r.phrases = append(r.phrases, nlp.Tokenize(p))
	}
	return r
}

// searchCommands 搜尋指令，較長者在前
var searchCommands = [][]string{
	nlp.Tokenize("грандшеф найди"),
	nlp.Tokenize("грандшеф"),
	nlp.Tokenize("найди"),
	nlp.Tokenize("поиск"),
	nlp.Tokenize("ищи"),
}

// abandonWords 列表顯示中出現即視為放棄選擇
var abandonWords = map[string]struct{}{
	"другой": {}, "другое": {}, "новый": {}, "искать": {}, "поиск": {}, "найди": {},
}

// NewKeywordClassifier 建立內建規則
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: []phraseRule{
		rule(IntentAbandon, matchWhole, "другой", "другое", "отмена", "не это"),
		rule(IntentAbandon, matchContains, "другой рецепт", "новый поиск", "другой вариант",
			"что-то другое", "отменить", "сначала"),
		rule(IntentNextPage, matchWhole, "еще", "дальше", "далее", "следующая", "следующие",
			"следующая страница", "покажи еще", "еще рецепты", "еще варианты", "давай еще", "больше"),
		rule(IntentSearch, matchPrefix, "грандшеф найди", "грандшеф", "найди", "поиск", "ищи"),
		rule(IntentFarewell, matchWhole, "пока", "выход", "закончить", "хватит", "все пока"),
		rule(IntentFarewell, matchContains, "до свидания", "спокойной ночи", "всего доброго", "до встречи"),
		rule(IntentGreeting, matchWhole, "привет", "приветик", "здравствуйте", "здравствуй",
			"добрый день", "доброе утро", "добрый вечер", "хай", "начать", "старт"),
		rule(IntentThanks, matchContains, "спасибо", "благодарю", "спс"),
		rule(IntentThanks, matchWhole, "отлично", "супер", "класс", "здорово"),
		rule(IntentHelp, matchContains, "помощь", "помоги", "что ты умеешь", "что умеешь",
			"справка", "как пользоваться"),
		rule(IntentSmallTalk, matchContains, "как дела", "как ты", "что нового", "как жизнь",
			"что делаешь", "расскажи о себе", "ты кто", "кто ты"),
		rule(IntentRecommend, matchContains, "посоветуй", "порекомендуй", "удиви меня",
			"что приготовить", "что готовить", "не знаю что", "что-нибудь", "случайный",
			"на твой вкус"),
	}}
}

// Classify 判斷意圖，未命中任何規則時為搜尋
func (c *KeywordClassifier) Classify(utterance string) Intent {
	tokens := nlp.Tokenize(utterance)
	if len(tokens) == 0 {
		return IntentSearch
	}
	for _, r := range c.rules {
		for _, phrase := range r.phrases {
			if matchPhrase(tokens, phrase, r.mode) {
				return r.intent
			}
		}
	}
	return IntentSearch
}

func matchPhrase(tokens, phrase []string, mode matchMode) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	switch mode {
	case matchWhole:
		return len(tokens) == len(phrase) && equalTokens(tokens, phrase)
	case matchPrefix:
		return equalTokens(tokens[:len(phrase)], phrase)
	default:
		for i := 0; i+len(phrase) <= len(tokens); i++ {
			if equalTokens(tokens[i:i+len(phrase)], phrase) {
				return true
			}
		}
		return false
	}
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasAbandonWord 句中是否有放棄選擇的字
func hasAbandonWord(utterance string) bool {
	for _, tok := range nlp.Tokenize(utterance) {
		if _, ok := abandonWords[tok]; ok {
			return true
		}
	}
	return false
}

// stripSearchCommand 去掉句首的搜尋指令
func stripSearchCommand(utterance string) (string, bool) {
	tokens := nlp.Tokenize(utterance)
	for _, cmd := range searchCommands {
		if matchPhrase(tokens, cmd, matchPrefix) {
			return strings.Join(tokens[len(cmd):], " "), true
		}
	}
	return strings.Join(tokens, " "), false
}
