package service

import (
	"fmt"

	"recipe-assistant/internal/core/ai/provider"
)

// 閒聊主題，與對話意圖名稱一致
const (
	TopicGreeting  = "greeting"
	TopicSmallTalk = "smalltalk"
	TopicThanks    = "thanks"
)

var stopSequences = []string{"###", "Пользователь:", "User:"}

const analyzeTemplate = `Проанализируй кулинарный запрос и выдели ключевые слова для поиска рецептов.

Запрос: "%s"

Ответь в формате:
БЛЮДА: слово1, слово2, слово3
ИНГРЕДИЕНТЫ: слово1, слово2, слово3

Правила:
- В БЛЮДАХ: названия конкретных блюд (пицца, борщ, салат, омлет)
- В ИНГРЕДИЕНТАХ: продукты и компоненты (курица, картошка, сыр, гречка)
- Только существительные, только кулинарные термины
- Игнорируй глаголы, прилагательные, местоимения

Примеры:
Запрос: "Найди рецепт греческой мусаки с курицей"
БЛЮДА: мусака
ИНГРЕДИЕНТЫ: курица

Запрос: "Хочу салат с помидорами и огурцами"
БЛЮДА: салат
ИНГРЕДИЕНТЫ: помидоры, огурцы

Запрос: "Что приготовить из картошки и грибов"
БЛЮДА:
ИНГРЕДИЕНТЫ: картошка, грибы

Твой анализ:`

// analyzeRequest 抽詞提示，低溫度以求穩定
func analyzeRequest(utterance string, maxTokens int) *provider.Request {
	return &provider.Request{
		Messages: []provider.Message{
			{Role: "user", Content: fmt.Sprintf(analyzeTemplate, utterance)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		TopP:        0.8,
		Stop:        stopSequences,
	}
}

// smallTalkRequest 閒聊提示；未知主題回傳 nil
func smallTalkRequest(topic, utterance string, maxTokens int) *provider.Request {
	var prompt string
	switch topic {
	case TopicGreeting:
		prompt = "Пользователь поздоровался. Ответь кратко и дружелюбно, представься как кулинарный помощник и предложи помощь с рецептами.\n\nОтвет (1-2 предложения):"
	case TopicSmallTalk:
		prompt = fmt.Sprintf("Пользователь: %q\n\nТы - кулинарный помощник. Ответь кратко и вежливо, верни разговор к теме рецептов.\n\nОтвет (1-2 предложения):", utterance)
	case TopicThanks:
		prompt = fmt.Sprintf("Пользователь поблагодарил: %q\n\nОтветь кратко и вежливо, предложи дальнейшую помощь.\n\nОтвет (1 предложение):", utterance)
	default:
		return nil
	}
	return &provider.Request{
		Messages:    []provider.Message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		TopP:        0.8,
		Stop:        stopSequences,
	}
}
