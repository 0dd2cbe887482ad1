package dialog

// 固定回覆文字
const (
	msgEmptyInput      = "Пожалуйста, опишите, что вы хотите приготовить."
	msgError           = "Извините, произошла ошибка. Попробуйте еще раз."
	msgInvalidChoice   = "Рецепт не найден. Выберите номер или название из списка."
	msgNoMore          = "Больше нет рецептов для показа. Попробуйте новый поиск."
	msgNothingFound    = "Не нашла подходящих рецептов. Попробуйте другие слова."
	msgNothingFoundFor = "Не нашла рецептов, содержащих: %s"
	msgAbandoned       = "Хорошо, давайте поищем другой рецепт. Напишите что вы хотите приготовить."
	msgEmptyCorpus     = "Пока у меня нет рецептов. Загляните чуть позже."

	msgFoundHeading     = "Нашла %d %s (показано %d-%d):"
	msgRecommendHeading = "Вот несколько случайных рецептов:"
	msgPerfectMatch     = "🎯 Отлично! Нашла для вас идеальный рецепт:"
	msgPageIndicator    = "Страница %d из %d"
	msgNavigationHint   = "Укажите номер рецепта 1, 2, 3... или название для выбора. Напишите 'другой рецепт' для нового поиска."

	msgGreeting  = "Привет! Я ваш кулинарный помощник. Что вы хотите приготовить?"
	msgFarewell  = "До свидания! Надеюсь, нашли что-то вкусное! 🍽️"
	msgThanks    = "Пожалуйста! Если захотите найти ещё рецепт, просто скажите."
	msgSmallTalk = "Я кулинарный помощник и лучше всего разбираюсь в рецептах. Что бы вы хотели приготовить?"
	msgHelp      = "Назовите блюдо или продукты, например: «найди суп с курицей». " +
		"Из списка выбирайте номер или название, «еще» покажет следующую страницу, " +
		"«другой рецепт» начнет новый поиск."
)

// socialFallback 語言模型不可用時的回覆
var socialFallback = map[Intent]string{
	IntentGreeting:  msgGreeting,
	IntentFarewell:  msgFarewell,
	IntentThanks:    msgThanks,
	IntentSmallTalk: msgSmallTalk,
	IntentHelp:      msgHelp,
}

// pluralRecipes 俄文數詞後 "рецепт" 的變格
func pluralRecipes(n int) string {
	mod100 := n % 100
	mod10 := n % 10
	switch {
	case mod100 >= 11 && mod100 <= 14:
		return "рецептов"
	case mod10 == 1:
		return "рецепт"
	case mod10 >= 2 && mod10 <= 4:
		return "рецепта"
	default:
		return "рецептов"
	}
}
