package nlp

// stopWords 搜尋時忽略的詞：問候、語氣詞、介系詞與指令動詞
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"привет", "здравствуйте", "пока", "спасибо", "пожалуйста", "давай", "хочу", "хочется",
		"найди", "найти", "ищи", "искать", "поиск", "покажи", "показать", "подскажи", "посоветуй",
		"рецепт", "рецепты", "рецепта", "рецептов", "блюдо", "блюда", "сделать", "приготовить", "приготовь",
		"можно", "что", "как", "где", "когда", "почему", "это", "то", "такой", "чтобы", "ты", "мне",
		"для", "меня", "чтото", "нибудь", "чего", "чем", "со", "из", "на", "в", "с", "и", "или", "у",
		"какой", "какая", "какое", "какие", "грандшеф", "гранд", "шеф", "еще", "ещё",
		"может", "быть", "есть", "вкусное", "вкусный", "вкусненькое", "какойнибудь", "без", "по",
		"сегодня", "завтра", "бы", "мы", "нам", "вы", "вам",
	} {
		stopWords[Fold(w)] = struct{}{}
	}
}

// IsStopWord 判斷已折疊的詞是否為停用詞
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
