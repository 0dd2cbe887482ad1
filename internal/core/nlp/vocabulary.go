package nlp

// DefaultSynonyms 常見食材的同義詞（雙向對應在建立 Normalizer 時補齊）
var DefaultSynonyms = map[string][]string{
	"картофель": {"картошка", "картошечка", "картофельный"},
	"гречка":    {"гречневая", "гречневый", "гречиха"},
	"рыба":      {"рыбный", "рыбка", "рыбешка"},
	"говядина":  {"говяжий", "говядинка"},
	"свинина":   {"свиной", "свининка"},
	"курица":    {"куриный", "курочка", "цыпленок"},
	"рис":       {"рисовый", "рисовая"},
	"помидор":   {"томат", "томатный"},
	"огурец":    {"огурчик"},
	"морковь":   {"морковка", "морковный"},
	"лук":       {"луковый", "луковица"},
	"чеснок":    {"чесночный"},
	"перец":     {"перцевый"},
	"капуста":   {"капустный"},
	"сыр":       {"сырный"},
	"яйцо":      {"яичный"},
	"молоко":    {"молочный"},
	"сметана":   {"сметанный"},
	"творог":    {"творожный"},
	"мука":      {"мучной"},
	"сахар":     {"сахарный"},
	"масло":     {"масляный"},
	"шоколад":   {"шоколадный"},
	"мед":       {"медовый"},
	"орех":      {"ореховый"},
	"яблоко":    {"яблочный"},
	"груша":     {"грушевый"},
	"вишня":     {"вишневый"},
	"клубника":  {"клубничный"},
	"малина":    {"малиновый"},
	"гриб":      {"грибной"},
}

// DefaultAmbiguous 形容詞形式容易誤配的主食詞
var DefaultAmbiguous = []string{"рис"}

// DefaultDishWords 視為「菜名」的詞，其餘詞視為食材
var DefaultDishWords = []string{
	"бургер", "пицца", "брюле", "оливье", "борщ", "цезарь", "харчо",
	"шашлык", "плов", "паста", "лазанья", "суши", "роллы", "блины", "блин",
	"сырники", "пельмени", "вареники", "оладьи", "манник", "печенье",
	"кекс", "бисквит", "ганаш", "вафли", "тосты", "омлет", "яичница",
	"каша", "смузи", "бутерброд", "салат", "суп", "чипсы", "рулет",
	"котлеты", "соус", "мусака", "пирог", "торт", "запеканка", "рагу",
	"жаркое", "пюре", "гуляш", "хлеб", "булочки", "пирожки", "крылышки",
	"наггетсы", "джерки", "жульен", "бульон", "десерт", "маффины",
}
