package dialog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// IntentSelect 從列表中選擇，只用於紀錄
const IntentSelect Intent = "select"

// recommendScore 隨機推薦結果的分數
const recommendScore = 0.8

// Classifier 意圖判斷
type Classifier interface {
	Classify(utterance string) Intent
}

// SmallTalker 產生社交回覆，不可用時回傳空字串
type SmallTalker interface {
	GenerateSmallTalk(ctx context.Context, topic, utterance string) string
}

// Deps 引擎依賴
type Deps struct {
	Store     *Store
	Index     search.IndexSource
	Extractor extract.Extractor
	Ranker    search.Ranker
	// SmallTalk 可為 nil，使用固定回覆
	SmallTalk SmallTalker
	// Classifier 為 nil 時使用 KeywordClassifier
	Classifier Classifier
	// Rand 為 nil 時以時間為種子
	Rand *rand.Rand
}

// Engine 對話狀態機
type Engine struct {
	store          *Store
	index          search.IndexSource
	extractor      extract.Extractor
	ranker         search.Ranker
	talker         SmallTalker
	classifier     Classifier
	pager          search.Pager
	formatter      Formatter
	selector       Selector
	highConfidence float64

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewEngine 建立對話引擎
func NewEngine(cfg *config.Config, deps Deps) *Engine {
	pager := search.NewPager(cfg.Search.PageSize)
	e := &Engine{
		store:          deps.Store,
		index:          deps.Index,
		extractor:      deps.Extractor,
		ranker:         deps.Ranker,
		talker:         deps.SmallTalk,
		classifier:     deps.Classifier,
		pager:          pager,
		formatter:      NewFormatter(pager),
		selector:       NewSelector(cfg.Search.FuzzyMinScore),
		highConfidence: cfg.Search.HighConfidence,
		rand:           deps.Rand,
	}
	if e.store == nil {
		e.store = NewStore(cfg.Session.TTL)
	}
	if e.classifier == nil {
		e.classifier = NewKeywordClassifier()
	}
	if e.rand == nil {
		seed := uint64(time.Now().UnixNano())
		e.rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return e
}

// Store 會話存放處
func (e *Engine) Store() *Store { return e.store }

// ProcessTurn 處理一句使用者輸入；任何錯誤都轉為文字回覆
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, utterance string) (reply Reply) {
	start := time.Now()
	intent := IntentSearch
	defer func() {
		if r := recover(); r != nil {
			common.LogError("處理對話回合時發生 panic",
				zap.String("session_id", sessionID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			reply = e.formatter.Error(msgError)
		}
		common.LogTurn(sessionID, string(intent), string(reply.Kind), time.Since(start))
	}()

	if strings.TrimSpace(utterance) == "" {
		return e.formatter.Prompt(msgEmptyInput)
	}

	e.store.With(sessionID, func(state *SessionState) {
		intent, reply = e.turn(ctx, state, utterance)
	})
	return reply
}

// Welcome 新會話沒有輸入時的問候
func (e *Engine) Welcome() Reply {
	return e.formatter.SmallTalk(IntentGreeting, msgGreeting)
}

// ResetSession 清除會話狀態
func (e *Engine) ResetSession(sessionID string) bool {
	return e.store.Reset(sessionID)
}

// Session 會話狀態副本
func (e *Engine) Session(sessionID string) (SessionState, bool) {
	return e.store.Snapshot(sessionID)
}

// turn 依優先順序：放棄、選擇、翻頁、社交、推薦、搜尋
func (e *Engine) turn(ctx context.Context, state *SessionState, utterance string) (Intent, Reply) {
	intent := e.classifier.Classify(utterance)

	if intent == IntentAbandon || (state.AwaitingSelection && hasAbandonWord(utterance)) {
		return e.abandon(ctx, state, utterance)
	}

	if state.AwaitingSelection {
		chosen, result := e.selector.Resolve(state, utterance)
		switch result {
		case selectionFound:
			return IntentSelect, e.showRecipe(state, chosen, "")
		case selectionInvalid:
			return IntentSelect, e.formatter.Prompt(msgInvalidChoice)
		}
	}

	if intent == IntentNextPage {
		return intent, e.nextPage(state)
	}

	if intent.Social() {
		state.CurrentIntent = intent
		return intent, e.social(ctx, intent, utterance)
	}

	query, _ := stripSearchCommand(utterance)
	terms := e.extractor.Extract(ctx, query)
	if intent == IntentRecommend && terms.Empty() {
		return intent, e.recommend(state)
	}
	if terms.Empty() && state.AwaitingSelection {
		return IntentSelect, e.formatter.Prompt(msgInvalidChoice)
	}
	return IntentSearch, e.search(ctx, state, query, terms)
}

// abandon 放棄目前列表；同一句帶有搜尋指令與詞時直接搜尋
func (e *Engine) abandon(ctx context.Context, state *SessionState, utterance string) (Intent, Reply) {
	state.clearResults()
	state.CurrentIntent = IntentAbandon

	if rest, ok := stripSearchCommand(utterance); ok && rest != "" {
		if terms := e.extractor.Extract(ctx, rest); !terms.Empty() {
			return IntentSearch, e.search(ctx, state, rest, terms)
		}
	}
	return IntentAbandon, e.formatter.Prompt(msgAbandoned)
}

func (e *Engine) search(ctx context.Context, state *SessionState, text string, terms extract.Terms) Reply {
	state.clearResults()
	state.CurrentIntent = IntentSearch
	state.LastQuery = text

	if terms.Empty() {
		return e.formatter.Prompt(msgNothingFound)
	}

	results, err := e.ranker.Rank(ctx, search.Query{
		Dish:        terms.Dish,
		Ingredients: terms.Ingredients,
		Text:        text,
	})
	if err != nil {
		common.LogWarn("搜尋食譜失敗",
			zap.String("session_id", state.ID),
			zap.Strings("terms", terms.All()),
			zap.Error(err),
		)
		return e.formatter.Error(msgError)
	}
	if len(results) == 0 {
		return e.formatter.Prompt(fmt.Sprintf(msgNothingFoundFor, terms.Display()))
	}

	state.AllResults = results
	if len(results) == 1 && results[0].Score > e.highConfidence {
		return e.showRecipe(state, results[0], msgPerfectMatch)
	}
	return e.presentPage(state, "")
}

func (e *Engine) nextPage(state *SessionState) Reply {
	next := state.CurrentPage + 1
	if len(state.AllResults) == 0 || !e.pager.HasPage(len(state.AllResults), next) {
		return e.formatter.Prompt(msgNoMore)
	}
	state.CurrentPage = next
	state.CurrentIntent = IntentNextPage
	heading := ""
	if state.LastQuery == "" {
		heading = msgRecommendHeading
	}
	return e.presentPage(state, heading)
}

// presentPage 顯示目前頁面並等待選擇
func (e *Engine) presentPage(state *SessionState, heading string) Reply {
	reply := e.formatter.List(heading, state.AllResults, state.CurrentPage)
	state.LastShown = reply.Results
	state.AwaitingSelection = true
	return reply
}

// showRecipe 顯示單一食譜，保留結果供之後翻頁
func (e *Engine) showRecipe(state *SessionState, chosen search.ScoredRecipe, heading string) Reply {
	state.markShown(chosen.Recipe.Title)
	return e.formatter.Detail(heading, chosen.Recipe)
}

func (e *Engine) social(ctx context.Context, intent Intent, utterance string) Reply {
	text := ""
	if e.talker != nil {
		text = e.talker.GenerateSmallTalk(ctx, string(intent), utterance)
	}
	if text == "" {
		text = socialFallback[intent]
	}
	return e.formatter.SmallTalk(intent, text)
}

// recommend 隨機挑選尚未顯示過的食譜，最多一頁
func (e *Engine) recommend(state *SessionState) Reply {
	idx := e.index.Current()
	if idx.Len() == 0 {
		return e.formatter.Prompt(msgEmptyCorpus)
	}

	candidates := make([]search.ScoredRecipe, 0, idx.Len())
	for i, r := range idx.Recipes() {
		if state.HasShown(r.Title) {
			continue
		}
		candidates = append(candidates, search.ScoredRecipe{Recipe: r, Position: i, Score: recommendScore})
	}
	if len(candidates) == 0 {
		return e.formatter.Prompt(msgNoMore)
	}

	e.randMu.Lock()
	e.rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	e.randMu.Unlock()
	if len(candidates) > e.pager.Size {
		candidates = candidates[:e.pager.Size]
	}

	state.clearResults()
	state.CurrentIntent = IntentRecommend
	state.LastQuery = ""
	state.AllResults = candidates
	return e.presentPage(state, msgRecommendHeading)
}
