package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/core/nlp"
)

type vocab map[string]struct{}

func newVocab(words ...string) vocab {
	v := make(vocab, len(words))
	for _, w := range words {
		v[w] = struct{}{}
	}
	return v
}

func (v vocab) HasTerm(lemma string) bool {
	_, ok := v[lemma]
	return ok
}

type fakeAnalyzer struct {
	dish        []string
	ingredients []string
	calls       int
}

func (f *fakeAnalyzer) AnalyzeTerms(_ context.Context, _ string) ([]string, []string) {
	f.calls++
	return f.dish, f.ingredients
}

func identity(synonyms map[string][]string) *nlp.Normalizer {
	return nlp.NewNormalizer(nlp.IdentityLemmatizer{}, synonyms, nil)
}

func TestDeterministicExtract(t *testing.T) {
	norm := identity(map[string][]string{"картофель": {"картошка"}})
	ex := NewDeterministic(norm, newVocab("суп", "картофель", "курица"), []string{"суп", "салат"})

	tests := []struct {
		name        string
		utterance   string
		dish        []string
		ingredients []string
	}{
		{"dish and ingredient", "хочу суп и курица", []string{"суп"}, []string{"курица"}},
		{"synonym resolves to corpus word", "картошка", nil, []string{"картофель"}},
		{"stop words only", "привет, покажи рецепт пожалуйста", nil, nil},
		{"unknown words dropped", "суп из дракона", []string{"суп"}, nil},
		{"duplicates collapse", "суп суп СУП", []string{"суп"}, nil},
		{"short tokens ignored", "с у", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := ex.Extract(context.Background(), tt.utterance)
			assert.Equal(t, tt.dish, terms.Dish)
			assert.Equal(t, tt.ingredients, terms.Ingredients)
		})
	}
}

func TestDeterministicKeepsSurfaceWords(t *testing.T) {
	norm := identity(map[string][]string{"картофель": {"картошка"}})
	ex := NewDeterministic(norm, newVocab("картофель"), nil)

	terms := ex.Extract(context.Background(), "Картошка")
	assert.Equal(t, []string{"картошка"}, terms.Words)
	assert.Equal(t, "картошка", terms.Display())
}

func TestDeterministicWithSnowball(t *testing.T) {
	norm := nlp.NewDefault(nlp.NewSnowballLemmatizer(), nlp.DefaultAmbiguous)
	soup := norm.Lemmatize("суп")
	ex := NewDeterministic(norm, newVocab(soup), nil)

	terms := ex.Extract(context.Background(), "найди супы")
	assert.Equal(t, []string{soup}, terms.Dish)
	assert.Empty(t, terms.Ingredients)
}

func TestFromWords(t *testing.T) {
	ex := NewDeterministic(identity(nil), newVocab("паста", "сыр", "томат"), nil)

	terms := ex.FromWords([]string{"паста"}, []string{"сыр", "томат", "единорог"})
	assert.Equal(t, []string{"паста"}, terms.Dish)
	assert.Equal(t, []string{"сыр", "томат"}, terms.Ingredients)
	assert.Equal(t, []string{"паста", "сыр", "томат"}, terms.All())
}

func TestAnalyzerStrategy(t *testing.T) {
	norm := identity(nil)
	fallback := NewDeterministic(norm, newVocab("плов", "баранина", "суп"), nil)

	t.Run("uses analyzer terms", func(t *testing.T) {
		fa := &fakeAnalyzer{dish: []string{"плов"}, ingredients: []string{"баранина"}}
		terms := NewAnalyzer(fa, fallback).Extract(context.Background(), "что-то про плов")
		assert.Equal(t, 1, fa.calls)
		assert.Equal(t, []string{"плов"}, terms.Dish)
		assert.Equal(t, []string{"баранина"}, terms.Ingredients)
	})

	t.Run("empty analyzer result falls back", func(t *testing.T) {
		fa := &fakeAnalyzer{}
		terms := NewAnalyzer(fa, fallback).Extract(context.Background(), "суп")
		assert.Equal(t, 1, fa.calls)
		assert.Equal(t, []string{"суп"}, terms.Dish)
	})

	t.Run("analyzer terms outside vocabulary fall back", func(t *testing.T) {
		fa := &fakeAnalyzer{dish: []string{"рамен"}}
		terms := NewAnalyzer(fa, fallback).Extract(context.Background(), "суп")
		assert.Equal(t, []string{"суп"}, terms.Dish)
	})
}

func TestNewSelectsStrategy(t *testing.T) {
	fallback := NewDeterministic(identity(nil), newVocab(), nil)

	_, ok := New(false, &fakeAnalyzer{}, fallback).(*Deterministic)
	require.True(t, ok)
	_, ok = New(true, nil, fallback).(*Deterministic)
	require.True(t, ok)
	_, ok = New(true, &fakeAnalyzer{}, fallback).(*Analyzer)
	require.True(t, ok)
}

func TestTermsEmpty(t *testing.T) {
	assert.True(t, Terms{}.Empty())
	assert.False(t, Terms{Ingredients: []string{"сыр"}}.Empty())
}
