package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/pkg/common"
)

func identityNormalizer() *nlp.Normalizer {
	return nlp.NewNormalizer(nlp.IdentityLemmatizer{}, map[string][]string{
		"potato": {"spud"},
	}, nil)
}

func sampleRecipes() []common.Recipe {
	return []common.Recipe{
		{
			Title:       "Chicken Soup",
			Description: common.StringPtr("Warm and simple"),
			Ingredients: []string{"chicken", "water", "carrot"},
			Tags:        []string{"soups"},
		},
		{
			Title:       "Potato Soup",
			Ingredients: []string{"potato", "water", "onion"},
		},
	}
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1), 0}
	}
	return out, nil
}

func TestBuildIndex(t *testing.T) {
	idx := Build(context.Background(), sampleRecipes(), identityNormalizer())

	require.Equal(t, 2, idx.Len())
	doc := idx.Document(0)
	assert.Equal(t, "chicken soup", doc.Title)
	assert.Contains(t, doc.SearchText, "chicken soup chicken soup chicken soup")
	assert.Contains(t, doc.SearchText, "warm and simple")
	assert.Contains(t, doc.Lemmas, "carrot")
	assert.Contains(t, doc.Lemmas, "soups")
	assert.Contains(t, doc.TitleLemmas, "chicken")
	assert.NotContains(t, doc.TitleLemmas, "carrot")

	assert.True(t, idx.HasTerm("water"))
	assert.True(t, idx.HasTerm("spud"), "synonyms of present words are searchable")
	assert.False(t, idx.HasTerm("beef"))
	assert.False(t, idx.HasEmbeddings())
}

func TestBuildIndexWithEmbeddings(t *testing.T) {
	embedder := &fakeEmbedder{}
	idx := Build(context.Background(), sampleRecipes(), identityNormalizer(), WithEmbedder(embedder, 1))

	assert.Equal(t, 2, embedder.calls)
	require.True(t, idx.HasEmbeddings())
	assert.Len(t, idx.Embedding(1), 2)
}

func TestBuildIndexEmbeddingFailureKeepsLexicalIndex(t *testing.T) {
	idx := Build(context.Background(), sampleRecipes(), identityNormalizer(),
		WithEmbedder(&fakeEmbedder{err: errors.New("offline")}, 8))

	assert.Equal(t, 2, idx.Len())
	assert.False(t, idx.HasEmbeddings())
	assert.Nil(t, idx.Embedding(0))
}

func TestParseCorpus(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		recipes, err := ParseCorpus([]byte(`[{"title":"A","ingredients":["x"],"message_id":7,"time":"10 мин"},{"title":" "},{"title":"B"}]`))
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "A", recipes[0].Title)
		assert.Equal(t, int64(7), recipes[0].SourceID)
		assert.Equal(t, "10 мин", common.StringValue(recipes[0].Time))
		assert.Nil(t, recipes[1].Time)
	})

	t.Run("single object", func(t *testing.T) {
		recipes, err := ParseCorpus([]byte(`{"title":"Solo"}`))
		require.NoError(t, err)
		require.Len(t, recipes, 1)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseCorpus([]byte(`[{"title":`))
		require.Error(t, err)
		ce, ok := common.AsCustomError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrCodeCorpusUnavail, ce.Code)
	})
}

func TestLoadCorpusOrEmpty(t *testing.T) {
	recipes := LoadCorpusOrEmpty(filepath.Join(t.TempDir(), "missing.json"))
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func writeCorpus(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestCatalogLoadAndSwap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	writeCorpus(t, path, `[{"title":"Борщ"}]`)

	catalog := NewCatalog(path, identityNormalizer())
	assert.Equal(t, 0, catalog.Size())

	require.NoError(t, catalog.Load(context.Background()))
	before := catalog.Current()
	assert.Equal(t, 1, catalog.Size())
	assert.True(t, catalog.HasTerm("борщ"))

	writeCorpus(t, path, `[{"title":"Борщ"},{"title":"Плов"}]`)
	require.NoError(t, catalog.Load(context.Background()))
	assert.Equal(t, 2, catalog.Size())
	assert.Equal(t, 1, before.Len(), "previous index is never mutated")

	writeCorpus(t, path, `not json`)
	require.Error(t, catalog.Load(context.Background()))
	assert.Equal(t, 2, catalog.Size(), "failed reload keeps the current index")
}

func TestCatalogMissingFileStartsEmpty(t *testing.T) {
	catalog := NewCatalog(filepath.Join(t.TempDir(), "nope.json"), identityNormalizer())
	require.Error(t, catalog.Load(context.Background()))
	assert.Equal(t, 0, catalog.Size())
	assert.False(t, catalog.HasTerm("борщ"))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	writeCorpus(t, path, `[{"title":"Борщ"}]`)

	catalog := NewCatalog(path, identityNormalizer())
	require.NoError(t, catalog.Load(context.Background()))

	w, err := NewWatcher(catalog, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeCorpus(t, path, `[{"title":"Борщ"},{"title":"Плов"},{"title":"Омлет"}]`)

	require.Eventually(t, func() bool { return catalog.Size() == 3 }, 5*time.Second, 20*time.Millisecond)
}
