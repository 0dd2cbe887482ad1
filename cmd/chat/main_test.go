package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

func init() {
	common.InitNopLogger()
}

func TestCorpusFlagFlowsIntoConfig(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("corpus", "/tmp/flag-recipes.json"))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag-recipes.json", cfg.Corpus.Path)
}

func TestConverse(t *testing.T) {
	cfg := config.Default()
	norm := nlp.NewNormalizer(nlp.IdentityLemmatizer{}, nil, nil)
	catalog := recipe.NewStaticCatalog(context.Background(), []common.Recipe{
		{Title: "Куриный суп", Ingredients: []string{"курица", "вода"}},
		{Title: "Плов", Ingredients: []string{"рис", "морковь"}},
	}, norm)
	engine := dialog.NewEngine(cfg, dialog.Deps{
		Index:     catalog,
		Extractor: extract.NewDeterministic(norm, catalog, nil),
		Ranker:    search.NewLexical(cfg.Search, catalog),
	})

	in := strings.NewReader("плов\n\nпока\nникогда не прочитается\n")
	var out bytes.Buffer
	require.NoError(t, converse(context.Background(), engine, "cli", in, &out))

	text := out.String()
	assert.Contains(t, text, "Плов")
	assert.NotContains(t, text, "никогда")
	assert.Equal(t, 3, strings.Count(text, "> "))
}
