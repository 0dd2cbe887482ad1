package recipe

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// LoadCorpus 讀取 recipes.json（陣列或單一物件）
// 沒有標題的紀錄會被略過，其餘保持原始順序
func LoadCorpus(path string) ([]common.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ErrCorpusUnavailable.Wrap(fmt.Errorf("read %s: %w", path, err))
	}
	return ParseCorpus(data)
}

// ParseCorpus 解析食譜 JSON
func ParseCorpus(data []byte) ([]common.Recipe, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var recipes []common.Recipe
	if trimmed[0] == '{' {
		var single common.Recipe
		if err := common.ParseJSONBytes(trimmed, &single); err != nil {
			return nil, common.ErrCorpusUnavailable.Wrap(fmt.Errorf("parse recipe: %w", err))
		}
		recipes = []common.Recipe{single}
	} else if err := common.ParseJSONBytes(trimmed, &recipes); err != nil {
		return nil, common.ErrCorpusUnavailable.Wrap(fmt.Errorf("parse recipes: %w", err))
	}

	out := recipes[:0]
	skipped := 0
	for _, r := range recipes {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			skipped++
			continue
		}
		out = append(out, r)
	}
	if skipped > 0 {
		common.LogWarn("略過沒有標題的食譜", zap.Int("count", skipped))
	}
	return out, nil
}

// LoadCorpusOrEmpty 讀取失敗時回傳空集合並記錄警告
func LoadCorpusOrEmpty(path string) []common.Recipe {
	recipes, err := LoadCorpus(path)
	if err != nil {
		common.LogWarn("食譜資料無法讀取，使用空資料集",
			zap.String("path", path),
			zap.Error(err),
		)
		return []common.Recipe{}
	}
	return recipes
}
