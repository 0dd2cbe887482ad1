package recipe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// Watcher 監看語料檔，變更後延遲一段時間再重新載入
type Watcher struct {
	catalog  *Catalog
	debounce time.Duration
	watcher  *fsnotify.Watcher
	file     string

	mu     sync.Mutex
	timer  *time.Timer
	reload func(ctx context.Context) error
}

// NewWatcher 監看語料檔所在目錄（編輯器常以 rename 方式寫檔）
func NewWatcher(catalog *Catalog, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	file, err := filepath.Abs(catalog.Path())
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("resolve corpus path: %w", err)
	}
	if err := w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(file), err)
	}

	return &Watcher{
		catalog:  catalog,
		debounce: debounce,
		watcher:  w,
		file:     file,
		reload:   catalog.Load,
	}, nil
}

// Run 處理檔案事件直到 ctx 結束
func (w *Watcher) Run(ctx context.Context) {
	common.LogInfo("開始監看食譜檔案", zap.String("path", w.file))
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.LogWarn("檔案監看錯誤", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.reload(ctx); err == nil {
			common.LogInfo("食譜檔案已重新載入", zap.Int("recipes", w.catalog.Size()))
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close 停止監看
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
