package configwatcher

import (
	"context"
	"interview_marker_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 文件稳定后调用
type Reloader func()

const debounce = time.Second

// WatchFile 监听单个文件的写入/重建，防抖后触发 reloader，ctx 取消时退出。
// 监听的是所在目录，编辑器"写临时文件再改名"的保存方式也能捕获。
func WatchFile(ctx context.Context, path string, reloader Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					// 防抖处理
					timer.Reset(debounce)
				}
			case <-timer.C:
				logger.Log.Info("watched file changed", zap.String("path", absPath))
				reloader()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Error("file watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
