package xconf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 配置变更回调
// 重载成功时 err 为 nil，settings 为新生效的配置
type WatchCallback func(settings Settings, err error)

// defaultDebounce 默认防抖窗口
const defaultDebounce = 100 * time.Millisecond

// WatchOption 监视器选项
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间
//
// 防抖窗口内的多次变更只触发一次重载，默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 配置文件监视器
//
// 监视配置文件所在目录而非文件本身：编辑器保存可能先删除再
// 创建，直接监视文件会丢失事件。
type Watcher struct {
	cfg      *koanfConfig
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	filename string

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	timerMu sync.Mutex
	timer   *time.Timer
}

// Watch 监视配置文件变更并自动重载
//
// 返回的 Watcher 需调用 StartAsync 或 Start 开始监视，Stop 停止。
// 从字节数据创建的配置不可监视，返回 ErrNotWatchable。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("xconf: unsupported config type %T", cfg)
	}
	if kc.isBytes || kc.path == "" {
		return nil, ErrNotWatchable
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}

	w := &Watcher{
		cfg:      kc,
		fs:       fs,
		callback: callback,
		debounce: defaultDebounce,
		filename: filepath.Base(kc.path),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(kc.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(
			fmt.Errorf("xconf: watch directory %s: %w", dir, err),
			fs.Close(),
		)
	}
	return w, nil
}

// Watch 监视此配置实例的文件变更
func (c *koanfConfig) Watch(callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	return Watch(c, callback, opts...)
}

// Start 启动监视
// 此方法会阻塞，通常应在 goroutine 中调用
func (w *Watcher) Start() {
	var first bool
	w.startOnce.Do(func() { first = true })
	if first {
		w.loop()
	}
}

// StartAsync 异步启动监视，立即返回
func (w *Watcher) StartAsync() {
	var first bool
	w.startOnce.Do(func() { first = true })
	if first {
		go w.loop()
	}
}

// Stop 停止监视，重复调用无副作用
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		// 停止防抖定时器，防止 Stop 后仍触发回调
		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()

		err = w.fs.Close()
	})
	return err
}

// loop 监视循环，fs.Close 关闭事件通道后退出
func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.scheduleReload()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.notify(fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// relevant 判断事件是否表示配置文件的内容更新
// Write 对应就地修改，Create/Rename 覆盖编辑器的原子写入模式
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != w.filename {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// scheduleReload 重置防抖定时器，窗口结束后执行一次重载
func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.notify(w.cfg.Reload())
	})
}

// notify 调用变更回调
func (w *Watcher) notify(err error) {
	if w.callback == nil {
		return
	}
	w.callback(w.cfg.Settings(), err)
}
