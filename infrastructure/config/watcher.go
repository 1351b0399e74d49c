package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "30s".
type Duration time.Duration

// UnmarshalYAML parses Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Overrides are the runtime-tunable settings operators can change without a
// redeploy. Zero values leave the corresponding Config field untouched.
type Overrides struct {
	CacheListTTL      Duration `yaml:"cache_list_ttl"`
	CacheCountTTL     Duration `yaml:"cache_count_ttl"`
	CacheDuplicateTTL Duration `yaml:"cache_duplicate_ttl"`
	LogLevel          string   `yaml:"log_level"`
	EnableMetrics     *bool    `yaml:"enable_metrics"`
	EnableEvents      *bool    `yaml:"enable_events"`
}

// Watcher reloads an overrides file whenever it changes on disk.
type Watcher struct {
	path     string
	logger   *zap.Logger
	mu       sync.RWMutex
	current  Overrides
	onChange []func(Overrides)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher loads the overrides file and starts watching it. A missing file
// is not an error; overrides stay empty until the file appears.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	w.reload()

	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would be lost.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Current returns the last successfully loaded overrides.
func (w *Watcher) Current() Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(fn func(Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Apply copies the overrides onto the config.
func (o Overrides) Apply(cfg *Config) {
	if o.CacheListTTL > 0 {
		cfg.CacheListTTL = time.Duration(o.CacheListTTL)
	}
	if o.CacheCountTTL > 0 {
		cfg.CacheCountTTL = time.Duration(o.CacheCountTTL)
	}
	if o.CacheDuplicateTTL > 0 {
		cfg.CacheDuplicateTTL = time.Duration(o.CacheDuplicateTTL)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.EnableMetrics != nil {
		cfg.EnableMetrics = *o.EnableMetrics
	}
	if o.EnableEvents != nil {
		cfg.EnableEvents = *o.EnableEvents
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("overrides file unreadable", zap.String("path", w.path), zap.Error(err))
		}
		return
	}

	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		// Keep the previous overrides; a half-saved file must not wipe them.
		w.logger.Warn("overrides file invalid", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = overrides
	callbacks := make([]func(Overrides), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("config overrides loaded", zap.String("path", w.path))
	for _, fn := range callbacks {
		fn(overrides)
	}
}
