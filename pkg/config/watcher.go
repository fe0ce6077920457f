package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/credgate/credgate/pkg/observability/logging"
)

// WatchFile watches the config file and swaps the global config on changes.
// Invalid replacement files are logged and skipped; the previous config stays
// active. Blocks until ctx is cancelled, so run it on its own goroutine.
func WatchFile(ctx context.Context, configPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Errorf("Config watcher could not start: %v", err)
		return
	}
	defer watcher.Close()

	cfgFile := configPath
	cfgDir := filepath.Dir(cfgFile)

	// Watch both the file and its directory to handle symlink swaps
	if err := watcher.Add(cfgDir); err != nil {
		logging.Errorf("Config watcher could not watch %s: %v", cfgDir, err)
		return
	}
	_ = watcher.Add(cfgFile) // best-effort; may fail if file replaced by symlink later

	// Debounce events
	var (
		pending bool
		last    time.Time
	)

	reload := func() {
		newCfg, err := Parse(cfgFile)
		if err != nil {
			logging.Warnf("Config reload failed for %s, keeping previous config: %v", cfgFile, err)
			return
		}
		Replace(newCfg)
		logging.Infof("Config reloaded from %s", cfgFile)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
				if filepath.Base(ev.Name) == filepath.Base(cfgFile) || filepath.Dir(ev.Name) == cfgDir {
					if !pending || time.Since(last) > 250*time.Millisecond {
						pending = true
						last = time.Now()
						// Slight delay to let file settle
						go func() { time.Sleep(300 * time.Millisecond); reload() }()
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Errorf("Config watcher error: %v", err)
		}
	}
}
