package git

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bashhack/gitdoc/internal/logger"
)

// gitStateFiles are the files inside the git directory whose changes mean
// the index, HEAD or merge state moved.
var gitStateFiles = map[string]bool{
	"HEAD":       true,
	"index":      true,
	"MERGE_HEAD": true,
}

// stateWatcher turns filesystem events under the worktree into state-change
// callbacks. Directories created after start are watched as they appear.
type stateWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	gitDir  string
	fn      func()
	logger  logger.Logger

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// OnStateChanged implements Repository using fsnotify. Every directory of
// the worktree is watched except the git directory, where only the state
// files are of interest.
func (r *Repo) OnStateChanged(fn func()) (Subscription, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &stateWatcher{
		watcher: fsw,
		root:    r.root,
		gitDir:  r.gitDir,
		fn:      fn,
		logger:  r.logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	if err := sw.addTree(r.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if sw.gitDir != "" {
		if err := fsw.Add(sw.gitDir); err != nil {
			r.logger.Warning("Not watching git directory %s: %v", sw.gitDir, err)
		}
	}

	go sw.run()

	r.logger.Info("Watching %s for changes", r.root)
	return sw, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (sw *stateWatcher) Close() error {
	sw.closeOnce.Do(func() {
		close(sw.stopCh)
		sw.closeErr = sw.watcher.Close()
		<-sw.doneCh
	})
	return sw.closeErr
}

func (sw *stateWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable entries, continue walking
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || p == sw.gitDir {
			return filepath.SkipDir
		}
		if err := sw.watcher.Add(p); err != nil {
			if p == dir {
				return err
			}
			sw.logger.Warning("Failed to watch %s: %v", p, err)
		}
		return nil
	})
}

func (sw *stateWatcher) run() {
	defer close(sw.doneCh)

	for {
		select {
		case <-sw.stopCh:
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) && sw.isWorktreeDir(event.Name) {
				if err := sw.addTree(event.Name); err != nil {
					sw.logger.Warning("Failed to watch new directory %s: %v", event.Name, err)
				}
			}
			sw.fn()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warning("File watcher error: %v", err)
		}
	}
}

func (sw *stateWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if sw.gitDir != "" && filepath.Dir(event.Name) == sw.gitDir {
		return gitStateFiles[filepath.Base(event.Name)]
	}
	// lock files and the like from a nested .git we are not watching
	return !strings.Contains(filepath.ToSlash(event.Name), "/.git/")
}

func (sw *stateWatcher) isWorktreeDir(path string) bool {
	if filepath.Base(path) == ".git" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
