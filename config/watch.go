package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the files of all file backed sources and calls onChange when one of
// them is written, created or replaced. It does not reload by itself. The callback decides
// when to call Load(), typically by requesting a daemon reload.
// The directories are watched rather than the files, so editors replacing
// a file by renaming are handled. Watch returns when ctx is done.
func (c *Config) Watch(ctx context.Context, onChange func(fsnotify.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range c.Files() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[filepath.Clean(abs)] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
		c.notepad.DEBUG.Printf("watching %s", d)
	}

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(ev.Name)] || ev.Op&relevant == 0 {
				continue
			}
			c.notepad.INFO.Printf("%s changed (%s)", ev.Name, ev.Op)
			onChange(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.notepad.ERROR.Printf("watch: %s", err)
		}
	}
}
