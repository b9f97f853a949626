package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it changes and sends each
// successfully parsed result on out. Parse and read failures go to errs and
// the previous config stays in effect. Watch returns when ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors that
// replace the file by rename are still noticed.
func Watch(ctx context.Context, path string, out chan<- *Config, errs chan<- error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				// A rename away leaves nothing to read until the new file lands.
				send(ctx, errs, err)
				continue
			}
			send(ctx, out, cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			send(ctx, errs, err)
		}
	}
}

func send[T any](ctx context.Context, ch chan<- T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}
