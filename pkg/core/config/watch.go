package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
)

// Watch reloads the config file at path whenever it changes and passes
// the new configuration to onChange. Invalid files are reported to
// onError and the previous configuration stays in effect. Watch blocks
// until ctx is cancelled.
//
// The parent directory is watched rather than the file, since editors
// usually save by writing a new file and renaming it over the old one.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	path = filepath.Clean(os.ExpandEnv(path))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create config watcher").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Watch")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return mdwerror.Wrap(err, "failed to watch config directory").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Watch").
			WithDetail("path", path)
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				report(err)
				continue
			}
			if onChange != nil {
				onChange(cfg)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(mdwerror.Wrap(err, "config watcher error").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Watch"))
		}
	}
}
