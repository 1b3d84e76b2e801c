package internal

import (
	"context"
	"go-katextag/pkg"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch renders once and then again on every change to the page, data or
// config file until ctx is done. Render errors are logged, not returned, so a
// typo in the page does not end the session.
func Watch(ctx context.Context, c CLI, p *pkg.Pipeline) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, name := range []string{c.In, c.Data, c.Config} {
		if name == "" {
			continue
		}
		abs, err := filepath.Abs(name)
		if err != nil {
			return err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}
	configAbs := ""
	if c.Config != "" {
		configAbs, _ = filepath.Abs(c.Config)
	}

	render := func() {
		if err := RunFileMode(c, p); err != nil {
			slog.Error("render failed", "in", c.In, "error", err)
			return
		}
		slog.Info("rendered", "in", c.In, "out", c.Out)
	}
	render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !files[name] {
				continue
			}
			if name == configAbs {
				np, err := LoadPipeline(c)
				if err != nil {
					slog.Error("config reload failed", "config", c.Config, "error", err)
					continue
				}
				p = np
				slog.Info("config reloaded", "config", c.Config)
			}
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}
