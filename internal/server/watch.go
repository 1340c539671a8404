package server

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	rendertemplate "github.com/goliatone/go-contactform/pkg/render/template"
)

const reloadDebounce = 100 * time.Millisecond

// watchTemplates reloads templates after files under watchDir change. Bursts
// of events (editors often write then rename) collapse into one reload.
func (s *Server) watchTemplates(ctx context.Context) error {
	var reloader rendertemplate.Reloader
	if templated, ok := s.renderer.(interface {
		Templates() rendertemplate.TemplateRenderer
	}); ok {
		reloader, _ = templated.Templates().(rendertemplate.Reloader)
	}
	if reloader == nil {
		s.logger.Warn("template renderer does not support reloading; watch disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("server: template watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(s.watchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("server: watch %q: %w", s.watchDir, err)
	}
	s.logger.Info("watching templates", zap.String("dir", s.watchDir))

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(evt.Name, ".tmpl") || evt.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("template watcher error", zap.Error(err))
		case <-timer.C:
			if err := reloader.Reload(); err != nil {
				s.logger.Error("reload templates", zap.Error(err))
				continue
			}
			s.logger.Info("templates reloaded")
		}
	}
}
