package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to the board file, such as saves from another
// worktree. Notifications are coalesced: the channel holds at most one
// pending signal. The channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	path, err := s.Path(ctx)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create board directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// The board is replaced by rename on save, so watch the directory.
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	name := filepath.Base(path)

	go func() {
		defer fsw.Close()
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
				s.logger.Debug("board file changed", "path", ev.Name, "op", ev.Op.String())
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.logger.Error("board watcher error", "error", err)
			}
		}
	}()

	return changes, nil
}
