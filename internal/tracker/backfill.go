package tracker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Backfill seeds the ledger from files already on disk under root, using
// each file's modification time as its creation time. Digesting dominates
// the cost, so files are inspected by a small worker pool. Unreadable
// entries are skipped. Backfill records no folder switches: walking a tree
// is not navigation.
func (t *Tracker) Backfill(ctx context.Context, root string, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			t.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	workCh := make(chan string, len(paths))
	for _, p := range paths {
		workCh <- p
	}
	close(workCh)

	var (
		wg      sync.WaitGroup
		tracked atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				if ctx.Err() != nil {
					return
				}
				info, err := os.Stat(path)
				if err != nil {
					t.logger.Debug("path vanished during backfill", "path", path, "error", err)
					continue
				}
				rec, ok := t.inspect(path, info.ModTime())
				if !ok {
					continue
				}
				t.ledger.Put(ctx, rec)
				tracked.Add(1)
			}
		}()
	}
	wg.Wait()

	t.logger.Info("backfill complete", "root", root, "files", tracked.Load())
	return int(tracked.Load()), nil
}
