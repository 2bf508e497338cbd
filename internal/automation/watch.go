package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/graph"
)

const DefaultDebounce = 200 * time.Millisecond

// Revision is one audit of a watched graph file. Err is set when the file
// could not be parsed or built; the watch keeps going.
type Revision struct {
	Seq       int
	Spec      graph.Spec
	Graph     *graph.Graph
	Partition *graph.Partition
	Report    *audit.Report
	Err       error
}

type WatchOptions struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

// WatchGraphFile audits path once, then again after every write settles for
// opts.Debounce. The parent directory is watched so editors that replace
// the file on save are followed. It returns nil when ctx is done.
func WatchGraphFile(ctx context.Context, path string, opts WatchOptions, fn func(Revision)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("watch: %s is a directory", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	seq := 0
	emit := func() {
		seq++
		fn(revise(seq, abs))
	}
	emit()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("graph file changed", zap.String("path", abs), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("graph watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			emit()
		}
	}
}

func revise(seq int, path string) Revision {
	rev := Revision{Seq: seq}
	spec, err := graph.Load(path)
	if err != nil {
		rev.Err = err
		return rev
	}
	rev.Spec, rev.Graph, rev.Partition, rev.Err = buildSpec(spec)
	if rev.Err != nil {
		return rev
	}
	rev.Report, rev.Err = AuditGraph(rev.Graph, rev.Partition)
	return rev
}
