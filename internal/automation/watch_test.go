package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/config"
	"github.com/san-kum/phnet/internal/graph"
)

func nextRevision(t *testing.T, revs <-chan Revision, match func(Revision) bool) Revision {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case rev := <-revs:
			if match(rev) {
				return rev
			}
		case <-deadline:
			t.Fatal("no matching revision before deadline")
			return Revision{}
		}
	}
}

func TestWatchGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.yaml")
	require.NoError(t, graph.Save(path, config.Graphs["triangle"].Spec))

	ctx, cancel := context.WithCancel(context.Background())
	revs := make(chan Revision, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchGraphFile(ctx, path, WatchOptions{
			Debounce: 20 * time.Millisecond,
			Logger:   zaptest.NewLogger(t),
		}, func(r Revision) { revs <- r })
	}()

	first := nextRevision(t, revs, func(Revision) bool { return true })
	assert.Equal(t, 1, first.Seq)
	require.NoError(t, first.Err)
	assert.Equal(t, audit.StatusRed, first.Report.Status)

	require.NoError(t, graph.Save(path, config.Graphs["mass-spring-chain"].Spec))
	green := nextRevision(t, revs, func(r Revision) bool {
		return r.Err == nil && r.Spec.Name == "mass-spring-chain"
	})
	assert.Equal(t, audit.StatusGreen, green.Report.Status)
	assert.Greater(t, green.Seq, 1)
	assert.True(t, green.Report.IsPhysical)

	require.NoError(t, os.WriteFile(path, []byte("edges: [oops"), 0644))
	bad := nextRevision(t, revs, func(r Revision) bool { return r.Err != nil })
	assert.Nil(t, bad.Report)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchGraphFileMissing(t *testing.T) {
	err := WatchGraphFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), WatchOptions{}, func(Revision) {})
	assert.Error(t, err)

	err = WatchGraphFile(context.Background(), t.TempDir(), WatchOptions{}, func(Revision) {})
	assert.Error(t, err)
}
