package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0o755))

	w, err := New(dir, Options{Ignore: []string{"build/**", "**/*.tmp"}, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "out.java"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.java"), []byte("class A {}"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	for _, b := range batches {
		for _, p := range b {
			assert.Equal(t, "A.java", filepath.Base(p))
		}
	}
}

func TestIgnored(t *testing.T) {
	w := &Watcher{root: "/src", opts: Options{Ignore: []string{"**/target/**", "*.log"}}}
	assert.True(t, w.ignored("/src/a/target/x.java"))
	assert.True(t, w.ignored("/src/run.log"))
	assert.False(t, w.ignored("/src/a/B.java"))
}
