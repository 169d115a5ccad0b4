package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (c *counter) build(_ context.Context, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reasons = append(c.reasons, reason)
	return c.err
}

func (c *counter) count(reason string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.reasons {
		if r == reason {
			n++
		}
	}
	return n
}

func start(t *testing.T, opts Options, c *counter) context.CancelFunc {
	t.Helper()
	w, err := New(opts, c.build)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	require.Eventually(t, func() bool { return c.count("startup") == 1 }, 2*time.Second, 10*time.Millisecond)
	return cancel
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	jsDir := filepath.Join(root, "js")
	require.NoError(t, os.MkdirAll(jsDir, 0o755))
	input := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(input, []byte("<p>1</p>"), 0o644))

	c := &counter{err: errors.New("builds may fail without stopping the watcher")}
	start(t, Options{
		Files:    []string{input},
		Dirs:     []string{jsDir},
		Ignore:   func(p string) bool { return strings.Contains(filepath.Base(p), ".min.") },
		Debounce: 50 * time.Millisecond,
	}, c)

	require.NoError(t, os.WriteFile(input, []byte("<p>2</p>"), 0o644))
	require.Eventually(t, func() bool { return c.count("change") == 1 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(jsDir, "app.js"), []byte("a()"), 0o644))
	require.Eventually(t, func() bool { return c.count("change") == 2 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(jsDir, "min.min.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.html"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 2, c.count("change"))
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	c := &counter{}
	start(t, Options{Dirs: []string{root}, Debounce: 200 * time.Millisecond}, c)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return c.count("change") == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, c.count("change"))
}

func TestWatcher_Interval(t *testing.T) {
	c := &counter{}
	start(t, Options{Dirs: []string{t.TempDir()}, Debounce: time.Second, Interval: 100 * time.Millisecond}, c)
	require.Eventually(t, func() bool { return c.count("interval") >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Debounce: time.Second}, nil)
	require.Error(t, err)
	_, err = New(Options{}, func(context.Context, string) error { return nil })
	require.Error(t, err)
}
