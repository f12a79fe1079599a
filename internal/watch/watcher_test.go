package watch_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obielum/doctrack/internal/watch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case p, ok := <-ch:
			require.True(t, ok, "event channel closed before %s appeared", want)
			if p == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestStartRequiresRoots(t *testing.T) {
	t.Parallel()
	_, _, err := watch.Start(context.Background(), watch.Config{}, testLogger())
	require.Error(t, err)
}

func TestWatcherEmitsAllowedFiles(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	events, _, err := watch.Start(ctx, watch.Config{
		Roots:    []string{dir},
		Debounce: 20 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	target := filepath.Join(dir, "incoming.pdf")
	require.NoError(t, os.WriteFile(target, []byte("pdf bytes"), 0o600))
	waitForPath(t, events, target)
}

func TestWatcherIgnoresDisallowedExtensions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	events, _, err := watch.Start(ctx, watch.Config{
		Roots:    []string{dir},
		Debounce: 20 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.exe"), []byte("x"), 0o600))
	wanted := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(wanted, []byte("y"), 0o600))

	// Only the allowed file ever comes through.
	waitForPath(t, events, wanted)
	select {
	case p := <-events:
		require.Equal(t, wanted, p, "no event for the disallowed file")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherInitialScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "already-there.md")
	require.NoError(t, os.WriteFile(existing, []byte("notes"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := watch.Start(ctx, watch.Config{
		Roots:       []string{dir},
		InitialScan: true,
	}, testLogger())
	require.NoError(t, err)
	waitForPath(t, events, existing)
}

func TestWatcherClosesOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()

	events, errs, err := watch.Start(ctx, watch.Config{Roots: []string{dir}}, testLogger())
	require.NoError(t, err)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := <-errs
	require.False(t, ok)
}
