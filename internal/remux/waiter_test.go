package remux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/logging"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func testWaiter() *Waiter {
	return &Waiter{
		FinalExt:     "mp4",
		PollInterval: 5 * time.Millisecond,
		MaxPolls:     20,
		LockDeadline: time.Second,
		Log:          logging.Discard(),
		Remove:       os.Remove,
	}
}

func TestFinalPath(t *testing.T) {
	assert.Equal(t, filepath.Join("rec", "clip.mp4"), FinalPath(filepath.Join("rec", "clip.mkv"), "mp4"))
}

func TestNewWaiter(t *testing.T) {
	cfg := config.DefaultConfig()
	w := NewWaiter(cfg, logging.Discard())
	assert.Equal(t, "mp4", w.FinalExt)
	assert.Equal(t, 100*time.Millisecond, w.PollInterval)
	assert.Equal(t, 500, w.MaxPolls)
	assert.Equal(t, 2*time.Minute, w.LockDeadline)
	assert.NotNil(t, w.Remove)
}

func TestAwait_FinalAlreadyPresent(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	mp4 := filepath.Join(dir, "clip.mp4")
	touch(t, mkv)
	touch(t, mp4)

	res, err := testWaiter().Await(context.Background(), mkv)
	require.NoError(t, err)
	assert.Equal(t, mp4, res.Path)
	assert.True(t, res.Remuxed)
	assert.True(t, res.Cleaned)
	assert.Zero(t, res.Polls)
	assert.NoFileExists(t, mkv)
	assert.FileExists(t, mp4)
}

func TestAwait_FinalAppearsLater(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	mp4 := filepath.Join(dir, "clip.mp4")
	touch(t, mkv)

	w := testWaiter()
	w.MaxPolls = 400
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(mp4, []byte("remuxed"), 0o644)
	}()

	res, err := w.Await(context.Background(), mkv)
	require.NoError(t, err)
	assert.Equal(t, mp4, res.Path)
	assert.True(t, res.Cleaned)
	assert.NoFileExists(t, mkv)
}

func TestAwait_RemuxNeverAppears(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	touch(t, mkv)

	w := testWaiter()
	w.MaxPolls = 3

	res, err := w.Await(context.Background(), mkv)
	require.NoError(t, err)
	assert.Equal(t, mkv, res.Path)
	assert.False(t, res.Remuxed)
	assert.False(t, res.Cleaned)
	assert.Equal(t, 3, res.Polls)
	assert.FileExists(t, mkv)
}

func TestAwait_SameExtension(t *testing.T) {
	dir := t.TempDir()
	mp4 := filepath.Join(dir, "clip.MP4")
	touch(t, mp4)

	w := testWaiter()
	w.Remove = func(string) error {
		t.Fatal("nothing should be removed")
		return nil
	}

	res, err := w.Await(context.Background(), mp4)
	require.NoError(t, err)
	assert.Equal(t, mp4, res.Path)
	assert.False(t, res.Cleaned)
	assert.FileExists(t, mp4)
}

func TestAwait_LockReleased(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	touch(t, mkv)
	touch(t, filepath.Join(dir, "clip.mp4"))

	var calls atomic.Int32
	w := testWaiter()
	w.Remove = func(p string) error {
		if calls.Add(1) < 4 {
			return errors.New("sharing violation")
		}
		return os.Remove(p)
	}

	res, err := w.Await(context.Background(), mkv)
	require.NoError(t, err)
	assert.True(t, res.Cleaned)
	assert.EqualValues(t, 4, calls.Load())
	assert.NoFileExists(t, mkv)
}

func TestAwait_LockDeadline(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	mp4 := filepath.Join(dir, "clip.mp4")
	touch(t, mkv)
	touch(t, mp4)

	w := testWaiter()
	w.LockDeadline = 20 * time.Millisecond
	w.Remove = func(string) error { return errors.New("sharing violation") }

	res, err := w.Await(context.Background(), mkv)
	assert.ErrorIs(t, err, ErrCleanupTimeout)
	assert.Equal(t, mp4, res.Path)
	assert.True(t, res.Remuxed)
	assert.False(t, res.Cleaned)
	assert.FileExists(t, mkv)
}

func TestAwait_Canceled(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	touch(t, mkv)

	w := testWaiter()
	w.MaxPolls = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := w.Await(ctx, mkv)
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, mkv)
}

func TestAwait_IntermediateAlreadyGone(t *testing.T) {
	dir := t.TempDir()
	mkv := filepath.Join(dir, "clip.mkv")
	touch(t, filepath.Join(dir, "clip.mp4"))

	res, err := testWaiter().Await(context.Background(), mkv)
	require.NoError(t, err)
	assert.True(t, res.Cleaned)
}
