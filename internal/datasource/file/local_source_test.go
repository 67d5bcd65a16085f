package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOpen_ReadsFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b\n1,2\n"), 0o644))

	rc, err := NewLocal(p).Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))
}

func TestLocalOpen_MissingIsSourceUnavailable(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "nope.csv")
	_, err := NewLocal(p).Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), p)
}

func TestLocalOpen_DirectoryAndEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewLocal(t.TempDir()).Open(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = NewLocal("").Open(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLocalOpen_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal("whatever.csv").Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestWriteAtomic_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "clean", "nested", "out.csv")
	err := WriteAtomic(p, func(w io.Writer) error {
		_, err := io.WriteString(w, "ok\n")
		return err
	})
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(b))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestWriteAtomic_FailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	boom := errors.New("boom")
	err := WriteAtomic(p, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
