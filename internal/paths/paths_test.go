package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorper/floorper/internal/errors"
)

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		assert.True(t, errors.Is(err, ErrHomeDirNotFound), "unexpected error type: %v", err)
		return
	}
	assert.Equal(t, want, got)
}

func TestAppHome(t *testing.T) {
	t.Setenv("HOME", "/home/alice")
	assert.Equal(t, filepath.Join("/home/alice", ".floorper"), AppHome())
}

func TestConfigDir(t *testing.T) {
	got := ConfigDir()
	assert.True(t, filepath.IsAbs(got), "ConfigDir() = %q, want absolute path", got)
	assert.Equal(t, AppName, filepath.Base(got))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/alice")

	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/alice"},
		{"~/backups", filepath.Join("/home/alice", "backups")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~bob/x", "~bob/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandHome(tt.in), "ExpandHome(%q)", tt.in)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir, 0))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(DefaultDirPerm), info.Mode().Perm())

	// Idempotent
	require.NoError(t, EnsureDir(dir, 0))
}

func TestEnsureDir_EmptyPath(t *testing.T) {
	assert.ErrorIs(t, EnsureDir("", 0), ErrInvalidPath)
}
