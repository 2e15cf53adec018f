package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOverride(t *testing.T) {
	base := t.TempDir()
	r := &DirResolver{OutputDir: base, Home: "/home/nobody"}
	assert.Equal(t, filepath.Join(base, "fal_ai"), r.Resolve())
	assert.Equal(t, r.Resolve(), r.Resolve())
}

func TestResolveRelativeOverrideIsAbsolute(t *testing.T) {
	r := &DirResolver{OutputDir: "out"}
	got := r.Resolve()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, filepath.Join("out", "fal_ai"), got[len(got)-len(filepath.Join("out", "fal_ai")):])
}

func TestResolveXDGDownloadDir(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "user-dirs.dirs"),
		[]byte("# generated\nXDG_DESKTOP_DIR=\"$HOME/Desktop\"\nXDG_DOWNLOAD_DIR=\"$HOME/Telechargements\"\n"), 0o644))

	r := &DirResolver{Home: home}
	assert.Equal(t, filepath.Join(home, "Telechargements", "fal_ai"), r.Resolve())
	assert.Equal(t, r.Resolve(), r.Resolve())
}

func TestResolveFallbacks(t *testing.T) {
	home := t.TempDir()
	want := filepath.Join(home, "Downloads", "fal_ai")

	t.Run("missing file", func(t *testing.T) {
		r := &DirResolver{Home: home}
		assert.Equal(t, want, r.Resolve())
	})

	t.Run("unreadable file", func(t *testing.T) {
		r := &DirResolver{Home: home, ReadFile: func(string) ([]byte, error) {
			return nil, errors.New("permission denied")
		}}
		assert.Equal(t, want, r.Resolve())
	})

	t.Run("malformed file", func(t *testing.T) {
		r := &DirResolver{Home: home, ReadFile: func(string) ([]byte, error) {
			return []byte("XDG_DOWNLOAD_DIR=unquoted\n\x00\xff"), nil
		}}
		assert.Equal(t, want, r.Resolve())
	})

	t.Run("empty value", func(t *testing.T) {
		r := &DirResolver{Home: home, ReadFile: func(string) ([]byte, error) {
			return []byte(`XDG_DOWNLOAD_DIR=""`), nil
		}}
		assert.Equal(t, want, r.Resolve())
	})
}

func TestResolveDoesNotCreateDirectory(t *testing.T) {
	base := t.TempDir()
	r := &DirResolver{OutputDir: base}
	_, err := os.Stat(r.Resolve())
	assert.True(t, os.IsNotExist(err))
}
