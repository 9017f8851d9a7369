package persist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/persist"
)

func TestFSDownloader(t *testing.T) {
	ctx := context.Background()

	t.Run("should write into the download directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d := persist.NewFSDownloader(fs, "/downloads", zaptest.NewLogger(t))
		require.NoError(t, d.Download(ctx, "data.json", "application/json", []byte(`{}`)))

		got, err := afero.ReadFile(fs, "/downloads/data.json")
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(got))
	})

	t.Run("should keep only the base name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d := persist.NewFSDownloader(fs, "/out", nil)
		require.NoError(t, d.Download(ctx, "../../etc/passwd", "text/plain", []byte("x")))

		exists, err := afero.Exists(fs, "/out/passwd")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("should reject an empty name", func(t *testing.T) {
		d := persist.NewFSDownloader(afero.NewMemMapFs(), "", nil)
		assert.Error(t, d.Download(ctx, "", "text/plain", nil))
	})
}

func TestFSReader(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/a.txt", []byte("hello"), 0o644))
	r := persist.FSReader{Fs: fs}

	t.Run("should read the backing path", func(t *testing.T) {
		got, err := r.Read(ctx, dom.File{Name: "a.txt", Path: "/in/a.txt"})
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("should wrap failures as read errors", func(t *testing.T) {
		_, err := r.Read(ctx, dom.File{Name: "gone.txt", Path: "/in/gone.txt"})
		assert.True(t, errors.Is(err, persist.ErrReadFailed))

		_, err = r.Read(ctx, dom.File{Name: "nopath"})
		assert.True(t, errors.Is(err, persist.ErrReadFailed))
	})
}

func TestPresent(t *testing.T) {
	data := []byte("Hi\xff")
	tests := []struct {
		mode persist.ReadMode
		want any
	}{
		{persist.ReadText, "Hi�"},
		{persist.ReadBinary, []byte("Hi\xff")},
		{persist.ReadArrayBuffer, []byte("Hi\xff")},
		{persist.ReadDataURL, "data:text/plain;base64,SGn/"},
		{persist.ReadBinaryString, "Hiÿ"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, err := persist.Present(tt.mode, data, "text/plain")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("should default the data URL type", func(t *testing.T) {
		got, err := persist.Present(persist.ReadDataURL, []byte{}, "")
		require.NoError(t, err)
		assert.Equal(t, "data:application/octet-stream;base64,", got)
	})

	t.Run("should reject unknown modes", func(t *testing.T) {
		_, err := persist.Present("hex", data, "")
		assert.ErrorIs(t, err, persist.ErrUnknownReadMode)
	})
}
