package storage

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestDecodeDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name    string
		input   string
		wantExt string
		wantErr bool
	}{
		{name: "png data uri", input: "data:image/png;base64," + encoded, wantExt: ".png"},
		{name: "declared type is not trusted", input: "data:image/jpeg;base64," + encoded, wantExt: ".png"},
		{name: "bare base64", input: encoded, wantExt: ".png"},
		{name: "gif", input: "data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00")), wantExt: ".gif"},
		{name: "empty", input: "", wantErr: true},
		{name: "not base64 encoded", input: "data:image/png," + encoded, wantErr: true},
		{name: "broken payload", input: "data:image/png;base64,@@@", wantErr: true},
		{name: "text is not an image", input: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello world")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURI(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, img.Extension)
			assert.True(t, strings.HasPrefix(img.ContentType, "image/"))
		})
	}
}

func TestNewImageKey(t *testing.T) {
	a := NewImageKey(".png")
	b := NewImageKey(".png")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "recipes/images/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../secret", "recipes/../../x", "..", `a\b`} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	key, err := CleanKey("recipes/./images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "recipes/images/a.png", key)
}

func TestFSStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)
	ctx := context.Background()
	key := "recipes/images/pic.png"

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, key, "image/png", pngHeader))
	_, err = os.Stat(filepath.Join(root, "recipes", "images", "pic.png"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", ContentTypeOf(data))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key), "deleting a missing image is harmless")
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Save(ctx, "../escape.png", "image/png", pngHeader), ErrInvalidKey)
}
