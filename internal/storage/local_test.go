package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	info, err := store.Put(ctx, "1700000000000_cat.png", strings.NewReader("png-bytes"), PutObjectOptions{
		Size:        9,
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	st, err := os.Stat(filepath.Join(dir, "1700000000000_cat.png"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), st.Mode().Perm())

	rc, got, err := store.Get(ctx, "1700000000000_cat.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, int64(9), got.Size)

	require.NoError(t, store.Delete(ctx, "1700000000000_cat.png"))
	_, _, err = store.Get(ctx, "1700000000000_cat.png")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, "1700000000000_cat.png"))
}

func TestLocalStorage_Overwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(ctx, "a.txt", strings.NewReader("first"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	_, err = store.Put(ctx, "a.txt", strings.NewReader("second"), PutObjectOptions{Size: -1})
	require.NoError(t, err)

	rc, info, err := store.Get(ctx, "a.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(body))
	assert.True(t, strings.HasPrefix(info.ContentType, "text/plain"))
}

func TestLocalStorage_KeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "images")
	store, err := NewLocal(root)
	require.NoError(t, err)

	_, err = store.Put(ctx, "../escape.txt", strings.NewReader("x"), PutObjectOptions{Size: 1})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(parent, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)

	_, err = store.Put(ctx, "", strings.NewReader("x"), PutObjectOptions{Size: 1})
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, _, err = store.Get(ctx, "..")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorage_PresignUnsupported(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	u, err := store.PresignGet(context.Background(), "a.png", time.Minute)
	assert.ErrorIs(t, err, ErrPresignUnsupported)
	assert.Empty(t, u)
}

func TestNewLocal_RejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	_, err := NewLocal(f)
	assert.Error(t, err)

	_, err = NewLocal("")
	assert.Error(t, err)
}
