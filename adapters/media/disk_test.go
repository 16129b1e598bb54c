package media_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"autohaus/adapters/media"
)

func TestDiskStoreSaveAndRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store, err := media.NewDiskStore(dir, "/uploads/vehicles")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "123-000000001.png", "image/png", []byte("fake png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/vehicles/123-000000001.png", url)

	content, err := os.ReadFile(filepath.Join(dir, "123-000000001.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png"), content)

	require.NoError(t, store.Remove(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "123-000000001.png"))
	assert.True(t, os.IsNotExist(err))

	// 檔案已不存在時仍然回傳成功
	assert.NoError(t, store.Remove(context.Background(), url))
}

func TestDiskStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "vehicles")
	_, err := media.NewDiskStore(dir, "/uploads/vehicles")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFilename(t *testing.T) {
	name := media.NewFilename(".png")
	assert.Regexp(t, regexp.MustCompile(`^\d+-\d{9}\.png$`), name)

	// 同批次內的兩個檔名不應相同
	assert.NotEqual(t, name, media.NewFilename(".png"))
}
