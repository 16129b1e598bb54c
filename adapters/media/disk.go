package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"time"
)

// DiskStore 將媒體檔案存放在本機目錄
// 檔案以 PublicBasePath 底下的相對 URL 對外提供，由 HTTP 層負責靜態服務
type DiskStore struct {
	// Dir 是檔案實際寫入的目錄
	Dir string
	// PublicBasePath 是對外 URL 的前綴，例如 /uploads/vehicles
	PublicBasePath string
}

func NewDiskStore(dir, publicBasePath string) (*DiskStore, error) {
	const op = "NewDiskStore"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create media directory, err=%w", op, err)
	}
	return &DiskStore{Dir: dir, PublicBasePath: publicBasePath}, nil
}

func (s *DiskStore) Save(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	const op = "DiskStore.Save"
	if err := os.WriteFile(filepath.Join(s.Dir, filename), content, 0o644); err != nil {
		return "", fmt.Errorf("[%s] Fail to write media file, err=%w", op, err)
	}
	return path.Join(s.PublicBasePath, filename), nil
}

// Remove 盡力刪除 URL 對應的檔案，檔案已不存在時靜默略過
func (s *DiskStore) Remove(ctx context.Context, url string) error {
	const op = "DiskStore.Remove"
	err := os.Remove(filepath.Join(s.Dir, path.Base(url)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[%s] Fail to remove media file, err=%w", op, err)
	}
	return nil
}

// NewFilename 產生上傳檔案的唯一檔名：毫秒時間戳記-九位隨機數.副檔名
func NewFilename(ext string) string {
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
