package media

import "context"

// Store 是媒體檔案的儲存介面
// Save 回傳的 URL 會直接寫進資料庫並回傳給前端
// Remove 以 Save 回傳的 URL 為鍵移除檔案，檔案不存在不算錯誤
type Store interface {
	Save(ctx context.Context, filename, contentType string, content []byte) (string, error)
	Remove(ctx context.Context, url string) error
}
