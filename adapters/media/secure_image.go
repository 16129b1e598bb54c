package media

import (
	"path/filepath"
	"strings"
)

// SecureMIMETypesExtension 定義了允許上傳的安全圖片類型及其對應的副檔名
var SecureMIMETypesExtension = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// allowedExtensions 是 MIME 偵測結果不明確時接受的副檔名
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// CheckSecureImageAndGetExtension 檢查給定的 MIME 類型是否為允許的圖片類型，並返回對應的副檔名
func CheckSecureImageAndGetExtension(mimeType string) (bool, string) {
	ext, ok := SecureMIMETypesExtension[mimeType]
	return ok, ext
}

// CheckSecureUpload 以內容偵測到的 MIME 類型判斷檔案是否可接受，並回傳
// 儲存時使用的副檔名(含點)。偵測結果是 application/octet-stream 時退回
// 檢查原始檔名的副檔名，兩者都不符合就拒絕。
func CheckSecureUpload(detectedType, originalName string) (bool, string) {
	if ok, ext := CheckSecureImageAndGetExtension(detectedType); ok {
		return true, "." + ext
	}
	if detectedType == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(originalName))
		if allowedExtensions[ext] {
			return true, ext
		}
	}
	return false, ""
}
