package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"autohaus/adapters/media"
	"autohaus/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	mediaDir string
}

// setupTest 以記憶體資料庫和暫存目錄組出一個完整的伺服器
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 記憶體資料庫只存在於單一連線上
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, api.Migrate(db))

	mediaDir := t.TempDir()
	store, err := media.NewDiskStore(mediaDir, "/uploads/vehicles")
	require.NoError(t, err)

	server := api.NewServerWithDB(db, store, api.ServerConfig{
		Media: api.MediaConfig{Dir: mediaDir, PublicBasePath: "/uploads/vehicles"},
	})
	router := gin.New()
	server.RegisterRoutes(router)

	t.Cleanup(func() { sqlDB.Close() })
	return &testEnv{router: router, db: db, mediaDir: mediaDir}
}

func (env *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) doJSON(method, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return env.do(method, path, bytes.NewReader(body), "application/json")
}

type testFile struct {
	name    string
	content []byte
}

// multipartBody 組出帶欄位和images檔案的multipart請求內容
func multipartBody(t *testing.T, fields map[string]string, files []testFile) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("images", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// pngBytes 產生能被 http.DetectContentType 辨識為 image/png 的內容
func pngBytes(size int) []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	if size < len(header) {
		size = len(header)
	}
	content := make([]byte, size)
	copy(content, header)
	return content
}

// gifBytes 產生能被辨識為 image/gif 的內容
func gifBytes() []byte {
	return append([]byte("GIF89a"), make([]byte, 64)...)
}

// golfFields 是建立車輛測試資料用的完整欄位
func golfFields() map[string]string {
	return map[string]string{
		"brand":        "VW",
		"model":        "Golf",
		"year":         "2020",
		"price":        "15000",
		"mileage":      "50000",
		"fuelType":     "Benzin",
		"transmission": "Automatik",
		"power":        "150 PS",
		"description":  "Gepflegter Zustand",
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type vehicleResponse struct {
	Message string          `json:"message"`
	Vehicle api.VehicleView `json:"vehicle"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func createVehicle(t *testing.T, env *testEnv, fields map[string]string, files []testFile) api.VehicleView {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	w := env.do(http.MethodPost, "/api/vehicles", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decodeJSON[vehicleResponse](t, w).Vehicle
}
