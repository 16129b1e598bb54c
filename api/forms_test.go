package api_test

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autohaus/api"
	"autohaus/models"
)

type customerFormResponse struct {
	Message string               `json:"message"`
	Form    api.CustomerFormView `json:"form"`
}

func TestCreateCustomerForm(t *testing.T) {
	env := setupTest(t)

	fields := map[string]string{
		"contactName":  "Erika Musterfrau",
		"email":        "erika@example.com",
		"phone":        "+49 151 7654321",
		"brand":        "Audi",
		"model":        "A4",
		"year":         "2018",
		"price":        "18000",
		"mileage":      "80000",
		"fuelType":     "Diesel",
		"transmission": "Manuell",
		"power":        "190 PS",
		"description":  "Scheckheftgepflegt",
	}
	body, contentType := multipartBody(t, fields, []testFile{
		{name: "side.png", content: pngBytes(64)},
		{name: "engine.gif", content: gifBytes()},
	})
	w := env.do(http.MethodPost, "/api/customer-forms", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	created := decodeJSON[customerFormResponse](t, w).Form

	assert.Equal(t, models.InquiryStatusNew, created.Status)
	assert.Equal(t, "Erika Musterfrau", created.ContactName)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Audi", created.Brand)
	assert.Equal(t, 2018, created.Year)
	require.Len(t, created.Images, 2)
	for _, url := range created.Images {
		_, err := os.Stat(filepath.Join(env.mediaDir, path.Base(url)))
		assert.NoError(t, err)
	}

	// 圖片走和車輛相同的驗證與排序
	var images []models.CustomerFormImage
	require.NoError(t, env.db.Where("customer_form_id = ?", created.ID).Order("id ASC").Find(&images).Error)
	require.Len(t, images, 2)
	assert.Equal(t, 0, images[0].SortOrder)
	assert.Equal(t, 1, images[1].SortOrder)
}

func TestCreateCustomerFormValidation(t *testing.T) {
	env := setupTest(t)

	// 缺少聯絡資料
	body, contentType := multipartBody(t, map[string]string{"email": "erika@example.com"}, nil)
	w := env.do(http.MethodPost, "/api/customer-forms", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 附上非圖片檔案
	body, contentType = multipartBody(t, map[string]string{
		"contactName": "Erika",
		"email":       "erika@example.com",
	}, []testFile{{name: "virus.txt", content: []byte("definitely not an image")}})
	w = env.do(http.MethodPost, "/api/customer-forms", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.CustomerForm{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustomerFormStatusFlow(t *testing.T) {
	env := setupTest(t)

	body, contentType := multipartBody(t, map[string]string{
		"contactName": "Erika",
		"email":       "erika@example.com",
	}, nil)
	w := env.do(http.MethodPost, "/api/customer-forms", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[customerFormResponse](t, w).Form

	patched := env.doJSON(http.MethodPatch, "/api/customer-forms/"+created.ID.String()+"/status", map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, patched.Code)
	assert.Equal(t, models.InquiryStatusCompleted, decodeJSON[customerFormResponse](t, patched).Form.Status)

	listed := env.do(http.MethodGet, "/api/customer-forms", nil, "")
	require.Equal(t, http.StatusOK, listed.Code)
	forms := decodeJSON[[]api.CustomerFormView](t, listed)
	require.Len(t, forms, 1)
	assert.Equal(t, models.InquiryStatusCompleted, forms[0].Status)

	missing := env.doJSON(http.MethodPatch, "/api/customer-forms/00000000-0000-0000-0000-000000000000/status", map[string]any{
		"status": "rejected",
	})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
