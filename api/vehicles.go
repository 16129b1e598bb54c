package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"autohaus/adapters/media"
	"autohaus/models"
)

const (
	// maxImagesPerRequest 限制單一請求可附帶的圖片數量
	maxImagesPerRequest = 10
	// maxImageBytes 限制單張圖片的大小
	maxImageBytes = 5 << 20
)

// validationError 代表請求本身不合法，回應400而不是500
type validationError string

func (e validationError) Error() string { return string(e) }

// VehicleView 是車輛的對外JSON格式，配備與圖片攤平成字串列表
type VehicleView struct {
	ID           uint                 `json:"id"`
	Brand        string               `json:"brand"`
	Model        string               `json:"model"`
	Year         int                  `json:"year"`
	Price        float64              `json:"price"`
	Mileage      int                  `json:"mileage"`
	FuelType     string               `json:"fuelType"`
	Transmission string               `json:"transmission"`
	Power        string               `json:"power"`
	Description  string               `json:"description"`
	Status       models.VehicleStatus `json:"status"`
	Features     []string             `json:"features"`
	Images       []string             `json:"images"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func newVehicleView(vehicle models.Vehicle) VehicleView {
	return VehicleView{
		ID:           vehicle.ID,
		Brand:        vehicle.Brand,
		Model:        vehicle.Model,
		Year:         vehicle.Year,
		Price:        vehicle.Price,
		Mileage:      vehicle.Mileage,
		FuelType:     vehicle.FuelType,
		Transmission: vehicle.Transmission,
		Power:        vehicle.Power,
		Description:  vehicle.Description,
		Status:       vehicle.Status,
		Features:     lo.Map(vehicle.Features, func(f models.VehicleFeature, _ int) string { return f.Label }),
		Images:       lo.Map(vehicle.Images, func(img models.VehicleImage, _ int) string { return img.URL }),
		CreatedAt:    vehicle.CreatedAt,
	}
}

// vehicleFormInput 是 create/update 共用的 multipart 表單內容
type vehicleFormInput struct {
	fields   models.Vehicle
	features []string
	uploads  []upload
}

type upload struct {
	filename    string
	contentType string
	content     []byte
}

// parseVehicleForm 解析並驗證 multipart 表單，任何一個檔案不合法就
// 整個請求失敗，不會寫入任何資料
func (impl *ServerImpl) parseVehicleForm(c *gin.Context) (vehicleFormInput, error) {
	var input vehicleFormInput

	// 必填欄位
	brand := strings.TrimSpace(c.PostForm("brand"))
	model := strings.TrimSpace(c.PostForm("model"))
	if brand == "" || model == "" {
		return input, validationError("Brand and model are required")
	}
	year, err := strconv.Atoi(c.PostForm("year"))
	if err != nil || year <= 0 {
		return input, validationError("Year must be a positive integer")
	}
	price, err := parseOptionalFloat(c.PostForm("price"))
	if err != nil || price < 0 {
		return input, validationError("Price must be a non-negative number")
	}
	mileage, err := parseOptionalInt(c.PostForm("mileage"))
	if err != nil || mileage < 0 {
		return input, validationError("Mileage must be a non-negative integer")
	}
	status := models.VehicleStatus(c.PostForm("status"))
	if status == "" {
		status = models.StatusAvailable
	}
	if !models.ValidVehicleStatus(status) {
		return input, validationError(fmt.Sprintf("Invalid status: %s", status))
	}

	input.fields = models.Vehicle{
		Brand:        brand,
		Model:        model,
		Year:         year,
		Price:        price,
		Mileage:      mileage,
		FuelType:     c.PostForm("fuelType"),
		Transmission: c.PostForm("transmission"),
		Power:        c.PostForm("power"),
		Description:  impl.htmlChecker.Sanitize(c.PostForm("description")),
		Status:       status,
	}
	input.features = parseFeatureList(c.PostForm("features"))

	form, err := c.MultipartForm()
	if err != nil {
		return input, validationError("Request must be a multipart form")
	}
	input.uploads, err = readUploads(form.File["images"])
	if err != nil {
		return input, err
	}
	return input, nil
}

// parseFeatureList 解析JSON編碼的配備列表
// 解析失敗時記錄警告並視為空列表，不讓整個請求失敗
func parseFeatureList(raw string) []string {
	if raw == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		slog.Warn("Could not parse features, treating as empty", slog.String("raw", raw), slog.Any("error", err))
		return nil
	}
	return features
}

// readUploads 逐一讀取並驗證上傳的檔案：數量上限、單檔大小上限、
// 以內容偵測的MIME類型檢查
func readUploads(files []*multipart.FileHeader) ([]upload, error) {
	if len(files) > maxImagesPerRequest {
		return nil, validationError(fmt.Sprintf("Too many images, at most %d per request", maxImagesPerRequest))
	}
	uploads := make([]upload, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("fail to open uploaded file %s, err=%w", fileHeader.Filename, err)
		}
		content, err := io.ReadAll(media.NewMaxSizeReader(file, maxImageBytes))
		file.Close()
		var limitErr *media.ReachLimitError
		if errors.As(err, &limitErr) {
			return nil, validationError(fmt.Sprintf("Image %s exceeds the limit of %s", fileHeader.Filename, media.FormatBytes(maxImageBytes)))
		}
		if err != nil {
			return nil, fmt.Errorf("fail to read uploaded file %s, err=%w", fileHeader.Filename, err)
		}
		mimeType := http.DetectContentType(content)
		ok, ext := media.CheckSecureUpload(mimeType, fileHeader.Filename)
		if !ok {
			return nil, validationError("Invalid file type. Only JPEG, PNG, GIF and WebP are allowed.")
		}
		uploads = append(uploads, upload{
			filename:    media.NewFilename(ext),
			contentType: mimeType,
			content:     content,
		})
	}
	return uploads, nil
}

// insertImageBatch 寫入一個批次的圖片：先存檔案再整批寫入資料列，
// sort_order 是圖片在這個批次內的位置。檔案寫入不在交易的保護範圍，
// 交易回滾時已寫入的檔案會留在儲存上
func (impl *ServerImpl) insertImageBatch(c *gin.Context, tx *gorm.DB, vehicleID uint, uploads []upload) error {
	if len(uploads) == 0 {
		return nil
	}
	rows := make([]models.VehicleImage, 0, len(uploads))
	for i, up := range uploads {
		url, err := impl.mediaStore.Save(c.Request.Context(), up.filename, up.contentType, up.content)
		if err != nil {
			return fmt.Errorf("fail to save image %s, err=%w", up.filename, err)
		}
		rows = append(rows, models.VehicleImage{VehicleID: vehicleID, URL: url, SortOrder: i})
	}
	if result := tx.Create(&rows); result.Error != nil {
		return fmt.Errorf("fail to insert image rows, err=%w", result.Error)
	}
	return nil
}

func (impl *ServerImpl) readVehicle(id uint) (models.Vehicle, error) {
	var vehicle models.Vehicle
	result := impl.db.
		Preload("Features").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&vehicle, id)
	return vehicle, result.Error
}

// List all vehicles
// (GET /api/vehicles)
func (impl *ServerImpl) ListVehicles(c *gin.Context) {
	const op = "ListVehicles"
	var vehicles []models.Vehicle
	result := impl.db.
		Preload("Features").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Find(&vehicles)
	if result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to list vehicles, err=%w", op, result.Error))
		return
	}
	c.JSON(http.StatusOK, lo.Map(vehicles, func(v models.Vehicle, _ int) VehicleView { return newVehicleView(v) }))
}

// Get a single vehicle
// (GET /api/vehicles/:id)
func (impl *ServerImpl) GetVehicle(c *gin.Context) {
	const op = "GetVehicle"
	id, err := parseVehicleID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id"})
		return
	}
	vehicle, err := impl.readVehicle(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to find vehicle, err=%w", op, err))
		return
	}
	c.JSON(http.StatusOK, newVehicleView(vehicle))
}

// Create a vehicle with its features and images
// (POST /api/vehicles)
func (impl *ServerImpl) CreateVehicle(c *gin.Context) {
	const op = "CreateVehicle"
	input, err := impl.parseVehicleForm(c)
	if err != nil {
		respondFormError(c, op, err)
		return
	}

	vehicle := input.fields
	err = impl.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&vehicle); result.Error != nil {
			return fmt.Errorf("fail to insert vehicle, err=%w", result.Error)
		}
		if len(input.features) > 0 {
			rows := lo.Map(input.features, func(label string, _ int) models.VehicleFeature {
				return models.VehicleFeature{VehicleID: vehicle.ID, Label: label}
			})
			if result := tx.Create(&rows); result.Error != nil {
				return fmt.Errorf("fail to insert features, err=%w", result.Error)
			}
		}
		return impl.insertImageBatch(c, tx, vehicle.ID, input.uploads)
	})
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to create vehicle, err=%w", op, err))
		return
	}

	created, err := impl.readVehicle(vehicle.ID)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back vehicle, err=%w", op, err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Vehicle created successfully",
		"vehicle": newVehicleView(created),
	})
}

// Update a vehicle: scalar fields are replaced in full, features are
// replaced wholesale, new images are appended
// (PUT /api/vehicles/:id)
func (impl *ServerImpl) UpdateVehicle(c *gin.Context) {
	const op = "UpdateVehicle"
	id, err := parseVehicleID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id"})
		return
	}
	input, err := impl.parseVehicleForm(c)
	if err != nil {
		respondFormError(c, op, err)
		return
	}

	err = impl.db.Transaction(func(tx *gorm.DB) error {
		// 無條件覆寫所有欄位，沒有部分更新的語意
		result := tx.Model(&models.Vehicle{ID: id}).
			Select("brand", "model", "year", "price", "mileage", "fuel_type", "transmission", "power", "description", "status").
			Updates(input.fields)
		if result.Error != nil {
			return fmt.Errorf("fail to update vehicle, err=%w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// 配備整批刪除重建，空列表就是清空
		if result := tx.Where("vehicle_id = ?", id).Delete(&models.VehicleFeature{}); result.Error != nil {
			return fmt.Errorf("fail to delete features, err=%w", result.Error)
		}
		if len(input.features) > 0 {
			rows := lo.Map(input.features, func(label string, _ int) models.VehicleFeature {
				return models.VehicleFeature{VehicleID: id, Label: label}
			})
			if result := tx.Create(&rows); result.Error != nil {
				return fmt.Errorf("fail to insert features, err=%w", result.Error)
			}
		}
		// 新圖片是附加的，既有圖片不受更新影響
		return impl.insertImageBatch(c, tx, id, input.uploads)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to update vehicle, err=%w", op, err))
		return
	}

	updated, err := impl.readVehicle(id)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back vehicle, err=%w", op, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle updated successfully",
		"vehicle": newVehicleView(updated),
	})
}

// Delete a vehicle, its owned rows and its backing files
// (DELETE /api/vehicles/:id)
func (impl *ServerImpl) DeleteVehicle(c *gin.Context) {
	const op = "DeleteVehicle"
	id, err := parseVehicleID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id"})
		return
	}

	// 交易內先取回圖片路徑再刪除資料列；檔案在提交之後才碰，
	// 所以中途失敗不會出現資料列還在但檔案已刪的狀態
	var imageURLs []string
	err = impl.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Model(&models.VehicleImage{}).Where("vehicle_id = ?", id).Pluck("url", &imageURLs); result.Error != nil {
			return fmt.Errorf("fail to collect image paths, err=%w", result.Error)
		}
		// 詢問單保留，但解除與車輛的關聯
		if result := tx.Model(&models.Inquiry{}).Where("vehicle_id = ?", id).Update("vehicle_id", nil); result.Error != nil {
			return fmt.Errorf("fail to detach inquiries, err=%w", result.Error)
		}
		if result := tx.Where("vehicle_id = ?", id).Delete(&models.VehicleFeature{}); result.Error != nil {
			return fmt.Errorf("fail to delete features, err=%w", result.Error)
		}
		if result := tx.Where("vehicle_id = ?", id).Delete(&models.VehicleImage{}); result.Error != nil {
			return fmt.Errorf("fail to delete images, err=%w", result.Error)
		}
		result := tx.Delete(&models.Vehicle{}, id)
		if result.Error != nil {
			return fmt.Errorf("fail to delete vehicle, err=%w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to delete vehicle, err=%w", op, err))
		return
	}

	// 提交後盡力刪除圖片檔案，失敗只記錄不影響回應
	for _, url := range imageURLs {
		if err := impl.mediaStore.Remove(c.Request.Context(), url); err != nil {
			slog.Warn("Fail to remove image file", slog.String("op", op), slog.String("url", url), slog.Any("error", err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}

func parseVehicleID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parseOptionalFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// respondFormError 將表單驗證錯誤轉成400，其它錯誤轉成500
func respondFormError(c *gin.Context, op string, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		return
	}
	serverError(c, op, fmt.Errorf("[%s] Fail to parse form, err=%w", op, err))
}
