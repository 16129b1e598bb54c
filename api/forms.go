package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"autohaus/models"
)

// CustomerFormView 是賣車表單的對外JSON格式
type CustomerFormView struct {
	ID        uuid.UUID            `json:"id"`
	CreatedAt time.Time            `json:"createdAt"`
	Status    models.InquiryStatus `json:"status"`

	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        float64  `json:"price"`
	Mileage      int      `json:"mileage"`
	FuelType     string   `json:"fuelType"`
	Transmission string   `json:"transmission"`
	Power        string   `json:"power"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
}

func newCustomerFormView(form models.CustomerForm) CustomerFormView {
	return CustomerFormView{
		ID:           form.ID,
		CreatedAt:    form.CreatedAt,
		Status:       form.Status,
		ContactName:  form.ContactName,
		Email:        form.Email,
		Phone:        form.Phone,
		Brand:        form.Brand,
		Model:        form.Model,
		Year:         form.Year,
		Price:        form.Price,
		Mileage:      form.Mileage,
		FuelType:     form.FuelType,
		Transmission: form.Transmission,
		Power:        form.Power,
		Description:  form.Description,
		Images:       lo.Map(form.Images, func(img models.CustomerFormImage, _ int) string { return img.URL }),
	}
}

// Submit a sell-your-car form with contact info and images
// (POST /api/customer-forms)
func (impl *ServerImpl) CreateCustomerForm(c *gin.Context) {
	const op = "CreateCustomerForm"

	// 聯絡資料必填，車輛欄位是顧客自行填寫的，不強制
	contactName := strings.TrimSpace(c.PostForm("contactName"))
	email := strings.TrimSpace(c.PostForm("email"))
	if contactName == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact name and email are required"})
		return
	}
	year, err := parseOptionalInt(c.PostForm("year"))
	if err != nil || year < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Year must be a non-negative integer"})
		return
	}
	price, err := parseOptionalFloat(c.PostForm("price"))
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a non-negative number"})
		return
	}
	mileage, err := parseOptionalInt(c.PostForm("mileage"))
	if err != nil || mileage < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mileage must be a non-negative integer"})
		return
	}

	// 圖片和車輛上傳走同一套驗證
	multipartForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request must be a multipart form"})
		return
	}
	uploads, err := readUploads(multipartForm.File["images"])
	if err != nil {
		respondFormError(c, op, err)
		return
	}

	form := models.CustomerForm{
		ID:           uuid.New(),
		Status:       models.InquiryStatusNew,
		ContactName:  contactName,
		Email:        email,
		Phone:        c.PostForm("phone"),
		Brand:        c.PostForm("brand"),
		Model:        c.PostForm("model"),
		Year:         year,
		Price:        price,
		Mileage:      mileage,
		FuelType:     c.PostForm("fuelType"),
		Transmission: c.PostForm("transmission"),
		Power:        c.PostForm("power"),
		Description:  impl.htmlChecker.Sanitize(c.PostForm("description")),
	}
	err = impl.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&form); result.Error != nil {
			return fmt.Errorf("fail to insert customer form, err=%w", result.Error)
		}
		if len(uploads) == 0 {
			return nil
		}
		rows := make([]models.CustomerFormImage, 0, len(uploads))
		for i, up := range uploads {
			url, err := impl.mediaStore.Save(c.Request.Context(), up.filename, up.contentType, up.content)
			if err != nil {
				return fmt.Errorf("fail to save image %s, err=%w", up.filename, err)
			}
			rows = append(rows, models.CustomerFormImage{CustomerFormID: form.ID, URL: url, SortOrder: i})
		}
		if result := tx.Create(&rows); result.Error != nil {
			return fmt.Errorf("fail to insert image rows, err=%w", result.Error)
		}
		return nil
	})
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to create customer form, err=%w", op, err))
		return
	}

	created, err := impl.readCustomerForm(form.ID)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back customer form, err=%w", op, err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Customer form submitted successfully",
		"form":    newCustomerFormView(created),
	})
}

// List all customer forms, newest first
// (GET /api/customer-forms)
func (impl *ServerImpl) ListCustomerForms(c *gin.Context) {
	const op = "ListCustomerForms"
	var forms []models.CustomerForm
	result := impl.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Find(&forms)
	if result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to list customer forms, err=%w", op, result.Error))
		return
	}
	c.JSON(http.StatusOK, lo.Map(forms, func(f models.CustomerForm, _ int) CustomerFormView { return newCustomerFormView(f) }))
}

// Update the processing status of a customer form
// (PATCH /api/customer-forms/:id/status)
func (impl *ServerImpl) UpdateCustomerFormStatus(c *gin.Context) {
	const op = "UpdateCustomerFormStatus"
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form id"})
		return
	}
	var request updateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !models.ValidInquiryStatus(request.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid status: %s", request.Status)})
		return
	}

	result := impl.db.Model(&models.CustomerForm{}).Where("id = ?", id).Update("status", request.Status)
	if result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to update customer form status, err=%w", op, result.Error))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer form not found"})
		return
	}
	updated, err := impl.readCustomerForm(id)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back customer form, err=%w", op, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Customer form status updated successfully",
		"form":    newCustomerFormView(updated),
	})
}

func (impl *ServerImpl) readCustomerForm(id uuid.UUID) (models.CustomerForm, error) {
	var form models.CustomerForm
	result := impl.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&form, "id = ?", id)
	return form, result.Error
}
