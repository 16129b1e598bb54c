package api

import (
	"errors"
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

// InquiryView 是詢問單的對外JSON格式，有關聯車輛時附上車輛摘要
type InquiryView struct {
	ID           uuid.UUID            `json:"id"`
	CreatedAt    time.Time            `json:"createdAt"`
	Status       models.InquiryStatus `json:"status"`
	CustomerName string               `json:"customerName"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone"`
	Message      string               `json:"message"`
	Vehicle      *InquiryVehicleView  `json:"vehicle,omitempty"`
}

// InquiryVehicleView 是詢問單內嵌的車輛摘要
type InquiryVehicleView struct {
	ID    uint    `json:"id"`
	Brand string  `json:"brand"`
	Model string  `json:"model"`
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

func newInquiryView(inquiry models.Inquiry) InquiryView {
	view := InquiryView{
		ID:           inquiry.ID,
		CreatedAt:    inquiry.CreatedAt,
		Status:       inquiry.Status,
		CustomerName: inquiry.CustomerName,
		Email:        inquiry.Email,
		Phone:        inquiry.Phone,
		Message:      inquiry.Message,
	}
	if inquiry.Vehicle != nil {
		view.Vehicle = &InquiryVehicleView{
			ID:    inquiry.Vehicle.ID,
			Brand: inquiry.Vehicle.Brand,
			Model: inquiry.Vehicle.Model,
			Year:  inquiry.Vehicle.Year,
			Price: inquiry.Vehicle.Price,
		}
	}
	return view
}

type createInquiryRequest struct {
	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Message      string `json:"message"`
	VehicleID    *uint  `json:"vehicleId"`
}

// Create an inquiry for a vehicle
// (POST /api/inquiries)
func (impl *ServerImpl) CreateInquiry(c *gin.Context) {
	const op = "CreateInquiry"
	var request createInquiryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(request.CustomerName) == "" || strings.TrimSpace(request.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name and email are required"})
		return
	}
	// 有指定車輛時檢查車輛是否存在
	if request.VehicleID != nil {
		if result := impl.db.First(&models.Vehicle{}, *request.VehicleID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle not found"})
				return
			}
			serverError(c, op, fmt.Errorf("[%s] Fail to find vehicle, err=%w", op, result.Error))
			return
		}
	}

	inquiry := models.Inquiry{
		ID:           uuid.New(),
		CustomerName: strings.TrimSpace(request.CustomerName),
		Email:        strings.TrimSpace(request.Email),
		Phone:        request.Phone,
		Message:      impl.htmlChecker.Sanitize(request.Message),
		Status:       models.InquiryStatusNew,
		VehicleID:    request.VehicleID,
	}
	if result := impl.db.Create(&inquiry); result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to create inquiry, err=%w", op, result.Error))
		return
	}
	created, err := impl.readInquiry(inquiry.ID)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back inquiry, err=%w", op, err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Inquiry submitted successfully",
		"inquiry": newInquiryView(created),
	})
}

// List all inquiries, newest first
// (GET /api/inquiries)
func (impl *ServerImpl) ListInquiries(c *gin.Context) {
	const op = "ListInquiries"
	var inquiries []models.Inquiry
	result := impl.db.
		Preload("Vehicle").
		Order("created_at DESC, id DESC").
		Find(&inquiries)
	if result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to list inquiries, err=%w", op, result.Error))
		return
	}
	c.JSON(http.StatusOK, lo.Map(inquiries, func(i models.Inquiry, _ int) InquiryView { return newInquiryView(i) }))
}

type updateStatusRequest struct {
	Status models.InquiryStatus `json:"status"`
}

// Update the processing status of an inquiry
// (PATCH /api/inquiries/:id/status)
func (impl *ServerImpl) UpdateInquiryStatus(c *gin.Context) {
	const op = "UpdateInquiryStatus"
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry id"})
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

	result := impl.db.Model(&models.Inquiry{}).Where("id = ?", id).Update("status", request.Status)
	if result.Error != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to update inquiry status, err=%w", op, result.Error))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
		return
	}
	updated, err := impl.readInquiry(id)
	if err != nil {
		serverError(c, op, fmt.Errorf("[%s] Fail to read back inquiry, err=%w", op, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Inquiry status updated successfully",
		"inquiry": newInquiryView(updated),
	})
}

func (impl *ServerImpl) readInquiry(id uuid.UUID) (models.Inquiry, error) {
	var inquiry models.Inquiry
	result := impl.db.Preload("Vehicle").First(&inquiry, "id = ?", id)
	return inquiry, result.Error
}
