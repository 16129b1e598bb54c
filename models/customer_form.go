package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerForm 代表顧客的賣車表單
// 包含聯絡資料與顧客自行描述的車輛資訊，圖片存放在 customer_form_images
type CustomerForm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;<-:create"`

	Status      InquiryStatus `gorm:"type:varchar(32);not null;default:'new'"`
	ContactName string        `gorm:"type:varchar(255);not null;<-:create"`
	Email       string        `gorm:"type:varchar(255);not null;<-:create"`
	Phone       string        `gorm:"type:varchar(64);<-:create"`

	Brand        string  `gorm:"type:varchar(255);<-:create"`
	Model        string  `gorm:"type:varchar(255);<-:create"`
	Year         int     `gorm:"type:integer;<-:create"`
	Price        float64 `gorm:"type:numeric;<-:create"`
	Mileage      int     `gorm:"type:integer;<-:create"`
	FuelType     string  `gorm:"type:varchar(255);<-:create"`
	Transmission string  `gorm:"type:varchar(255);<-:create"`
	Power        string  `gorm:"type:varchar(255);<-:create"`
	Description  string  `gorm:"type:text;<-:create"`

	// 外鍵關聯
	Images []CustomerFormImage `gorm:"constraint:OnDelete:CASCADE"`
}

// CustomerFormImage 代表賣車表單附帶的單張圖片
type CustomerFormImage struct {
	ID             uint      `gorm:"primaryKey"`
	CustomerFormID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	URL            string    `gorm:"type:text;not null;<-:create"`
	SortOrder      int       `gorm:"type:integer;not null;<-:create"`
}
