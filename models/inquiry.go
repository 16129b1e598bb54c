package models

import (
	"time"

	"github.com/google/uuid"
)

// InquiryStatus is the processing state of an inquiry or customer form.
type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusInProgress InquiryStatus = "inProgress"
	InquiryStatusCompleted  InquiryStatus = "completed"
	InquiryStatusRejected   InquiryStatus = "rejected"
)

// ValidInquiryStatus reports whether s is one of the known processing states.
func ValidInquiryStatus(s InquiryStatus) bool {
	switch s {
	case InquiryStatusNew, InquiryStatusInProgress, InquiryStatusCompleted, InquiryStatusRejected:
		return true
	}
	return false
}

// Inquiry 代表顧客對某輛車的詢問
// 可以關聯到一輛車，車輛被刪除時保留詢問但解除關聯
type Inquiry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;<-:create"`

	CustomerName string        `gorm:"type:varchar(255);not null;<-:create"`
	Email        string        `gorm:"type:varchar(255);not null;<-:create"`
	Phone        string        `gorm:"type:varchar(64);<-:create"`
	Message      string        `gorm:"type:text;<-:create"`
	Status       InquiryStatus `gorm:"type:varchar(32);not null;default:'new'"`
	// 車輛刪除時會被清成 NULL，必須保持可更新
	VehicleID *uint

	Vehicle *Vehicle `gorm:"constraint:OnDelete:SET NULL"`
}
