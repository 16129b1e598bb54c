package models

import (
	"time"
)

// VehicleStatus is the listing state of a vehicle. There are no enforced
// transitions, any status may be set to any other.
type VehicleStatus string

const (
	StatusAvailable VehicleStatus = "available"
	StatusReserved  VehicleStatus = "reserved"
	StatusSold      VehicleStatus = "sold"
)

// ValidVehicleStatus reports whether s is one of the known listing states.
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// Vehicle 代表車行的一筆車輛刊登
// 車輛的配備與圖片分別存放在 vehicle_features 與 vehicle_images
type Vehicle struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;<-:create"`

	Brand        string        `gorm:"type:varchar(255);not null"`
	Model        string        `gorm:"type:varchar(255);not null"`
	Year         int           `gorm:"type:integer;not null"`
	Price        float64       `gorm:"type:numeric;not null"`
	Mileage      int           `gorm:"type:integer;not null"`
	FuelType     string        `gorm:"type:varchar(255)"`
	Transmission string        `gorm:"type:varchar(255)"`
	Power        string        `gorm:"type:varchar(255)"`
	Description  string        `gorm:"type:text"`
	Status       VehicleStatus `gorm:"type:varchar(32);not null;default:'available'"`

	// 外鍵關聯
	Features []VehicleFeature `gorm:"constraint:OnDelete:CASCADE"`
	Images   []VehicleImage   `gorm:"constraint:OnDelete:CASCADE"`
}
