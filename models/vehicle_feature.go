package models

// VehicleFeature 代表車輛的單一配備標籤
// 配備屬於車輛，更新時整批刪除重建，不能單獨操作
type VehicleFeature struct {
	ID        uint   `gorm:"primaryKey"`
	VehicleID uint   `gorm:"not null;index;<-:create"`
	Label     string `gorm:"type:varchar(255);not null;<-:create"`
}
