package models

// VehicleImage 代表車輛的單張圖片
// sort_order 是圖片在上傳批次中的位置(從0開始)，只會新增不會重排，
// 因此跨批次可能重複；讀取時以 sort_order ASC, id ASC 排序
type VehicleImage struct {
	ID        uint   `gorm:"primaryKey"`
	VehicleID uint   `gorm:"not null;index;<-:create"`
	URL       string `gorm:"type:text;not null;<-:create"`
	SortOrder int    `gorm:"type:integer;not null;<-:create"`
}
