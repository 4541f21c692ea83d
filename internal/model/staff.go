package model

// Staff 教职工 — 对应 staff
type Staff struct {
	StaffID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	Name     string  `gorm:"type:varchar(100);not null"                     json:"name"`
	NIP      *string `gorm:"column:nip;type:varchar(30);uniqueIndex"        json:"nip,omitempty"`
	Position string  `gorm:"type:varchar(50)"                               json:"position"`
	IsActive bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Staff) TableName() string { return "staff" }
