package model

// Score 成绩记录 — 对应 scores，主键 (nis, subject_id, grade, half)
type Score struct {
	NIS       string  `gorm:"column:nis;type:varchar(20);primaryKey" json:"nis"`
	SubjectID string  `gorm:"type:uuid;primaryKey"                   json:"subject_id"`
	Grade     int     `gorm:"type:smallint;primaryKey"               json:"grade"`
	Half      string  `gorm:"type:varchar(8);primaryKey"             json:"half"`
	Value     float64 `gorm:"type:numeric(5,2);not null"             json:"value"`
	BaseModel
}

// TableName 指定表名
func (Score) TableName() string { return "scores" }

// Attendance 考勤与评语 — 对应 attendances，主键 (nis, grade, half)
type Attendance struct {
	NIS       string `gorm:"column:nis;type:varchar(20);primaryKey" json:"nis"`
	Grade     int    `gorm:"type:smallint;primaryKey"               json:"grade"`
	Half      string `gorm:"type:varchar(8);primaryKey"             json:"half"`
	Sick      int    `gorm:"not null;default:0"                     json:"sick"`
	Excused   int    `gorm:"not null;default:0"                     json:"excused"`
	Unexcused int    `gorm:"not null;default:0"                     json:"unexcused"`
	Decision  string `gorm:"type:text"                              json:"decision"`
	BaseModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
