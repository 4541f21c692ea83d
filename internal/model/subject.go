package model

// Subject 科目（课程表条目）— 对应 subjects，(grade, code) 唯一
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Grade     int    `gorm:"type:smallint;not null"                         json:"grade"`
	Code      string `gorm:"type:varchar(16);not null"                      json:"code"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
