package model

import (
	"time"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
)

// 学籍状态
const (
	StudentStatusActive    = "active"
	StudentStatusGraduated = "graduated"
)

// Student 学生表 — 对应 students，NIS 为主键
type Student struct {
	NIS            string     `gorm:"column:nis;type:varchar(20);primaryKey" json:"nis"`
	Name           string     `gorm:"type:varchar(100);not null"             json:"name"`
	Sex            string     `gorm:"type:varchar(1)"                        json:"sex"` // L / P
	BirthPlace     string     `gorm:"type:varchar(100)"                      json:"birth_place"`
	BirthDate      *time.Time `gorm:"type:date"                              json:"birth_date,omitempty"`
	FatherName     string     `gorm:"type:varchar(100)"                      json:"father_name"`
	MotherName     string     `gorm:"type:varchar(100)"                      json:"mother_name"`
	Address        string     `gorm:"type:varchar(255)"                      json:"address"`
	Status         string     `gorm:"type:varchar(16);not null"              json:"status"`
	Grade          *int       `gorm:"type:smallint"                          json:"grade,omitempty"`
	GraduationYear *int       `gorm:"type:integer"                           json:"graduation_year,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// State 将持久化字段转换为学籍状态；数据不一致时返回 ErrInconsistentRecord
func (s *Student) State() (academic.State, error) {
	switch s.Status {
	case StudentStatusActive:
		if s.Grade == nil || s.GraduationYear != nil || !academic.ValidGrade(*s.Grade) {
			return academic.State{}, academic.ErrInconsistentRecord
		}
		return academic.Active(*s.Grade), nil
	case StudentStatusGraduated:
		if s.GraduationYear == nil {
			return academic.State{}, academic.ErrInconsistentRecord
		}
		return academic.Graduated(*s.GraduationYear), nil
	}
	return academic.State{}, academic.ErrInconsistentRecord
}

// ApplyState 写回学籍状态，保持 status/grade/graduation_year 三者一致
func (s *Student) ApplyState(st academic.State) {
	switch st.Kind {
	case academic.KindActive:
		g := st.Grade
		s.Status = StudentStatusActive
		s.Grade = &g
		s.GraduationYear = nil
	case academic.KindGraduated:
		y := st.GraduationYear
		s.Status = StudentStatusGraduated
		s.Grade = nil
		s.GraduationYear = &y
	}
}
