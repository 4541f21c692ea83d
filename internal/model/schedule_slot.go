package model

import "time"

// ScheduleKind 课表类型
type ScheduleKind string

const (
	ScheduleRegular ScheduleKind = "regular" // 日常课表
	ScheduleExam    ScheduleKind = "exam"    // 考试安排
)

// TimeBlock 一节课/一场考试的时间段
type TimeBlock struct {
	Block int    `json:"block"`
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`
}

var (
	regularWeekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	examWeekdays    = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	regularBlocks = []TimeBlock{
		{1, "07:00", "07:35"},
		{2, "07:35", "08:10"},
		{3, "08:10", "08:45"},
		{4, "08:45", "09:20"},
		{5, "09:40", "10:15"}, // 09:20-09:40 休息
		{6, "10:15", "10:50"},
		{7, "10:50", "11:25"},
		{8, "11:25", "12:00"},
	}
	examBlocks = []TimeBlock{
		{1, "07:30", "08:30"},
		{2, "08:45", "09:45"},
		{3, "10:00", "11:00"},
	}
)

// ParseScheduleKind 解析课表类型
func ParseScheduleKind(s string) (ScheduleKind, bool) {
	switch k := ScheduleKind(s); k {
	case ScheduleRegular, ScheduleExam:
		return k, true
	}
	return "", false
}

// Weekdays 该类型课表使用的星期
func (k ScheduleKind) Weekdays() []time.Weekday {
	if k == ScheduleExam {
		return examWeekdays
	}
	return regularWeekdays
}

// Blocks 该类型课表的时间段
func (k ScheduleKind) Blocks() []TimeBlock {
	if k == ScheduleExam {
		return examBlocks
	}
	return regularBlocks
}

// HasWeekday 星期是否属于该类型
func (k ScheduleKind) HasWeekday(d int) bool {
	for _, w := range k.Weekdays() {
		if int(w) == d {
			return true
		}
	}
	return false
}

// Block 按编号查找时间段
func (k ScheduleKind) Block(n int) (TimeBlock, bool) {
	for _, b := range k.Blocks() {
		if b.Block == n {
			return b, true
		}
	}
	return TimeBlock{}, false
}

// ScheduleSlot 课表格子 — 对应 schedule_slots，主键 (kind, grade, weekday, block)，每格至多一条安排
type ScheduleSlot struct {
	Kind      string  `gorm:"type:varchar(10);primaryKey" json:"kind"`
	Grade     int     `gorm:"type:smallint;primaryKey"    json:"grade"`
	Weekday   int     `gorm:"type:smallint;primaryKey"    json:"weekday"` // time.Weekday
	Block     int     `gorm:"type:smallint;primaryKey"    json:"block"`
	SubjectID string  `gorm:"type:uuid;not null"          json:"subject_id"`
	StaffID   *string `gorm:"type:uuid"                   json:"staff_id,omitempty"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Staff   *Staff   `gorm:"foreignKey:StaffID;references:StaffID"     json:"staff,omitempty"`
}

// TableName 指定表名
func (ScheduleSlot) TableName() string { return "schedule_slots" }
