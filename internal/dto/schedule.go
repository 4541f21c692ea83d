package dto

// ── 课表模块 ──

// ScheduleGridRequest 课表查询参数
type ScheduleGridRequest struct {
	Grade *int `form:"grade" binding:"required,min=0,max=6"`
}

// AssignSlotRequest 安排一个课表格子
type AssignSlotRequest struct {
	Grade     *int    `json:"grade"      binding:"required,min=0,max=6"`
	Weekday   int     `json:"weekday"    binding:"min=0,max=6"`
	Block     int     `json:"block"      binding:"required,min=1"`
	SubjectID string  `json:"subject_id" binding:"required"`
	StaffID   *string `json:"staff_id"`
}

// ClearSlotRequest 清空课表格子
type ClearSlotRequest struct {
	Grade   *int `form:"grade"   binding:"required,min=0,max=6"`
	Weekday int  `form:"weekday" binding:"min=0,max=6"`
	Block   int  `form:"block"   binding:"required,min=1"`
}

// ScheduleCell 课表格子
type ScheduleCell struct {
	Weekday     int    `json:"weekday"`
	SubjectID   string `json:"subject_id,omitempty"`
	SubjectCode string `json:"subject_code,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	StaffID     string `json:"staff_id,omitempty"`
	StaffName   string `json:"staff_name,omitempty"`
	Empty       bool   `json:"empty"`
}

// ScheduleRow 课表一行（一个时间段）
type ScheduleRow struct {
	Block int            `json:"block"`
	Start string         `json:"start"`
	End   string         `json:"end"`
	Cells []ScheduleCell `json:"cells"`
}

// ScheduleGridResponse 课表网格：行为时间段，列为星期
type ScheduleGridResponse struct {
	Kind     string        `json:"kind"`
	Grade    int           `json:"grade"`
	Weekdays []int         `json:"weekdays"`
	Rows     []ScheduleRow `json:"rows"`
}

// ScheduleSlotResponse 单个格子安排结果
type ScheduleSlotResponse struct {
	Kind      string  `json:"kind"`
	Grade     int     `json:"grade"`
	Weekday   int     `json:"weekday"`
	Block     int     `json:"block"`
	SubjectID string  `json:"subject_id"`
	StaffID   *string `json:"staff_id,omitempty"`
}
