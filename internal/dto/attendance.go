package dto

// ── 考勤与评语模块 ──

// AttendanceInput 单个学生的考勤/评语
type AttendanceInput struct {
	NIS       string `json:"nis"       binding:"required"`
	Sick      int    `json:"sick"      binding:"min=0,max=366"`
	Excused   int    `json:"excused"   binding:"min=0,max=366"`
	Unexcused int    `json:"unexcused" binding:"min=0,max=366"`
	Decision  string `json:"decision"  binding:"omitempty,max=2000"`
}

// UpdateAttendanceRequest 批量写入考勤
type UpdateAttendanceRequest struct {
	Grade   *int              `json:"grade"   binding:"required,min=0,max=6"`
	Half    string            `json:"half"    binding:"required,oneof=first second"`
	Records []AttendanceInput `json:"records" binding:"required,min=1,max=500,dive"`
}

// AttendanceResponse 考勤响应
type AttendanceResponse struct {
	NIS       string `json:"nis"`
	Name      string `json:"name"`
	Grade     int    `json:"grade"`
	Half      string `json:"half"`
	Sick      int    `json:"sick"`
	Excused   int    `json:"excused"`
	Unexcused int    `json:"unexcused"`
	Decision  string `json:"decision"`
}
