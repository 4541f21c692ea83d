package dto

// ── 学生模块 ──

// CreateStudentRequest 新增学生
type CreateStudentRequest struct {
	NIS        string `json:"nis"         binding:"required,notblank,max=20"`
	Name       string `json:"name"        binding:"required,notblank,min=2,max=100"`
	Sex        string `json:"sex"         binding:"omitempty,oneof=L P"`
	BirthPlace string `json:"birth_place" binding:"omitempty,max=100"`
	BirthDate  string `json:"birth_date"  binding:"omitempty,datetime=2006-01-02"`
	FatherName string `json:"father_name" binding:"omitempty,max=100"`
	MotherName string `json:"mother_name" binding:"omitempty,max=100"`
	Address    string `json:"address"     binding:"omitempty,max=255"`
	Grade      *int   `json:"grade"       binding:"required,min=0,max=6"`
}

// UpdateStudentRequest 更新学生档案（不含学籍状态）
type UpdateStudentRequest struct {
	Name       *string `json:"name"        binding:"omitempty,notblank,min=2,max=100"`
	Sex        *string `json:"sex"         binding:"omitempty,oneof=L P"`
	BirthPlace *string `json:"birth_place" binding:"omitempty,max=100"`
	BirthDate  *string `json:"birth_date"  binding:"omitempty,datetime=2006-01-02"`
	FatherName *string `json:"father_name" binding:"omitempty,max=100"`
	MotherName *string `json:"mother_name" binding:"omitempty,max=100"`
	Address    *string `json:"address"     binding:"omitempty,max=255"`
	Version    int     `json:"version"     binding:"required,min=1"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Status  string `form:"status"  binding:"omitempty,oneof=active graduated"`
	Grade   *int   `form:"grade"   binding:"omitempty,min=0,max=6"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	NIS            string   `json:"nis"`
	Name           string   `json:"name"`
	Sex            string   `json:"sex"`
	BirthPlace     string   `json:"birth_place"`
	BirthDate      string   `json:"birth_date,omitempty"`
	FatherName     string   `json:"father_name"`
	MotherName     string   `json:"mother_name"`
	Address        string   `json:"address"`
	Status         string   `json:"status"`
	Grade          *int     `json:"grade,omitempty"`
	GraduationYear *int     `json:"graduation_year,omitempty"`
	Actions        []string `json:"actions"` // 当前状态下允许的学籍操作
	Version        int      `json:"version"`
}

// ProgressionRequest 批量学籍操作（升级/降级/调班/毕业）
type ProgressionRequest struct {
	NIS         []string `json:"nis"          binding:"required,min=1,max=500,dive,required"`
	Action      string   `json:"action"       binding:"required,oneof=promote demote move graduate"`
	TargetGrade *int     `json:"target_grade" binding:"omitempty,min=0,max=6"`
}

// ProgressionResponse 学籍操作结果
type ProgressionResponse struct {
	Action   string            `json:"action"`
	Students []StudentResponse `json:"students"`
}

// AlumniListRequest 校友查询参数
type AlumniListRequest struct {
	Year    *int   `form:"year"    binding:"omitempty,min=1900,max=3000"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// ImportRosterResponse 名册导入结果
type ImportRosterResponse struct {
	Total     int `json:"total"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// ImportError 导入时的单行错误
type ImportError struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}
