package dto

// ── 科目模块 ──

// CreateSubjectRequest 新增科目
type CreateSubjectRequest struct {
	Grade *int   `json:"grade" binding:"required,min=0,max=6"`
	Code  string `json:"code"  binding:"required,min=1,max=16,alphanum"`
	Name  string `json:"name"  binding:"required,notblank,min=2,max=100"`
}

// UpdateSubjectRequest 更新科目
type UpdateSubjectRequest struct {
	Code *string `json:"code" binding:"omitempty,min=1,max=16,alphanum"`
	Name *string `json:"name" binding:"omitempty,notblank,min=2,max=100"`
}

// SubjectListRequest 科目列表查询参数
type SubjectListRequest struct {
	Grade *int `form:"grade" binding:"omitempty,min=0,max=6"`
}

// SubjectResponse 科目响应
type SubjectResponse struct {
	ID    string `json:"id"`
	Grade int    `json:"grade"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}
