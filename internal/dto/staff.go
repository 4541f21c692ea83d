package dto

// ── 教职工模块 ──

// CreateStaffRequest 新增教职工
type CreateStaffRequest struct {
	Name     string `json:"name"     binding:"required,notblank,min=2,max=100"`
	NIP      string `json:"nip"      binding:"omitempty,max=30,numeric"`
	Position string `json:"position" binding:"omitempty,max=50"`
}

// UpdateStaffRequest 更新教职工
type UpdateStaffRequest struct {
	Name     *string `json:"name"      binding:"omitempty,notblank,min=2,max=100"`
	NIP      *string `json:"nip"       binding:"omitempty,max=30,numeric"`
	Position *string `json:"position"  binding:"omitempty,max=50"`
	IsActive *bool   `json:"is_active"`
}

// StaffListRequest 教职工列表查询参数
type StaffListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// StaffResponse 教职工响应
type StaffResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NIP      string `json:"nip,omitempty"`
	Position string `json:"position"`
	IsActive bool   `json:"is_active"`
}
