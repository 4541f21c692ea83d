package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var ErrStaffNotFound = errors.New("教职工不存在")

// StaffService 教职工业务接口
type StaffService interface {
	Create(ctx context.Context, capab academic.Capability, req *dto.CreateStaffRequest) (*dto.StaffResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.StaffResponse, error)
	Update(ctx context.Context, capab academic.Capability, id string, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	Delete(ctx context.Context, capab academic.Capability, id string) error
}

type staffService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStaffService 创建 StaffService 实例
func NewStaffService(repo *repository.Repository, logger *zap.Logger) StaffService {
	return &staffService{repo: repo, logger: logger}
}

func (s *staffService) Create(ctx context.Context, capab academic.Capability, req *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	actor := capab.Subject()
	st := &model.Staff{
		Name:      req.Name,
		Position:  req.Position,
		IsActive:  true,
		BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
	}
	if req.NIP != "" {
		nip := req.NIP
		st.NIP = &nip
	}

	if err := s.repo.Staff.Create(ctx, st); err != nil {
		s.logger.Error("创建教职工失败", zap.Error(err))
		return nil, err
	}

	resp := toStaffResponse(st)
	return &resp, nil
}

func (s *staffService) List(ctx context.Context, includeInactive bool) ([]dto.StaffResponse, error) {
	list, err := s.repo.Staff.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		out = append(out, toStaffResponse(&list[i]))
	}
	return out, nil
}

func (s *staffService) Update(ctx context.Context, capab academic.Capability, id string, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	st, err := s.repo.Staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.NIP != nil {
		if *req.NIP == "" {
			st.NIP = nil
		} else {
			nip := *req.NIP
			st.NIP = &nip
		}
	}
	if req.Position != nil {
		st.Position = *req.Position
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	actor := capab.Subject()
	st.UpdatedBy = &actor
	if err := s.repo.Staff.Update(ctx, st); err != nil {
		s.logger.Error("更新教职工失败", zap.Error(err))
		return nil, err
	}

	resp := toStaffResponse(st)
	return &resp, nil
}

func (s *staffService) Delete(ctx context.Context, capab academic.Capability, id string) error {
	if err := capab.Require(); err != nil {
		return ErrForbidden
	}
	if _, err := s.repo.Staff.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		return err
	}
	return s.repo.Staff.Delete(ctx, id)
}

func toStaffResponse(st *model.Staff) dto.StaffResponse {
	resp := dto.StaffResponse{
		ID:       st.StaffID,
		Name:     st.Name,
		Position: st.Position,
		IsActive: st.IsActive,
	}
	if st.NIP != nil {
		resp.NIP = *st.NIP
	}
	return resp
}
