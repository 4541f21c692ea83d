package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

// DashboardService 首页统计
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	byGrade, err := s.repo.Student.CountActiveByGrade(ctx)
	if err != nil {
		s.logger.Error("统计在读人数失败", zap.Error(err))
		return nil, err
	}
	alumni, err := s.repo.Student.CountGraduated(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.Subject.Count(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.repo.Staff.Count(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		ActiveByGrade: make(map[int]int64, 7),
		Alumni:        alumni,
		Subjects:      subjects,
		Staff:         staff,
	}
	for g := academic.MinGrade; g <= academic.MaxGrade; g++ {
		resp.ActiveByGrade[g] = byGrade[g]
		resp.ActiveTotal += byGrade[g]
	}
	return resp, nil
}
