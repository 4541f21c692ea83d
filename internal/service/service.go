package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/config"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Student    StudentService
	Subject    SubjectService
	Staff      StaffService
	Score      ScoreService
	Attendance AttendanceService
	Schedule   ScheduleService
	Report     ReportService
	Export     ExportService
	Dashboard  DashboardService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（Redis 不可用时登出仅在客户端生效）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	loc, err := time.LoadLocation(cfg.School.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return &Service{
		Auth:       NewAuthService(cfg, jwtMgr, blacklist, logger),
		Student:    NewStudentService(repo, loc, logger),
		Subject:    NewSubjectService(repo, logger),
		Staff:      NewStaffService(repo, logger),
		Score:      NewScoreService(repo, logger),
		Attendance: NewAttendanceService(repo, logger),
		Schedule:   NewScheduleService(repo, cfg.School, loc, logger),
		Report:     NewReportService(repo, cfg.School, logger),
		Export:     NewExportService(repo, logger),
		Dashboard:  NewDashboardService(repo, logger),
	}
}
