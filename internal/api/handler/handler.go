package handler

import "github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Student    *StudentHandler
	Subject    *SubjectHandler
	Staff      *StaffHandler
	Score      *ScoreHandler
	Attendance *AttendanceHandler
	Schedule   *ScheduleHandler
	Report     *ReportHandler
	Export     *ExportHandler
	Dashboard  *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Student:    NewStudentHandler(svc.Student),
		Subject:    NewSubjectHandler(svc.Subject),
		Staff:      NewStaffHandler(svc.Staff),
		Score:      NewScoreHandler(svc.Score),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}
