package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var ErrAttendanceDuplicate = errors.New("同一学生在本批中重复")

// AttendanceService 考勤与评语业务接口
type AttendanceService interface {
	// List 返回该年级在读学生的考勤，未录入的学生计数为 0
	List(ctx context.Context, term academic.Term) ([]dto.AttendanceResponse, error)
	Update(ctx context.Context, capab academic.Capability, req *dto.UpdateAttendanceRequest) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

func (s *attendanceService) List(ctx context.Context, term academic.Term) ([]dto.AttendanceResponse, error) {
	grade := term.Grade
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status: model.StudentStatusActive,
		Grade:  &grade,
	})
	if err != nil {
		return nil, err
	}
	sortStudents(students)

	records, err := s.repo.Attendance.ListByTerm(ctx, term.Grade, string(term.Half))
	if err != nil {
		return nil, err
	}
	byNIS := make(map[string]model.Attendance, len(records))
	for _, r := range records {
		byNIS[r.NIS] = r
	}

	out := make([]dto.AttendanceResponse, 0, len(students))
	for _, st := range students {
		rec, ok := byNIS[st.NIS]
		if !ok {
			rec = model.Attendance{NIS: st.NIS, Grade: term.Grade, Half: string(term.Half)}
		}
		out = append(out, toAttendanceResponse(&rec, st.Name))
	}
	return out, nil
}

func (s *attendanceService) Update(ctx context.Context, capab academic.Capability, req *dto.UpdateAttendanceRequest) ([]dto.AttendanceResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}
	term, err := academic.NewTerm(*req.Grade, req.Half)
	if err != nil {
		return nil, err
	}

	nis := make([]string, 0, len(req.Records))
	for _, r := range req.Records {
		nis = append(nis, r.NIS)
	}
	students, err := s.repo.Student.ListByNIS(ctx, dedupe(nis))
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.NIS] = st.Name
	}

	actor := capab.Subject()
	records := make([]model.Attendance, 0, len(req.Records))
	seen := make(map[string]bool, len(req.Records))
	for _, r := range req.Records {
		if _, ok := names[r.NIS]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, r.NIS)
		}
		if seen[r.NIS] {
			return nil, fmt.Errorf("%w: %s", ErrAttendanceDuplicate, r.NIS)
		}
		seen[r.NIS] = true
		if r.Sick < 0 || r.Excused < 0 || r.Unexcused < 0 {
			return nil, academic.ErrNegativeCounter
		}
		records = append(records, model.Attendance{
			NIS:       r.NIS,
			Grade:     term.Grade,
			Half:      string(term.Half),
			Sick:      r.Sick,
			Excused:   r.Excused,
			Unexcused: r.Unexcused,
			Decision:  r.Decision,
			BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
		})
	}

	if err := s.repo.Attendance.Upsert(ctx, records); err != nil {
		s.logger.Error("保存考勤失败", zap.String("term", term.String()), zap.Error(err))
		return nil, err
	}

	out := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		out = append(out, toAttendanceResponse(&records[i], names[records[i].NIS]))
	}
	return out, nil
}

func toAttendanceResponse(a *model.Attendance, name string) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		NIS:       a.NIS,
		Name:      name,
		Grade:     a.Grade,
		Half:      a.Half,
		Sick:      a.Sick,
		Excused:   a.Excused,
		Unexcused: a.Unexcused,
		Decision:  a.Decision,
	}
}
