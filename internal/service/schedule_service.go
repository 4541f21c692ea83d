package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/config"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var (
	ErrInvalidWeekday      = errors.New("该课表类型不包含此星期")
	ErrInvalidBlock        = errors.New("时间段编号无效")
	ErrSlotSubjectGrade    = errors.New("科目不属于该年级")
	ErrStaffInactive       = errors.New("教职工已停用")
	ErrStaffDoubleBooked   = errors.New("该教职工在同一时间段已有安排")
	ErrSlotNotFound        = errors.New("该时间段暂无安排")
	ErrUnknownScheduleKind = errors.New("未知的课表类型")
)

// ScheduleService 课表与考试安排业务接口
type ScheduleService interface {
	Grid(ctx context.Context, kind model.ScheduleKind, grade int) (*dto.ScheduleGridResponse, error)
	Assign(ctx context.Context, capab academic.Capability, kind model.ScheduleKind, req *dto.AssignSlotRequest) (*dto.ScheduleSlotResponse, error)
	Clear(ctx context.Context, capab academic.Capability, kind model.ScheduleKind, req *dto.ClearSlotRequest) error
	// ExportICS 导出 iCalendar。日常课表为每周重复事件，考试安排为 weekOf 所在周的单次事件。
	ExportICS(ctx context.Context, kind model.ScheduleKind, grade int, weekOf time.Time) ([]byte, string, error)
}

type scheduleService struct {
	repo   *repository.Repository
	school config.SchoolConfig
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, school config.SchoolConfig, loc *time.Location, logger *zap.Logger) ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleService{repo: repo, school: school, loc: loc, logger: logger}
}

// ────────────────────── Grid ──────────────────────

func (s *scheduleService) Grid(ctx context.Context, kind model.ScheduleKind, grade int) (*dto.ScheduleGridResponse, error) {
	if !academic.ValidGrade(grade) {
		return nil, academic.ErrInvalidGrade
	}
	slots, err := s.repo.Schedule.ListByGrade(ctx, string(kind), grade)
	if err != nil {
		return nil, err
	}

	type cellKey struct{ weekday, block int }
	index := make(map[cellKey]*model.ScheduleSlot, len(slots))
	for i := range slots {
		index[cellKey{slots[i].Weekday, slots[i].Block}] = &slots[i]
	}

	weekdays := kind.Weekdays()
	resp := &dto.ScheduleGridResponse{
		Kind:     string(kind),
		Grade:    grade,
		Weekdays: make([]int, 0, len(weekdays)),
	}
	for _, w := range weekdays {
		resp.Weekdays = append(resp.Weekdays, int(w))
	}

	for _, b := range kind.Blocks() {
		row := dto.ScheduleRow{Block: b.Block, Start: b.Start, End: b.End}
		for _, w := range weekdays {
			c := dto.ScheduleCell{Weekday: int(w), Empty: true}
			if slot, ok := index[cellKey{int(w), b.Block}]; ok {
				c.Empty = false
				c.SubjectID = slot.SubjectID
				if slot.Subject != nil {
					c.SubjectCode = slot.Subject.Code
					c.SubjectName = slot.Subject.Name
				}
				if slot.StaffID != nil {
					c.StaffID = *slot.StaffID
				}
				if slot.Staff != nil {
					c.StaffName = slot.Staff.Name
				}
			}
			row.Cells = append(row.Cells, c)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// ────────────────────── Assign / Clear ──────────────────────

func (s *scheduleService) Assign(ctx context.Context, capab academic.Capability, kind model.ScheduleKind, req *dto.AssignSlotRequest) (*dto.ScheduleSlotResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}
	grade := *req.Grade
	if err := validateSlot(kind, grade, req.Weekday, req.Block); err != nil {
		return nil, err
	}

	sub, err := getSubject(ctx, s.repo, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if sub.Grade != grade {
		return nil, ErrSlotSubjectGrade
	}

	if req.StaffID != nil && *req.StaffID != "" {
		st, err := s.repo.Staff.GetByID(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStaffNotFound
			}
			return nil, err
		}
		if !st.IsActive {
			return nil, ErrStaffInactive
		}

		booked, err := s.repo.Schedule.ListByStaff(ctx, string(kind), st.StaffID)
		if err != nil {
			return nil, err
		}
		for _, b := range booked {
			if b.Weekday == req.Weekday && b.Block == req.Block && b.Grade != grade {
				return nil, fmt.Errorf("%w（%d 年级）", ErrStaffDoubleBooked, b.Grade)
			}
		}
	} else {
		req.StaffID = nil
	}

	actor := capab.Subject()
	slot := &model.ScheduleSlot{
		Kind:      string(kind),
		Grade:     grade,
		Weekday:   req.Weekday,
		Block:     req.Block,
		SubjectID: sub.SubjectID,
		StaffID:   req.StaffID,
		BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
	}
	if err := s.repo.Schedule.Upsert(ctx, slot); err != nil {
		s.logger.Error("保存课表失败", zap.String("kind", string(kind)), zap.Int("grade", grade), zap.Error(err))
		return nil, err
	}

	return &dto.ScheduleSlotResponse{
		Kind:      slot.Kind,
		Grade:     slot.Grade,
		Weekday:   slot.Weekday,
		Block:     slot.Block,
		SubjectID: slot.SubjectID,
		StaffID:   slot.StaffID,
	}, nil
}

func (s *scheduleService) Clear(ctx context.Context, capab academic.Capability, kind model.ScheduleKind, req *dto.ClearSlotRequest) error {
	if err := capab.Require(); err != nil {
		return ErrForbidden
	}
	if err := validateSlot(kind, *req.Grade, req.Weekday, req.Block); err != nil {
		return err
	}

	deleted, err := s.repo.Schedule.Delete(ctx, string(kind), *req.Grade, req.Weekday, req.Block)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSlotNotFound
	}
	return nil
}

func validateSlot(kind model.ScheduleKind, grade, weekday, block int) error {
	if !academic.ValidGrade(grade) {
		return academic.ErrInvalidGrade
	}
	if !kind.HasWeekday(weekday) {
		return ErrInvalidWeekday
	}
	if _, ok := kind.Block(block); !ok {
		return ErrInvalidBlock
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出 iCalendar (RFC 5545)
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) ExportICS(ctx context.Context, kind model.ScheduleKind, grade int, weekOf time.Time) ([]byte, string, error) {
	if !academic.ValidGrade(grade) {
		return nil, "", academic.ErrInvalidGrade
	}
	slots, err := s.repo.Schedule.ListByGrade(ctx, string(kind), grade)
	if err != nil {
		return nil, "", err
	}

	monday := startOfWeek(weekOf.In(s.loc))
	stamp := time.Now()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sekolah//schedule//ID")
	cal.SetXWRCalName(fmt.Sprintf("%s - Kelas %d (%s)", s.school.Name, grade, kind))

	for _, slot := range slots {
		tb, ok := kind.Block(slot.Block)
		if !ok || !kind.HasWeekday(slot.Weekday) {
			continue
		}
		day := monday.AddDate(0, 0, (slot.Weekday+6)%7)
		start, err := atClock(day, tb.Start)
		if err != nil {
			return nil, "", err
		}
		end, err := atClock(day, tb.End)
		if err != nil {
			return nil, "", err
		}

		uid := fmt.Sprintf("%s-%d-%d-%d", kind, grade, slot.Weekday, slot.Block)
		if kind == model.ScheduleExam {
			uid += "-" + monday.Format("20060102")
		}
		event := cal.AddEvent(uid + "@sekolah")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)

		summary := slot.SubjectID
		if slot.Subject != nil {
			summary = slot.Subject.Name
		}
		event.SetSummary(summary)

		desc := fmt.Sprintf("Kelas %d, jam ke-%d", grade, slot.Block)
		if slot.Staff != nil {
			desc += ", " + slot.Staff.Name
		}
		event.SetDescription(desc)

		if kind == model.ScheduleRegular {
			event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
		}
	}

	filename := fmt.Sprintf("jadwal-%s-kelas-%d.ics", kind, grade)
	return []byte(cal.Serialize()), filename, nil
}

// startOfWeek 返回所在周的周一 00:00
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// atClock 将 "HH:MM" 落到指定日期
func atClock(day time.Time, hhmm string) (time.Time, error) {
	c, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("时间格式错误 %q: %w", hhmm, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}
