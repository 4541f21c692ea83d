package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

// AttendanceRepository 考勤/评语数据访问接口
type AttendanceRepository interface {
	ListByTerm(ctx context.Context, grade int, half string) ([]model.Attendance, error)
	Get(ctx context.Context, nis string, grade int, half string) (*model.Attendance, error)
	Upsert(ctx context.Context, records []model.Attendance) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListByTerm(ctx context.Context, grade int, half string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("grade = ? AND half = ?", grade, half).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) Get(ctx context.Context, nis string, grade int, half string) (*model.Attendance, error) {
	var rec model.Attendance
	err := r.db.WithContext(ctx).
		Where("nis = ? AND grade = ? AND half = ?", nis, grade, half).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) Upsert(ctx context.Context, records []model.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nis"}, {Name: "grade"}, {Name: "half"}},
		DoUpdates: clause.AssignmentColumns([]string{"sick", "excused", "unexcused", "decision", "updated_at", "updated_by"}),
	}).Create(&records).Error
}
