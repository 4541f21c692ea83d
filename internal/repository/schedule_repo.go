package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

// ScheduleRepository 课表数据访问接口
type ScheduleRepository interface {
	ListByGrade(ctx context.Context, kind string, grade int) ([]model.ScheduleSlot, error)
	ListByStaff(ctx context.Context, kind string, staffID string) ([]model.ScheduleSlot, error)
	// Upsert 每个 (kind, grade, weekday, block) 至多一条安排，后写覆盖
	Upsert(ctx context.Context, slot *model.ScheduleSlot) error
	// Delete 返回是否确实删除了记录
	Delete(ctx context.Context, kind string, grade, weekday, block int) (bool, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) ListByGrade(ctx context.Context, kind string, grade int) ([]model.ScheduleSlot, error) {
	var slots []model.ScheduleSlot
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Staff").
		Where("kind = ? AND grade = ?", kind, grade).
		Order("weekday ASC, block ASC").
		Find(&slots).Error
	return slots, err
}

func (r *scheduleRepo) ListByStaff(ctx context.Context, kind string, staffID string) ([]model.ScheduleSlot, error) {
	var slots []model.ScheduleSlot
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("kind = ? AND staff_id = ?", kind, staffID).
		Order("weekday ASC, block ASC, grade ASC").
		Find(&slots).Error
	return slots, err
}

func (r *scheduleRepo) Upsert(ctx context.Context, slot *model.ScheduleSlot) error {
	return r.db.WithContext(ctx).
		Omit("Subject", "Staff").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "grade"}, {Name: "weekday"}, {Name: "block"}},
			DoUpdates: clause.AssignmentColumns([]string{"subject_id", "staff_id", "updated_at", "updated_by"}),
		}).
		Create(slot).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, kind string, grade, weekday, block int) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("kind = ? AND grade = ? AND weekday = ? AND block = ?", kind, grade, weekday, block).
		Delete(&model.ScheduleSlot{})
	return result.RowsAffected > 0, result.Error
}
