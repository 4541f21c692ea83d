package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

// StaffRepository 教职工数据访问接口
type StaffRepository interface {
	Create(ctx context.Context, st *model.Staff) error
	GetByID(ctx context.Context, id string) (*model.Staff, error)
	List(ctx context.Context, includeInactive bool) ([]model.Staff, error)
	Update(ctx context.Context, st *model.Staff) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type staffRepo struct {
	db *gorm.DB
}

// NewStaffRepo 创建 StaffRepository 实例
func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, st *model.Staff) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	var st model.Staff
	err := r.db.WithContext(ctx).
		Where("staff_id = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *staffRepo) List(ctx context.Context, includeInactive bool) ([]model.Staff, error) {
	var staff []model.Staff
	db := r.db.WithContext(ctx)

	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("name ASC").Find(&staff).Error
	return staff, err
}

func (r *staffRepo) Update(ctx context.Context, st *model.Staff) error {
	return r.db.WithContext(ctx).Save(st).Error
}

func (r *staffRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("staff_id = ?", id).
		Delete(&model.Staff{}).Error
}

func (r *staffRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("is_active = ?", true).
		Count(&n).Error
	return n, err
}
