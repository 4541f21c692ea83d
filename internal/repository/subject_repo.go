package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, sub *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByCode(ctx context.Context, grade int, code string) (*model.Subject, error)
	// ListByGrade grade 为 nil 时返回全部年级
	ListByGrade(ctx context.Context, grade *int) ([]model.Subject, error)
	Update(ctx context.Context, sub *model.Subject) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, sub *model.Subject) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var sub model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subjectRepo) GetByCode(ctx context.Context, grade int, code string) (*model.Subject, error) {
	var sub model.Subject
	err := r.db.WithContext(ctx).
		Where("grade = ? AND code = ?", grade, code).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subjectRepo) ListByGrade(ctx context.Context, grade *int) ([]model.Subject, error) {
	var subjects []model.Subject
	db := r.db.WithContext(ctx)
	if grade != nil {
		db = db.Where("grade = ?", *grade)
	}
	err := db.Order("grade ASC, code ASC").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, sub *model.Subject) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		Delete(&model.Subject{}).Error
}

func (r *subjectRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Subject{}).Count(&n).Error
	return n, err
}
