package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	pkgerrors "github.com/mdibnuahmad159-cpu/studio-sub000/pkg/errors"
)

// StudentFilter 学生列表查询条件（均为等值过滤，Keyword 为姓名/NIS 模糊匹配）
type StudentFilter struct {
	Status         string
	Grade          *int
	GraduationYear *int
	Keyword        string
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	GetByNIS(ctx context.Context, nis string) (*model.Student, error)
	ListByNIS(ctx context.Context, nis []string) ([]model.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]model.Student, error)
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, nis string) error
	// SaveStates 在一个事务内写回一批学生的学籍状态，任一条版本冲突则整体回滚
	SaveStates(ctx context.Context, students []model.Student) error
	// SaveRoster 在一个事务内新增与更新名册
	SaveRoster(ctx context.Context, creates []model.Student, updates []model.Student) error
	CountActiveByGrade(ctx context.Context) (map[int]int64, error)
	CountGraduated(ctx context.Context) (int64, error)
	GraduationYears(ctx context.Context) ([]int, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, s *model.Student) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *studentRepo) GetByNIS(ctx context.Context, nis string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("nis = ?", nis).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ListByNIS(ctx context.Context, nis []string) ([]model.Student, error) {
	var students []model.Student
	if len(nis) == 0 {
		return students, nil
	}
	err := r.db.WithContext(ctx).
		Where("nis IN ?", nis).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter) ([]model.Student, error) {
	var students []model.Student
	db := r.db.WithContext(ctx)

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Grade != nil {
		db = db.Where("grade = ?", *filter.Grade)
	}
	if filter.GraduationYear != nil {
		db = db.Where("graduation_year = ?", *filter.GraduationYear)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR nis ILIKE ?", like, like)
	}

	err := db.Order("name ASC").Find(&students).Error
	return students, err
}

// Update 仅更新档案字段；学籍状态只能通过 SaveStates 修改
func (r *studentRepo) Update(ctx context.Context, s *model.Student) error {
	return updateProfile(r.db.WithContext(ctx), s)
}

func updateProfile(tx *gorm.DB, s *model.Student) error {
	oldVersion := s.Version
	result := tx.Model(&model.Student{}).
		Where("nis = ? AND version = ?", s.NIS, oldVersion).
		Updates(map[string]interface{}{
			"name":        s.Name,
			"sex":         s.Sex,
			"birth_place": s.BirthPlace,
			"birth_date":  s.BirthDate,
			"father_name": s.FatherName,
			"mother_name": s.MotherName,
			"address":     s.Address,
			"updated_by":  s.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version = oldVersion + 1
	return nil
}

func (r *studentRepo) Delete(ctx context.Context, nis string) error {
	return r.db.WithContext(ctx).
		Where("nis = ?", nis).
		Delete(&model.Student{}).Error
}

func (r *studentRepo) SaveStates(ctx context.Context, students []model.Student) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range students {
			s := &students[i]
			result := tx.Model(&model.Student{}).
				Where("nis = ? AND version = ?", s.NIS, s.Version).
				Updates(map[string]interface{}{
					"status":          s.Status,
					"grade":           s.Grade,
					"graduation_year": s.GraduationYear,
					"updated_by":      s.UpdatedBy,
					"updated_at":      gorm.Expr("NOW()"),
					"version":         s.Version + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.ErrOptimisticLock
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := range students {
		students[i].Version++
	}
	return nil
}

func (r *studentRepo) SaveRoster(ctx context.Context, creates []model.Student, updates []model.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(creates) > 0 {
			if err := tx.Create(&creates).Error; err != nil {
				return err
			}
		}
		for i := range updates {
			if err := updateProfile(tx, &updates[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *studentRepo) CountActiveByGrade(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Grade int
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Select("grade, COUNT(*) AS total").
		Where("status = ?", model.StudentStatusActive).
		Group("grade").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Grade] = row.Total
	}
	return counts, nil
}

func (r *studentRepo) CountGraduated(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("status = ?", model.StudentStatusGraduated).
		Count(&n).Error
	return n, err
}

func (r *studentRepo) GraduationYears(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("status = ?", model.StudentStatusGraduated).
		Distinct("graduation_year").
		Order("graduation_year DESC").
		Pluck("graduation_year", &years).Error
	return years, err
}
