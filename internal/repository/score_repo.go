package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

// ScoreRepository 成绩数据访问接口
type ScoreRepository interface {
	ListByTerm(ctx context.Context, grade int, half string) ([]model.Score, error)
	ListByStudentTerm(ctx context.Context, nis string, grade int, half string) ([]model.Score, error)
	// Apply 在一个事务内 upsert 与删除成绩，键为 (nis, subject_id, grade, half)
	Apply(ctx context.Context, upserts []model.Score, deletes []model.Score) error
}

type scoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo 创建 ScoreRepository 实例
func NewScoreRepo(db *gorm.DB) ScoreRepository {
	return &scoreRepo{db: db}
}

func (r *scoreRepo) ListByTerm(ctx context.Context, grade int, half string) ([]model.Score, error) {
	var scores []model.Score
	err := r.db.WithContext(ctx).
		Where("grade = ? AND half = ?", grade, half).
		Find(&scores).Error
	return scores, err
}

func (r *scoreRepo) ListByStudentTerm(ctx context.Context, nis string, grade int, half string) ([]model.Score, error) {
	var scores []model.Score
	err := r.db.WithContext(ctx).
		Where("nis = ? AND grade = ? AND half = ?", nis, grade, half).
		Find(&scores).Error
	return scores, err
}

func (r *scoreRepo) Apply(ctx context.Context, upserts []model.Score, deletes []model.Score) error {
	if len(upserts) == 0 && len(deletes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(upserts) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "nis"}, {Name: "subject_id"}, {Name: "grade"}, {Name: "half"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "updated_by"}),
			}).Create(&upserts).Error
			if err != nil {
				return err
			}
		}
		for _, d := range deletes {
			err := tx.Where("nis = ? AND subject_id = ? AND grade = ? AND half = ?", d.NIS, d.SubjectID, d.Grade, d.Half).
				Delete(&model.Score{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
