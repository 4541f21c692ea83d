package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
	pkgerrors "github.com/mdibnuahmad159-cpu/studio-sub000/pkg/errors"
)

var (
	ErrSubjectNotFound     = errors.New("科目不存在")
	ErrSubjectCodeExists   = errors.New("该年级已存在相同代码的科目")
	ErrSubjectCodeReserved = errors.New("科目代码与成绩表固定列重名")
)

// SubjectService 科目业务接口
type SubjectService interface {
	Create(ctx context.Context, capab academic.Capability, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	List(ctx context.Context, grade *int) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, capab academic.Capability, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, capab academic.Capability, id string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) Create(ctx context.Context, capab academic.Capability, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	code := normalizeCode(req.Code)
	if reservedScoreColumns[strings.ToLower(code)] {
		return nil, ErrSubjectCodeReserved
	}
	if _, err := s.repo.Subject.GetByCode(ctx, *req.Grade, code); err == nil {
		return nil, ErrSubjectCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	actor := capab.Subject()
	sub := &model.Subject{
		Grade:     *req.Grade,
		Code:      code,
		Name:      req.Name,
		BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
	}
	if err := s.repo.Subject.Create(ctx, sub); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrSubjectCodeExists
		}
		s.logger.Error("创建科目失败", zap.Error(err))
		return nil, err
	}

	resp := toSubjectResponse(sub)
	return &resp, nil
}

func (s *subjectService) List(ctx context.Context, grade *int) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.ListByGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		out = append(out, toSubjectResponse(&subjects[i]))
	}
	return out, nil
}

func (s *subjectService) Update(ctx context.Context, capab academic.Capability, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	sub, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Code != nil && normalizeCode(*req.Code) != sub.Code {
		code := normalizeCode(*req.Code)
		if reservedScoreColumns[strings.ToLower(code)] {
			return nil, ErrSubjectCodeReserved
		}
		if _, err := s.repo.Subject.GetByCode(ctx, sub.Grade, code); err == nil {
			return nil, ErrSubjectCodeExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		sub.Code = code
	}
	if req.Name != nil {
		sub.Name = *req.Name
	}

	actor := capab.Subject()
	sub.UpdatedBy = &actor
	if err := s.repo.Subject.Update(ctx, sub); err != nil {
		s.logger.Error("更新科目失败", zap.Error(err))
		return nil, err
	}

	resp := toSubjectResponse(sub)
	return &resp, nil
}

func (s *subjectService) Delete(ctx context.Context, capab academic.Capability, id string) error {
	if err := capab.Require(); err != nil {
		return ErrForbidden
	}
	if _, err := s.repo.Subject.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}
	return s.repo.Subject.Delete(ctx, id)
}

func toSubjectResponse(sub *model.Subject) dto.SubjectResponse {
	return dto.SubjectResponse{
		ID:    sub.SubjectID,
		Grade: sub.Grade,
		Code:  sub.Code,
		Name:  sub.Name,
	}
}

// normalizeCode 科目代码统一为大写，导入时按不区分大小写匹配
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
