package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var (
	ErrScoreSubjectGrade  = errors.New("科目不属于该年级")
	ErrScoreStudentAbsent = errors.New("学生不在该年级名册中")
	ErrScoreDuplicateCell = errors.New("同一学生同一科目在本批中重复")
)

// ScoreService 成绩与排名业务接口
type ScoreService interface {
	// GetSheet 某年级某学期的成绩表，按名次排序
	GetSheet(ctx context.Context, term academic.Term) (*dto.ScoreSheetResponse, error)
	// Update 批量写入/清除成绩，任一单元格非法则整批拒绝
	Update(ctx context.Context, capab academic.Capability, req *dto.UpdateScoresRequest) (*dto.UpdateScoresResponse, error)
	// ImportScores 导入成绩 Excel，空单元格不修改，只写入有变化的单元格
	ImportScores(ctx context.Context, capab academic.Capability, term academic.Term, reader io.Reader) (*dto.ImportScoresResponse, error)
}

type scoreService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScoreService 创建 ScoreService 实例
func NewScoreService(repo *repository.Repository, logger *zap.Logger) ScoreService {
	return &scoreService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// scoreSheet — 成绩表、导出与报告单共用的数据装载
// ═══════════════════════════════════════════════════════════

// scoreSheet 某学期的名册、科目、成绩与排名
type scoreSheet struct {
	term     academic.Term
	students []model.Student // 当前在读于该年级的学生
	subjects []model.Subject // 该年级的科目
	book     *academic.ScoreBook
	rankings academic.Rankings
}

func (sh *scoreSheet) lookup() academic.ScoreLookup {
	return sh.book.ForTerm(sh.term)
}

func (sh *scoreSheet) score(nis, subjectID string) (float64, bool) {
	return sh.lookup().Score(nis, subjectID)
}

func loadScoreSheet(ctx context.Context, repo *repository.Repository, term academic.Term) (*scoreSheet, error) {
	grade := term.Grade
	students, err := repo.Student.List(ctx, repository.StudentFilter{
		Status: model.StudentStatusActive,
		Grade:  &grade,
	})
	if err != nil {
		return nil, err
	}
	sortStudents(students)

	scores, err := repo.Score.ListByTerm(ctx, term.Grade, string(term.Half))
	if err != nil {
		return nil, err
	}
	return buildScoreSheet(ctx, repo, term, students, scores)
}

// loadRecordedSheet 以该学期有成绩记录的学生为名册排名，
// 学生升级、调班或毕业后仍可查看以往学期的报告单
func loadRecordedSheet(ctx context.Context, repo *repository.Repository, term academic.Term) (*scoreSheet, error) {
	scores, err := repo.Score.ListByTerm(ctx, term.Grade, string(term.Half))
	if err != nil {
		return nil, err
	}
	nis := make([]string, 0, len(scores))
	for _, sc := range scores {
		nis = append(nis, sc.NIS)
	}
	students, err := repo.Student.ListByNIS(ctx, dedupe(nis))
	if err != nil {
		return nil, err
	}
	sortStudents(students)
	return buildScoreSheet(ctx, repo, term, students, scores)
}

func buildScoreSheet(ctx context.Context, repo *repository.Repository, term academic.Term, students []model.Student, scores []model.Score) (*scoreSheet, error) {
	grade := term.Grade
	subjects, err := repo.Subject.ListByGrade(ctx, &grade)
	if err != nil {
		return nil, err
	}

	book := academic.NewScoreBook()
	for _, sc := range scores {
		key := academic.ScoreKey{StudentID: sc.NIS, SubjectID: sc.SubjectID, Term: term}
		if err := book.Set(key, sc.Value); err != nil {
			return nil, fmt.Errorf("成绩数据异常 %s/%s: %w", sc.NIS, sc.SubjectID, err)
		}
	}

	rankStudents := make([]academic.RankStudent, 0, len(students))
	for _, st := range students {
		rankStudents = append(rankStudents, academic.RankStudent{ID: st.NIS, Name: st.Name})
	}
	rankSubjects := make([]academic.RankSubject, 0, len(subjects))
	for _, sub := range subjects {
		rankSubjects = append(rankSubjects, academic.RankSubject{ID: sub.SubjectID})
	}

	sh := &scoreSheet{
		term:     term,
		students: students,
		subjects: subjects,
		book:     book,
	}
	sh.rankings = academic.ComputeRankings(rankStudents, rankSubjects, sh.lookup())
	return sh, nil
}

// ────────────────────── GetSheet ──────────────────────

func (s *scoreService) GetSheet(ctx context.Context, term academic.Term) (*dto.ScoreSheetResponse, error) {
	sh, err := loadScoreSheet(ctx, s.repo, term)
	if err != nil {
		s.logger.Error("加载成绩表失败", zap.String("term", term.String()), zap.Error(err))
		return nil, err
	}

	resp := &dto.ScoreSheetResponse{
		Grade:    term.Grade,
		Half:     string(term.Half),
		Subjects: make([]dto.SubjectResponse, 0, len(sh.subjects)),
		Rows:     make([]dto.ScoreSheetRow, 0, len(sh.rankings.Ordered)),
	}
	for i := range sh.subjects {
		resp.Subjects = append(resp.Subjects, toSubjectResponse(&sh.subjects[i]))
	}

	for _, r := range sh.rankings.Ordered {
		row := dto.ScoreSheetRow{
			NIS:     r.StudentID,
			Name:    r.Name,
			Scores:  make(map[string]*float64, len(sh.subjects)),
			Sum:     r.Sum,
			Count:   r.Count,
			Average: r.Average,
			Rank:    r.Rank,
		}
		for _, sub := range sh.subjects {
			if v, ok := sh.score(r.StudentID, sub.SubjectID); ok {
				row.Scores[sub.SubjectID] = &v
			} else {
				row.Scores[sub.SubjectID] = nil
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *scoreService) Update(ctx context.Context, capab academic.Capability, req *dto.UpdateScoresRequest) (*dto.UpdateScoresResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}
	term, err := academic.NewTerm(*req.Grade, req.Half)
	if err != nil {
		return nil, err
	}

	grade := term.Grade
	subjects, err := s.repo.Subject.ListByGrade(ctx, &grade)
	if err != nil {
		return nil, err
	}
	validSubject := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		validSubject[sub.SubjectID] = true
	}

	// 与成绩表、导入一致：只接受当前在读于该年级的学生
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status: model.StudentStatusActive,
		Grade:  &grade,
	})
	if err != nil {
		return nil, err
	}
	roster := make(map[string]bool, len(students))
	for _, st := range students {
		roster[st.NIS] = true
	}

	type cellKey struct{ nis, subjectID string }
	seen := make(map[cellKey]bool, len(req.Cells))

	actor := capab.Subject()
	var upserts, deletes []model.Score
	for _, c := range req.Cells {
		if !roster[c.NIS] {
			return nil, fmt.Errorf("%w: %s", ErrScoreStudentAbsent, c.NIS)
		}
		if !validSubject[c.SubjectID] {
			return nil, fmt.Errorf("%w: %s", ErrScoreSubjectGrade, c.SubjectID)
		}
		key := cellKey{c.NIS, c.SubjectID}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s/%s", ErrScoreDuplicateCell, c.NIS, c.SubjectID)
		}
		seen[key] = true

		sc := model.Score{NIS: c.NIS, SubjectID: c.SubjectID, Grade: term.Grade, Half: string(term.Half)}
		if c.Value == nil {
			deletes = append(deletes, sc)
			continue
		}
		if err := academic.ValidateScore(*c.Value); err != nil {
			return nil, err
		}
		sc.Value = roundScore(*c.Value)
		sc.CreatedBy = &actor
		sc.UpdatedBy = &actor
		upserts = append(upserts, sc)
	}

	if err := s.repo.Score.Apply(ctx, upserts, deletes); err != nil {
		s.logger.Error("保存成绩失败", zap.String("term", term.String()), zap.Error(err))
		return nil, err
	}

	return &dto.UpdateScoresResponse{Upserted: len(upserts), Cleared: len(deletes)}, nil
}

// ────────────────────── ImportScores ──────────────────────

// 成绩表中由系统计算、导入时忽略的列，也不能用作科目代码
var reservedScoreColumns = map[string]bool{
	"nis": true, "name": true, "nama": true,
	"sum": true, "count": true, "average": true, "rank": true,
}

func (s *scoreService) ImportScores(ctx context.Context, capab academic.Capability, term academic.Term, reader io.Reader) (*dto.ImportScoresResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	excelRows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}
	if len(excelRows)-1 > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	sh, err := loadScoreSheet(ctx, s.repo, term)
	if err != nil {
		return nil, err
	}

	// 1. 表头：第一列 nis，其余为科目代码
	header := excelRows[0]
	if normalizeHeader(cellAt(header, 0)) != "nis" {
		return nil, fmt.Errorf("%w（第一列必须为 nis）", ErrImportBadHeader)
	}
	byCode := make(map[string]model.Subject, len(sh.subjects))
	for _, sub := range sh.subjects {
		byCode[strings.ToLower(sub.Code)] = sub
	}

	var issues []dto.ImportError
	columns := make(map[int]model.Subject)
	for i := 1; i < len(header); i++ {
		name := normalizeHeader(header[i])
		if name == "" || reservedScoreColumns[name] {
			continue
		}
		sub, ok := byCode[name]
		if !ok {
			issues = append(issues, dto.ImportError{Row: 1, Column: colName(i), Reason: fmt.Sprintf("未知科目代码 %q", header[i])})
			continue
		}
		columns[i] = sub
	}

	roster := make(map[string]bool, len(sh.students))
	for _, st := range sh.students {
		roster[st.NIS] = true
	}

	// 2. 数据行：空单元格表示不修改
	actor := capab.Subject()
	resp := &dto.ImportScoresResponse{}
	var upserts []model.Score
	seen := make(map[string]int)
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		if isBlankRow(raw) {
			continue
		}
		rowNum := i + 1
		resp.Rows++

		nis := cellAt(raw, 0)
		switch {
		case nis == "":
			issues = append(issues, dto.ImportError{Row: rowNum, Column: "A", Reason: "NIS 不能为空"})
			continue
		case !roster[nis]:
			issues = append(issues, dto.ImportError{Row: rowNum, Column: "A", Reason: fmt.Sprintf("NIS %s 不在该年级名册中", nis)})
			continue
		}
		if first, dup := seen[nis]; dup {
			issues = append(issues, dto.ImportError{Row: rowNum, Column: "A", Reason: fmt.Sprintf("NIS 与第%d行重复", first)})
			continue
		}
		seen[nis] = rowNum

		for idx, sub := range columns {
			v := cellAt(raw, idx)
			if v == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
			if err != nil || math.IsNaN(value) {
				issues = append(issues, dto.ImportError{Row: rowNum, Column: colName(idx), Reason: fmt.Sprintf("%q 不是有效分数", v)})
				continue
			}
			if err := academic.ValidateScore(value); err != nil {
				issues = append(issues, dto.ImportError{Row: rowNum, Column: colName(idx), Reason: err.Error()})
				continue
			}
			value = roundScore(value)

			if old, ok := sh.score(nis, sub.SubjectID); ok && old == value {
				resp.Unchanged++
				continue
			}
			upserts = append(upserts, model.Score{
				NIS:       nis,
				SubjectID: sub.SubjectID,
				Grade:     term.Grade,
				Half:      string(term.Half),
				Value:     value,
				BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
			})
		}
	}

	if len(issues) > 0 {
		return nil, &ImportValidationError{Errors: issues}
	}

	if err := s.repo.Score.Apply(ctx, upserts, nil); err != nil {
		s.logger.Error("导入成绩失败", zap.String("term", term.String()), zap.Error(err))
		return nil, err
	}

	resp.Changed = len(upserts)
	s.logger.Info("成绩导入完成",
		zap.String("term", term.String()),
		zap.Int("rows", resp.Rows),
		zap.Int("changed", resp.Changed),
	)
	return resp, nil
}

// roundScore 与数据库 numeric(5,2) 精度一致
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// getSubject 查询科目，不存在时返回 ErrSubjectNotFound
func getSubject(ctx context.Context, repo *repository.Repository, id string) (*model.Subject, error) {
	sub, err := repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return sub, nil
}
