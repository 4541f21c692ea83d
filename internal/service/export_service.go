package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出的表头与导入使用同一套列名，导出后原样导入不会产生任何修改。
// 结果以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
type ExportService interface {
	// ExportRoster 导出学生名册；status 为空时导出全部
	ExportRoster(ctx context.Context, status string, grade *int) (*bytes.Buffer, string, error)
	// ExportScores 导出某学期成绩表（按名次排序）
	ExportScores(ctx context.Context, term academic.Term) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportRoster ──────────────────────

func (s *exportService) ExportRoster(ctx context.Context, status string, grade *int) (*bytes.Buffer, string, error) {
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{Status: status, Grade: grade})
	if err != nil {
		s.logger.Error("查询名册失败", zap.Error(err))
		return nil, "", err
	}
	sortStudents(students)

	const sheet = "siswa"
	f, headerStyle, err := newWorkbook(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	defer f.Close()

	header := make([]string, 0, len(rosterColumns)+2)
	for _, c := range rosterColumns {
		header = append(header, c.key)
	}
	header = append(header, "status", "graduation_year")

	for i, h := range header {
		f.SetCellStr(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(header)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "H", "H", 36)

	for i := range students {
		st := &students[i]
		row := i + 2
		values := []string{
			st.NIS, st.Name, st.Sex, st.BirthPlace, formatDate(st.BirthDate),
			st.FatherName, st.MotherName, st.Address,
		}
		for c, v := range values {
			f.SetCellStr(sheet, cell(colName(c), row), v)
		}
		if st.Grade != nil {
			f.SetCellInt(sheet, cell(colName(8), row), *st.Grade)
		}
		f.SetCellStr(sheet, cell(colName(9), row), st.Status)
		if st.GraduationYear != nil {
			f.SetCellInt(sheet, cell(colName(10), row), *st.GraduationYear)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := "data-siswa.xlsx"
	switch {
	case grade != nil:
		filename = fmt.Sprintf("data-siswa-kelas-%d.xlsx", *grade)
	case status == model.StudentStatusGraduated:
		filename = "data-alumni.xlsx"
	}
	return buf, filename, nil
}

// ────────────────────── ExportScores ──────────────────────
//
// 表头：| nis | name | <科目代码>... | sum | average | rank |
// 未评分单元格留空；name/sum/average/rank 在导入时被忽略

func (s *exportService) ExportScores(ctx context.Context, term academic.Term) (*bytes.Buffer, string, error) {
	sh, err := loadScoreSheet(ctx, s.repo, term)
	if err != nil {
		s.logger.Error("加载成绩表失败", zap.String("term", term.String()), zap.Error(err))
		return nil, "", err
	}

	const sheet = "nilai"
	f, headerStyle, err := newWorkbook(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	defer f.Close()

	header := []string{"nis", "name"}
	for _, sub := range sh.subjects {
		header = append(header, sub.Code)
	}
	header = append(header, "sum", "average", "rank")
	last := len(header) - 1

	for i, h := range header {
		f.SetCellStr(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(last), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 28)

	for i, r := range sh.rankings.Ordered {
		row := i + 2
		f.SetCellStr(sheet, cell("A", row), r.StudentID)
		f.SetCellStr(sheet, cell("B", row), r.Name)
		for j, sub := range sh.subjects {
			if v, ok := sh.score(r.StudentID, sub.SubjectID); ok {
				f.SetCellFloat(sheet, cell(colName(2+j), row), v, -1, 64)
			}
		}
		f.SetCellFloat(sheet, cell(colName(last-2), row), roundScore(r.Sum), -1, 64)
		f.SetCellFloat(sheet, cell(colName(last-1), row), roundScore(r.Average), -1, 64)
		f.SetCellInt(sheet, cell(colName(last), row), r.Rank)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("nilai-kelas-%d-%s.xlsx", term.Grade, term.Half)
	return buf, filename, nil
}

