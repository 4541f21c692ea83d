package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/config"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
)

var (
	ErrReportNotInGrade = errors.New("学生在该学期没有成绩记录")
	ErrReportRenderFail = errors.New("生成报告单 PDF 失败")
)

// ReportService 成绩报告单业务接口
type ReportService interface {
	GetReportCard(ctx context.Context, nis string, term academic.Term) (*dto.ReportCardResponse, error)
	RenderReportCardPDF(ctx context.Context, nis string, term academic.Term) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	school config.SchoolConfig
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, school config.SchoolConfig, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, school: school, logger: logger}
}

// GetReportCard 汇总单个学生某学期的成绩、名次与考勤。
// 名次与成绩表使用同一排名结果，二者始终一致。
func (s *reportService) GetReportCard(ctx context.Context, nis string, term academic.Term) (*dto.ReportCardResponse, error) {
	st, err := s.repo.Student.GetByNIS(ctx, nis)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	sh, err := loadScoreSheet(ctx, s.repo, term)
	if err != nil {
		return nil, err
	}
	ranked, ok := sh.rankings.ByStudent[nis]
	if !ok {
		// 已离开该年级的学生：在该学期有成绩的学生中排名
		sh, err = loadRecordedSheet(ctx, s.repo, term)
		if err != nil {
			return nil, err
		}
		if ranked, ok = sh.rankings.ByStudent[nis]; !ok {
			return nil, ErrReportNotInGrade
		}
	}

	resp := &dto.ReportCardResponse{
		School:     s.school.Name,
		Headmaster: s.school.Headmaster,
		Student:    toStudentResponse(st),
		Grade:      term.Grade,
		Half:       string(term.Half),
		Subjects:   make([]dto.ReportSubjectLine, 0, len(sh.subjects)),
		Sum:        ranked.Sum,
		Average:    ranked.Average,
		Rank:       ranked.Rank,
		ClassSize:  len(sh.students),
	}
	for _, sub := range sh.subjects {
		line := dto.ReportSubjectLine{Code: sub.Code, Name: sub.Name}
		if v, ok := sh.score(nis, sub.SubjectID); ok {
			line.Score = &v
		}
		resp.Subjects = append(resp.Subjects, line)
	}

	att, err := s.repo.Attendance.Get(ctx, nis, term.Grade, string(term.Half))
	switch {
	case err == nil:
		resp.Sick = att.Sick
		resp.Excused = att.Excused
		resp.Unexcused = att.Unexcused
		resp.Decision = att.Decision
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// RenderReportCardPDF — A4 报告单
// ═══════════════════════════════════════════════════════════

func (s *reportService) RenderReportCardPDF(ctx context.Context, nis string, term academic.Term) (*bytes.Buffer, string, error) {
	card, err := s.GetReportCard(ctx, nis, term)
	if err != nil {
		return nil, "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Rapor %s", card.Student.Name), true)
	pdf.AddPage()

	// 抬头
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("LAPORAN HASIL BELAJAR"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(card.School), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	semester := "1 (Ganjil)"
	if card.Half == string(academic.HalfSecond) {
		semester = "2 (Genap)"
	}
	info := [][2]string{
		{"Nama", card.Student.Name},
		{"NIS", card.Student.NIS},
		{"Kelas", fmt.Sprintf("%d", card.Grade)},
		{"Semester", semester},
	}
	for _, kv := range info {
		pdf.CellFormat(30, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(": "+kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// 成绩表
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(12, 7, "No", "1", 0, "C", true, 0, "")
	pdf.CellFormat(120, 7, "Mata Pelajaran", "1", 0, "C", true, 0, "")
	pdf.CellFormat(0, 7, "Nilai", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for i, line := range card.Subjects {
		score := "-"
		if line.Score != nil {
			score = formatScore(*line.Score)
		}
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(120, 7, tr(line.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, score, "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(132, 7, "Jumlah", "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, formatScore(card.Sum), "1", 1, "C", false, 0, "")
	pdf.CellFormat(132, 7, "Rata-rata", "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, formatScore(card.Average), "1", 1, "C", false, 0, "")
	pdf.CellFormat(132, 7, "Peringkat", "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%d / %d", card.Rank, card.ClassSize), "1", 1, "C", false, 0, "")
	pdf.Ln(4)

	// 考勤
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, "Ketidakhadiran", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, kv := range [][2]string{
		{"Sakit", fmt.Sprintf("%d hari", card.Sick)},
		{"Izin", fmt.Sprintf("%d hari", card.Excused)},
		{"Tanpa Keterangan", fmt.Sprintf("%d hari", card.Unexcused)},
	} {
		pdf.CellFormat(60, 6, kv[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, kv[1], "1", 1, "C", false, 0, "")
	}
	if card.Decision != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, "Keterangan", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(card.Decision), "1", "L", false)
	}

	if card.Headmaster != "" {
		pdf.Ln(12)
		pdf.CellFormat(0, 6, "Kepala Sekolah", "", 1, "R", false, 0, "")
		pdf.Ln(16)
		pdf.CellFormat(0, 6, tr(card.Headmaster), "", 1, "R", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("生成报告单 PDF 失败", zap.String("nis", nis), zap.Error(err))
		return nil, "", ErrReportRenderFail
	}

	filename := fmt.Sprintf("rapor-%s-kelas-%d-%s.pdf", nis, term.Grade, term.Half)
	return buf, filename, nil
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
