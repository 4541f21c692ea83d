package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/config"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
)

func setupTestReportService() (ReportService, ScoreService, *mockRepos) {
	repo, mocks := newMockRepository()
	mocks.student.put(activeStudent("1", "Andi", 3))
	mocks.student.put(activeStudent("2", "Budi", 3))
	mocks.student.put(activeStudent("3", "Citra", 3))
	_ = mocks.subject.Create(context.Background(), &model.Subject{Grade: 3, Code: "MAT", Name: "Matematika"})
	_ = mocks.subject.Create(context.Background(), &model.Subject{Grade: 3, Code: "IPA", Name: "Ilmu Pengetahuan Alam"})

	mocks.score.put("1", mat3, 3, "first", 70)
	mocks.score.put("2", mat3, 3, "first", 90)
	mocks.score.put("2", ipa3, 3, "first", 70)
	mocks.score.put("3", mat3, 3, "first", 80)

	school := config.SchoolConfig{Name: "SD Negeri 1", Headmaster: "Drs. Hartono"}
	logger := zap.NewNop()
	return NewReportService(repo, school, logger), NewScoreService(repo, logger), mocks
}

func TestReportService_GetReportCard_MatchesSheet(t *testing.T) {
	svc, scores, mocks := setupTestReportService()
	mocks.attendance.records[attendanceKey{"1", 3, "first"}] = model.Attendance{
		NIS: "1", Grade: 3, Half: "first", Sick: 2, Excused: 1, Decision: "Naik kelas",
	}

	sheet, err := scores.GetSheet(context.Background(), term3First)
	if err != nil {
		t.Fatalf("GetSheet 应成功: %v", err)
	}

	for _, row := range sheet.Rows {
		card, err := svc.GetReportCard(context.Background(), row.NIS, term3First)
		if err != nil {
			t.Fatalf("GetReportCard 应成功: %v", err)
		}
		if card.Rank != row.Rank || card.Average != row.Average || card.Sum != row.Sum {
			t.Errorf("学生 %s 报告单与成绩表不一致: card=%d/%v sheet=%d/%v", row.NIS, card.Rank, card.Average, row.Rank, row.Average)
		}
		if card.ClassSize != 3 {
			t.Errorf("期望班级人数 3，实际 %d", card.ClassSize)
		}
	}

	card, _ := svc.GetReportCard(context.Background(), "1", term3First)
	if card.Sick != 2 || card.Excused != 1 || card.Decision != "Naik kelas" {
		t.Errorf("考勤数据不符: %+v", card)
	}
	if len(card.Subjects) != 2 {
		t.Fatalf("期望 2 门科目，实际 %d", len(card.Subjects))
	}
	for _, line := range card.Subjects {
		if line.Code == "IPA" && line.Score != nil {
			t.Error("未评分科目应为 nil")
		}
	}
}

func TestReportService_GetReportCard_NotInGrade(t *testing.T) {
	svc, _, mocks := setupTestReportService()
	mocks.student.put(activeStudent("9", "Eko", 4))

	_, err := svc.GetReportCard(context.Background(), "9", term3First)
	if !errors.Is(err, ErrReportNotInGrade) {
		t.Errorf("期望 ErrReportNotInGrade，实际 %v", err)
	}
	_, err = svc.GetReportCard(context.Background(), "404", term3First)
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际 %v", err)
	}
}

func TestReportService_GetReportCard_AfterLeavingGrade(t *testing.T) {
	svc, _, mocks := setupTestReportService()
	students := &studentService{repo: svc.(*reportService).repo, loc: time.UTC, logger: zap.NewNop(),
		now: func() time.Time { return time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC) }}

	// Andi 升入四年级，Citra 转入六年级后毕业
	if _, err := students.Progress(context.Background(), testAdmin, &dto.ProgressionRequest{NIS: []string{"1"}, Action: "promote"}); err != nil {
		t.Fatalf("升级应成功: %v", err)
	}
	mocks.student.put(activeStudent("3", "Citra", 6))
	if _, err := students.Progress(context.Background(), testAdmin, &dto.ProgressionRequest{NIS: []string{"3"}, Action: "graduate"}); err != nil {
		t.Fatalf("毕业应成功: %v", err)
	}

	// 三年级第一学期有成绩的学生：Budi 80、Citra 80、Andi 70
	card, err := svc.GetReportCard(context.Background(), "1", term3First)
	if err != nil {
		t.Fatalf("已升级学生应能查看以往报告单: %v", err)
	}
	if card.Rank != 3 || card.ClassSize != 3 || card.Average != 70 {
		t.Errorf("期望名次 3/3、平均 70，实际 %d/%d、%v", card.Rank, card.ClassSize, card.Average)
	}

	card, err = svc.GetReportCard(context.Background(), "3", term3First)
	if err != nil {
		t.Fatalf("毕业生应能查看以往报告单: %v", err)
	}
	if card.Rank != 1 || card.Student.Status != string(model.StudentStatusGraduated) {
		t.Errorf("期望名次 1 且为毕业状态，实际 %d %s", card.Rank, card.Student.Status)
	}

	// 在读学生仍按当前名册排名
	card, err = svc.GetReportCard(context.Background(), "2", term3First)
	if err != nil || card.ClassSize != 1 || card.Rank != 1 {
		t.Errorf("在读学生期望按当前名册排名，实际 %+v %v", card, err)
	}
}

func TestReportService_RenderPDF(t *testing.T) {
	svc, _, _ := setupTestReportService()

	buf, filename, err := svc.RenderReportCardPDF(context.Background(), "2", term3First)
	if err != nil {
		t.Fatalf("RenderReportCardPDF 应成功: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("输出应为 PDF")
	}
	if filename != "rapor-2-kelas-3-first.pdf" {
		t.Errorf("文件名不符: %s", filename)
	}
}
