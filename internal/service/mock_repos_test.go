package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
	pkgerrors "github.com/mdibnuahmad159-cpu/studio-sub000/pkg/errors"
)

// newMockRepository 组装全部 mock 仓储
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		student:    newMockStudentRepo(),
		subject:    newMockSubjectRepo(),
		staff:      newMockStaffRepo(),
		score:      newMockScoreRepo(),
		attendance: newMockAttendanceRepo(),
		schedule:   newMockScheduleRepo(),
	}
	m.schedule.subjects = m.subject
	m.schedule.staff = m.staff
	return &repository.Repository{
		Student:    m.student,
		Subject:    m.subject,
		Staff:      m.staff,
		Score:      m.score,
		Attendance: m.attendance,
		Schedule:   m.schedule,
	}, m
}

type mockRepos struct {
	student    *mockStudentRepo
	subject    *mockSubjectRepo
	staff      *mockStaffRepo
	score      *mockScoreRepo
	attendance *mockAttendanceRepo
	schedule   *mockScheduleRepo
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students     map[string]model.Student
	saveCalls    int
	rosterCalls  int
	failOnSaving error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]model.Student)}
}

func (m *mockStudentRepo) put(st model.Student) {
	if st.Version == 0 {
		st.Version = 1
	}
	m.students[st.NIS] = st
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	if _, ok := m.students[s.NIS]; ok {
		return fmt.Errorf("duplicate key nis=%s", s.NIS)
	}
	m.put(*s)
	return nil
}

func (m *mockStudentRepo) GetByNIS(_ context.Context, nis string) (*model.Student, error) {
	if s, ok := m.students[nis]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByNIS(_ context.Context, nis []string) ([]model.Student, error) {
	var result []model.Student
	for _, n := range nis {
		if s, ok := m.students[n]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Grade != nil && (s.Grade == nil || *s.Grade != *filter.Grade) {
			continue
		}
		if filter.GraduationYear != nil && (s.GraduationYear == nil || *s.GraduationYear != *filter.GraduationYear) {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Keyword)) &&
			!strings.Contains(s.NIS, filter.Keyword) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].NIS < result[j].NIS })
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, s *model.Student) error {
	cur, ok := m.students[s.NIS]
	if !ok || cur.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	m.students[s.NIS] = *s
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, nis string) error {
	delete(m.students, nis)
	return nil
}

func (m *mockStudentRepo) SaveStates(_ context.Context, students []model.Student) error {
	m.saveCalls++
	if m.failOnSaving != nil {
		return m.failOnSaving
	}
	for _, s := range students {
		if cur, ok := m.students[s.NIS]; !ok || cur.Version != s.Version {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for i := range students {
		students[i].Version++
		m.students[students[i].NIS] = students[i]
	}
	return nil
}

func (m *mockStudentRepo) SaveRoster(_ context.Context, creates []model.Student, updates []model.Student) error {
	m.rosterCalls++
	for _, s := range updates {
		if cur, ok := m.students[s.NIS]; !ok || cur.Version != s.Version {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for _, s := range creates {
		m.put(s)
	}
	for _, s := range updates {
		s.Version++
		m.students[s.NIS] = s
	}
	return nil
}

func (m *mockStudentRepo) CountActiveByGrade(_ context.Context) (map[int]int64, error) {
	counts := make(map[int]int64)
	for _, s := range m.students {
		if s.Status == model.StudentStatusActive && s.Grade != nil {
			counts[*s.Grade]++
		}
	}
	return counts, nil
}

func (m *mockStudentRepo) CountGraduated(_ context.Context) (int64, error) {
	var n int64
	for _, s := range m.students {
		if s.Status == model.StudentStatusGraduated {
			n++
		}
	}
	return n, nil
}

func (m *mockStudentRepo) GraduationYears(_ context.Context) ([]int, error) {
	seen := make(map[int]bool)
	var years []int
	for _, s := range m.students {
		if s.GraduationYear != nil && !seen[*s.GraduationYear] {
			seen[*s.GraduationYear] = true
			years = append(years, *s.GraduationYear)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, sub *model.Subject) error {
	if sub.SubjectID == "" {
		sub.SubjectID = fmt.Sprintf("sub-%d-%s", sub.Grade, strings.ToLower(sub.Code))
	}
	m.subjects[sub.SubjectID] = sub
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, grade int, code string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Grade == grade && strings.EqualFold(s.Code, code) {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByGrade(_ context.Context, grade *int) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if grade != nil && s.Grade != *grade {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Grade != result[j].Grade {
			return result[i].Grade < result[j].Grade
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, sub *model.Subject) error {
	m.subjects[sub.SubjectID] = sub
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.subjects)), nil
}

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	staff map[string]*model.Staff
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, st *model.Staff) error {
	if st.StaffID == "" {
		st.StaffID = fmt.Sprintf("staff-%d", len(m.staff)+1)
	}
	m.staff[st.StaffID] = st
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) List(_ context.Context, includeInactive bool) ([]model.Staff, error) {
	var result []model.Staff
	for _, s := range m.staff {
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStaffRepo) Update(_ context.Context, st *model.Staff) error {
	m.staff[st.StaffID] = st
	return nil
}

func (m *mockStaffRepo) Delete(_ context.Context, id string) error {
	delete(m.staff, id)
	return nil
}

func (m *mockStaffRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.staff)), nil
}

// ── Mock ScoreRepository ──

type scoreKey struct {
	nis, subjectID string
	grade          int
	half           string
}

type mockScoreRepo struct {
	scores     map[scoreKey]model.Score
	applyCalls int
	lastUpsert []model.Score
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[scoreKey]model.Score)}
}

func (m *mockScoreRepo) put(nis, subjectID string, grade int, half string, v float64) {
	m.scores[scoreKey{nis, subjectID, grade, half}] = model.Score{
		NIS: nis, SubjectID: subjectID, Grade: grade, Half: half, Value: v,
	}
}

func (m *mockScoreRepo) ListByTerm(_ context.Context, grade int, half string) ([]model.Score, error) {
	var result []model.Score
	for k, s := range m.scores {
		if k.grade == grade && k.half == half {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockScoreRepo) ListByStudentTerm(_ context.Context, nis string, grade int, half string) ([]model.Score, error) {
	var result []model.Score
	for k, s := range m.scores {
		if k.nis == nis && k.grade == grade && k.half == half {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockScoreRepo) Apply(_ context.Context, upserts []model.Score, deletes []model.Score) error {
	m.applyCalls++
	// 与 Postgres 一致：同一条 upsert 语句不能两次命中同一行
	batch := make(map[scoreKey]bool, len(upserts))
	for _, s := range upserts {
		k := scoreKey{s.NIS, s.SubjectID, s.Grade, s.Half}
		if batch[k] {
			return fmt.Errorf("ON CONFLICT DO UPDATE command cannot affect row a second time")
		}
		batch[k] = true
	}
	m.lastUpsert = upserts
	for _, s := range upserts {
		m.scores[scoreKey{s.NIS, s.SubjectID, s.Grade, s.Half}] = s
	}
	for _, s := range deletes {
		delete(m.scores, scoreKey{s.NIS, s.SubjectID, s.Grade, s.Half})
	}
	return nil
}

// ── Mock AttendanceRepository ──

type attendanceKey struct {
	nis   string
	grade int
	half  string
}

type mockAttendanceRepo struct {
	records map[attendanceKey]model.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[attendanceKey]model.Attendance)}
}

func (m *mockAttendanceRepo) ListByTerm(_ context.Context, grade int, half string) ([]model.Attendance, error) {
	var result []model.Attendance
	for k, a := range m.records {
		if k.grade == grade && k.half == half {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) Get(_ context.Context, nis string, grade int, half string) (*model.Attendance, error) {
	if a, ok := m.records[attendanceKey{nis, grade, half}]; ok {
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, records []model.Attendance) error {
	for _, a := range records {
		m.records[attendanceKey{a.NIS, a.Grade, a.Half}] = a
	}
	return nil
}

// ── Mock ScheduleRepository ──

type slotKey struct {
	kind                  string
	grade, weekday, block int
}

type mockScheduleRepo struct {
	slots    map[slotKey]model.ScheduleSlot
	subjects *mockSubjectRepo
	staff    *mockStaffRepo
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{slots: make(map[slotKey]model.ScheduleSlot)}
}

// preload 模拟 gorm Preload
func (m *mockScheduleRepo) preload(s model.ScheduleSlot) model.ScheduleSlot {
	if m.subjects != nil {
		if sub, ok := m.subjects.subjects[s.SubjectID]; ok {
			s.Subject = sub
		}
	}
	if m.staff != nil && s.StaffID != nil {
		if st, ok := m.staff.staff[*s.StaffID]; ok {
			s.Staff = st
		}
	}
	return s
}

func (m *mockScheduleRepo) sorted(filter func(model.ScheduleSlot) bool) []model.ScheduleSlot {
	var result []model.ScheduleSlot
	for _, s := range m.slots {
		if filter(s) {
			result = append(result, m.preload(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		if result[i].Block != result[j].Block {
			return result[i].Block < result[j].Block
		}
		return result[i].Grade < result[j].Grade
	})
	return result
}

func (m *mockScheduleRepo) ListByGrade(_ context.Context, kind string, grade int) ([]model.ScheduleSlot, error) {
	return m.sorted(func(s model.ScheduleSlot) bool { return s.Kind == kind && s.Grade == grade }), nil
}

func (m *mockScheduleRepo) ListByStaff(_ context.Context, kind string, staffID string) ([]model.ScheduleSlot, error) {
	return m.sorted(func(s model.ScheduleSlot) bool {
		return s.Kind == kind && s.StaffID != nil && *s.StaffID == staffID
	}), nil
}

func (m *mockScheduleRepo) Upsert(_ context.Context, slot *model.ScheduleSlot) error {
	m.slots[slotKey{slot.Kind, slot.Grade, slot.Weekday, slot.Block}] = *slot
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, kind string, grade, weekday, block int) (bool, error) {
	k := slotKey{kind, grade, weekday, block}
	if _, ok := m.slots[k]; !ok {
		return false, nil
	}
	delete(m.slots, k)
	return true, nil
}

// ── 测试数据辅助 ──

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func activeStudent(nis, name string, grade int) model.Student {
	return model.Student{
		NIS:            nis,
		Name:           name,
		Status:         model.StudentStatusActive,
		Grade:          intPtr(grade),
		VersionedModel: model.VersionedModel{Version: 1},
	}
}

func graduatedStudent(nis, name string, year int) model.Student {
	return model.Student{
		NIS:            nis,
		Name:           name,
		Status:         model.StudentStatusGraduated,
		GraduationYear: intPtr(year),
		VersionedModel: model.VersionedModel{Version: 1},
	}
}

func attendanceRecord(nis string, sick int) model.Attendance {
	return model.Attendance{NIS: nis, Grade: 3, Half: "first", Sick: sick}
}
