package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/repository"
	pkgerrors "github.com/mdibnuahmad159-cpu/studio-sub000/pkg/errors"
)

var (
	ErrStudentNotFound        = errors.New("学生不存在")
	ErrStudentNISExists       = errors.New("NIS 已存在")
	ErrStudentVersionConflict = errors.New("数据已被修改，请刷新后重试")
	ErrTargetGradeRequired    = errors.New("调班操作必须指定目标年级")
)

const dateLayout = "2006-01-02"

// StudentService 学生与学籍业务接口
type StudentService interface {
	Create(ctx context.Context, capab academic.Capability, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Get(ctx context.Context, nis string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, capab academic.Capability, nis string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, capab academic.Capability, nis string) error

	// Progress 批量升级/降级/调班/毕业，全部成功或全部不变
	Progress(ctx context.Context, capab academic.Capability, req *dto.ProgressionRequest) (*dto.ProgressionResponse, error)
	// RevertGraduation 撤销单个学生的毕业，恢复为六年级在读
	RevertGraduation(ctx context.Context, capab academic.Capability, nis string) (*dto.StudentResponse, error)

	ListAlumni(ctx context.Context, req *dto.AlumniListRequest) ([]dto.StudentResponse, error)
	AlumniYears(ctx context.Context) ([]int, error)

	ParseRosterFile(reader io.Reader) ([]RosterRow, error)
	ImportRoster(ctx context.Context, capab academic.Capability, rows []RosterRow) (*dto.ImportRosterResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例，loc 用于确定毕业年份
func NewStudentService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) StudentService {
	if loc == nil {
		loc = time.UTC
	}
	return &studentService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *studentService) Create(ctx context.Context, capab academic.Capability, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}
	if !academic.ValidGrade(*req.Grade) {
		return nil, academic.ErrInvalidGrade
	}

	if _, err := s.repo.Student.GetByNIS(ctx, req.NIS); err == nil {
		return nil, ErrStudentNISExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	birth, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	actor := capab.Subject()
	st := &model.Student{
		NIS:        req.NIS,
		Name:       req.Name,
		Sex:        req.Sex,
		BirthPlace: req.BirthPlace,
		BirthDate:  birth,
		FatherName: req.FatherName,
		MotherName: req.MotherName,
		Address:    req.Address,
		VersionedModel: model.VersionedModel{
			BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
			Version:   1,
		},
	}
	st.ApplyState(academic.Active(*req.Grade))

	if err := s.repo.Student.Create(ctx, st); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrStudentNISExists
		}
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(st)
	return &resp, nil
}

func (s *studentService) Get(ctx context.Context, nis string) (*dto.StudentResponse, error) {
	st, err := s.getStudent(ctx, nis)
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(st)
	return &resp, nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status:  req.Status,
		Grade:   req.Grade,
		Keyword: req.Keyword,
	})
	if err != nil {
		return nil, 0, err
	}
	sortStudents(students)

	total := int64(len(students))
	start := req.GetOffset()
	if start > len(students) {
		start = len(students)
	}
	end := start + req.GetPageSize()
	if end > len(students) {
		end = len(students)
	}

	out := make([]dto.StudentResponse, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, toStudentResponse(&students[i]))
	}
	return out, total, nil
}

func (s *studentService) Update(ctx context.Context, capab academic.Capability, nis string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	st, err := s.getStudent(ctx, nis)
	if err != nil {
		return nil, err
	}
	if st.Version != req.Version {
		return nil, ErrStudentVersionConflict
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Sex != nil {
		st.Sex = *req.Sex
	}
	if req.BirthPlace != nil {
		st.BirthPlace = *req.BirthPlace
	}
	if req.BirthDate != nil {
		birth, err := parseOptionalDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		st.BirthDate = birth
	}
	if req.FatherName != nil {
		st.FatherName = *req.FatherName
	}
	if req.MotherName != nil {
		st.MotherName = *req.MotherName
	}
	if req.Address != nil {
		st.Address = *req.Address
	}

	actor := capab.Subject()
	st.UpdatedBy = &actor
	if err := s.repo.Student.Update(ctx, st); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrStudentVersionConflict
		}
		s.logger.Error("更新学生失败", zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(st)
	return &resp, nil
}

func (s *studentService) Delete(ctx context.Context, capab academic.Capability, nis string) error {
	if err := capab.Require(); err != nil {
		return ErrForbidden
	}
	if _, err := s.getStudent(ctx, nis); err != nil {
		return err
	}
	if err := s.repo.Student.Delete(ctx, nis); err != nil {
		s.logger.Error("删除学生失败", zap.String("nis", nis), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 学籍迁移 ──────────────────────

func (s *studentService) Progress(ctx context.Context, capab academic.Capability, req *dto.ProgressionRequest) (*dto.ProgressionResponse, error) {
	action, err := academic.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	if action == academic.ActionRevertGraduation {
		return nil, academic.ErrSingleStudentOnly
	}

	t := academic.Transition{Action: action}
	switch action {
	case academic.ActionMove:
		if req.TargetGrade == nil {
			return nil, ErrTargetGradeRequired
		}
		t.TargetGrade = *req.TargetGrade
	case academic.ActionGraduate:
		t.Year = s.now().In(s.loc).Year()
	}

	students, err := s.transition(ctx, capab, dedupe(req.NIS), t)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, toStudentResponse(&students[i]))
	}
	return &dto.ProgressionResponse{Action: string(action), Students: out}, nil
}

func (s *studentService) RevertGraduation(ctx context.Context, capab academic.Capability, nis string) (*dto.StudentResponse, error) {
	students, err := s.transition(ctx, capab, []string{nis}, academic.Transition{Action: academic.ActionRevertGraduation})
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(&students[0])
	return &resp, nil
}

// transition 加载学生 → 状态机校验 → 单事务写回。校验失败时不写任何记录。
func (s *studentService) transition(ctx context.Context, capab academic.Capability, nis []string, t academic.Transition) ([]model.Student, error) {
	if err := capab.Require(); err != nil {
		return nil, &academic.Rejection{Action: t.Action, Err: academic.ErrUnauthorized}
	}
	if len(nis) == 0 {
		return nil, &academic.Rejection{Action: t.Action, Err: academic.ErrEmptySelection}
	}

	found, err := s.repo.Student.ListByNIS(ctx, nis)
	if err != nil {
		return nil, err
	}
	byNIS := make(map[string]model.Student, len(found))
	for _, st := range found {
		byNIS[st.NIS] = st
	}

	students := make([]model.Student, 0, len(nis))
	current := make([]academic.State, 0, len(nis))
	for _, n := range nis {
		st, ok := byNIS[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, n)
		}
		state, err := st.State()
		if err != nil {
			s.logger.Error("学籍状态数据不一致", zap.String("nis", n), zap.Error(err))
			return nil, err
		}
		students = append(students, st)
		current = append(current, state)
	}

	next, err := academic.ApplyTransition(capab, current, t)
	if err != nil {
		s.logger.Info("学籍操作被拒绝",
			zap.String("action", string(t.Action)),
			zap.Int("count", len(nis)),
			zap.Error(err),
		)
		return nil, err
	}

	actor := capab.Subject()
	for i := range students {
		students[i].ApplyState(next[i])
		students[i].UpdatedBy = &actor
	}

	if err := s.repo.Student.SaveStates(ctx, students); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrStudentVersionConflict
		}
		s.logger.Error("保存学籍状态失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学籍操作完成",
		zap.String("action", string(t.Action)),
		zap.Int("count", len(students)),
		zap.String("to", next[0].String()),
	)
	return students, nil
}

// ────────────────────── 校友 ──────────────────────

func (s *studentService) ListAlumni(ctx context.Context, req *dto.AlumniListRequest) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status:         model.StudentStatusGraduated,
		GraduationYear: req.Year,
		Keyword:        req.Keyword,
	})
	if err != nil {
		return nil, err
	}
	sortStudents(students)

	out := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, toStudentResponse(&students[i]))
	}
	return out, nil
}

func (s *studentService) AlumniYears(ctx context.Context) ([]int, error) {
	return s.repo.Student.GraduationYears(ctx)
}

// ────────────────────── 名册导入 ──────────────────────

// RosterRow 名册 Excel 解析后的单行数据；Grade 为 nil 表示该列留空
type RosterRow struct {
	Row        int
	NIS        string
	Name       string
	Sex        string
	BirthPlace string
	BirthDate  *time.Time
	FatherName string
	MotherName string
	Address    string
	Grade      *int
}

// rosterColumns 名册列（导出与导入共用），后面为可识别的别名
var rosterColumns = []struct {
	key     string
	aliases []string
}{
	{"nis", nil},
	{"name", []string{"nama"}},
	{"sex", []string{"jk", "jenis_kelamin"}},
	{"birth_place", []string{"tempat_lahir"}},
	{"birth_date", []string{"tanggal_lahir"}},
	{"father_name", []string{"ayah", "nama_ayah"}},
	{"mother_name", []string{"ibu", "nama_ibu"}},
	{"address", []string{"alamat"}},
	{"grade", []string{"kelas"}},
}

func rosterHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(rosterColumns))
	for _, c := range rosterColumns {
		idx[c.key] = -1
	}
	for i, h := range header {
		name := normalizeHeader(h)
		for _, c := range rosterColumns {
			if idx[c.key] >= 0 {
				continue
			}
			if name == c.key {
				idx[c.key] = i
				break
			}
			for _, a := range c.aliases {
				if name == a {
					idx[c.key] = i
					break
				}
			}
		}
	}
	return idx
}

// ParseRosterFile 解析名册 Excel；任何一行有误则整份文件拒绝
func (s *studentService) ParseRosterFile(reader io.Reader) ([]RosterRow, error) {
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

	col := rosterHeaderIndex(excelRows[0])
	if col["nis"] < 0 || col["name"] < 0 {
		return nil, fmt.Errorf("%w（nis/name）", ErrImportBadHeader)
	}

	var (
		rows   []RosterRow
		issues []dto.ImportError
		seen   = make(map[string]int)
	)
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		if isBlankRow(raw) {
			continue
		}
		row := RosterRow{
			Row:        i + 1,
			NIS:        cellAt(raw, col["nis"]),
			Name:       cellAt(raw, col["name"]),
			Sex:        cellAt(raw, col["sex"]),
			BirthPlace: cellAt(raw, col["birth_place"]),
			FatherName: cellAt(raw, col["father_name"]),
			MotherName: cellAt(raw, col["mother_name"]),
			Address:    cellAt(raw, col["address"]),
		}

		if row.NIS == "" {
			issues = append(issues, dto.ImportError{Row: row.Row, Column: "nis", Reason: "NIS 不能为空"})
		} else if len(row.NIS) > 20 {
			issues = append(issues, dto.ImportError{Row: row.Row, Column: "nis", Reason: "NIS 长度不能超过 20"})
		} else if first, dup := seen[row.NIS]; dup {
			issues = append(issues, dto.ImportError{Row: row.Row, Column: "nis", Reason: fmt.Sprintf("NIS 与第%d行重复", first)})
		} else {
			seen[row.NIS] = row.Row
		}
		if row.Name == "" {
			issues = append(issues, dto.ImportError{Row: row.Row, Column: "name", Reason: "姓名不能为空"})
		}
		if row.Sex != "" && row.Sex != "L" && row.Sex != "P" {
			issues = append(issues, dto.ImportError{Row: row.Row, Column: "sex", Reason: "性别只能为 L 或 P"})
		}
		if v := cellAt(raw, col["birth_date"]); v != "" {
			d, err := time.Parse(dateLayout, v)
			if err != nil {
				issues = append(issues, dto.ImportError{Row: row.Row, Column: "birth_date", Reason: "日期格式应为 YYYY-MM-DD"})
			} else {
				row.BirthDate = &d
			}
		}
		if v := cellAt(raw, col["grade"]); v != "" {
			g, err := strconv.Atoi(v)
			if err != nil || !academic.ValidGrade(g) {
				issues = append(issues, dto.ImportError{Row: row.Row, Column: "grade", Reason: academic.ErrInvalidGrade.Error()})
			} else {
				row.Grade = &g
			}
		}

		rows = append(rows, row)
	}

	if len(issues) > 0 {
		return nil, &ImportValidationError{Errors: issues}
	}
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	return rows, nil
}

// ImportRoster 新 NIS 创建为在读学生，已有 NIS 只更新档案字段。
// 学籍状态不通过导入修改：已有学生的年级列必须留空或与当前一致。
func (s *studentService) ImportRoster(ctx context.Context, capab academic.Capability, rows []RosterRow) (*dto.ImportRosterResponse, error) {
	if err := capab.Require(); err != nil {
		return nil, ErrForbidden
	}

	nis := make([]string, 0, len(rows))
	for _, r := range rows {
		nis = append(nis, r.NIS)
	}
	existing, err := s.repo.Student.ListByNIS(ctx, nis)
	if err != nil {
		return nil, err
	}
	byNIS := make(map[string]model.Student, len(existing))
	for _, st := range existing {
		byNIS[st.NIS] = st
	}

	actor := capab.Subject()
	var (
		creates []model.Student
		updates []model.Student
		issues  []dto.ImportError
		resp    = &dto.ImportRosterResponse{Total: len(rows)}
	)
	for _, r := range rows {
		cur, ok := byNIS[r.NIS]
		if !ok {
			if r.Grade == nil {
				issues = append(issues, dto.ImportError{Row: r.Row, Column: "grade", Reason: "新学生必须填写年级"})
				continue
			}
			st := model.Student{
				NIS: r.NIS,
				VersionedModel: model.VersionedModel{
					BaseModel: model.BaseModel{CreatedBy: &actor, UpdatedBy: &actor},
					Version:   1,
				},
			}
			applyRosterProfile(&st, r)
			st.ApplyState(academic.Active(*r.Grade))
			creates = append(creates, st)
			continue
		}

		if r.Grade != nil {
			state, err := cur.State()
			if err != nil || !state.IsActive() || state.Grade != *r.Grade {
				issues = append(issues, dto.ImportError{
					Row:    r.Row,
					Column: "grade",
					Reason: "年级与当前学籍不一致，请使用升级/调班操作",
				})
				continue
			}
		}

		if !rosterProfileDiffers(&cur, r) {
			resp.Unchanged++
			continue
		}
		applyRosterProfile(&cur, r)
		cur.UpdatedBy = &actor
		updates = append(updates, cur)
	}

	if len(issues) > 0 {
		return nil, &ImportValidationError{Errors: issues}
	}

	if err := s.repo.Student.SaveRoster(ctx, creates, updates); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) || pkgerrors.IsDuplicate(err) {
			return nil, ErrStudentVersionConflict
		}
		s.logger.Error("导入名册失败", zap.Error(err))
		return nil, err
	}

	resp.Created = len(creates)
	resp.Updated = len(updates)
	s.logger.Info("名册导入完成",
		zap.Int("total", resp.Total),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
	)
	return resp, nil
}

func applyRosterProfile(st *model.Student, r RosterRow) {
	st.Name = r.Name
	st.Sex = r.Sex
	st.BirthPlace = r.BirthPlace
	st.BirthDate = r.BirthDate
	st.FatherName = r.FatherName
	st.MotherName = r.MotherName
	st.Address = r.Address
}

func rosterProfileDiffers(st *model.Student, r RosterRow) bool {
	return st.Name != r.Name ||
		st.Sex != r.Sex ||
		st.BirthPlace != r.BirthPlace ||
		formatDate(st.BirthDate) != formatDate(r.BirthDate) ||
		st.FatherName != r.FatherName ||
		st.MotherName != r.MotherName ||
		st.Address != r.Address
}

// ── 辅助函数 ──

func (s *studentService) getStudent(ctx context.Context, nis string) (*model.Student, error) {
	st, err := s.repo.Student.GetByNIS(ctx, nis)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return st, nil
}

// sortStudents 按印尼语排序规则排列姓名，同名按 NIS
func sortStudents(students []model.Student) {
	less := academic.SortNames()
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if less(a.Name, b.Name) {
			return true
		}
		if less(b.Name, a.Name) {
			return false
		}
		return a.NIS < b.NIS
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("日期格式应为 YYYY-MM-DD: %w", err)
	}
	return &d, nil
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(dateLayout)
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		NIS:            st.NIS,
		Name:           st.Name,
		Sex:            st.Sex,
		BirthPlace:     st.BirthPlace,
		BirthDate:      formatDate(st.BirthDate),
		FatherName:     st.FatherName,
		MotherName:     st.MotherName,
		Address:        st.Address,
		Status:         st.Status,
		Grade:          st.Grade,
		GraduationYear: st.GraduationYear,
		Actions:        []string{},
		Version:        st.Version,
	}
	if state, err := st.State(); err == nil {
		for _, a := range academic.AvailableTransitions(state) {
			resp.Actions = append(resp.Actions, string(a))
		}
	}
	return resp
}
