package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/jwt"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	loggedOut   *jwt.Claims
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.loggedOut = claims
	return m.logoutErr
}
func (m *mockAuthService) Session(claims *jwt.Claims) *dto.SessionResponse {
	if claims == nil {
		return &dto.SessionResponse{Role: "viewer"}
	}
	return &dto.SessionResponse{Role: claims.Role, Admin: true}
}

// ── Mock StudentService ──

type mockStudentService struct {
	student     *dto.StudentResponse
	list        []dto.StudentResponse
	total       int64
	progression *dto.ProgressionResponse
	rows        []service.RosterRow
	imported    *dto.ImportRosterResponse
	err         error
	parseErr    error

	lastCapab academic.Capability
	lastList  *dto.StudentListRequest
}

func (m *mockStudentService) Create(_ context.Context, capab academic.Capability, _ *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	m.lastCapab = capab
	return m.student, m.err
}
func (m *mockStudentService) Get(_ context.Context, _ string) (*dto.StudentResponse, error) {
	return m.student, m.err
}
func (m *mockStudentService) List(_ context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	m.lastList = req
	return m.list, m.total, m.err
}
func (m *mockStudentService) Update(_ context.Context, capab academic.Capability, _ string, _ *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	m.lastCapab = capab
	return m.student, m.err
}
func (m *mockStudentService) Delete(_ context.Context, capab academic.Capability, _ string) error {
	m.lastCapab = capab
	return m.err
}
func (m *mockStudentService) Progress(_ context.Context, capab academic.Capability, _ *dto.ProgressionRequest) (*dto.ProgressionResponse, error) {
	m.lastCapab = capab
	return m.progression, m.err
}
func (m *mockStudentService) RevertGraduation(_ context.Context, capab academic.Capability, _ string) (*dto.StudentResponse, error) {
	m.lastCapab = capab
	return m.student, m.err
}
func (m *mockStudentService) ListAlumni(_ context.Context, _ *dto.AlumniListRequest) ([]dto.StudentResponse, error) {
	return m.list, m.err
}
func (m *mockStudentService) AlumniYears(_ context.Context) ([]int, error) {
	return []int{2023, 2024}, m.err
}
func (m *mockStudentService) ParseRosterFile(_ io.Reader) ([]service.RosterRow, error) {
	return m.rows, m.parseErr
}
func (m *mockStudentService) ImportRoster(_ context.Context, capab academic.Capability, _ []service.RosterRow) (*dto.ImportRosterResponse, error) {
	m.lastCapab = capab
	return m.imported, m.err
}

// ── Mock ScoreService ──

type mockScoreService struct {
	sheet    *dto.ScoreSheetResponse
	updated  *dto.UpdateScoresResponse
	imported *dto.ImportScoresResponse
	err      error
	lastTerm academic.Term
}

func (m *mockScoreService) GetSheet(_ context.Context, term academic.Term) (*dto.ScoreSheetResponse, error) {
	m.lastTerm = term
	return m.sheet, m.err
}
func (m *mockScoreService) Update(_ context.Context, _ academic.Capability, _ *dto.UpdateScoresRequest) (*dto.UpdateScoresResponse, error) {
	return m.updated, m.err
}
func (m *mockScoreService) ImportScores(_ context.Context, _ academic.Capability, term academic.Term, _ io.Reader) (*dto.ImportScoresResponse, error) {
	m.lastTerm = term
	return m.imported, m.err
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	grid       *dto.ScheduleGridResponse
	slot       *dto.ScheduleSlotResponse
	ics        []byte
	err        error
	lastKind   model.ScheduleKind
	lastWeekOf time.Time
}

func (m *mockScheduleService) Grid(_ context.Context, kind model.ScheduleKind, _ int) (*dto.ScheduleGridResponse, error) {
	m.lastKind = kind
	return m.grid, m.err
}
func (m *mockScheduleService) Assign(_ context.Context, _ academic.Capability, kind model.ScheduleKind, _ *dto.AssignSlotRequest) (*dto.ScheduleSlotResponse, error) {
	m.lastKind = kind
	return m.slot, m.err
}
func (m *mockScheduleService) Clear(_ context.Context, _ academic.Capability, kind model.ScheduleKind, _ *dto.ClearSlotRequest) error {
	m.lastKind = kind
	return m.err
}
func (m *mockScheduleService) ExportICS(_ context.Context, kind model.ScheduleKind, grade int, weekOf time.Time) ([]byte, string, error) {
	m.lastKind = kind
	m.lastWeekOf = weekOf
	return m.ics, "jadwal-" + string(kind) + ".ics", m.err
}

// ── Mock ReportService ──

type mockReportService struct {
	card *dto.ReportCardResponse
	pdf  *bytes.Buffer
	err  error
}

func (m *mockReportService) GetReportCard(_ context.Context, _ string, _ academic.Term) (*dto.ReportCardResponse, error) {
	return m.card, m.err
}
func (m *mockReportService) RenderReportCardPDF(_ context.Context, _ string, _ academic.Term) (*bytes.Buffer, string, error) {
	return m.pdf, "rapor.pdf", m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRoster(_ context.Context, _ string, _ *int) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportScores(_ context.Context, _ academic.Term) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// asAdmin 模拟 JWTAuth 中间件注入的管理员身份
func asAdmin(c *gin.Context) {
	c.Set(ctxClaims, &jwt.Claims{Role: jwt.RoleAdmin, TokenType: "access"})
	c.Set(ctxCapability, academic.AdminCapability(jwt.RoleAdmin))
	c.Next()
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func jsonRequest(method, path string, v interface{}) *http.Request {
	req := httptest.NewRequest(method, path, jsonBody(v))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, path string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "data.xlsx")
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func intPtr(v int) *int { return &v }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "tok", ExpiresIn: 3600, Role: "admin"}}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/auth/login", dto.LoginRequest{Password: "rahasia"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/auth/login", dto.LoginRequest{Password: "salah"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_MissingPassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/auth/login", map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", asAdmin, h.Logout)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.loggedOut == nil || mock.loggedOut.Role != jwt.RoleAdmin {
		t.Error("expected claims from context to reach Logout")
	}
}

func TestAuthHandler_Session_Anonymous(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/session", h.Session)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/session", nil))

	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["role"] != "viewer" {
		t.Errorf("expected viewer session, got %v", resp.Data)
	}
}

// ═══════════════════════════════════════════════════════════
// StudentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStudentHandler_Create_PassesAdminCapability(t *testing.T) {
	mock := &mockStudentService{student: &dto.StudentResponse{NIS: "1001", Name: "Budi"}}
	h := NewStudentHandler(mock)

	r := gin.New()
	r.POST("/students", asAdmin, h.CreateStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/students", dto.CreateStudentRequest{NIS: "1001", Name: "Budi", Grade: intPtr(1)}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !mock.lastCapab.Privileged() {
		t.Error("expected admin capability to be passed to service")
	}
}

func TestStudentHandler_Create_BlankName(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})

	r := gin.New()
	r.POST("/students", asAdmin, h.CreateStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/students", dto.CreateStudentRequest{NIS: "1001", Name: "   ", Grade: intPtr(1)}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); !strings.Contains(resp.Details, "name:notblank") {
		t.Errorf("expected details to name the field, got %q", resp.Details)
	}
}

func TestStudentHandler_Create_Forbidden(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrForbidden})

	r := gin.New()
	r.POST("/students", h.CreateStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/students", dto.CreateStudentRequest{NIS: "1001", Name: "Budi", Grade: intPtr(1)}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestStudentHandler_Create_DuplicateNIS(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrStudentNISExists})

	r := gin.New()
	r.POST("/students", asAdmin, h.CreateStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/students", dto.CreateStudentRequest{NIS: "1001", Name: "Budi", Grade: intPtr(1)}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestStudentHandler_List_Paging(t *testing.T) {
	mock := &mockStudentService{list: []dto.StudentResponse{{NIS: "1"}, {NIS: "2"}}, total: 12}
	h := NewStudentHandler(mock)

	r := gin.New()
	r.GET("/students", h.ListStudents)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students?page=2&page_size=2&status=active&grade=3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastList == nil || mock.lastList.Grade == nil || *mock.lastList.Grade != 3 {
		t.Errorf("expected grade filter 3, got %+v", mock.lastList)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["total"] != float64(12) {
		t.Errorf("expected total 12, got %v", data["total"])
	}
}

func TestStudentHandler_List_InvalidStatus(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})

	r := gin.New()
	r.GET("/students", h.ListStudents)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students?status=expelled", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStudentHandler_Update_VersionConflict(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrStudentVersionConflict})

	r := gin.New()
	r.PUT("/students/:nis", asAdmin, h.UpdateStudent)
	name := "Budi Santoso"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("PUT", "/students/1001", dto.UpdateStudentRequest{Name: &name, Version: 1}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12003 {
		t.Errorf("expected code 12003, got %d", resp.Code)
	}
}

func TestStudentHandler_Get_NotFound(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrStudentNotFound})

	r := gin.New()
	r.GET("/students/:nis", h.GetStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students/404", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStudentHandler_Progress_RejectionCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"top grade", &academic.Rejection{Action: academic.ActionPromote, From: academic.Active(6), Err: academic.ErrAtTopGrade}, http.StatusUnprocessableEntity, 12104},
		{"mixed", &academic.Rejection{Action: academic.ActionGraduate, Err: academic.ErrMixedSelection}, http.StatusUnprocessableEntity, 12102},
		{"not terminal", &academic.Rejection{Action: academic.ActionGraduate, From: academic.Active(5), Err: academic.ErrNotTerminalGrade}, http.StatusUnprocessableEntity, 12106},
		{"unauthorized", &academic.Rejection{Action: academic.ActionPromote, Err: academic.ErrUnauthorized}, http.StatusForbidden, 10003},
		{"target required", service.ErrTargetGradeRequired, http.StatusBadRequest, 12004},
		{"unknown student", service.ErrStudentNotFound, http.StatusNotFound, 12001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewStudentHandler(&mockStudentService{err: tt.err})

			r := gin.New()
			r.POST("/students/progression", asAdmin, h.Progress)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest("POST", "/students/progression", dto.ProgressionRequest{NIS: []string{"1"}, Action: "promote"}))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestStudentHandler_Progress_UnknownAction(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})

	r := gin.New()
	r.POST("/students/progression", asAdmin, h.Progress)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/students/progression", dto.ProgressionRequest{NIS: []string{"1"}, Action: "expel"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStudentHandler_RevertGraduation_NotGraduated(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: &academic.Rejection{
		Action: academic.ActionRevertGraduation, From: academic.Active(6), Err: academic.ErrNotGraduated,
	}})

	r := gin.New()
	r.POST("/students/:nis/revert-graduation", asAdmin, h.RevertGraduation)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/students/1/revert-graduation", nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12109 {
		t.Errorf("expected code 12109, got %d", resp.Code)
	}
}

func TestStudentHandler_ImportRoster_Success(t *testing.T) {
	mock := &mockStudentService{
		rows:     []service.RosterRow{{Row: 2, NIS: "1", Name: "Ani"}},
		imported: &dto.ImportRosterResponse{Total: 1, Created: 1},
	}
	h := NewStudentHandler(mock)

	r := gin.New()
	r.POST("/students/import", asAdmin, h.ImportRoster)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/students/import", []byte("xlsx")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStudentHandler_ImportRoster_ValidationErrors(t *testing.T) {
	mock := &mockStudentService{parseErr: &service.ImportValidationError{Errors: []dto.ImportError{
		{Row: 3, Column: "nis", Reason: "NIS 不能为空"},
		{Row: 5, Column: "grade", Reason: "年级必须在 0-6 之间"},
	}}}
	h := NewStudentHandler(mock)

	r := gin.New()
	r.POST("/students/import", asAdmin, h.ImportRoster)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/students/import", []byte("xlsx")))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	errs, _ := data["errors"].([]interface{})
	if len(errs) != 2 {
		t.Errorf("expected 2 row errors, got %v", resp.Data)
	}
}

func TestStudentHandler_ImportRoster_MissingFile(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})

	r := gin.New()
	r.POST("/students/import", asAdmin, h.ImportRoster)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/students/import", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStudentHandler_ImportRoster_Viewer(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{})

	r := gin.New()
	r.POST("/students/import", h.ImportRoster)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/students/import", []byte("xlsx")))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScoreHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScoreHandler_GetSheet_ParsesTerm(t *testing.T) {
	mock := &mockScoreService{sheet: &dto.ScoreSheetResponse{Grade: 0, Half: "second"}}
	h := NewScoreHandler(mock)

	r := gin.New()
	r.GET("/scores", h.GetSheet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/scores?grade=0&half=second", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastTerm.Grade != 0 || mock.lastTerm.Half != academic.HalfSecond {
		t.Errorf("expected term 0/second, got %+v", mock.lastTerm)
	}
}

func TestScoreHandler_GetSheet_InvalidTerm(t *testing.T) {
	h := NewScoreHandler(&mockScoreService{})

	r := gin.New()
	r.GET("/scores", h.GetSheet)

	for _, q := range []string{"", "?grade=7&half=first", "?grade=1&half=third", "?half=first"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/scores"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", q, w.Code)
		}
	}
}

func TestScoreHandler_Update_OutOfRange(t *testing.T) {
	h := NewScoreHandler(&mockScoreService{err: academic.ErrScoreOutOfRange})

	r := gin.New()
	r.PUT("/scores", asAdmin, h.UpdateScores)
	v := 101.0
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("PUT", "/scores", dto.UpdateScoresRequest{
		Grade: intPtr(3), Half: "first",
		Cells: []dto.ScoreCellInput{{NIS: "1", SubjectID: "sub", Value: &v}},
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestScoreHandler_Update_DuplicateCell(t *testing.T) {
	h := NewScoreHandler(&mockScoreService{err: fmt.Errorf("%w: 1/sub", service.ErrScoreDuplicateCell)})

	r := gin.New()
	r.PUT("/scores", asAdmin, h.UpdateScores)
	a, b := 80.0, 90.0
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("PUT", "/scores", dto.UpdateScoresRequest{
		Grade: intPtr(3), Half: "first",
		Cells: []dto.ScoreCellInput{
			{NIS: "1", SubjectID: "sub", Value: &a},
			{NIS: "1", SubjectID: "sub", Value: &b},
		},
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 15003 {
		t.Errorf("expected code 15003, got %d", resp.Code)
	}
}

func TestScoreHandler_Import_BadHeader(t *testing.T) {
	h := NewScoreHandler(&mockScoreService{err: service.ErrImportBadHeader})

	r := gin.New()
	r.POST("/scores/import", asAdmin, h.ImportScores)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/scores/import?grade=3&half=first", []byte("xlsx")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 19002 {
		t.Errorf("expected code 19002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_UnknownKind(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.GET("/schedules/:kind", h.GetGrid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/schedules/holiday?grade=1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScheduleHandler_Assign_DoubleBooked(t *testing.T) {
	mock := &mockScheduleService{err: service.ErrStaffDoubleBooked}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.PUT("/schedules/:kind", asAdmin, h.AssignSlot)
	staff := "staff-1"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("PUT", "/schedules/exam", dto.AssignSlotRequest{
		Grade: intPtr(2), Weekday: 1, Block: 1, SubjectID: "sub-2-mat", StaffID: &staff,
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if mock.lastKind != model.ScheduleExam {
		t.Errorf("expected exam kind, got %s", mock.lastKind)
	}
}

func TestScheduleHandler_Clear_Empty(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{err: service.ErrSlotNotFound})

	r := gin.New()
	r.DELETE("/schedules/:kind", asAdmin, h.ClearSlot)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/schedules/regular?grade=1&weekday=1&block=1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScheduleHandler_ExportICS(t *testing.T) {
	mock := &mockScheduleService{ics: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/export/schedules/:kind", h.ExportICS)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/export/schedules/exam.ics?grade=4&start=2025-12-03", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "jadwal-exam.ics") {
		t.Errorf("expected filename in Content-Disposition, got %s", cd)
	}
	if mock.lastWeekOf.Format("2006-01-02") != "2025-12-03" {
		t.Errorf("expected start date passed through, got %s", mock.lastWeekOf)
	}
}

func TestScheduleHandler_ExportICS_BadStart(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.GET("/export/schedules/:kind", h.ExportICS)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/export/schedules/exam.ics?grade=4&start=03-12-2025", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler / ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_NotInGrade(t *testing.T) {
	h := NewReportHandler(&mockReportService{err: service.ErrReportNotInGrade})

	r := gin.New()
	r.GET("/reports/:nis", h.GetReportCard)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/reports/1?grade=2&half=first", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestReportHandler_DownloadPDF(t *testing.T) {
	h := NewReportHandler(&mockReportService{pdf: bytes.NewBufferString("%PDF-1.3")})

	r := gin.New()
	r.GET("/reports/:nis/pdf", h.DownloadReportCard)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/reports/1/pdf?grade=2&half=first", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != response.ContentTypePDF {
		t.Errorf("expected application/pdf, got %s", ct)
	}
}

func TestExportHandler_ExportRoster(t *testing.T) {
	h := NewExportHandler(&mockExportService{buf: bytes.NewBufferString("PK"), filename: "data-siswa.xlsx"})

	r := gin.New()
	r.GET("/export/students", h.ExportRoster)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/export/students?status=active", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "data-siswa.xlsx") {
		t.Errorf("expected filename in Content-Disposition, got %s", cd)
	}
}
