package dto

// ── 成绩报告单与统计 ──

// ReportSubjectLine 报告单中的单科成绩
type ReportSubjectLine struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

// ReportCardResponse 学生成绩报告单
type ReportCardResponse struct {
	School     string              `json:"school"`
	Headmaster string              `json:"headmaster,omitempty"`
	Student    StudentResponse     `json:"student"`
	Grade      int                 `json:"grade"`
	Half       string              `json:"half"`
	Subjects   []ReportSubjectLine `json:"subjects"`
	Sum        float64             `json:"sum"`
	Average    float64             `json:"average"`
	Rank       int                 `json:"rank"`
	ClassSize  int                 `json:"class_size"`
	Sick       int                 `json:"sick"`
	Excused    int                 `json:"excused"`
	Unexcused  int                 `json:"unexcused"`
	Decision   string              `json:"decision"`
}

// DashboardResponse 首页统计
type DashboardResponse struct {
	ActiveByGrade map[int]int64 `json:"active_by_grade"`
	ActiveTotal   int64         `json:"active_total"`
	Alumni        int64         `json:"alumni"`
	Subjects      int64         `json:"subjects"`
	Staff         int64         `json:"staff"`
}
