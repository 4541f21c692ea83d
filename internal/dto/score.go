package dto

// ── 成绩模块 ──

// ScoreSheetRow 成绩表中的一行（一个学生）
type ScoreSheetRow struct {
	NIS     string              `json:"nis"`
	Name    string              `json:"name"`
	Scores  map[string]*float64 `json:"scores"` // subject_id → 分数，nil 表示未评分
	Sum     float64             `json:"sum"`
	Count   int                 `json:"count"`
	Average float64             `json:"average"`
	Rank    int                 `json:"rank"`
}

// ScoreSheetResponse 某年级某学期的成绩表（按名次排序）
type ScoreSheetResponse struct {
	Grade    int               `json:"grade"`
	Half     string            `json:"half"`
	Subjects []SubjectResponse `json:"subjects"`
	Rows     []ScoreSheetRow   `json:"rows"`
}

// ScoreCellInput 单个成绩单元格；Value 为 nil 表示清除
type ScoreCellInput struct {
	NIS       string   `json:"nis"        binding:"required"`
	SubjectID string   `json:"subject_id" binding:"required"`
	Value     *float64 `json:"value"`
}

// UpdateScoresRequest 批量写入成绩
type UpdateScoresRequest struct {
	Grade *int             `json:"grade" binding:"required,min=0,max=6"`
	Half  string           `json:"half"  binding:"required,oneof=first second"`
	Cells []ScoreCellInput `json:"cells" binding:"required,min=1,max=5000,dive"`
}

// UpdateScoresResponse 批量写入结果
type UpdateScoresResponse struct {
	Upserted int `json:"upserted"`
	Cleared  int `json:"cleared"`
}

// ImportScoresResponse 成绩导入结果
type ImportScoresResponse struct {
	Rows      int `json:"rows"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}
