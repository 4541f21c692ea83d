package academic

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ═══════════════════════════════════════════════════════════
// 排名计算
// ═══════════════════════════════════════════════════════════
//
// 规则：
//   - sum 只累加已评分科目，count 为已评分科目数
//   - average = sum / count；count 为 0 时 average = 0
//   - 按 average 降序排列，与前一名 average 完全相等（浮点 ==）则同名次，
//     否则名次 = 排序后的位置（从 1 开始）。[90,90,80] → [1,1,3]
//   - average 相同时展示顺序按姓名（印尼语排序规则），再按学生 ID

// RankStudent 参与排名的学生
type RankStudent struct {
	ID   string
	Name string
}

// RankSubject 参与排名的科目
type RankSubject struct {
	ID string
}

// RankResult 单个学生的排名结果
type RankResult struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Sum       float64 `json:"sum"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Rank      int     `json:"rank"`
}

// Rankings 排名结果：Ordered 为展示顺序，ByStudent 便于按学生查找
type Rankings struct {
	Ordered   []RankResult
	ByStudent map[string]RankResult
}

// ComputeRankings 计算总分、平均分与名次。纯函数，不修改入参。
func ComputeRankings(students []RankStudent, subjects []RankSubject, scores ScoreLookup) Rankings {
	results := make([]RankResult, 0, len(students))
	for _, st := range students {
		r := RankResult{StudentID: st.ID, Name: st.Name}
		for _, sub := range subjects {
			v, ok := scores.Score(st.ID, sub.ID)
			if !ok {
				continue
			}
			r.Sum += v
			r.Count++
		}
		if r.Count > 0 {
			r.Average = r.Sum / float64(r.Count)
		}
		results = append(results, r)
	}

	col := collate.New(language.Indonesian, collate.IgnoreCase)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.StudentID < b.StudentID
	})

	byStudent := make(map[string]RankResult, len(results))
	for i := range results {
		switch {
		case i == 0:
			results[i].Rank = 1
		case results[i].Average == results[i-1].Average:
			results[i].Rank = results[i-1].Rank
		default:
			results[i].Rank = i + 1
		}
		byStudent[results[i].StudentID] = results[i]
	}

	return Rankings{Ordered: results, ByStudent: byStudent}
}

// SortNames 按印尼语排序规则对姓名排序的比较器，供名册展示使用
func SortNames() func(a, b string) bool {
	col := collate.New(language.Indonesian, collate.IgnoreCase)
	return func(a, b string) bool {
		return col.CompareString(a, b) < 0
	}
}
