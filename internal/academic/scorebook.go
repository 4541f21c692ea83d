package academic

// ScoreKey 成绩记录的复合键 (学生, 科目, 年级, 学期)
type ScoreKey struct {
	StudentID string
	SubjectID string
	Term      Term
}

// AttendanceKey 考勤/评语记录的复合键 (学生, 年级, 学期)
type AttendanceKey struct {
	StudentID string
	Term      Term
}

// ScoreLookup 按 (学生, 科目) 查询某一学期内的分数，ok=false 表示未评分
type ScoreLookup interface {
	Score(studentID, subjectID string) (value float64, ok bool)
}

// ScoreBook 稀疏成绩表。同一个 ScoreKey 只保留一个值，写入即覆盖。
type ScoreBook struct {
	values map[ScoreKey]float64
}

// NewScoreBook 创建空成绩表
func NewScoreBook() *ScoreBook {
	return &ScoreBook{values: make(map[ScoreKey]float64)}
}

// Set 写入分数（upsert）
func (b *ScoreBook) Set(key ScoreKey, value float64) error {
	if err := ValidateScore(value); err != nil {
		return err
	}
	b.values[key] = value
	return nil
}

// Get 读取分数
func (b *ScoreBook) Get(key ScoreKey) (float64, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Delete 清除分数（恢复为未评分）
func (b *ScoreBook) Delete(key ScoreKey) {
	delete(b.values, key)
}

// Len 已评分记录数
func (b *ScoreBook) Len() int {
	return len(b.values)
}

// ForTerm 返回限定于某一学期的只读视图
func (b *ScoreBook) ForTerm(term Term) ScoreLookup {
	return termView{book: b, term: term}
}

type termView struct {
	book *ScoreBook
	term Term
}

func (v termView) Score(studentID, subjectID string) (float64, bool) {
	return v.book.Get(ScoreKey{StudentID: studentID, SubjectID: subjectID, Term: v.term})
}
