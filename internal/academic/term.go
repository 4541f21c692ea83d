package academic

import (
	"errors"
	"fmt"
)

// ── 年级与学期 ──

const (
	MinGrade = 0 // 学前/预备级
	MaxGrade = 6 // 毕业年级
)

// Half 学年的上/下学期
type Half string

const (
	HalfFirst  Half = "first"
	HalfSecond Half = "second"
)

var (
	ErrInvalidGrade    = errors.New("年级必须在 0-6 之间")
	ErrInvalidHalf     = errors.New("学期必须为 first 或 second")
	ErrScoreOutOfRange = errors.New("分数必须在 0-100 之间")
	ErrNegativeCounter = errors.New("出勤计数不能为负数")
)

// ParseHalf 解析学期字符串
func ParseHalf(s string) (Half, error) {
	switch Half(s) {
	case HalfFirst, HalfSecond:
		return Half(s), nil
	}
	return "", ErrInvalidHalf
}

// ValidGrade 判断年级是否合法
func ValidGrade(g int) bool {
	return g >= MinGrade && g <= MaxGrade
}

// Term 成绩/考勤所属学期：年级 + 上下学期
type Term struct {
	Grade int  `json:"grade"`
	Half  Half `json:"half"`
}

// NewTerm 创建并校验 Term
func NewTerm(grade int, half string) (Term, error) {
	if !ValidGrade(grade) {
		return Term{}, ErrInvalidGrade
	}
	h, err := ParseHalf(half)
	if err != nil {
		return Term{}, err
	}
	return Term{Grade: grade, Half: h}, nil
}

func (t Term) String() string {
	return fmt.Sprintf("%d/%s", t.Grade, t.Half)
}

// ValidateScore 校验单个分数
func ValidateScore(v float64) error {
	if v < 0 || v > 100 {
		return ErrScoreOutOfRange
	}
	return nil
}
