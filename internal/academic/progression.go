package academic

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════
// 升级 / 留级 / 调班 / 毕业 状态机
// ═══════════════════════════════════════════════════════════
//
// 状态：Active(grade 0..6) | Graduated(year)
//
//	Promote          Active(g), g<6  → Active(g+1)
//	Demote           Active(g), g>0  → Active(g-1)
//	Move(target)     Active(g)       → Active(target)
//	Graduate         Active(6)       → Graduated(year)
//	RevertGraduation Graduated(y)    → Active(6)（仅限单个学生）
//
// 批量操作要求所有选中学生处于同一状态，任一校验失败则整批拒绝。

// StateKind 学籍状态类别
type StateKind int

const (
	KindActive StateKind = iota + 1
	KindGraduated
)

// State 学籍状态（标签联合：Active 时 Grade 有效，Graduated 时 GraduationYear 有效）
type State struct {
	Kind           StateKind
	Grade          int
	GraduationYear int
}

// Active 在读状态
func Active(grade int) State {
	return State{Kind: KindActive, Grade: grade}
}

// Graduated 毕业状态
func Graduated(year int) State {
	return State{Kind: KindGraduated, GraduationYear: year}
}

// IsActive 是否在读
func (s State) IsActive() bool { return s.Kind == KindActive }

// IsGraduated 是否已毕业
func (s State) IsGraduated() bool { return s.Kind == KindGraduated }

func (s State) String() string {
	switch s.Kind {
	case KindActive:
		return fmt.Sprintf("Active(%d)", s.Grade)
	case KindGraduated:
		return fmt.Sprintf("Graduated(%d)", s.GraduationYear)
	}
	return "Unknown"
}

// Action 状态迁移动作
type Action string

const (
	ActionPromote          Action = "promote"
	ActionDemote           Action = "demote"
	ActionMove             Action = "move"
	ActionGraduate         Action = "graduate"
	ActionRevertGraduation Action = "revert_graduation"
)

// ParseAction 解析动作字符串
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionPromote, ActionDemote, ActionMove, ActionGraduate, ActionRevertGraduation:
		return a, nil
	}
	return "", ErrUnknownAction
}

// Transition 一次迁移请求。TargetGrade 仅 Move 使用，Year 仅 Graduate 使用。
type Transition struct {
	Action      Action
	TargetGrade int
	Year        int
}

// ── 拒绝原因 ──

var (
	ErrUnauthorized       = errors.New("无管理员权限")
	ErrEmptySelection     = errors.New("未选择学生")
	ErrMixedSelection     = errors.New("所选学生状态不一致")
	ErrNotActive          = errors.New("学生不在读")
	ErrAtTopGrade         = errors.New("已是最高年级，不能升级")
	ErrAtBottomGrade      = errors.New("已是最低年级，不能降级")
	ErrNotTerminalGrade   = errors.New("只有六年级学生可以毕业")
	ErrInvalidTarget      = errors.New("目标年级无效")
	ErrInvalidYear        = errors.New("毕业年份无效")
	ErrNotGraduated       = errors.New("学生未毕业")
	ErrSingleStudentOnly  = errors.New("撤销毕业只能针对单个学生")
	ErrUnknownAction      = errors.New("未知的操作类型")
	ErrInconsistentRecord = errors.New("学籍状态数据不一致")
)

// Rejection 迁移被拒绝。Err 为上面的哨兵错误之一，可用 errors.Is 判断。
type Rejection struct {
	Action Action
	From   State
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s 被拒绝 (%s): %v", r.Action, r.From, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

func reject(a Action, from State, err error) error {
	return &Rejection{Action: a, From: from, Err: err}
}

// ApplyTransition 对选中学生执行迁移，返回新状态（与入参一一对应）。
// 失败时返回 *Rejection，入参不会被修改。
func ApplyTransition(capab Capability, current []State, t Transition) ([]State, error) {
	if err := capab.Require(); err != nil {
		return nil, reject(t.Action, State{}, err)
	}
	if len(current) == 0 {
		return nil, reject(t.Action, State{}, ErrEmptySelection)
	}

	if t.Action == ActionRevertGraduation {
		if len(current) != 1 {
			return nil, reject(t.Action, current[0], ErrSingleStudentOnly)
		}
		if !current[0].IsGraduated() {
			return nil, reject(t.Action, current[0], ErrNotGraduated)
		}
		return []State{Active(MaxGrade)}, nil
	}

	from := current[0]
	for _, s := range current[1:] {
		if s != from {
			return nil, reject(t.Action, from, ErrMixedSelection)
		}
	}
	if !from.IsActive() {
		return nil, reject(t.Action, from, ErrNotActive)
	}
	if !ValidGrade(from.Grade) {
		return nil, reject(t.Action, from, ErrInconsistentRecord)
	}

	var next State
	switch t.Action {
	case ActionPromote:
		if from.Grade >= MaxGrade {
			return nil, reject(t.Action, from, ErrAtTopGrade)
		}
		next = Active(from.Grade + 1)
	case ActionDemote:
		if from.Grade <= MinGrade {
			return nil, reject(t.Action, from, ErrAtBottomGrade)
		}
		next = Active(from.Grade - 1)
	case ActionMove:
		if !ValidGrade(t.TargetGrade) {
			return nil, reject(t.Action, from, ErrInvalidTarget)
		}
		next = Active(t.TargetGrade)
	case ActionGraduate:
		if from.Grade != MaxGrade {
			return nil, reject(t.Action, from, ErrNotTerminalGrade)
		}
		if t.Year <= 0 {
			return nil, reject(t.Action, from, ErrInvalidYear)
		}
		next = Graduated(t.Year)
	default:
		return nil, reject(t.Action, from, ErrUnknownAction)
	}

	out := make([]State, len(current))
	for i := range out {
		out[i] = next
	}
	return out, nil
}

// AvailableTransitions 某一状态下允许提供给用户的操作
func AvailableTransitions(s State) []Action {
	if s.IsGraduated() {
		return []Action{ActionRevertGraduation}
	}
	if !s.IsActive() || !ValidGrade(s.Grade) {
		return nil
	}
	actions := make([]Action, 0, 3)
	if s.Grade < MaxGrade {
		actions = append(actions, ActionPromote)
	}
	if s.Grade > MinGrade {
		actions = append(actions, ActionDemote)
	}
	actions = append(actions, ActionMove)
	if s.Grade == MaxGrade {
		actions = append(actions, ActionGraduate)
	}
	return actions
}
