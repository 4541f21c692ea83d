package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student    StudentRepository
	Subject    SubjectRepository
	Staff      StaffRepository
	Score      ScoreRepository
	Attendance AttendanceRepository
	Schedule   ScheduleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:    NewStudentRepo(db),
		Subject:    NewSubjectRepo(db),
		Staff:      NewStaffRepo(db),
		Score:      NewScoreRepo(db),
		Attendance: NewAttendanceRepo(db),
		Schedule:   NewScheduleRepo(db),
	}
}
