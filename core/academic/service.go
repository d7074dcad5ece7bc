package academic

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrStudentNotFound    = errors.New("student not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)

		CreateSection(ctx context.Context, sec Section) (Section, error)
		GetSectionByID(ctx context.Context, id string) (Section, error)

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		// QueryEnrollmentsBySection returns a section's enrollments ordered by student name.
		QueryEnrollmentsBySection(ctx context.Context, sectionID string) ([]Enrollment, error)
		// QueryEnrollmentsByStudent returns a student's enrollments, most recent year first.
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
	}

	// Service exposes plain record lookups. Enrollment workflows (how students
	// end up in sections) live outside this module.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetSection(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSectionByID(ctx, id)
}

func (svc *Service) GetEnrollment(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) EnrollmentsBySection(ctx context.Context, sectionID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsBySection(ctx, sectionID)
}

func (svc *Service) EnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
}
