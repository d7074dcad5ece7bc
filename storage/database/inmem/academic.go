package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ChristopherDeLaRosa/academia/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateStudent(_ context.Context, std academic.Student) (academic.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *academicRepository) GetStudentByID(_ context.Context, id string) (academic.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *academicRepository) CreateCourse(_ context.Context, crs academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *academicRepository) GetCourseByID(_ context.Context, id string) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) CreateSection(_ context.Context, sec academic.Section) (academic.Section, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sec.ID = uuid.New().String()
	repo.db.sections[sec.ID] = &sec
	return sec, nil
}

func (repo *academicRepository) GetSectionByID(_ context.Context, id string) (academic.Section, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sec, ok := repo.db.sections[id]; ok {
		return *sec, nil
	}
	return academic.Section{}, academic.ErrSectionNotFound
}

func (repo *academicRepository) CreateEnrollment(_ context.Context, enr academic.Enrollment) (academic.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr.ID = uuid.New().String()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *academicRepository) GetEnrollmentByID(_ context.Context, id string) (academic.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return *enr, nil
	}
	return academic.Enrollment{}, academic.ErrEnrollmentNotFound
}

func (repo *academicRepository) QueryEnrollmentsBySection(_ context.Context, sectionID string) ([]academic.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]academic.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.SectionID == sectionID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		return repo.studentName(enrollments[i].StudentID) < repo.studentName(enrollments[j].StudentID)
	})
	return enrollments, nil
}

func (repo *academicRepository) QueryEnrollmentsByStudent(_ context.Context, studentID string) ([]academic.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]academic.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool { return enrollments[i].Year > enrollments[j].Year })
	return enrollments, nil
}

// studentName is called with the read lock held.
func (repo *academicRepository) studentName(studentID string) string {
	if std, ok := repo.db.students[studentID]; ok {
		return std.Name
	}
	return ""
}
