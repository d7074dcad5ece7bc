package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ChristopherDeLaRosa/academia/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

type studentRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

func (r studentRow) toCore() academic.Student {
	return academic.Student{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt}
}

func (repo *academicRepository) CreateStudent(ctx context.Context, std academic.Student) (academic.Student, error) {
	std.ID = uuid.New().String()
	std.CreatedAt = time.Now().UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student (id, name, email, created_at) VALUES ($1, $2, $3, $4)`,
		std.ID, std.Name, std.Email, std.CreatedAt)
	if err != nil {
		return academic.Student{}, trapExecErr(err, "inserting student")
	}
	return std, nil
}

func (repo *academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, email, created_at FROM student WHERE id = $1`, id)
	if err != nil {
		return academic.Student{}, trapErr(err, academic.ErrStudentNotFound, "finding student by ID")
	}
	return row.toCore(), nil
}

type courseRow struct {
	ID         string    `db:"id"`
	Code       string    `db:"code"`
	Name       string    `db:"name"`
	GradeLevel string    `db:"grade_level"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r courseRow) toCore() academic.Course {
	return academic.Course{ID: r.ID, Code: r.Code, Name: r.Name, GradeLevel: r.GradeLevel, CreatedAt: r.CreatedAt}
}

func (repo *academicRepository) CreateCourse(ctx context.Context, crs academic.Course) (academic.Course, error) {
	crs.ID = uuid.New().String()
	crs.CreatedAt = time.Now().UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, code, name, grade_level, created_at) VALUES ($1, $2, $3, $4, $5)`,
		crs.ID, crs.Code, crs.Name, crs.GradeLevel, crs.CreatedAt)
	if err != nil {
		return academic.Course{}, trapExecErr(err, "inserting course")
	}
	return crs, nil
}

func (repo *academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, code, name, grade_level, created_at FROM course WHERE id = $1`, id)
	if err != nil {
		return academic.Course{}, trapErr(err, academic.ErrCourseNotFound, "finding course by ID")
	}
	return row.toCore(), nil
}

type sectionRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Name      string    `db:"name"`
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

func (r sectionRow) toCore() academic.Section {
	return academic.Section{ID: r.ID, CourseID: r.CourseID, Name: r.Name, Year: r.Year, CreatedAt: r.CreatedAt}
}

func (repo *academicRepository) CreateSection(ctx context.Context, sec academic.Section) (academic.Section, error) {
	sec.ID = uuid.New().String()
	sec.CreatedAt = time.Now().UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO section (id, course_id, name, year, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sec.ID, sec.CourseID, sec.Name, sec.Year, sec.CreatedAt)
	if err != nil {
		return academic.Section{}, trapExecErr(err, "inserting section")
	}
	return sec, nil
}

func (repo *academicRepository) GetSectionByID(ctx context.Context, id string) (academic.Section, error) {
	var row sectionRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, course_id, name, year, created_at FROM section WHERE id = $1`, id)
	if err != nil {
		return academic.Section{}, trapErr(err, academic.ErrSectionNotFound, "finding section by ID")
	}
	return row.toCore(), nil
}

type enrollmentRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	SectionID string    `db:"section_id"`
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

func (r enrollmentRow) toCore() academic.Enrollment {
	return academic.Enrollment{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		SectionID: r.SectionID,
		Year:      r.Year,
		CreatedAt: r.CreatedAt,
	}
}

func enrollmentsToCore(rows []enrollmentRow) []academic.Enrollment {
	enrollments := make([]academic.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toCore())
	}
	return enrollments
}

func (repo *academicRepository) CreateEnrollment(ctx context.Context, enr academic.Enrollment) (academic.Enrollment, error) {
	enr.ID = uuid.New().String()
	enr.CreatedAt = time.Now().UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO enrollment (id, student_id, course_id, section_id, year, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		enr.ID, enr.StudentID, enr.CourseID, enr.SectionID, enr.Year, enr.CreatedAt)
	if err != nil {
		return academic.Enrollment{}, trapExecErr(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *academicRepository) GetEnrollmentByID(ctx context.Context, id string) (academic.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, student_id, course_id, section_id, year, created_at FROM enrollment WHERE id = $1`, id)
	if err != nil {
		return academic.Enrollment{}, trapErr(err, academic.ErrEnrollmentNotFound, "finding enrollment by ID")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) QueryEnrollmentsBySection(ctx context.Context, sectionID string) ([]academic.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT e.id, e.student_id, e.course_id, e.section_id, e.year, e.created_at
		 FROM enrollment e JOIN student s ON s.id = e.student_id
		 WHERE e.section_id = $1
		 ORDER BY s.name, e.id`, sectionID)
	if err != nil {
		return nil, trapExecErr(err, "querying section enrollments")
	}
	return enrollmentsToCore(rows), nil
}

func (repo *academicRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]academic.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, student_id, course_id, section_id, year, created_at
		 FROM enrollment WHERE student_id = $1
		 ORDER BY year DESC, created_at DESC`, studentID)
	if err != nil {
		return nil, trapExecErr(err, "querying student enrollments")
	}
	return enrollmentsToCore(rows), nil
}
