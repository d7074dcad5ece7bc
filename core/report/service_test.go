package report_test

import (
	"context"
	"math"
	"testing"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	"github.com/ChristopherDeLaRosa/academia/core/report"
	"github.com/ChristopherDeLaRosa/academia/core/user"
	inmemdb "github.com/ChristopherDeLaRosa/academia/storage/database/inmem"
)

const eps = 1e-9

type testEnv struct {
	svc        *report.Service
	repo       academic.Repository
	rubricRepo grading.RubricRepository
	entryRepo  grading.EntryRepository

	course  academic.Course
	section academic.Section
	ada     academic.Student
	bea     academic.Student
	enrAda  academic.Enrollment
	enrBea  academic.Enrollment
	admin   user.Caller
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.Open()

	env := &testEnv{
		repo:       inmemdb.NewAcademicRepository(db),
		rubricRepo: inmemdb.NewRubricRepository(db),
		entryRepo:  inmemdb.NewEntryRepository(db),
		admin:      user.Caller{ID: "admin1", Role: user.RoleAdmin},
	}
	env.svc = report.NewService(env.rubricRepo, env.entryRepo, env.repo)

	var err error
	if env.course, err = env.repo.CreateCourse(ctx, academic.Course{Code: "MAT-101", Name: "Matemática"}); err != nil {
		t.Fatal(err)
	}
	if env.section, err = env.repo.CreateSection(ctx, academic.Section{CourseID: env.course.ID, Name: "A", Year: 2025}); err != nil {
		t.Fatal(err)
	}
	if env.ada, err = env.repo.CreateStudent(ctx, academic.Student{Name: "Ada", Email: "ada@test.do"}); err != nil {
		t.Fatal(err)
	}
	if env.bea, err = env.repo.CreateStudent(ctx, academic.Student{Name: "Bea", Email: "bea@test.do"}); err != nil {
		t.Fatal(err)
	}
	if env.enrAda, err = env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: env.ada.ID, CourseID: env.course.ID, SectionID: env.section.ID, Year: 2025}); err != nil {
		t.Fatal(err)
	}
	if env.enrBea, err = env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: env.bea.ID, CourseID: env.course.ID, SectionID: env.section.ID, Year: 2025}); err != nil {
		t.Fatal(err)
	}
	return env
}

func (env *testEnv) addRubric(t *testing.T, name string, weight float64, cat grading.Category, pos int) grading.Rubric {
	t.Helper()
	rub, err := env.rubricRepo.CreateRubric(context.Background(), grading.Rubric{
		CourseID: env.course.ID, Name: name, Weight: weight, Category: cat, Position: pos,
	})
	if err != nil {
		t.Fatal(err)
	}
	return rub
}

func (env *testEnv) addScore(t *testing.T, enrID, rubID string, score float64) {
	t.Helper()
	if _, _, err := env.entryRepo.UpsertEntry(context.Background(), grading.GradeEntry{
		EnrollmentID: enrID, RubricID: rubID, Score: score, CreatedBy: "teacher1",
	}); err != nil {
		t.Fatal(err)
	}
}

func TestService_ComputeCourseAverage(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	exam := env.addRubric(t, "Parcial 1", 0.7, grading.CategoryExam, 1)
	hw := env.addRubric(t, "Tareas", 0.3, grading.CategoryHomework, 2)

	// nothing graded yet
	ca, err := env.svc.ComputeCourseAverage(ctx, env.ada.ID, env.course.ID)
	if err != nil {
		t.Fatalf("ComputeCourseAverage() error = %v", err)
	}
	if ca.Graded || ca.Average != 0 || ca.GradedRubrics != 0 || ca.TotalRubrics != 2 {
		t.Errorf("ComputeCourseAverage() = %+v, want ungraded", ca)
	}

	// only the exam graded: its weight renormalizes to 1.0
	env.addScore(t, env.enrAda.ID, exam.ID, 80)
	ca, err = env.svc.ComputeCourseAverage(ctx, env.ada.ID, env.course.ID)
	if err != nil {
		t.Fatalf("ComputeCourseAverage() error = %v", err)
	}
	if math.Abs(ca.Average-80) > eps {
		t.Errorf("Average = %v, want 80 (not 56)", ca.Average)
	}
	if !ca.Graded || ca.GradedRubrics != 1 {
		t.Errorf("ComputeCourseAverage() = %+v, want 1 graded rubric", ca)
	}

	// fully graded
	env.addScore(t, env.enrAda.ID, hw.ID, 90)
	ca, err = env.svc.ComputeCourseAverage(ctx, env.ada.ID, env.course.ID)
	if err != nil {
		t.Fatalf("ComputeCourseAverage() error = %v", err)
	}
	if math.Abs(ca.Average-83) > eps {
		t.Errorf("Average = %v, want 83", ca.Average)
	}

	// unknown enrollment
	if _, err := env.svc.ComputeCourseAverage(ctx, env.ada.ID, "nope"); err != academic.ErrEnrollmentNotFound {
		t.Errorf("ComputeCourseAverage() error = %v, want %v", err, academic.ErrEnrollmentNotFound)
	}
}

func TestService_ComputeCourseAverage_zeroWeights(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	r1 := env.addRubric(t, "Práctica 1", 0, grading.CategoryParticipation, 1)
	r2 := env.addRubric(t, "Práctica 2", 0, grading.CategoryParticipation, 2)
	env.addScore(t, env.enrAda.ID, r1.ID, 60)
	env.addScore(t, env.enrAda.ID, r2.ID, 80)

	ca, err := env.svc.ComputeCourseAverage(ctx, env.ada.ID, env.course.ID)
	if err != nil {
		t.Fatalf("ComputeCourseAverage() error = %v", err)
	}
	// zero total weight falls back to the plain mean
	if math.Abs(ca.Average-70) > eps {
		t.Errorf("Average = %v, want 70", ca.Average)
	}
}

func TestService_StudentCourseAverages(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// a second, ungraded course must not drag the overall down
	crs2, err := env.repo.CreateCourse(ctx, academic.Course{Code: "ESP-101", Name: "Español"})
	if err != nil {
		t.Fatal(err)
	}
	sec2, err := env.repo.CreateSection(ctx, academic.Section{CourseID: crs2.ID, Name: "A", Year: 2025})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: env.ada.ID, CourseID: crs2.ID, SectionID: sec2.ID, Year: 2025}); err != nil {
		t.Fatal(err)
	}

	exam := env.addRubric(t, "Parcial 1", 1, grading.CategoryExam, 1)
	env.addScore(t, env.enrAda.ID, exam.ID, 88)

	out, err := env.svc.StudentCourseAverages(ctx, env.admin, env.ada.ID)
	if err != nil {
		t.Fatalf("StudentCourseAverages() error = %v", err)
	}
	if len(out.Courses) != 2 {
		t.Fatalf("len(Courses) = %d, want 2", len(out.Courses))
	}
	if !out.HasOverall || math.Abs(out.Overall-88) > eps {
		t.Errorf("Overall = %v (has=%v), want 88", out.Overall, out.HasOverall)
	}

	if _, err := env.svc.StudentCourseAverages(ctx, env.admin, "nope"); err != academic.ErrStudentNotFound {
		t.Errorf("StudentCourseAverages() error = %v, want %v", err, academic.ErrStudentNotFound)
	}
}

func TestService_StudentCourseAverages_gate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	self := user.Caller{ID: "u-ada", Role: user.RoleStudent, StudentID: env.ada.ID}
	if _, err := env.svc.StudentCourseAverages(ctx, self, env.ada.ID); err != nil {
		t.Errorf("StudentCourseAverages() self view error = %v", err)
	}

	if _, err := env.svc.StudentCourseAverages(ctx, self, env.bea.ID); !core.IsForbidden(err) {
		t.Errorf("StudentCourseAverages() error = %v, want forbidden", err)
	}

	teacher := user.Caller{ID: "u-prof", Role: user.RoleTeacher}
	if _, err := env.svc.StudentCourseAverages(ctx, teacher, env.bea.ID); err != nil {
		t.Errorf("StudentCourseAverages() teacher view error = %v", err)
	}
}

func TestService_BuildSectionActa(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	exam := env.addRubric(t, "Parcial 1", 0.7, grading.CategoryExam, 1)
	hw := env.addRubric(t, "Tareas", 0.3, grading.CategoryHomework, 2)

	env.addScore(t, env.enrAda.ID, exam.ID, 80)
	env.addScore(t, env.enrAda.ID, hw.ID, 90)
	env.addScore(t, env.enrBea.ID, exam.ID, 60)
	// Bea's homework is missing on purpose

	acta, err := env.svc.BuildSectionActa(ctx, env.section.ID)
	if err != nil {
		t.Fatalf("BuildSectionActa() error = %v", err)
	}

	if len(acta.Columns) != 2 || acta.Columns[0].RubricID != exam.ID || acta.Columns[1].RubricID != hw.ID {
		t.Fatalf("Columns = %+v, want creation order", acta.Columns)
	}
	if len(acta.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(acta.Rows))
	}
	if acta.Rows[0].StudentName != "Ada" || acta.Rows[1].StudentName != "Bea" {
		t.Fatalf("rows not ordered by student name: %s, %s", acta.Rows[0].StudentName, acta.Rows[1].StudentName)
	}

	adaRow, beaRow := acta.Rows[0], acta.Rows[1]
	if adaRow.Average == nil || math.Abs(*adaRow.Average-83) > eps {
		t.Errorf("Ada average = %v, want 83", adaRow.Average)
	}
	if beaRow.Scores[1] != nil {
		t.Errorf("Bea homework score = %v, want nil", *beaRow.Scores[1])
	}
	if beaRow.Average == nil || math.Abs(*beaRow.Average-60) > eps {
		t.Errorf("Bea average = %v, want renormalized 60", beaRow.Average)
	}

	if _, err := env.svc.BuildSectionActa(ctx, "nope"); err != academic.ErrSectionNotFound {
		t.Errorf("BuildSectionActa() error = %v, want %v", err, academic.ErrSectionNotFound)
	}
}

func TestService_BuildStudentHistory(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// last year's enrollment in the same course
	oldSec, err := env.repo.CreateSection(ctx, academic.Section{CourseID: env.course.ID, Name: "A", Year: 2024})
	if err != nil {
		t.Fatal(err)
	}
	oldEnr, err := env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: env.ada.ID, CourseID: env.course.ID, SectionID: oldSec.ID, Year: 2024})
	if err != nil {
		t.Fatal(err)
	}

	exam := env.addRubric(t, "Parcial 1", 0.7, grading.CategoryExam, 1)
	hw := env.addRubric(t, "Tareas", 0.3, grading.CategoryHomework, 2)
	env.addScore(t, env.enrAda.ID, exam.ID, 80)
	env.addScore(t, env.enrAda.ID, hw.ID, 90)
	env.addScore(t, oldEnr.ID, exam.ID, 50)

	history, err := env.svc.BuildStudentHistory(ctx, env.admin, env.ada.ID)
	if err != nil {
		t.Fatalf("BuildStudentHistory() error = %v", err)
	}
	if len(history.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(history.Entries))
	}
	if history.Entries[0].Year != 2025 || history.Entries[1].Year != 2024 {
		t.Fatalf("entries not ordered by year desc: %d, %d", history.Entries[0].Year, history.Entries[1].Year)
	}

	latest := history.Entries[0]
	if len(latest.Contributions) != 2 {
		t.Fatalf("len(Contributions) = %d, want 2", len(latest.Contributions))
	}
	if math.Abs(latest.Contributions[0].Contribution-56) > eps { // 80 * 0.7
		t.Errorf("Contribution = %v, want 56", latest.Contributions[0].Contribution)
	}
	if math.Abs(latest.Contributions[1].Contribution-27) > eps { // 90 * 0.3
		t.Errorf("Contribution = %v, want 27", latest.Contributions[1].Contribution)
	}

	// a student may not read another student's history
	other := user.Caller{ID: "u-bea", Role: user.RoleStudent, StudentID: env.bea.ID}
	if _, err := env.svc.BuildStudentHistory(ctx, other, env.ada.ID); !core.IsForbidden(err) {
		t.Errorf("BuildStudentHistory() error = %v, want forbidden", err)
	}
}
