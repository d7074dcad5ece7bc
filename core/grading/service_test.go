package grading_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	inmemdb "github.com/ChristopherDeLaRosa/academia/storage/database/inmem"
)

type nopLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *nopLogger) Debug(msg string, args ...interface{}) {}
func (l *nopLogger) Info(msg string, args ...interface{})  {}
func (l *nopLogger) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
func (l *nopLogger) Error(msg string, args ...interface{}) {}
func (l *nopLogger) Fatal(msg string, args ...interface{}) {}

type auditRecord struct {
	actorID    string
	action     string
	entityType string
	entityID   string
	payload    map[string]interface{}
}

type auditRecorder struct {
	mu      sync.Mutex
	records []auditRecord
}

func (a *auditRecorder) Record(_ context.Context, actorID, action, entityType, entityID string, payload map[string]interface{}) {
	a.mu.Lock()
	a.records = append(a.records, auditRecord{actorID, action, entityType, entityID, payload})
	a.mu.Unlock()
}

type testEnv struct {
	svc    *grading.Service
	repo   academic.Repository
	logger *nopLogger
	audit  *auditRecorder

	course     academic.Course
	section    academic.Section
	enrAda     academic.Enrollment
	enrBea     academic.Enrollment
	otherCrs   academic.Course
	otherRub   grading.Rubric
	rubricRepo grading.RubricRepository
	entryRepo  grading.EntryRepository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.Open()

	env := &testEnv{
		repo:       inmemdb.NewAcademicRepository(db),
		rubricRepo: inmemdb.NewRubricRepository(db),
		entryRepo:  inmemdb.NewEntryRepository(db),
		logger:     &nopLogger{},
		audit:      &auditRecorder{},
	}
	env.svc = grading.NewService(env.rubricRepo, env.entryRepo, env.repo, env.logger, env.audit)

	var err error
	if env.course, err = env.repo.CreateCourse(ctx, academic.Course{Code: "MAT-101", Name: "Matemática"}); err != nil {
		t.Fatal(err)
	}
	if env.otherCrs, err = env.repo.CreateCourse(ctx, academic.Course{Code: "ESP-101", Name: "Español"}); err != nil {
		t.Fatal(err)
	}
	if env.section, err = env.repo.CreateSection(ctx, academic.Section{CourseID: env.course.ID, Name: "A", Year: 2025}); err != nil {
		t.Fatal(err)
	}

	ada, err := env.repo.CreateStudent(ctx, academic.Student{Name: "Ada", Email: "ada@test.do"})
	if err != nil {
		t.Fatal(err)
	}
	bea, err := env.repo.CreateStudent(ctx, academic.Student{Name: "Bea", Email: "bea@test.do"})
	if err != nil {
		t.Fatal(err)
	}
	if env.enrAda, err = env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: ada.ID, CourseID: env.course.ID, SectionID: env.section.ID, Year: 2025}); err != nil {
		t.Fatal(err)
	}
	if env.enrBea, err = env.repo.CreateEnrollment(ctx, academic.Enrollment{StudentID: bea.ID, CourseID: env.course.ID, SectionID: env.section.ID, Year: 2025}); err != nil {
		t.Fatal(err)
	}
	if env.otherRub, err = env.rubricRepo.CreateRubric(ctx, grading.Rubric{CourseID: env.otherCrs.ID, Name: "Dictado", Weight: 1, Category: grading.CategoryExam, Position: 1}); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestService_CreateRubric(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rub, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Parcial 1", Weight: 0.7, Category: grading.CategoryExam,
	})
	if err != nil {
		t.Fatalf("CreateRubric() error = %v", err)
	}
	if rub.Position != 1 {
		t.Errorf("Position = %d, want 1", rub.Position)
	}

	// pushing the weight total past 1.0 warns but still creates
	rub2, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Proyecto", Weight: 0.5, Category: grading.CategoryProject,
	})
	if err != nil {
		t.Fatalf("CreateRubric() error = %v", err)
	}
	if rub2.Position != 2 {
		t.Errorf("Position = %d, want 2", rub2.Position)
	}
	if len(env.logger.warns) != 1 {
		t.Errorf("warn count = %d, want 1", len(env.logger.warns))
	}

	if _, err := env.svc.CreateRubric(ctx, "teacher1", "nope", grading.NewRubric{
		Name: "X", Weight: 0.1, Category: grading.CategoryHomework,
	}); err != academic.ErrCourseNotFound {
		t.Errorf("CreateRubric() error = %v, want %v", err, academic.ErrCourseNotFound)
	}

	if len(env.audit.records) != 2 {
		t.Errorf("audit records = %d, want 2", len(env.audit.records))
	}
}

func TestService_CreateRubric_positionAfterDelete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rubs := make([]grading.Rubric, 0, 3)
	for _, name := range []string{"Parcial 1", "Tareas", "Proyecto"} {
		rub, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
			Name: name, Weight: 0.2, Category: grading.CategoryHomework,
		})
		if err != nil {
			t.Fatal(err)
		}
		rubs = append(rubs, rub)
	}
	if err := env.svc.DeleteRubric(ctx, "teacher1", rubs[1].ID); err != nil {
		t.Fatal(err)
	}

	// the freed position must not be handed out again: a new rubric always
	// sorts after every surviving one
	last, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Participación", Weight: 0.2, Category: grading.CategoryParticipation,
	})
	if err != nil {
		t.Fatal(err)
	}
	if last.Position != 4 {
		t.Errorf("Position = %d, want 4", last.Position)
	}

	rubrics, err := env.svc.ListRubrics(ctx, env.course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rubrics) != 3 {
		t.Fatalf("len(rubrics) = %d, want 3", len(rubrics))
	}
	for i, want := range []string{"Parcial 1", "Proyecto", "Participación"} {
		if rubrics[i].Name != want {
			t.Errorf("rubrics[%d].Name = %s, want %s", i, rubrics[i].Name, want)
		}
	}
}

func TestService_ListRubrics(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	if _, err := env.svc.ListRubrics(ctx, "nope"); err != academic.ErrCourseNotFound {
		t.Fatalf("ListRubrics() error = %v, want %v", err, academic.ErrCourseNotFound)
	}

	for _, name := range []string{"Parcial 1", "Parcial 2", "Tareas"} {
		if _, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
			Name: name, Weight: 0.3, Category: grading.CategoryExam,
		}); err != nil {
			t.Fatal(err)
		}
	}
	rubrics, err := env.svc.ListRubrics(ctx, env.course.ID)
	if err != nil {
		t.Fatalf("ListRubrics() error = %v", err)
	}
	if len(rubrics) != 3 {
		t.Fatalf("len(rubrics) = %d, want 3", len(rubrics))
	}
	for i, want := range []string{"Parcial 1", "Parcial 2", "Tareas"} {
		if rubrics[i].Name != want {
			t.Errorf("rubrics[%d].Name = %s, want %s", i, rubrics[i].Name, want)
		}
	}
}

func TestService_DeleteRubric(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rub, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Parcial 1", Weight: 0.5, Category: grading.CategoryExam,
	})
	if err != nil {
		t.Fatal(err)
	}

	// referenced rubrics cannot be removed
	if _, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, []grading.BulkRow{
		{EnrollmentID: env.enrAda.ID, Score: 80},
	}); err != nil {
		t.Fatal(err)
	}
	err = env.svc.DeleteRubric(ctx, "teacher1", rub.ID)
	if !core.IsConflict(err) {
		t.Fatalf("DeleteRubric() error = %v, want conflict", err)
	}

	rub2, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Tareas", Weight: 0.2, Category: grading.CategoryHomework,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.DeleteRubric(ctx, "teacher1", rub2.ID); err != nil {
		t.Fatalf("DeleteRubric() error = %v", err)
	}
	if _, err := env.svc.GetRubric(ctx, rub2.ID); err != grading.ErrRubricNotFound {
		t.Errorf("GetRubric() error = %v, want %v", err, grading.ErrRubricNotFound)
	}
}

func TestService_BulkIngest(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rub, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Parcial 1", Weight: 0.7, Category: grading.CategoryExam,
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("batch size limits", func(t *testing.T) {
		if _, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, nil); err == nil {
			t.Error("BulkIngest() expected error on empty batch")
		}
		tooMany := make([]grading.BulkRow, grading.MaxBulkRows+1)
		for i := range tooMany {
			tooMany[i] = grading.BulkRow{EnrollmentID: env.enrAda.ID, Score: 50}
		}
		if _, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, tooMany); err == nil {
			t.Error("BulkIngest() expected error on oversized batch")
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := env.svc.BulkIngest(ctx, "teacher1", "nope", rub.ID, []grading.BulkRow{{EnrollmentID: env.enrAda.ID, Score: 50}})
		if err != academic.ErrSectionNotFound {
			t.Errorf("BulkIngest() error = %v, want %v", err, academic.ErrSectionNotFound)
		}
	})

	t.Run("rubric from another course", func(t *testing.T) {
		_, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, env.otherRub.ID, []grading.BulkRow{{EnrollmentID: env.enrAda.ID, Score: 50}})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("BulkIngest() error = %v, want validation error", err)
		}
	})

	t.Run("partial failure keeps good rows", func(t *testing.T) {
		results, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, []grading.BulkRow{
			{EnrollmentID: env.enrAda.ID, Score: 80},
			{EnrollmentID: env.enrBea.ID, Score: 150},
			{EnrollmentID: "ghost", Score: 60},
		})
		if err != nil {
			t.Fatalf("BulkIngest() error = %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("len(results) = %d, want 3", len(results))
		}
		if !results[0].Applied || results[0].Entry == nil {
			t.Errorf("results[0] not applied: %+v", results[0])
		}
		if results[1].Applied || results[1].Error == nil || results[1].Error.Reason != grading.RowReasonValidation {
			t.Errorf("results[1] = %+v, want score validation failure", results[1])
		}
		if results[2].Applied || results[2].Error == nil || results[2].Error.Reason != grading.RowReasonNotFound {
			t.Errorf("results[2] = %+v, want unknown enrollment failure", results[2])
		}
	})

	t.Run("resubmission upserts in place", func(t *testing.T) {
		before, err := env.entryRepo.QueryEntriesByEnrollment(ctx, env.enrAda.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(before) != 1 {
			t.Fatalf("len(before) = %d, want 1", len(before))
		}
		orig := before[0]

		results, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, []grading.BulkRow{
			{EnrollmentID: env.enrAda.ID, Score: 85, Note: "corrected"},
		})
		if err != nil {
			t.Fatalf("BulkIngest() error = %v", err)
		}
		if !results[0].Applied {
			t.Fatalf("results[0] not applied: %+v", results[0])
		}
		entries, err := env.entryRepo.QueryEntriesByEnrollment(ctx, env.enrAda.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("len(entries) = %d, want 1", len(entries))
		}
		if entries[0].Score != 85 || entries[0].Note != "corrected" {
			t.Errorf("entry = %+v, want score 85 note corrected", entries[0])
		}
		if entries[0].ID != orig.ID {
			t.Errorf("ID = %s, want original %s", entries[0].ID, orig.ID)
		}
		if !entries[0].CreatedAt.Equal(orig.CreatedAt) {
			t.Errorf("CreatedAt = %v, want original %v", entries[0].CreatedAt, orig.CreatedAt)
		}
		if !entries[0].UpdatedAt.After(orig.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want after %v", entries[0].UpdatedAt, orig.UpdatedAt)
		}
	})
}

func TestService_UpdateEntry(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	rub, err := env.svc.CreateRubric(ctx, "teacher1", env.course.ID, grading.NewRubric{
		Name: "Parcial 1", Weight: 1, Category: grading.CategoryExam,
	})
	if err != nil {
		t.Fatal(err)
	}
	results, err := env.svc.BulkIngest(ctx, "teacher1", env.section.ID, rub.ID, []grading.BulkRow{
		{EnrollmentID: env.enrAda.ID, Score: 70, Note: "first try"},
	})
	if err != nil {
		t.Fatal(err)
	}
	entry := *results[0].Entry

	if _, err := env.svc.UpdateEntry(ctx, "teacher1", entry.ID, 120, nil); err == nil {
		t.Error("UpdateEntry() expected error on out of range score")
	}
	if _, err := env.svc.UpdateEntry(ctx, "teacher1", "nope", 80, nil); err != grading.ErrEntryNotFound {
		t.Errorf("UpdateEntry() error = %v, want %v", err, grading.ErrEntryNotFound)
	}

	// nil note keeps the original one
	updated, err := env.svc.UpdateEntry(ctx, "teacher1", entry.ID, 75, nil)
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if updated.Score != 75 || updated.Note != "first try" {
		t.Errorf("entry = %+v, want score 75 with original note", updated)
	}

	note := "reviewed"
	updated, err = env.svc.UpdateEntry(ctx, "teacher1", entry.ID, 78, &note)
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if updated.Note != "reviewed" {
		t.Errorf("Note = %s, want reviewed", updated.Note)
	}
}
