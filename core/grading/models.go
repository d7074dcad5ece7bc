package grading

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ChristopherDeLaRosa/academia/core"
)

// Category is the closed set of rubric categories.
type Category string

const (
	CategoryExam          Category = "exam"
	CategoryHomework      Category = "homework"
	CategoryProject       Category = "project"
	CategoryParticipation Category = "participation"
)

var AllCategories = []Category{CategoryExam, CategoryHomework, CategoryProject, CategoryParticipation}

func (c Category) IsValid() bool {
	for _, cat := range AllCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Rubric is a named, weighted grading item within a course.
type Rubric struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"` // [0,1]
	Category  Category  `json:"category"`
	Position  int       `json:"position"` // creation order within the course
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// GradeEntry is one student's recorded score for one rubric.
// At most one live entry exists per (enrollment, rubric) pair.
type GradeEntry struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	RubricID     string    `json:"rubric_id"`
	Score        float64   `json:"score"` // [0,100]
	Note         string    `json:"note,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewRubric contains information needed to create a new Rubric.
type NewRubric struct {
	Name     string   `json:"name" validate:"required"`
	Weight   float64  `json:"weight" validate:"min=0,max=1"`
	Category Category `json:"category" validate:"required,category"`
}

func (nr *NewRubric) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	return validate.Struct(nr)
}

// UpdateRubric defines what information may be provided to modify an existing Rubric.
// Zero-valued fields keep the original value; Weight is a pointer so 0 stays expressible.
type UpdateRubric struct {
	Name     string   `json:"name"`
	Weight   *float64 `json:"weight" validate:"omitempty,min=0,max=1"`
	Category Category `json:"category" validate:"omitempty,category"`
}

func (ur *UpdateRubric) Validate(orig Rubric, validate *validator.Validate) error {
	name := core.CleanString(ur.Name)
	if name != "" {
		ur.Name = name
	} else {
		ur.Name = orig.Name
	}
	if ur.Weight == nil {
		w := orig.Weight
		ur.Weight = &w
	}
	if ur.Category == "" {
		ur.Category = orig.Category
	}
	return validate.Struct(ur)
}

// BulkRow is one raw score submission within a bulk ingest call.
type BulkRow struct {
	EnrollmentID string  `json:"enrollment_id"`
	Score        float64 `json:"score"`
	Note         string  `json:"note,omitempty"`
}

// Row failure reasons
const (
	RowReasonNotFound   = "not_found"
	RowReasonValidation = "validation"
)

// RowError describes why a single row was rejected.
type RowError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// RowResult is the outcome of one bulk row, in input order.
// Exactly one of Entry or Error is set.
type RowResult struct {
	EnrollmentID string      `json:"enrollment_id"`
	Applied      bool        `json:"applied"`
	Entry        *GradeEntry `json:"entry,omitempty"`
	Error        *RowError   `json:"error,omitempty"`
}

type (
	// RubricRepository owns rubric definitions per course.
	RubricRepository interface {
		CreateRubric(ctx context.Context, rub Rubric) (Rubric, error)
		GetRubricByID(ctx context.Context, id string) (Rubric, error)
		// QueryRubricsByCourse returns a course's rubrics in creation order.
		QueryRubricsByCourse(ctx context.Context, courseID string) ([]Rubric, error)
		UpdateRubric(ctx context.Context, rub Rubric) (Rubric, error)
		DeleteRubric(ctx context.Context, id string) error
		CountEntriesByRubric(ctx context.Context, rubricID string) (int, error)
	}

	// EntryRepository owns raw score records.
	EntryRepository interface {
		// UpsertEntry atomically inserts or updates the entry for the
		// (enrollment, rubric) pair. created reports which one happened.
		UpsertEntry(ctx context.Context, entry GradeEntry) (res GradeEntry, created bool, err error)
		GetEntryByID(ctx context.Context, id string) (GradeEntry, error)
		UpdateEntry(ctx context.Context, entry GradeEntry) (GradeEntry, error)
		QueryEntriesByEnrollment(ctx context.Context, enrollmentID string) ([]GradeEntry, error)
		QueryEntriesByEnrollments(ctx context.Context, enrollmentIDs []string) ([]GradeEntry, error)
	}
)
