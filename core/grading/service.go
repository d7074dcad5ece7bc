package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/academic"
)

// MaxBulkRows caps a single bulk ingest call to keep worst-case latency bounded.
const MaxBulkRows = 200

var (
	// errors
	ErrRubricNotFound  = errors.New("rubric not found")
	ErrEntryNotFound   = errors.New("grade entry not found")
	errRubricHasScores = "rubric has recorded grade entries"
	errScoreOutOfRange = "score out of range"
)

type Service struct {
	rubricRepo   RubricRepository
	entryRepo    EntryRepository
	academicRepo academic.Repository
	logger       core.Logger
	audit        core.AuditSink
}

func NewService(
	rubricRepo RubricRepository,
	entryRepo EntryRepository,
	academicRepo academic.Repository,
	logger core.Logger,
	audit core.AuditSink,
) *Service {
	return &Service{
		rubricRepo:   rubricRepo,
		entryRepo:    entryRepo,
		academicRepo: academicRepo,
		logger:       logger,
		audit:        audit,
	}
}

// CreateRubric adds a grading item to a course. The per-course weight total is
// deliberately not enforced; when the new rubric pushes it above 1 a warning
// is logged and the rubric is created anyway. Averages renormalize at read time.
func (svc *Service) CreateRubric(ctx context.Context, actorID, courseID string, nr NewRubric) (Rubric, error) {
	course, err := svc.academicRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Rubric{}, err
	}

	existing, err := svc.rubricRepo.QueryRubricsByCourse(ctx, course.ID)
	if err != nil {
		return Rubric{}, errors.Wrap(err, "querying course rubrics")
	}
	total := nr.Weight
	pos := 1
	for _, rub := range existing {
		total += rub.Weight
		// positions are never reused after a deletion; listings order by them
		if rub.Position >= pos {
			pos = rub.Position + 1
		}
	}
	if total > 1 {
		svc.logger.Warn(
			fmt.Sprintf("course %s rubric weights total %.2f (> 1.0) after adding %q", course.Code, total, nr.Name),
			map[string]interface{}{"course_id": course.ID, "weight_total": total},
		)
	}

	now := time.Now().UTC()
	rub := Rubric{
		CourseID:  course.ID,
		Name:      nr.Name,
		Weight:    nr.Weight,
		Category:  nr.Category,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rub, err = svc.rubricRepo.CreateRubric(ctx, rub)
	if err != nil {
		return Rubric{}, err
	}

	svc.audit.Record(ctx, actorID, core.AuditActionCreate, "rubric", rub.ID, map[string]interface{}{
		"course_id": rub.CourseID,
		"name":      rub.Name,
		"weight":    rub.Weight,
	})
	return rub, nil
}

func (svc *Service) GetRubric(ctx context.Context, id string) (Rubric, error) {
	return svc.rubricRepo.GetRubricByID(ctx, id)
}

// ListRubrics returns a course's rubrics in creation order.
func (svc *Service) ListRubrics(ctx context.Context, courseID string) ([]Rubric, error) {
	if _, err := svc.academicRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.rubricRepo.QueryRubricsByCourse(ctx, courseID)
}

func (svc *Service) UpdateRubric(ctx context.Context, actorID, rubricID string, ur UpdateRubric) (Rubric, error) {
	rub, err := svc.rubricRepo.GetRubricByID(ctx, rubricID)
	if err != nil {
		return Rubric{}, err
	}

	rub.Name = ur.Name
	rub.Weight = *ur.Weight
	rub.Category = ur.Category
	rub.UpdatedAt = time.Now().UTC()

	rub, err = svc.rubricRepo.UpdateRubric(ctx, rub)
	if err != nil {
		return Rubric{}, err
	}

	svc.audit.Record(ctx, actorID, core.AuditActionUpdate, "rubric", rub.ID, map[string]interface{}{
		"name":   rub.Name,
		"weight": rub.Weight,
	})
	return rub, nil
}

// DeleteRubric removes a rubric that no grade entry references.
func (svc *Service) DeleteRubric(ctx context.Context, actorID, rubricID string) error {
	rub, err := svc.rubricRepo.GetRubricByID(ctx, rubricID)
	if err != nil {
		return err
	}

	cnt, err := svc.rubricRepo.CountEntriesByRubric(ctx, rub.ID)
	if err != nil {
		return errors.Wrap(err, "counting rubric entries")
	}
	if cnt > 0 {
		return core.NewConflictError(errRubricHasScores)
	}

	if err := svc.rubricRepo.DeleteRubric(ctx, rub.ID); err != nil {
		return err
	}
	svc.audit.Record(ctx, actorID, core.AuditActionDelete, "rubric", rub.ID, nil)
	return nil
}

// BulkIngest validates and upserts a batch of raw scores for one (section, rubric)
// target. Rows are processed sequentially and independently: a bad row is reported
// in its slot of the result and never aborts the rest of the batch.
func (svc *Service) BulkIngest(ctx context.Context, actorID, sectionID, rubricID string, rows []BulkRow) ([]RowResult, error) {
	if len(rows) == 0 || len(rows) > MaxBulkRows {
		return nil, core.NewValidationError(
			errors.Errorf("between 1 and %d rows per call", MaxBulkRows),
			core.FieldError{Field: "rows", Error: fmt.Sprintf("between 1 and %d rows per call", MaxBulkRows)},
		)
	}

	section, err := svc.academicRepo.GetSectionByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	rub, err := svc.rubricRepo.GetRubricByID(ctx, rubricID)
	if err != nil {
		return nil, err
	}
	if rub.CourseID != section.CourseID {
		return nil, core.NewValidationError(
			errors.New("rubric does not belong to the section's course"),
			core.FieldError{Field: "rubric_id", Error: "rubric does not belong to the section's course"},
		)
	}

	enrollments, err := svc.academicRepo.QueryEnrollmentsBySection(ctx, section.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying section enrollments")
	}
	inSection := make(map[string]academic.Enrollment, len(enrollments))
	for _, enr := range enrollments {
		inSection[enr.ID] = enr
	}

	results := make([]RowResult, 0, len(rows))
	var applied int
	for _, row := range rows {
		res := RowResult{EnrollmentID: row.EnrollmentID}

		if _, ok := inSection[row.EnrollmentID]; !ok {
			res.Error = &RowError{
				Field:   "enrollment_id",
				Reason:  RowReasonNotFound,
				Message: "unknown enrollment in section",
			}
			results = append(results, res)
			continue
		}
		if row.Score < 0 || row.Score > 100 {
			res.Error = &RowError{
				Field:   "score",
				Reason:  RowReasonValidation,
				Message: errScoreOutOfRange,
			}
			results = append(results, res)
			continue
		}

		now := time.Now().UTC()
		entry, _, err := svc.entryRepo.UpsertEntry(ctx, GradeEntry{
			EnrollmentID: row.EnrollmentID,
			RubricID:     rub.ID,
			Score:        row.Score,
			Note:         core.CleanString(row.Note),
			CreatedBy:    actorID,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return nil, errors.Wrap(err, "upserting grade entry")
		}
		res.Applied = true
		res.Entry = &entry
		applied++
		results = append(results, res)
	}

	svc.audit.Record(ctx, actorID, core.AuditActionBulk, "grade_entry", rub.ID, map[string]interface{}{
		"section_id": section.ID,
		"applied":    applied,
		"rejected":   len(rows) - applied,
	})
	return results, nil
}

// UpdateEntry corrects a single recorded score. Entries are never deleted;
// corrections overwrite score/note and advance updatedAt.
func (svc *Service) UpdateEntry(ctx context.Context, actorID, entryID string, score float64, note *string) (GradeEntry, error) {
	if score < 0 || score > 100 {
		return GradeEntry{}, core.NewValidationError(
			errors.New(errScoreOutOfRange),
			core.FieldError{Field: "score", Error: errScoreOutOfRange},
		)
	}

	entry, err := svc.entryRepo.GetEntryByID(ctx, entryID)
	if err != nil {
		return GradeEntry{}, err
	}

	entry.Score = score
	if note != nil {
		entry.Note = core.CleanString(*note)
	}
	entry.UpdatedAt = time.Now().UTC()

	entry, err = svc.entryRepo.UpdateEntry(ctx, entry)
	if err != nil {
		return GradeEntry{}, err
	}

	svc.audit.Record(ctx, actorID, core.AuditActionUpdate, "grade_entry", entry.ID, map[string]interface{}{
		"score": entry.Score,
	})
	return entry, nil
}
