package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/ChristopherDeLaRosa/academia/core/grading"
)

type rubricRepository struct {
	db *sqlx.DB
}

var _ grading.RubricRepository = (*rubricRepository)(nil) // interface compliance check

func NewRubricRepository(db *sqlx.DB) *rubricRepository {
	return &rubricRepository{db: db}
}

type rubricRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Name      string    `db:"name"`
	Weight    float64   `db:"weight"`
	Category  string    `db:"category"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r rubricRow) toCore() grading.Rubric {
	return grading.Rubric{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Name:      r.Name,
		Weight:    r.Weight,
		Category:  grading.Category(r.Category),
		Position:  r.SortOrder,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo *rubricRepository) CreateRubric(ctx context.Context, rub grading.Rubric) (grading.Rubric, error) {
	rub.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO rubric (id, course_id, name, weight, category, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rub.ID, rub.CourseID, rub.Name, rub.Weight, rub.Category.String(), rub.Position, rub.CreatedAt, rub.UpdatedAt)
	if err != nil {
		return grading.Rubric{}, trapExecErr(err, "inserting rubric")
	}
	return rub, nil
}

func (repo *rubricRepository) GetRubricByID(ctx context.Context, id string) (grading.Rubric, error) {
	var row rubricRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, course_id, name, weight, category, sort_order, created_at, updated_at
		 FROM rubric WHERE id = $1`, id)
	if err != nil {
		return grading.Rubric{}, trapErr(err, grading.ErrRubricNotFound, "finding rubric by ID")
	}
	return row.toCore(), nil
}

func (repo *rubricRepository) QueryRubricsByCourse(ctx context.Context, courseID string) ([]grading.Rubric, error) {
	var rows []rubricRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, course_id, name, weight, category, sort_order, created_at, updated_at
		 FROM rubric WHERE course_id = $1 ORDER BY sort_order`, courseID)
	if err != nil {
		return nil, trapExecErr(err, "querying course rubrics")
	}
	rubrics := make([]grading.Rubric, 0, len(rows))
	for _, row := range rows {
		rubrics = append(rubrics, row.toCore())
	}
	return rubrics, nil
}

func (repo *rubricRepository) UpdateRubric(ctx context.Context, rub grading.Rubric) (grading.Rubric, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE rubric SET name = $2, weight = $3, category = $4, updated_at = $5 WHERE id = $1`,
		rub.ID, rub.Name, rub.Weight, rub.Category.String(), rub.UpdatedAt)
	if err != nil {
		return grading.Rubric{}, trapExecErr(err, "updating rubric")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return grading.Rubric{}, grading.ErrRubricNotFound
	}
	return rub, nil
}

func (repo *rubricRepository) DeleteRubric(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM rubric WHERE id = $1`, id)
	if err != nil {
		return trapExecErr(err, "deleting rubric")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return grading.ErrRubricNotFound
	}
	return nil
}

func (repo *rubricRepository) CountEntriesByRubric(ctx context.Context, rubricID string) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		`SELECT COUNT(*) FROM grade_entry WHERE rubric_id = $1`, rubricID)
	if err != nil {
		return 0, trapExecErr(err, "counting rubric entries")
	}
	return cnt, nil
}

type entryRepository struct {
	db *sqlx.DB
}

var _ grading.EntryRepository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db *sqlx.DB) *entryRepository {
	return &entryRepository{db: db}
}

type entryRow struct {
	ID           string      `db:"id"`
	EnrollmentID string      `db:"enrollment_id"`
	RubricID     string      `db:"rubric_id"`
	Score        float64     `db:"score"`
	Note         null.String `db:"note"`
	CreatedBy    string      `db:"created_by"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r entryRow) toCore() grading.GradeEntry {
	return grading.GradeEntry{
		ID:           r.ID,
		EnrollmentID: r.EnrollmentID,
		RubricID:     r.RubricID,
		Score:        r.Score,
		Note:         r.Note.String,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func entriesToCore(rows []entryRow) []grading.GradeEntry {
	entries := make([]grading.GradeEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toCore())
	}
	return entries
}

// UpsertEntry is a single conditional insert-or-update on the
// (enrollment_id, rubric_id) key: concurrent writers to the same pair race on
// one row and the last write commits, never a duplicate.
func (repo *entryRepository) UpsertEntry(ctx context.Context, entry grading.GradeEntry) (grading.GradeEntry, bool, error) {
	var row struct {
		entryRow
		Created bool `db:"created"`
	}
	err := repo.db.GetContext(ctx, &row,
		`INSERT INTO grade_entry (id, enrollment_id, rubric_id, score, note, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (enrollment_id, rubric_id)
		 DO UPDATE SET score = EXCLUDED.score, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
		 RETURNING id, enrollment_id, rubric_id, score, note, created_by, created_at, updated_at,
		           (xmax = 0) AS created`,
		uuid.New().String(), entry.EnrollmentID, entry.RubricID, entry.Score,
		null.NewString(entry.Note, entry.Note != ""), entry.CreatedBy, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return grading.GradeEntry{}, false, trapExecErr(err, "upserting grade entry")
	}
	return row.toCore(), row.Created, nil
}

func (repo *entryRepository) GetEntryByID(ctx context.Context, id string) (grading.GradeEntry, error) {
	var row entryRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, enrollment_id, rubric_id, score, note, created_by, created_at, updated_at
		 FROM grade_entry WHERE id = $1`, id)
	if err != nil {
		return grading.GradeEntry{}, trapErr(err, grading.ErrEntryNotFound, "finding grade entry by ID")
	}
	return row.toCore(), nil
}

func (repo *entryRepository) UpdateEntry(ctx context.Context, entry grading.GradeEntry) (grading.GradeEntry, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE grade_entry SET score = $2, note = $3, updated_at = $4 WHERE id = $1`,
		entry.ID, entry.Score, null.NewString(entry.Note, entry.Note != ""), entry.UpdatedAt)
	if err != nil {
		return grading.GradeEntry{}, trapExecErr(err, "updating grade entry")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return grading.GradeEntry{}, grading.ErrEntryNotFound
	}
	return entry, nil
}

func (repo *entryRepository) QueryEntriesByEnrollment(ctx context.Context, enrollmentID string) ([]grading.GradeEntry, error) {
	var rows []entryRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, enrollment_id, rubric_id, score, note, created_by, created_at, updated_at
		 FROM grade_entry WHERE enrollment_id = $1`, enrollmentID)
	if err != nil {
		return nil, trapExecErr(err, "querying enrollment entries")
	}
	return entriesToCore(rows), nil
}

func (repo *entryRepository) QueryEntriesByEnrollments(ctx context.Context, enrollmentIDs []string) ([]grading.GradeEntry, error) {
	if len(enrollmentIDs) == 0 {
		return []grading.GradeEntry{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, enrollment_id, rubric_id, score, note, created_by, created_at, updated_at
		 FROM grade_entry WHERE enrollment_id IN (?)`, enrollmentIDs)
	if err != nil {
		return nil, trapExecErr(err, "building entries query")
	}
	var rows []entryRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, trapExecErr(err, "querying section entries")
	}
	return entriesToCore(rows), nil
}
