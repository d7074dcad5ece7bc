package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ChristopherDeLaRosa/academia/core/grading"
)

type rubricRepository struct {
	db *DB
}

var _ grading.RubricRepository = (*rubricRepository)(nil) // interface compliance check

func NewRubricRepository(db *DB) *rubricRepository {
	return &rubricRepository{db: db}
}

func (repo *rubricRepository) CreateRubric(_ context.Context, rub grading.Rubric) (grading.Rubric, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rub.ID = uuid.New().String()
	repo.db.rubrics[rub.ID] = &rub
	return rub, nil
}

func (repo *rubricRepository) GetRubricByID(_ context.Context, id string) (grading.Rubric, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rub, ok := repo.db.rubrics[id]; ok {
		return *rub, nil
	}
	return grading.Rubric{}, grading.ErrRubricNotFound
}

func (repo *rubricRepository) QueryRubricsByCourse(_ context.Context, courseID string) ([]grading.Rubric, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rubrics := make([]grading.Rubric, 0)
	for _, rub := range repo.db.rubrics {
		if rub.CourseID == courseID {
			rubrics = append(rubrics, *rub)
		}
	}
	sort.SliceStable(rubrics, func(i, j int) bool { return rubrics[i].Position < rubrics[j].Position })
	return rubrics, nil
}

func (repo *rubricRepository) UpdateRubric(_ context.Context, rub grading.Rubric) (grading.Rubric, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.rubrics[rub.ID]
	if !ok {
		return grading.Rubric{}, grading.ErrRubricNotFound
	}
	rub.CourseID = orig.CourseID
	rub.Position = orig.Position
	rub.CreatedAt = orig.CreatedAt
	repo.db.rubrics[rub.ID] = &rub
	return rub, nil
}

func (repo *rubricRepository) DeleteRubric(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rubrics[id]; !ok {
		return grading.ErrRubricNotFound
	}
	delete(repo.db.rubrics, id)
	return nil
}

func (repo *rubricRepository) CountEntriesByRubric(_ context.Context, rubricID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, entry := range repo.db.entries {
		if entry.RubricID == rubricID {
			cnt++
		}
	}
	return cnt, nil
}

type entryRepository struct {
	db *DB
}

var _ grading.EntryRepository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db *DB) *entryRepository {
	return &entryRepository{db: db}
}

// UpsertEntry holds the write lock for the whole find-or-insert, making the
// per-row upsert atomic: concurrent writers to the same pair cannot duplicate it.
func (repo *entryRepository) UpsertEntry(_ context.Context, entry grading.GradeEntry) (grading.GradeEntry, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.entries {
		if existing.EnrollmentID == entry.EnrollmentID && existing.RubricID == entry.RubricID {
			existing.Score = entry.Score
			existing.Note = entry.Note
			existing.UpdatedAt = entry.UpdatedAt
			return *existing, false, nil
		}
	}

	entry.ID = uuid.New().String()
	repo.db.entries[entry.ID] = &entry
	return entry, true, nil
}

func (repo *entryRepository) GetEntryByID(_ context.Context, id string) (grading.GradeEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if entry, ok := repo.db.entries[id]; ok {
		return *entry, nil
	}
	return grading.GradeEntry{}, grading.ErrEntryNotFound
}

func (repo *entryRepository) UpdateEntry(_ context.Context, entry grading.GradeEntry) (grading.GradeEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.entries[entry.ID]
	if !ok {
		return grading.GradeEntry{}, grading.ErrEntryNotFound
	}
	entry.EnrollmentID = orig.EnrollmentID
	entry.RubricID = orig.RubricID
	entry.CreatedBy = orig.CreatedBy
	entry.CreatedAt = orig.CreatedAt
	repo.db.entries[entry.ID] = &entry
	return entry, nil
}

func (repo *entryRepository) QueryEntriesByEnrollment(_ context.Context, enrollmentID string) ([]grading.GradeEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]grading.GradeEntry, 0)
	for _, entry := range repo.db.entries {
		if entry.EnrollmentID == enrollmentID {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func (repo *entryRepository) QueryEntriesByEnrollments(_ context.Context, enrollmentIDs []string) ([]grading.GradeEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]struct{}, len(enrollmentIDs))
	for _, id := range enrollmentIDs {
		wanted[id] = struct{}{}
	}
	entries := make([]grading.GradeEntry, 0)
	for _, entry := range repo.db.entries {
		if _, ok := wanted[entry.EnrollmentID]; ok {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}
