package report

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	"github.com/ChristopherDeLaRosa/academia/core/user"
)

// Service computes aggregate views on demand from current rubric and entry
// state. Nothing is cached: a read always reflects the latest writes.
type Service struct {
	rubricRepo   grading.RubricRepository
	entryRepo    grading.EntryRepository
	academicRepo academic.Repository
}

func NewService(
	rubricRepo grading.RubricRepository,
	entryRepo grading.EntryRepository,
	academicRepo academic.Repository,
) *Service {
	return &Service{
		rubricRepo:   rubricRepo,
		entryRepo:    entryRepo,
		academicRepo: academicRepo,
	}
}

// weightedAverage renormalizes over the rubrics actually graded: missing
// rubrics are excluded from both numerator and denominator, so a partially
// graded course is never penalized by phantom zeros. When all graded rubrics
// carry zero weight the plain mean of their scores is used instead, which
// keeps the result within [0,100].
func weightedAverage(rubrics []grading.Rubric, byRubric map[string]grading.GradeEntry) (avg float64, graded int) {
	var weightedSum, weightSum, plainSum float64
	for _, rub := range rubrics {
		entry, ok := byRubric[rub.ID]
		if !ok {
			continue
		}
		graded++
		weightedSum += entry.Score * rub.Weight
		weightSum += rub.Weight
		plainSum += entry.Score
	}
	if graded == 0 {
		return 0, 0
	}
	if weightSum == 0 {
		return plainSum / float64(graded), graded
	}
	return weightedSum / weightSum, graded
}

func entriesByRubric(entries []grading.GradeEntry) map[string]grading.GradeEntry {
	byRubric := make(map[string]grading.GradeEntry, len(entries))
	for _, entry := range entries {
		byRubric[entry.RubricID] = entry
	}
	return byRubric
}

func (svc *Service) courseAverage(ctx context.Context, enr academic.Enrollment, course academic.Course) (CourseAverage, []grading.Rubric, map[string]grading.GradeEntry, error) {
	rubrics, err := svc.rubricRepo.QueryRubricsByCourse(ctx, course.ID)
	if err != nil {
		return CourseAverage{}, nil, nil, errors.Wrap(err, "querying course rubrics")
	}
	entries, err := svc.entryRepo.QueryEntriesByEnrollment(ctx, enr.ID)
	if err != nil {
		return CourseAverage{}, nil, nil, errors.Wrap(err, "querying enrollment entries")
	}
	byRubric := entriesByRubric(entries)
	avg, graded := weightedAverage(rubrics, byRubric)

	ca := CourseAverage{
		EnrollmentID:  enr.ID,
		CourseID:      course.ID,
		CourseCode:    course.Code,
		CourseName:    course.Name,
		Year:          enr.Year,
		Average:       avg,
		Graded:        graded > 0,
		GradedRubrics: graded,
		TotalRubrics:  len(rubrics),
	}
	return ca, rubrics, byRubric, nil
}

// ComputeCourseAverage computes the weighted average of a student's most
// recent enrollment in the given course.
func (svc *Service) ComputeCourseAverage(ctx context.Context, studentID, courseID string) (CourseAverage, error) {
	enrollments, err := svc.academicRepo.QueryEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return CourseAverage{}, errors.Wrap(err, "querying student enrollments")
	}
	for _, enr := range enrollments {
		if enr.CourseID != courseID {
			continue
		}
		course, err := svc.academicRepo.GetCourseByID(ctx, enr.CourseID)
		if err != nil {
			return CourseAverage{}, err
		}
		ca, _, _, err := svc.courseAverage(ctx, enr, course)
		return ca, err
	}
	return CourseAverage{}, academic.ErrEnrollmentNotFound
}

// StudentCourseAverages returns the caller-gated per-course averages and the
// unweighted overall mean. Courses with no grades yet are excluded from the
// mean, never counted as zero.
func (svc *Service) StudentCourseAverages(ctx context.Context, caller user.Caller, studentID string) (StudentCourseAverages, error) {
	if err := caller.CanViewStudent(studentID); err != nil {
		return StudentCourseAverages{}, err
	}

	student, err := svc.academicRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentCourseAverages{}, err
	}
	enrollments, err := svc.academicRepo.QueryEnrollmentsByStudent(ctx, student.ID)
	if err != nil {
		return StudentCourseAverages{}, errors.Wrap(err, "querying student enrollments")
	}

	out := StudentCourseAverages{
		StudentID:   student.ID,
		StudentName: student.Name,
		Courses:     make([]CourseAverage, 0, len(enrollments)),
	}
	var sum float64
	var defined int
	for _, enr := range enrollments {
		course, err := svc.academicRepo.GetCourseByID(ctx, enr.CourseID)
		if err != nil {
			return StudentCourseAverages{}, err
		}
		ca, _, _, err := svc.courseAverage(ctx, enr, course)
		if err != nil {
			return StudentCourseAverages{}, err
		}
		out.Courses = append(out.Courses, ca)
		if ca.Graded {
			sum += ca.Average
			defined++
		}
	}
	if defined > 0 {
		out.Overall = sum / float64(defined)
		out.HasOverall = true
	}
	return out, nil
}

// BuildSectionActa assembles the section transcript: all course rubrics as
// columns (creation order) and one row per enrollment, ordered by student name.
func (svc *Service) BuildSectionActa(ctx context.Context, sectionID string) (SectionActa, error) {
	section, err := svc.academicRepo.GetSectionByID(ctx, sectionID)
	if err != nil {
		return SectionActa{}, err
	}
	course, err := svc.academicRepo.GetCourseByID(ctx, section.CourseID)
	if err != nil {
		return SectionActa{}, err
	}
	rubrics, err := svc.rubricRepo.QueryRubricsByCourse(ctx, course.ID)
	if err != nil {
		return SectionActa{}, errors.Wrap(err, "querying course rubrics")
	}
	enrollments, err := svc.academicRepo.QueryEnrollmentsBySection(ctx, section.ID)
	if err != nil {
		return SectionActa{}, errors.Wrap(err, "querying section enrollments")
	}

	acta := SectionActa{
		SectionID:   section.ID,
		SectionName: section.Name,
		CourseID:    course.ID,
		CourseCode:  course.Code,
		Year:        section.Year,
		Columns:     make([]ActaColumn, 0, len(rubrics)),
		Rows:        make([]ActaRow, 0, len(enrollments)),
	}
	for _, rub := range rubrics {
		acta.Columns = append(acta.Columns, ActaColumn{
			RubricID: rub.ID,
			Name:     rub.Name,
			Weight:   rub.Weight,
			Category: rub.Category,
		})
	}

	enrIDs := make([]string, 0, len(enrollments))
	for _, enr := range enrollments {
		enrIDs = append(enrIDs, enr.ID)
	}
	entries, err := svc.entryRepo.QueryEntriesByEnrollments(ctx, enrIDs)
	if err != nil {
		return SectionActa{}, errors.Wrap(err, "querying section entries")
	}
	byEnrollment := make(map[string][]grading.GradeEntry, len(enrollments))
	for _, entry := range entries {
		byEnrollment[entry.EnrollmentID] = append(byEnrollment[entry.EnrollmentID], entry)
	}

	for _, enr := range enrollments {
		student, err := svc.academicRepo.GetStudentByID(ctx, enr.StudentID)
		if err != nil {
			return SectionActa{}, err
		}
		byRubric := entriesByRubric(byEnrollment[enr.ID])

		row := ActaRow{
			EnrollmentID: enr.ID,
			StudentID:    student.ID,
			StudentName:  student.Name,
			Scores:       make([]*float64, 0, len(rubrics)),
		}
		for _, rub := range rubrics {
			if entry, ok := byRubric[rub.ID]; ok {
				score := entry.Score
				row.Scores = append(row.Scores, &score)
			} else {
				row.Scores = append(row.Scores, nil)
			}
		}
		if avg, graded := weightedAverage(rubrics, byRubric); graded > 0 {
			row.Average = &avg
		}
		acta.Rows = append(acta.Rows, row)
	}

	// stable presentation regardless of storage ordering
	sort.SliceStable(acta.Rows, func(i, j int) bool { return acta.Rows[i].StudentName < acta.Rows[j].StudentName })
	return acta, nil
}

// BuildStudentHistory returns the caller-gated enrollment history with
// per-rubric contribution detail, most recent school-year first.
func (svc *Service) BuildStudentHistory(ctx context.Context, caller user.Caller, studentID string) (StudentHistory, error) {
	if err := caller.CanViewStudent(studentID); err != nil {
		return StudentHistory{}, err
	}

	student, err := svc.academicRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentHistory{}, err
	}
	enrollments, err := svc.academicRepo.QueryEnrollmentsByStudent(ctx, student.ID)
	if err != nil {
		return StudentHistory{}, errors.Wrap(err, "querying student enrollments")
	}
	sort.SliceStable(enrollments, func(i, j int) bool { return enrollments[i].Year > enrollments[j].Year })

	history := StudentHistory{
		StudentID:   student.ID,
		StudentName: student.Name,
		Entries:     make([]HistoryEntry, 0, len(enrollments)),
	}
	for _, enr := range enrollments {
		course, err := svc.academicRepo.GetCourseByID(ctx, enr.CourseID)
		if err != nil {
			return StudentHistory{}, err
		}
		section, err := svc.academicRepo.GetSectionByID(ctx, enr.SectionID)
		if err != nil {
			return StudentHistory{}, err
		}
		ca, rubrics, byRubric, err := svc.courseAverage(ctx, enr, course)
		if err != nil {
			return StudentHistory{}, err
		}

		entry := HistoryEntry{
			CourseAverage: ca,
			SectionID:     section.ID,
			SectionName:   section.Name,
			Contributions: make([]RubricContribution, 0, len(byRubric)),
		}
		for _, rub := range rubrics {
			ge, ok := byRubric[rub.ID]
			if !ok {
				continue
			}
			entry.Contributions = append(entry.Contributions, RubricContribution{
				RubricID:     rub.ID,
				Name:         rub.Name,
				Category:     rub.Category,
				Weight:       rub.Weight,
				Score:        ge.Score,
				Contribution: ge.Score * rub.Weight,
			})
		}
		history.Entries = append(history.Entries, entry)
	}
	return history, nil
}
