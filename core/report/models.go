package report

import "github.com/ChristopherDeLaRosa/academia/core/grading"

// CourseAverage is the weighted average of one enrollment, renormalized over
// the rubrics actually graded. Graded is false while no entry exists yet;
// Average is then meaningless and must not be read as zero.
type CourseAverage struct {
	EnrollmentID  string  `json:"enrollment_id"`
	CourseID      string  `json:"course_id"`
	CourseCode    string  `json:"course_code"`
	CourseName    string  `json:"course_name"`
	Year          int     `json:"year"`
	Average       float64 `json:"average"`
	Graded        bool    `json:"graded"`
	GradedRubrics int     `json:"graded_rubrics"`
	TotalRubrics  int     `json:"total_rubrics"`
}

// StudentCourseAverages is the per-student roll-up: one CourseAverage per
// enrollment plus the unweighted overall mean of the defined averages.
type StudentCourseAverages struct {
	StudentID   string          `json:"student_id"`
	StudentName string          `json:"student_name"`
	Courses     []CourseAverage `json:"courses"`
	Overall     float64         `json:"overall"`
	HasOverall  bool            `json:"has_overall"`
}

// ActaColumn is one rubric column of a section acta, in rubric creation order.
type ActaColumn struct {
	RubricID string           `json:"rubric_id"`
	Name     string           `json:"name"`
	Weight   float64          `json:"weight"`
	Category grading.Category `json:"category"`
}

// ActaRow is one student's line in the acta: a score per column (nil when
// ungraded) plus the computed course average (nil while nothing is graded).
type ActaRow struct {
	EnrollmentID string     `json:"enrollment_id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	Scores       []*float64 `json:"scores"`
	Average      *float64   `json:"average"`
}

// SectionActa is the section-level transcript: a rubric-by-student matrix.
type SectionActa struct {
	SectionID   string       `json:"section_id"`
	SectionName string       `json:"section_name"`
	CourseID    string       `json:"course_id"`
	CourseCode  string       `json:"course_code"`
	Year        int          `json:"year"`
	Columns     []ActaColumn `json:"columns"`
	Rows        []ActaRow    `json:"rows"`
}

// RubricContribution details how one graded rubric contributes to an average.
type RubricContribution struct {
	RubricID     string           `json:"rubric_id"`
	Name         string           `json:"name"`
	Category     grading.Category `json:"category"`
	Weight       float64          `json:"weight"`
	Score        float64          `json:"score"`
	Contribution float64          `json:"contribution"` // score * weight
}

// HistoryEntry is one past enrollment with its average and contribution detail.
type HistoryEntry struct {
	CourseAverage
	SectionID     string               `json:"section_id"`
	SectionName   string               `json:"section_name"`
	Contributions []RubricContribution `json:"contributions"`
}

// StudentHistory lists a student's enrollments, most recent school-year first.
type StudentHistory struct {
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name"`
	Entries     []HistoryEntry `json:"entries"`
}
