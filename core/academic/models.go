package academic

import "time"

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Course struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	GradeLevel string    `json:"grade_level"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Section is one class group of a course for a given school year.
type Section struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Enrollment links one student to one course, section and school year.
// Relations are id-based only; entities carry no back-references.
type Enrollment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	SectionID string    `json:"section_id"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"` // UTC
}
