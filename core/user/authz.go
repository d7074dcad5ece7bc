package user

import "github.com/ChristopherDeLaRosa/academia/core"

// Caller is the already-authenticated identity attached to a request.
type Caller struct {
	ID        string
	Role      Role
	StudentID string // set only for RoleStudent callers
}

// CanViewStudent is the capability check applied before any per-student
// report is returned. Students may only read their own records; any other
// recognized role may read any student. Pure: no lookups, no side effects.
func (c Caller) CanViewStudent(studentID string) error {
	if !c.Role.IsValid() {
		return core.NewForbiddenError("unrecognized role")
	}
	if c.Role == RoleStudent {
		target := c.StudentID
		if target == "" {
			target = c.ID
		}
		if target != studentID {
			return core.NewForbiddenError("students may only view their own records")
		}
	}
	return nil
}

// CanManageGrades reports whether the caller may mutate rubrics and grades.
func (c Caller) CanManageGrades() error {
	if c.Role == RoleAdmin || c.Role == RoleTeacher {
		return nil
	}
	return core.NewForbiddenError("permission denied")
}
