package inmemdb

import (
	"sync"

	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	"github.com/ChristopherDeLaRosa/academia/core/user"
)

// DB is a concurrency-safe in-memory store used by tests and local tooling.
// One lock guards all tables so cross-table reads stay consistent.
type DB struct {
	mutex sync.RWMutex

	students    map[string]*academic.Student
	courses     map[string]*academic.Course
	sections    map[string]*academic.Section
	enrollments map[string]*academic.Enrollment
	users       map[string]*user.User
	rubrics     map[string]*grading.Rubric
	entries     map[string]*grading.GradeEntry
}

func Open() *DB {
	return &DB{
		students:    make(map[string]*academic.Student),
		courses:     make(map[string]*academic.Course),
		sections:    make(map[string]*academic.Section),
		enrollments: make(map[string]*academic.Enrollment),
		users:       make(map[string]*user.User),
		rubrics:     make(map[string]*grading.Rubric),
		entries:     make(map[string]*grading.GradeEntry),
	}
}
