// Package inmemdb keeps the stand-in backend data in memory.
package inmemdb

import (
	"sync"

	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/student"
)

type (
	DB struct {
		account *accountTable
		student *studentTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}

	// studentTable also holds the subjects: enrollments refer to subjects by name.
	studentTable struct {
		sync.RWMutex
		table    map[string]*student.Student
		subjects map[string]*student.Subject
	}
)

func Open() (*DB, error) {
	db := &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
		student: &studentTable{
			table:    make(map[string]*student.Student),
			subjects: make(map[string]*student.Subject),
		},
	}
	return db, nil
}
