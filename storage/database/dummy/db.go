package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/marks"
	"github.com/trezcool/kundi/core/supervisor"
)

// DB is an in-memory stand-in for Postgres, for tests. The dummy repositories
// never run SQL: the core.DB executor methods are no-ops and transactions are
// fake (every write is applied immediately).
type DB struct {
	sync.RWMutex
	supervisors map[string]*supervisor.Supervisor
	students    map[string]*group.Student
	groups      map[string]*group.Group
	members     map[string][]string // group_id -> reg_nos
	marks       map[string]*marks.Mark
}

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		supervisors: make(map[string]*supervisor.Supervisor),
		students:    make(map[string]*group.Student),
		groups:      make(map[string]*group.Group),
		members:     make(map[string][]string),
		marks:       make(map[string]*marks.Mark),
	}
	return db, nil
}

func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) GetContext(context.Context, interface{}, string, ...interface{}) error    { return nil }
func (db *DB) SelectContext(context.Context, interface{}, string, ...interface{}) error { return nil }

func (db *DB) BeginTxx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return fakeTx{db}, nil
}

type fakeTx struct {
	*DB
}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func markKey(regNo, groupID string) string { return regNo + "|" + groupID }

// countAssigned counts groups currently assigned to empID. Callers must hold
// at least a read lock.
func (db *DB) countAssigned(empID string) int {
	var n int
	for _, grp := range db.groups {
		if grp.SupervisorID.Valid && grp.SupervisorID.String == empID {
			n++
		}
	}
	return n
}

// addMark creates an empty marks row for (regNo, groupID) if none exists.
// Callers must hold the write lock.
func (db *DB) addMark(regNo, groupID string) {
	key := markKey(regNo, groupID)
	if _, ok := db.marks[key]; !ok {
		db.marks[key] = &marks.Mark{StudentRegNo: regNo, GroupID: groupID}
	}
}
