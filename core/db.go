package core

import (
	"github.com/jmoiron/sqlx"
)

// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx so repository
// helpers can run inside or outside a transaction.
type DBExecutor interface {
	sqlx.ExtContext
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
