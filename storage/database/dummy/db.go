package dummydb

import (
	"sync"

	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/cohort"
	"github.com/codebox/didyoudoit/core/group"
	"github.com/codebox/didyoudoit/core/user"
)

// DB is an in-memory stand-in for the real store, used in tests. One lock
// guards all tables so cross-table operations (membership reconciliation,
// cohort cascades, referential cleanup) stay atomic like their SQL
// counterparts.
type DB struct {
	mu sync.RWMutex

	users       map[string]*user.User
	cohorts     map[string]*cohort.Cohort
	groups      map[string]*group.Group
	memberships map[string]map[string]struct{} // group id -> member user ids
	assignments map[string]*assignment.Assignment
	links       map[string]map[string]struct{} // assignment id -> target group ids
	completions map[string]*assignment.Completion
}

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[string]*user.User),
		cohorts:     make(map[string]*cohort.Cohort),
		groups:      make(map[string]*group.Group),
		memberships: make(map[string]map[string]struct{}),
		assignments: make(map[string]*assignment.Assignment),
		links:       make(map[string]map[string]struct{}),
		completions: make(map[string]*assignment.Completion),
	}
	return db, nil
}

// Reset drops every table; tests call it between cases.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users = make(map[string]*user.User)
	db.cohorts = make(map[string]*cohort.Cohort)
	db.groups = make(map[string]*group.Group)
	db.memberships = make(map[string]map[string]struct{})
	db.assignments = make(map[string]*assignment.Assignment)
	db.links = make(map[string]map[string]struct{})
	db.completions = make(map[string]*assignment.Completion)
}

func (db *DB) userGroupIDs(userID string) []string {
	ids := make([]string, 0)
	for groupID, members := range db.memberships {
		if _, ok := members[userID]; ok {
			ids = append(ids, groupID)
		}
	}
	return ids
}

func (db *DB) removeUserMemberships(userID string) {
	for _, members := range db.memberships {
		delete(members, userID)
	}
}

func (db *DB) removeUserCompletions(userID string) {
	for id, c := range db.completions {
		if c.UserID == userID {
			delete(db.completions, id)
		}
	}
}

// assignmentWithGroups assembles the aggregate the repositories return: the
// assignment row plus its target groups with their cohort linkage.
func (db *DB) assignmentWithGroups(a assignment.Assignment) assignment.Assignment {
	a.Groups = make([]assignment.TargetGroup, 0)
	for groupID := range db.links[a.ID] {
		if g, ok := db.groups[groupID]; ok {
			a.Groups = append(a.Groups, assignment.TargetGroup{
				ID:       g.ID,
				Name:     g.Name,
				CohortID: g.CohortID,
			})
		}
	}
	return a
}
