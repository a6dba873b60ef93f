package testutil

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/cohort"
	"github.com/codebox/didyoudoit/core/group"
	"github.com/codebox/didyoudoit/core/user"
	"github.com/codebox/didyoudoit/storage/database/dummy"
)

func OpenDB() *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		log.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func ResetDB(t *testing.T, db *dummydb.DB) {
	t.Helper()
	db.Reset()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, role, status string,
	isTrainee bool,
	groupIDs ...string,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		Email:     email,
		FullName:  name,
		Role:      role,
		Status:    status,
		IsTrainee: isTrainee,
		CreatedAt: now,
		UpdatedAt: now,
	}, groupIDs)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCohort(t *testing.T, repo cohort.Repository, name string, isActive bool) cohort.Cohort {
	t.Helper()

	now := time.Now().UTC()
	c, err := repo.CreateCohort(context.Background(), cohort.Cohort{
		Name:      name,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCohort() failed: %v", err)
	}
	return c
}

func CreateGroup(
	t *testing.T,
	repo group.Repository,
	name string,
	cohortID null.String,
	memberIDs ...string,
) group.Group {
	t.Helper()

	now := time.Now().UTC()
	g, err := repo.CreateGroup(context.Background(), group.Group{
		Name:      name,
		CohortID:  cohortID,
		Status:    group.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, memberIDs)
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return g
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	title, typ string,
	groupIDs ...string,
) assignment.Assignment {
	t.Helper()

	now := time.Now().UTC()
	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:      title,
		Type:       typ,
		ContentURL: "https://content.example.com/" + title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, groupIDs)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}
