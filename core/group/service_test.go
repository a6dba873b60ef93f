package group_test

import (
	"context"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/group"
	"github.com/codebox/didyoudoit/core/user"
	"github.com/codebox/didyoudoit/storage/database/dummy"
	"github.com/codebox/didyoudoit/tests"
)

func setup(t *testing.T) (*dummydb.DB, group.Service) {
	t.Helper()
	db := testutil.OpenDB()
	return db, group.NewService(dummydb.NewGroupRepository(db))
}

func Test_service_Update_reconcilesMembers(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	usrRepo := dummydb.NewUserRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.edu", user.RoleDeveloper, user.StatusActive, false)
	carol := testutil.CreateUser(t, usrRepo, "Carol", "carol@test.edu", user.RoleDeveloper, user.StatusActive, false)
	g := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, alice.ID, bob.ID)

	// bob stays, alice leaves, carol joins
	updated, err := svc.Update(ctx, g.ID, group.UpdateGroup{
		Name:      g.Name,
		Status:    g.Status,
		MemberIDs: []string{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	want := []string{bob.ID, carol.ID}
	sort.Strings(want)
	got := append([]string(nil), updated.MemberIDs...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("MemberIDs = %v, want %v", updated.MemberIDs, want)
	}
	if updated.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", updated.MemberCount)
	}

	// nil MemberIDs leaves the membership untouched
	updated, err = svc.Update(ctx, g.ID, group.UpdateGroup{Name: "Backend guild", Status: g.Status})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want membership untouched", updated.MemberCount)
	}

	// an empty slice empties the group
	updated, err = svc.Update(ctx, g.ID, group.UpdateGroup{Name: g.Name, Status: g.Status, MemberIDs: []string{}})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.MemberCount != 0 {
		t.Errorf("MemberCount = %d, want 0", updated.MemberCount)
	}
}

func Test_service_QueryForUser(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	usrRepo := dummydb.NewUserRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)
	backend := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, alice.ID)
	testutil.CreateGroup(t, grpRepo, "Frontend", null.String{})

	got, err := svc.QueryForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("QueryForUser() failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != backend.ID {
		t.Errorf("QueryForUser() = %v, want only %s", got, backend.Name)
	}

	ids, err := svc.ResolveGroupIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ResolveGroupIDs() failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != backend.ID {
		t.Errorf("ResolveGroupIDs() = %v, want [%s]", ids, backend.ID)
	}
}

func Test_service_CheckCohort(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	cohRepo := dummydb.NewCohortRepository(db)

	bootcamp := testutil.CreateCohort(t, cohRepo, "Bootcamp 2026", true)

	if err := svc.CheckCohort(ctx, null.String{}); err != nil {
		t.Errorf("CheckCohort(null) failed: %v", err)
	}
	if err := svc.CheckCohort(ctx, null.StringFrom(bootcamp.ID)); err != nil {
		t.Errorf("CheckCohort() failed: %v", err)
	}

	err := svc.CheckCohort(ctx, null.StringFrom("nope"))
	verr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckCohort() error = %T, want *core.ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "cohort_id" {
		t.Errorf("Fields = %+v, want one error on cohort_id", verr.Fields)
	}
}
