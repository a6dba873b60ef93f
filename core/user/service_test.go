package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
	"github.com/codebox/didyoudoit/services/email"
	"github.com/codebox/didyoudoit/storage/database/dummy"
	"github.com/codebox/didyoudoit/tests"
)

func setup(t *testing.T) (*dummydb.DB, user.Service) {
	t.Helper()
	db := testutil.OpenDB()
	conf := &core.Config{
		AppName:         "DidYouDoIt",
		EmailDomain:     ".edu",
		FromEmail:       "noreply@localhost",
		FrontendBaseURL: "http://localhost:3000",
	}
	svc := user.NewService(dummydb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
	return db, svc
}

func Test_service_Authenticate(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	// the institutional suffix is enforced before anything is created
	_, err := svc.Authenticate(ctx, "alice@gmail.com", "Alice", "")
	verr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok {
		t.Fatalf("Authenticate() error = %T, want *core.ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "email" {
		t.Errorf("Fields = %+v, want one error on email", verr.Fields)
	}

	// first login auto-creates the account
	usr, err := svc.Authenticate(ctx, " Alice@Test.EDU ", "", "")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if usr.Email != "alice@test.edu" {
		t.Errorf("Email = %q, want cleaned %q", usr.Email, "alice@test.edu")
	}
	if usr.FullName != "alice" {
		t.Errorf("FullName = %q, want the email local part", usr.FullName)
	}
	if usr.Role != user.RoleDeveloper {
		t.Errorf("Role = %q, want default %q", usr.Role, user.RoleDeveloper)
	}
	if usr.Status != user.StatusActive {
		t.Errorf("Status = %q, want %q", usr.Status, user.StatusActive)
	}
	if usr.LastLogin.IsZero() {
		t.Error("LastLogin not set")
	}

	// an invalid requested role falls back to developer
	usr, err = svc.Authenticate(ctx, "bob@test.edu", "Bob", "SUPERUSER")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if usr.Role != user.RoleDeveloper {
		t.Errorf("Role = %q, want default %q", usr.Role, user.RoleDeveloper)
	}

	// a valid requested role is honored on first login only
	usr, err = svc.Authenticate(ctx, "carol@test.edu", "Carol", user.RoleTechLead)
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if usr.Role != user.RoleTechLead {
		t.Errorf("Role = %q, want %q", usr.Role, user.RoleTechLead)
	}

	// re-login never changes the stored role
	firstLogin := usr.LastLogin
	usr, err = svc.Authenticate(ctx, "carol@test.edu", "Carol", user.RoleBoardAdmin)
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if usr.Role != user.RoleTechLead {
		t.Errorf("Role = %q changed on re-login, want %q", usr.Role, user.RoleTechLead)
	}
	if usr.LastLogin.Before(firstLogin) {
		t.Error("LastLogin not refreshed on re-login")
	}
}

func Test_service_BulkDelete_filtersRequester(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	usrRepo := dummydb.NewUserRepository(db)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.edu", user.RoleDeveloper, user.StatusActive, false)

	// the requester is dropped from the list, the rest goes
	n, err := svc.BulkDelete(ctx, admin.ID, alice.ID, admin.ID, bob.ID)
	if err != nil {
		t.Fatalf("BulkDelete() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("BulkDelete() = %d, want 2", n)
	}
	if _, err := svc.GetByID(ctx, admin.ID); err != nil {
		t.Errorf("requester was deleted: %v", err)
	}
	if _, err := svc.GetByID(ctx, alice.ID); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("GetByID(alice) error = %v, want ErrNotFound", err)
	}

	// requester-only list is a no-op
	n, err = svc.BulkDelete(ctx, admin.ID, admin.ID)
	if err != nil {
		t.Fatalf("BulkDelete() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("BulkDelete() = %d, want 0", n)
	}
}

func Test_service_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	usrRepo := dummydb.NewUserRepository(db)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)

	err := svc.CheckUniqueness(ctx, "alice@test.edu")
	if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
		t.Errorf("CheckUniqueness() error = %T, want *core.ConflictError", err)
	}
	if err := svc.CheckUniqueness(ctx, "alice@test.edu", alice); err != nil {
		t.Errorf("CheckUniqueness(excluded) failed: %v", err)
	}
	if err := svc.CheckUniqueness(ctx, "bob@test.edu"); err != nil {
		t.Errorf("CheckUniqueness() failed: %v", err)
	}
}
