package assignment

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
)

var (
	admin         = user.User{ID: "admin", Role: user.RoleBoardAdmin, Status: user.StatusActive}
	techLead      = user.User{ID: "lead", Role: user.RoleTechLead, Status: user.StatusActive}
	productMgr    = user.User{ID: "pm", Role: user.RoleProductManager, Status: user.StatusActive}
	developer     = user.User{ID: "dev", Role: user.RoleDeveloper, Status: user.StatusActive}
	alumniLead    = user.User{ID: "alumni", Role: user.RoleTechLead, Status: user.StatusAlumni}
	archivedAdmin = user.User{ID: "exadmin", Role: user.RoleBoardAdmin, Status: user.StatusArchived}
)

func checkReason(t *testing.T, err error, wantReason string) {
	t.Helper()
	if wantReason == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected permission error %q, got nil", wantReason)
	}
	perr, ok := errors.Cause(err).(*core.PermissionError)
	if !ok {
		t.Fatalf("expected *core.PermissionError, got %T", err)
	}
	if perr.Reason != wantReason {
		t.Errorf("Reason = %q, want %q", perr.Reason, wantReason)
	}
}

func Test_CanCreate(t *testing.T) {
	tests := []struct {
		name           string
		usr            user.User
		targetGroupIDs []string
		memberGroupIDs []string
		wantReason     string
	}{
		{name: "admin global", usr: admin, wantReason: ""},
		{name: "admin any groups", usr: admin, targetGroupIDs: []string{"gA", "gZ"}, wantReason: ""},
		{name: "alumni denied", usr: alumniLead, targetGroupIDs: []string{"gA"}, wantReason: reasonInactiveUser},
		{name: "archived admin denied", usr: archivedAdmin, wantReason: reasonInactiveUser},
		{name: "developer denied", usr: developer, targetGroupIDs: []string{"gA"}, memberGroupIDs: []string{"gA"}, wantReason: reasonDeveloperCannotManage},
		{name: "lead global denied", usr: techLead, wantReason: reasonAtLeastOneGroup},
		{name: "lead own groups", usr: techLead, targetGroupIDs: []string{"gA", "gB"}, memberGroupIDs: []string{"gA", "gB", "gC"}, wantReason: ""},
		{name: "lead with a foreign group denied", usr: techLead, targetGroupIDs: []string{"gA", "gC"}, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonUnmanagedGroups},
		{name: "product manager own group", usr: productMgr, targetGroupIDs: []string{"gA"}, memberGroupIDs: []string{"gA"}, wantReason: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkReason(t, CanCreate(tt.usr, tt.targetGroupIDs, tt.memberGroupIDs), tt.wantReason)
		})
	}
}

func Test_CanModify(t *testing.T) {
	targeted := Assignment{ID: "a1", Groups: []TargetGroup{{ID: "gA"}, {ID: "gB"}}}

	tests := []struct {
		name           string
		usr            user.User
		a              Assignment
		newGroupIDs    []string
		memberGroupIDs []string
		wantReason     string
	}{
		{name: "nil retarget falls back to current targets", usr: techLead, a: targeted, memberGroupIDs: []string{"gA", "gB"}, wantReason: ""},
		{name: "nil retarget, current target unmanaged", usr: techLead, a: targeted, memberGroupIDs: []string{"gA"}, wantReason: reasonUnmanagedGroups},
		{name: "explicit retarget checked", usr: techLead, a: targeted, newGroupIDs: []string{"gC"}, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonUnmanagedGroups},
		{name: "lead cannot make it global", usr: techLead, a: targeted, newGroupIDs: []string{}, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonAtLeastOneGroup},
		{name: "admin can make it global", usr: admin, a: targeted, newGroupIDs: []string{}, wantReason: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkReason(t, CanModify(tt.usr, tt.a, tt.newGroupIDs, tt.memberGroupIDs), tt.wantReason)
		})
	}
}

func Test_CanDelete(t *testing.T) {
	global := Assignment{ID: "a-global"}
	targeted := Assignment{ID: "a1", Groups: []TargetGroup{{ID: "gA"}, {ID: "gB"}}}

	tests := []struct {
		name           string
		usr            user.User
		a              Assignment
		memberGroupIDs []string
		wantReason     string
	}{
		{name: "admin deletes global", usr: admin, a: global, wantReason: ""},
		{name: "lead cannot delete global", usr: techLead, a: global, memberGroupIDs: []string{"gA"}, wantReason: reasonGlobalDeleteAdminOnly},
		{name: "lead deletes fully managed", usr: techLead, a: targeted, memberGroupIDs: []string{"gA", "gB", "gC"}, wantReason: ""},
		{name: "partial management is not enough", usr: techLead, a: targeted, memberGroupIDs: []string{"gA"}, wantReason: reasonUnmanagedGroups},
		{name: "developer denied", usr: developer, a: targeted, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonDeveloperCannotManage},
		{name: "alumni denied", usr: alumniLead, a: targeted, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonInactiveUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkReason(t, CanDelete(tt.usr, tt.a, tt.memberGroupIDs), tt.wantReason)
		})
	}
}

func Test_CanViewStats(t *testing.T) {
	global := Assignment{ID: "a-global"}
	targeted := Assignment{ID: "a1", Groups: []TargetGroup{{ID: "gA"}, {ID: "gB"}}}

	tests := []struct {
		name           string
		usr            user.User
		a              Assignment
		memberGroupIDs []string
		wantReason     string
	}{
		{name: "admin views global stats", usr: admin, a: global, wantReason: ""},
		{name: "lead cannot view global stats", usr: techLead, a: global, memberGroupIDs: []string{"gA"}, wantReason: reasonGlobalStatsAdminOnly},
		{name: "one managed target is enough", usr: techLead, a: targeted, memberGroupIDs: []string{"gB"}, wantReason: ""},
		{name: "no managed target denied", usr: techLead, a: targeted, memberGroupIDs: []string{"gC"}, wantReason: reasonNoManagedTarget},
		{name: "developer denied", usr: developer, a: targeted, memberGroupIDs: []string{"gA", "gB"}, wantReason: reasonDeveloperCannotManage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkReason(t, CanViewStats(tt.usr, tt.a, tt.memberGroupIDs), tt.wantReason)
		})
	}
}
