package assignment

import (
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core/user"
)

func Test_IsVisible(t *testing.T) {
	activeDev := user.User{ID: "dev", Role: user.RoleDeveloper, Status: user.StatusActive}
	trainee := user.User{ID: "trainee", Role: user.RoleDeveloper, Status: user.StatusActive, IsTrainee: true}
	lead := user.User{ID: "lead", Role: user.RoleTechLead, Status: user.StatusActive}
	admin := user.User{ID: "admin", Role: user.RoleBoardAdmin, Status: user.StatusActive}
	alumni := user.User{ID: "alumni", Role: user.RoleTechLead, Status: user.StatusAlumni}
	archivedAdmin := user.User{ID: "exadmin", Role: user.RoleBoardAdmin, Status: user.StatusArchived}

	global := Assignment{ID: "a-global", Title: "Security training"}
	backend := Assignment{ID: "a-backend", Groups: []TargetGroup{
		{ID: "g-backend", Name: "Backend"},
	}}
	homework := Assignment{ID: "a-hw", Groups: []TargetGroup{
		{ID: "g-bootcamp", Name: "Bootcamp", CohortID: null.StringFrom("c1")},
	}}
	mixed := Assignment{ID: "a-mixed", Groups: []TargetGroup{
		{ID: "g-backend", Name: "Backend"},
		{ID: "g-bootcamp", Name: "Bootcamp", CohortID: null.StringFrom("c1")},
	}}

	tests := []struct {
		name           string
		usr            user.User
		a              Assignment
		memberGroupIDs []string
		want           bool
	}{
		{name: "global visible to anyone active", usr: activeDev, a: global, want: true},
		{name: "global visible to non-member lead", usr: lead, a: global, want: true},
		{name: "alumni sees nothing, even global", usr: alumni, a: global, want: false},
		{name: "archived admin sees nothing", usr: archivedAdmin, a: global, want: false},
		{name: "admin sees everything", usr: admin, a: homework, want: true},
		{name: "member sees targeted", usr: activeDev, a: backend, memberGroupIDs: []string{"g-backend"}, want: true},
		{name: "non-member does not see targeted", usr: activeDev, a: backend, memberGroupIDs: []string{"g-other"}, want: false},
		{name: "trainee member sees cohort homework", usr: trainee, a: homework, memberGroupIDs: []string{"g-bootcamp"}, want: true},
		{name: "non-trainee mentor does not see cohort homework", usr: lead, a: homework, memberGroupIDs: []string{"g-bootcamp"}, want: false},
		{name: "cohort link in the mix still hides from non-trainee", usr: activeDev, a: mixed, memberGroupIDs: []string{"g-backend"}, want: false},
		{name: "trainee sees the mix", usr: trainee, a: mixed, memberGroupIDs: []string{"g-bootcamp"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.usr, tt.a, tt.memberGroupIDs); got != tt.want {
				t.Errorf("IsVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_FilterVisible(t *testing.T) {
	lead := user.User{ID: "lead", Role: user.RoleTechLead, Status: user.StatusActive}

	global := Assignment{ID: "a-global"}
	backend := Assignment{ID: "a-backend", Groups: []TargetGroup{{ID: "g-backend"}}}
	homework := Assignment{ID: "a-hw", Groups: []TargetGroup{
		{ID: "g-bootcamp", CohortID: null.StringFrom("c1")},
	}}

	got := FilterVisible(lead, []Assignment{global, backend, homework}, []string{"g-backend", "g-bootcamp"})
	if len(got) != 2 {
		t.Fatalf("FilterVisible() returned %d assignments, want 2", len(got))
	}
	if got[0].ID != "a-global" || got[1].ID != "a-backend" {
		t.Errorf("FilterVisible() = [%s %s], want [a-global a-backend]", got[0].ID, got[1].ID)
	}
}
