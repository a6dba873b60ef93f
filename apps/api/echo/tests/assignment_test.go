package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/volatiletech/null/v8"

	echoapi "github.com/codebox/didyoudoit/apps/api/echo"
	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/user"
	"github.com/codebox/didyoudoit/tests"
)

func Test_assignmentApi_query(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	alumni := testutil.CreateUser(t, usrRepo, "Old Timer", "old@test.edu", user.RoleTechLead, user.StatusAlumni, false)

	bootcamp := testutil.CreateCohort(t, cohRepo, "Bootcamp 2026", true)

	trainee := testutil.CreateUser(t, usrRepo, "Tina", "tina@test.edu", user.RoleDeveloper, user.StatusActive, true)
	mentor := testutil.CreateUser(t, usrRepo, "Mona", "mona@test.edu", user.RoleTechLead, user.StatusActive, false)
	outsider := testutil.CreateUser(t, usrRepo, "Oscar", "oscar@test.edu", user.RoleDeveloper, user.StatusActive, false)

	cohortGrp := testutil.CreateGroup(t, grpRepo, "Bootcamp", null.StringFrom(bootcamp.ID), trainee.ID, mentor.ID)
	backend := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, mentor.ID)

	global := testutil.CreateAssignment(t, asgRepo, "Handbook", assignment.TypeLink)
	homework := testutil.CreateAssignment(t, asgRepo, "HW1", assignment.TypePDF, cohortGrp.ID)
	docs := testutil.CreateAssignment(t, asgRepo, "Backend docs", assignment.TypeDocument, backend.ID)

	tests := []struct {
		name    string
		usr     user.User
		wantIDs []string
	}{
		{name: "admin sees everything", usr: admin, wantIDs: []string{global.ID, homework.ID, docs.ID}},
		{name: "alumni sees nothing", usr: alumni, wantIDs: []string{}},
		{name: "trainee sees their homework", usr: trainee, wantIDs: []string{global.ID, homework.ID}},
		{name: "mentor never sees cohort homework", usr: mentor, wantIDs: []string{global.ID, docs.ID}},
		{name: "outsider sees only global", usr: outsider, wantIDs: []string{global.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", getToken(t, tt.usr))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
			}
			got := assignmentIDs(t, rec)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d assignments, want %d (%s)", len(got), len(tt.wantIDs), rec.Body.String())
			}
			for _, id := range tt.wantIDs {
				if _, ok := got[id]; !ok {
					t.Errorf("assignment %s missing from the feed", id)
				}
			}
		})
	}
}

func Test_assignmentApi_create(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	dev := testutil.CreateUser(t, usrRepo, "Dave", "dave@test.edu", user.RoleDeveloper, user.StatusActive, false)
	lead := testutil.CreateUser(t, usrRepo, "Lena", "lena@test.edu", user.RoleTechLead, user.StatusActive, false)

	owned := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, lead.ID)
	foreign := testutil.CreateGroup(t, grpRepo, "Frontend", null.String{})

	newAsg := func(groupIDs ...string) []byte {
		return marshallObj(t, assignment.NewAssignment{
			Title:      "Watch this",
			Type:       assignment.TypeVideo,
			ContentURL: "https://videos.example.com/1",
			GroupIDs:   groupIDs,
		})
	}

	tests := []httpTest{
		{name: "auth required", body: newAsg(), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "invalid type rejected", token: getToken(t, admin),
			body:     marshallObj(t, assignment.NewAssignment{Title: "x", Type: "PODCAST", ContentURL: "https://x.example.com"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown group rejected", token: getToken(t, admin), body: newAsg("nope"),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"group_ids": "one or more target groups do not exist"}),
		},
		{
			name: "developer denied", token: getToken(t, dev), body: newAsg(owned.ID),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "developers cannot manage assignments"}),
		},
		{
			name: "lead cannot go global", token: getToken(t, lead), body: newAsg(),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "select at least one group; only admins can create global assignments"}),
		},
		{
			name: "lead cannot target foreign groups", token: getToken(t, lead), body: newAsg(owned.ID, foreign.ID),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "assigned to groups you do not manage"}),
		},
		{name: "lead targets own group", token: getToken(t, lead), body: newAsg(owned.ID), wantCode: http.StatusCreated},
		{name: "admin goes global", token: getToken(t, admin), body: newAsg(), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_retrieveHiddenIsNotFound(t *testing.T) {
	testutil.ResetDB(t, db)

	outsider := testutil.CreateUser(t, usrRepo, "Oscar", "oscar@test.edu", user.RoleDeveloper, user.StatusActive, false)
	backend := testutil.CreateGroup(t, grpRepo, "Backend", null.String{})
	hidden := testutil.CreateAssignment(t, asgRepo, "Backend docs", assignment.TypeDocument, backend.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+hidden.ID, getToken(t, outsider))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "assignment not found"}),
	}, rec)
}

func Test_assignmentApi_deleteRules(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	lead := testutil.CreateUser(t, usrRepo, "Lena", "lena@test.edu", user.RoleTechLead, user.StatusActive, false)

	owned := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, lead.ID)
	foreign := testutil.CreateGroup(t, grpRepo, "Frontend", null.String{})

	global := testutil.CreateAssignment(t, asgRepo, "Handbook", assignment.TypeLink)
	partlyOwned := testutil.CreateAssignment(t, asgRepo, "Crossteam", assignment.TypePDF, owned.ID, foreign.ID)
	fullyOwned := testutil.CreateAssignment(t, asgRepo, "Backend docs", assignment.TypeDocument, owned.ID)

	tests := []httpTest{
		{
			name: "lead cannot delete global", path: "/v1/assignments/" + global.ID, token: getToken(t, lead),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "only admins can delete global assignments"}),
		},
		{
			name: "partial ownership is not enough", path: "/v1/assignments/" + partlyOwned.ID, token: getToken(t, lead),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "assigned to groups you do not manage"}),
		},
		{name: "lead deletes fully owned", path: "/v1/assignments/" + fullyOwned.ID, token: getToken(t, lead), wantCode: http.StatusNoContent},
		{name: "admin deletes global", path: "/v1/assignments/" + global.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_completionToggle(t *testing.T) {
	testutil.ResetDB(t, db)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)
	hw := testutil.CreateAssignment(t, asgRepo, "Handbook", assignment.TypeLink)
	token := getToken(t, alice)

	toggle := func(t *testing.T, want bool) {
		t.Helper()
		body := marshallObj(t, echoapi.ToggleCompletionRequest{AssignmentID: hw.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/completions/toggle", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.ToggleCompletionResponse{Completed: want}),
		}, rec)
	}

	toggle(t, true)
	toggle(t, false)
	toggle(t, true)

	// unknown assignment is a 404
	body := marshallObj(t, echoapi.ToggleCompletionRequest{AssignmentID: "nope"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/completions/toggle", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// the completion list reflects the final state
	req, rec = newAuthRequest(http.MethodGet, "/v1/completions", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var completions []assignment.Completion
	if err := json.Unmarshal(rec.Body.Bytes(), &completions); err != nil {
		t.Fatalf("unmarshalling completions: %v", err)
	}
	if len(completions) != 1 || completions[0].AssignmentID != hw.ID {
		t.Errorf("completions = %+v, want exactly one for %s", completions, hw.ID)
	}
}

func Test_assignmentApi_stats(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	lead := testutil.CreateUser(t, usrRepo, "Lena", "lena@test.edu", user.RoleTechLead, user.StatusActive, false)
	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.edu", user.RoleDeveloper, user.StatusActive, false)

	backend := testutil.CreateGroup(t, grpRepo, "Backend", null.String{}, lead.ID, alice.ID)
	global := testutil.CreateAssignment(t, asgRepo, "Handbook", assignment.TypeLink)
	docs := testutil.CreateAssignment(t, asgRepo, "Backend docs", assignment.TypeDocument, backend.ID)

	// alice did her reading
	req, rec := newAuthRequest(http.MethodPost, "/v1/completions/toggle", getToken(t, alice),
		marshallObj(t, echoapi.ToggleCompletionRequest{AssignmentID: docs.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed: %v (%s)", rec.Code, rec.Body.String())
	}

	// global stats are admin-only
	req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+global.ID+"/stats", getToken(t, lead))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marshallObj(t, httpErr{Error: "only admins can view stats for global assignments"}),
	}, rec)

	// a lead reads stats for their group's assignment
	req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+docs.ID+"/stats", getToken(t, lead))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var stats assignment.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshalling stats: %v", err)
	}
	if stats.TotalAssigned != 2 || stats.TotalCompleted != 1 {
		t.Errorf("stats = %d/%d, want 1 of 2 completed", stats.TotalCompleted, stats.TotalAssigned)
	}
	if stats.CompletionRate != 50 {
		t.Errorf("CompletionRate = %f, want 50", stats.CompletionRate)
	}

	// so can an admin
	req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+docs.ID+"/stats", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}
