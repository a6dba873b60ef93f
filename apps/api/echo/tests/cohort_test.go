package tests

import (
	"net/http"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core/cohort"
	"github.com/codebox/didyoudoit/core/user"
	"github.com/codebox/didyoudoit/tests"
)

func Test_cohortApi_create(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	dev := testutil.CreateUser(t, usrRepo, "Dave", "dave@test.edu", user.RoleDeveloper, user.StatusActive, false)
	testutil.CreateCohort(t, cohRepo, "Bootcamp 2026", true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "admin required", token: getToken(t, dev),
			body:     marshallObj(t, cohort.NewCohort{Name: "Bootcamp 2027"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "name required", token: getToken(t, admin), body: marshallObj(t, cohort.NewCohort{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate name conflicts", token: getToken(t, admin),
			body:     marshallObj(t, cohort.NewCohort{Name: "Bootcamp 2026"}),
			wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: "a cohort with this name already exists"}),
		},
		{
			name: "created", token: getToken(t, admin),
			body:     marshallObj(t, cohort.NewCohort{Name: "Bootcamp 2027"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/cohorts", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_cohortApi_destroy(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Zora", "zora@test.edu", user.RoleBoardAdmin, user.StatusActive, false)
	bootcamp := testutil.CreateCohort(t, cohRepo, "Bootcamp 2026", true)
	owned := testutil.CreateGroup(t, grpRepo, "Bootcamp", null.StringFrom(bootcamp.ID))
	token := getToken(t, admin)

	// a cohort still owning groups is protected
	req, rec := newAuthRequest(http.MethodDelete, "/v1/cohorts/"+bootcamp.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusConflict, rec.Body.String())
	}

	// drop the group, then the cohort goes
	req, rec = newAuthRequest(http.MethodDelete, "/v1/groups/"+owned.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/cohorts/"+bootcamp.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	// and is then truly gone
	req, rec = newAuthRequest(http.MethodDelete, "/v1/cohorts/"+bootcamp.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "cohort not found"}),
	}, rec)
}
