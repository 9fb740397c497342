package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/kundi/apps/api/echo"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/marks"
	"github.com/trezcool/kundi/core/supervisor"
	dummydb "github.com/trezcool/kundi/storage/database/dummy"
)

func Test_supervisorApi_register(t *testing.T) {
	setup(t)

	body := marchallObj(t, supervisor.NewSupervisor{
		EmpID:    "emp42",
		Name:     "Jane Banda",
		Email:    "jane@test.cd",
		Password: "s3cure-Enough",
	})
	req, rec := newRequest(http.MethodPost, "/api/supervisors/register", body)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sup supervisor.Supervisor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sup))
	assert.Equal(t, "emp42", sup.EmpID)
	assert.Equal(t, supervisor.DefaultMaxGroups, sup.MaxGroups)
	assert.NotContains(t, rec.Body.String(), "password") // hash never serialized

	// duplicate emp_id/email is rejected
	req, rec = newRequest(http.MethodPost, "/api/supervisors/register", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func Test_supervisorApi_login(t *testing.T) {
	db := setup(t)
	sup := createSupervisor(t, db, "emp42", 5, 0)

	tests := []httpTest{
		{
			name: "ok", wantCode: http.StatusOK,
			body: marchallObj(t, supervisor.Login{Email: sup.Email, Password: "s3cure-Enough"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, supervisor.Login{Email: sup.Email, Password: "nope-nope"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid email or password"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, supervisor.Login{Email: "ghost@test.cd", Password: "s3cure-Enough"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid email or password"}),
		},
		{
			name: "missing fields", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, supervisor.Login{}),
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/supervisors/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var resp struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Token)

			// token subject carries the employee ID
			claims := new(Claims)
			_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(conf.SecretKey), nil
			})
			require.NoError(t, err)
			assert.Equal(t, sup.EmpID, claims.Subject)
			assert.Equal(t, sup.Name, claims.Name)
		})
	}
}

func Test_supervisorApi_authRequired(t *testing.T) {
	setup(t)

	paths := []httpTest{
		{method: http.MethodGet, path: "/api/supervisors/my-groups"},
		{method: http.MethodPut, path: "/api/supervisors/marks"},
		{method: http.MethodPut, path: "/api/supervisors/preferences"},
	}
	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

			req, rec = newAuthRequest(tt.method, tt.path, "not.a.token")
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)}, rec)
		})
	}
}

func Test_supervisorApi_myGroups(t *testing.T) {
	db := setup(t)
	ctx := context.Background()

	sup := createSupervisor(t, db, "emp42", 5, 2)
	other := createSupervisor(t, db, "emp43", 5, 1)
	registerGroup(t, db, "Unassigned") // never listed

	req, rec := newAuthRequest(http.MethodGet, "/api/supervisors/my-groups", getToken(t, sup))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var groups []group.AssignedGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
	for _, grp := range groups {
		assert.Len(t, grp.Members, 5)
	}

	// a supervisor with nothing assigned gets an empty list, not null
	require.NoError(t, dummydb.NewGroupRepository(db).UnassignGroup(ctx, mustFirstGroup(t, db, other.EmpID)))
	req, rec = newAuthRequest(http.MethodGet, "/api/supervisors/my-groups", getToken(t, other))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func mustFirstGroup(t *testing.T, db *dummydb.DB, empID string) string {
	groups, err := dummydb.NewGroupRepository(db).QueryGroupsBySupervisor(context.Background(), empID)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	return groups[0].ID
}

func Test_supervisorApi_upsertMark(t *testing.T) {
	db := setup(t)
	ctx := context.Background()

	sup := createSupervisor(t, db, "emp42", 5, 1)
	groupID := mustFirstGroup(t, db, sup.EmpID)
	members, err := dummydb.NewGroupRepository(db).QueryGroupMembers(ctx, groupID)
	require.NoError(t, err)
	regNo := members[0].RegNo

	otherGroupID := registerGroup(t, db, "NotMine")
	token := getToken(t, sup)

	body := func(regNo, groupID string, review int, score null.Float64) []byte {
		return marchallObj(t, marks.UpsertMark{StudentRegNo: regNo, GroupID: groupID, ReviewNumber: review, Marks: score})
	}

	tests := []httpTest{
		{
			name: "ok", wantCode: http.StatusOK,
			body:     body(regNo, groupID, 2, null.Float64From(87.5)),
			wantData: marchallObj(t, map[string]string{"msg": "Marks saved successfully."}),
		},
		{
			name: "not own group", wantCode: http.StatusNotFound,
			body:     body(regNo, otherGroupID, 2, null.Float64From(50)),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "unknown group", wantCode: http.StatusNotFound,
			body:     body(regNo, "nope", 2, null.Float64From(50)),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "invalid review number", wantCode: http.StatusBadRequest,
			body:     body(regNo, groupID, 9, null.Float64From(50)),
			wantData: marchallObj(t, map[string]string{"review_number": "review_number must be 4 or less"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/api/supervisors/marks", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the recorded mark is visible on the dashboard
	members, err = dummydb.NewGroupRepository(db).QueryGroupMembers(ctx, groupID)
	require.NoError(t, err)
	for _, m := range members {
		if m.RegNo == regNo {
			assert.Equal(t, null.Float64From(87.5), m.Review2)
		}
	}
}

func Test_supervisorApi_updatePreferences(t *testing.T) {
	db := setup(t)
	sup := createSupervisor(t, db, "emp42", 5, 0)
	token := getToken(t, sup)

	req, rec := newAuthRequest(http.MethodPut, "/api/supervisors/preferences", token,
		marchallObj(t, supervisor.UpdatePreference{MaxGroups: 8}))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var load supervisor.Load
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &load))
	assert.Equal(t, 8, load.MaxGroups)

	// bounds enforced
	req, rec = newAuthRequest(http.MethodPut, "/api/supervisors/preferences", token,
		marchallObj(t, supervisor.UpdatePreference{MaxGroups: 50}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"max_groups": "max_groups must be 20 or less"}),
	}, rec)
}
