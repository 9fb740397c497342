package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kundi/core/group"
	dummydb "github.com/trezcool/kundi/storage/database/dummy"
)

func newGroupBody(t *testing.T, name string, regNos ...string) []byte {
	ng := group.NewGroup{GroupName: name}
	for _, regNo := range regNos {
		ng.Members = append(ng.Members, group.NewMember{Name: "Student " + regNo, RegNo: regNo, CGPA: 7.5})
	}
	return marchallObj(t, ng)
}

func Test_groupApi_register(t *testing.T) {
	db := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/groups/register",
		newGroupBody(t, "Alpha", "s101", "s102", "s103", "s104", "s105"))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Msg     string `json:"msg"`
		GroupID string `json:"group_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Group registered successfully.", resp.Msg)
	assert.NotEmpty(t, resp.GroupID)

	members, err := dummydb.NewGroupRepository(db).QueryGroupMembers(req.Context(), resp.GroupID)
	require.NoError(t, err)
	assert.Len(t, members, 5)
}

func Test_groupApi_register_errors(t *testing.T) {
	setup(t)

	// s103 is already in a group
	req, rec := newRequest(http.MethodPost, "/api/groups/register",
		newGroupBody(t, "Alpha", "s101", "s102", "s103", "s104", "s105"))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tests := []httpTest{
		{
			name: "taken reg_no", wantCode: http.StatusBadRequest,
			body:     newGroupBody(t, "Beta", "s201", "s202", "s103", "s204", "s205"),
			wantData: marchallObj(t, httpErr{Error: "student with registration number s103 is already in a group"}),
		},
		{
			name: "too few members", wantCode: http.StatusBadRequest,
			body:     newGroupBody(t, "Beta", "s201", "s202"),
			wantData: marchallObj(t, map[string]string{"members": "a group must have exactly 5 members"}),
		},
		{
			name: "duplicate reg_no in group", wantCode: http.StatusBadRequest,
			body:     newGroupBody(t, "Beta", "s201", "s201", "s203", "s204", "s205"),
			wantData: marchallObj(t, map[string]string{"members": "a student cannot appear twice in the same group"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/groups/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
