package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/kundi/apps/api/echo"
	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/marks"
	"github.com/trezcool/kundi/core/supervisor"
	emailsvc "github.com/trezcool/kundi/services/email"
	logsvc "github.com/trezcool/kundi/services/logger"
	dummydb "github.com/trezcool/kundi/storage/database/dummy"
)

var (
	conf *core.Config
	app  Server

	errMissingToken = httpErr{Error: "No token, authorization denied"}
	errInvalidToken = httpErr{Error: "Token is not valid"}
)

// setup builds a Server over a fresh in-memory DB; each test starts empty.
func setup(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}

	grpRepo := dummydb.NewGroupRepository(db)
	supRepo := dummydb.NewSupervisorRepository(db)
	mrkRepo := dummydb.NewMarksRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	group.InitValidators(validate, translator)
	supervisor.InitValidators(validate, translator)

	app = NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			GroupSvc:      group.NewService(db, grpRepo),
			SupervisorSvc: supervisor.NewService(supRepo),
			AssignSvc:     assign.NewService(grpRepo, supRepo, mailSvc, logger),
			MarksSvc:      marks.NewService(mrkRepo),
			Validate:      validate,
			Translator:    translator,
		},
	)
	return db
}

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, sup supervisor.Supervisor) string {
	claims := GetSupervisorClaims(sup, conf)
	token, err := GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createSupervisor(t *testing.T, db *dummydb.DB, empID string, maxGroups, currentGroups int) supervisor.Supervisor {
	ctx := context.Background()
	sup := supervisor.Supervisor{
		EmpID:     empID,
		Name:      "Supervisor " + empID,
		Email:     empID + "@test.cd",
		MaxGroups: maxGroups,
		CreatedAt: time.Now().UTC(),
	}
	if err := sup.SetPassword("s3cure-Enough"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	if err := dummydb.NewSupervisorRepository(db).CreateSupervisor(ctx, sup); err != nil {
		t.Fatalf("CreateSupervisor(): %v", err)
	}

	for i := 0; i < currentGroups; i++ {
		id := registerGroup(t, db, "G-"+empID+"-"+string(rune('a'+i)))
		if _, err := dummydb.NewGroupRepository(db).AssignSupervisor(ctx, id, empID); err != nil {
			t.Fatalf("AssignSupervisor(): %v", err)
		}
	}
	return sup
}

var regNoSeq int

// registerGroup registers a full 5-member group through the service so that
// students, memberships and marks rows all exist.
func registerGroup(t *testing.T, db *dummydb.DB, name string) string {
	ng := group.NewGroup{GroupName: name}
	for i := 0; i < group.GroupSize; i++ {
		regNoSeq++
		ng.Members = append(ng.Members, group.NewMember{
			Name:  "Student " + name,
			RegNo: "reg" + strconv.Itoa(regNoSeq),
			CGPA:  7.5,
		})
	}
	svc := group.NewService(db, dummydb.NewGroupRepository(db))
	grp, err := svc.Register(context.Background(), ng)
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}
	return grp.ID
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
