package supervisor

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kundi/core"
)

func newValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func Test_NewSupervisor_Validate_passwordPolicy(t *testing.T) {
	validate := newValidator()

	ns := func(pwd string) *NewSupervisor {
		return &NewSupervisor{
			EmpID:    "emp42",
			Name:     "Jane Banda",
			Email:    "jane@test.cd",
			Password: pwd,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "ok", pwd: "s3cure-Enough"},
		{name: "too short", pwd: "shorty", wantTag: "pwdminlen"},
		{name: "whitespace", pwd: "has a space1", wantTag: "pwdnospace"},
		{name: "all numeric", pwd: "1234567890", wantTag: "pwdnotallnum"},
		{name: "too similar to name", pwd: "JaneBanda", wantTag: "pwdtoosim"},
		{name: "too similar to email", pwd: "jane@test.cd1", wantTag: "pwdtoosim"},
		{name: "too similar to emp ID", pwd: "emp42emp42", wantTag: "pwdtoosim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ns(tt.pwd).Validate(validate, nil)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %T", err)
			require.NotEmpty(t, vErrs)
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}

func Test_NewSupervisor_Validate_empIDFormat(t *testing.T) {
	validate := newValidator()

	ns := NewSupervisor{
		EmpID:    "emp 42",
		Name:     "Jane Banda",
		Email:    "jane@test.cd",
		Password: "s3cure-Enough",
	}
	err := ns.Validate(validate, nil)
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "want validator.ValidationErrors, got %T", err)
	require.NotEmpty(t, vErrs)
	assert.Equal(t, "alphanum_", vErrs[0].Tag())
}

func Test_NewSupervisor_Validate_cleansInput(t *testing.T) {
	validate := newValidator()

	ns := NewSupervisor{
		EmpID:    "  EMP42 ",
		Name:     " Jane Banda ",
		Email:    " JANE@test.cd ",
		Password: "s3cure-Enough",
	}
	require.NoError(t, ns.Validate(validate, nil))
	assert.Equal(t, "emp42", ns.EmpID)
	assert.Equal(t, "Jane Banda", ns.Name)
	assert.Equal(t, "jane@test.cd", ns.Email)
}

func Test_Supervisor_password(t *testing.T) {
	var sup Supervisor
	require.NoError(t, sup.SetPassword("s3cure-Enough"))
	assert.NotEmpty(t, sup.PasswordHash)

	assert.NoError(t, sup.CheckPassword("s3cure-Enough"))
	assert.Error(t, sup.CheckPassword("wrong"))
}

func Test_Load_Remaining(t *testing.T) {
	assert.Equal(t, 3, Load{MaxGroups: 5, CurrentGroups: 2}.Remaining())
	assert.Equal(t, 0, Load{MaxGroups: 2, CurrentGroups: 2}.Remaining())
	// capacity lowered below current assignments
	assert.Equal(t, 0, Load{MaxGroups: 1, CurrentGroups: 3}.Remaining())
}
