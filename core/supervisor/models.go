package supervisor

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kundi/core"
)

// DefaultMaxGroups is the number of groups a supervisor oversees at most,
// unless they updated their preference.
const DefaultMaxGroups = 5

type (
	Supervisor struct {
		EmpID        string    `json:"emp_id" db:"emp_id"`
		Name         string    `json:"name" db:"name"`
		Email        string    `json:"email" db:"email"`
		PasswordHash []byte    `json:"-" db:"password_hash"`
		MaxGroups    int       `json:"max_groups" db:"max_groups"`
		CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	}

	// Load is a supervisor with their current assignment count, for capacity checks
	// and the admin listing.
	Load struct {
		EmpID         string `json:"emp_id" db:"emp_id"`
		Name          string `json:"name" db:"name"`
		Email         string `json:"email" db:"email"`
		MaxGroups     int    `json:"max_groups" db:"max_groups"`
		CurrentGroups int    `json:"current_groups" db:"current_groups"`
	}
)

func (s *Supervisor) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Supervisor) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Remaining is the number of groups this supervisor can still take.
func (l Load) Remaining() int {
	if rem := l.MaxGroups - l.CurrentGroups; rem > 0 {
		return rem
	}
	return 0
}

// NewSupervisor contains information needed to create a new Supervisor.
type NewSupervisor struct {
	EmpID    string `json:"emp_id" validate:"required,alphanum_"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ns *NewSupervisor) Validate(validate *validator.Validate, svc *Service) error {
	ns.EmpID = core.CleanString(ns.EmpID, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if svc == nil { // idempotent create paths skip the uniqueness check
		return nil
	}
	return svc.checkUniqueness(ns.EmpID, ns.Email)
}

// Login contains credentials presented on /login.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return validate.Struct(l)
}

// UpdatePreference defines what a supervisor may change about their own account.
type UpdatePreference struct {
	MaxGroups int `json:"max_groups" validate:"required,gte=1,lte=20"`
}

func (up *UpdatePreference) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}
