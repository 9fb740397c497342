package supervisor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
)

var (
	// errors
	ErrNotFound         = errors.New("supervisor not found")
	ErrSupervisorExists = errors.New("a supervisor with this email or employee ID already exists")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrSupervisorExists if empID or email is taken.
		CheckUniqueness(ctx context.Context, empID, email string, exec ...core.DBExecutor) error
		CreateSupervisor(ctx context.Context, sup Supervisor, exec ...core.DBExecutor) error
		// CreateSupervisorIfAbsent inserts sup unless a supervisor with the same
		// employee ID exists; existing rows are left untouched.
		CreateSupervisorIfAbsent(ctx context.Context, sup Supervisor, exec ...core.DBExecutor) error
		GetSupervisorByEmpID(ctx context.Context, empID string, exec ...core.DBExecutor) (Supervisor, error)
		GetSupervisorByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Supervisor, error)
		// QueryLoads lists all supervisors with their current assigned-group counts.
		QueryLoads(ctx context.Context, exec ...core.DBExecutor) ([]Load, error)
		GetLoad(ctx context.Context, empID string, exec ...core.DBExecutor) (Load, error)
		UpdateMaxGroups(ctx context.Context, empID string, maxGroups int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(empID, email string) error {
	if err := svc.repo.CheckUniqueness(context.Background(), empID, email); err != nil {
		if errors.Cause(err) == ErrSupervisorExists {
			return core.NewValidationError(err)
		}
		return err
	}
	return nil
}

func (svc *Service) new(ns NewSupervisor) (Supervisor, error) {
	sup := Supervisor{
		EmpID:     ns.EmpID,
		Name:      ns.Name,
		Email:     ns.Email,
		MaxGroups: DefaultMaxGroups,
		CreatedAt: time.Now().UTC(),
	}
	if err := sup.SetPassword(ns.Password); err != nil {
		return Supervisor{}, errors.Wrap(err, "hashing password")
	}
	return sup, nil
}

func (svc *Service) Create(ctx context.Context, ns NewSupervisor) (Supervisor, error) {
	sup, err := svc.new(ns)
	if err != nil {
		return Supervisor{}, err
	}
	if err = svc.repo.CreateSupervisor(ctx, sup); err != nil {
		return Supervisor{}, errors.Wrap(err, "creating supervisor")
	}
	return sup, nil
}

// CreateIfAbsent is the admin create path: it never conflicts, an existing
// supervisor with the same employee ID is simply left as-is.
func (svc *Service) CreateIfAbsent(ctx context.Context, ns NewSupervisor) error {
	sup, err := svc.new(ns)
	if err != nil {
		return err
	}
	return errors.Wrap(svc.repo.CreateSupervisorIfAbsent(ctx, sup), "creating supervisor")
}

func (svc *Service) GetByEmpID(ctx context.Context, empID string) (Supervisor, error) {
	return svc.repo.GetSupervisorByEmpID(ctx, core.CleanString(empID, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Supervisor, error) {
	return svc.repo.GetSupervisorByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryLoads(ctx context.Context) ([]Load, error) {
	return svc.repo.QueryLoads(ctx)
}

func (svc *Service) GetLoad(ctx context.Context, empID string) (Load, error) {
	return svc.repo.GetLoad(ctx, empID)
}

// UpdateMaxGroups records a supervisor's capacity preference. Lowering it below
// the current assignment count is allowed: existing assignments stand, the
// supervisor just takes no further groups until attrition catches up.
func (svc *Service) UpdateMaxGroups(ctx context.Context, empID string, up UpdatePreference) error {
	return errors.Wrap(svc.repo.UpdateMaxGroups(ctx, empID, up.MaxGroups), "updating max groups")
}
