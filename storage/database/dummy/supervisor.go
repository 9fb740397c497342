package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/supervisor"
)

type supervisorRepository struct {
	db *DB
}

var (
	_ supervisor.Repository       = (*supervisorRepository)(nil)
	_ assign.SupervisorRepository = (*supervisorRepository)(nil)
)

func NewSupervisorRepository(db *DB) *supervisorRepository {
	return &supervisorRepository{db: db}
}

func (repo *supervisorRepository) CheckUniqueness(ctx context.Context, empID, email string, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if _, ok := repo.db.supervisors[empID]; ok {
		return supervisor.ErrSupervisorExists
	}
	for _, sup := range repo.db.supervisors {
		if sup.Email == email {
			return supervisor.ErrSupervisorExists
		}
	}
	return nil
}

func (repo *supervisorRepository) CreateSupervisor(ctx context.Context, sup supervisor.Supervisor, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.supervisors[sup.EmpID] = &sup
	return nil
}

func (repo *supervisorRepository) CreateSupervisorIfAbsent(ctx context.Context, sup supervisor.Supervisor, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.supervisors[sup.EmpID]; ok {
		return nil
	}
	repo.db.supervisors[sup.EmpID] = &sup
	return nil
}

func (repo *supervisorRepository) GetSupervisorByEmpID(ctx context.Context, empID string, exec ...core.DBExecutor) (supervisor.Supervisor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sup, ok := repo.db.supervisors[empID]; ok {
		return *sup, nil
	}
	return supervisor.Supervisor{}, supervisor.ErrNotFound
}

func (repo *supervisorRepository) GetSupervisorByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (supervisor.Supervisor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sup := range repo.db.supervisors {
		if sup.Email == email {
			return *sup, nil
		}
	}
	return supervisor.Supervisor{}, supervisor.ErrNotFound
}

func (repo *supervisorRepository) QueryLoads(ctx context.Context, exec ...core.DBExecutor) ([]supervisor.Load, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	loads := make([]supervisor.Load, 0, len(repo.db.supervisors))
	for _, sup := range repo.db.supervisors {
		loads = append(loads, repo.load(sup))
	}
	sort.Slice(loads, func(i, j int) bool { return loads[i].Name < loads[j].Name })
	return loads, nil
}

func (repo *supervisorRepository) GetLoad(ctx context.Context, empID string, exec ...core.DBExecutor) (supervisor.Load, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sup, ok := repo.db.supervisors[empID]; ok {
		return repo.load(sup), nil
	}
	return supervisor.Load{}, supervisor.ErrNotFound
}

func (repo *supervisorRepository) UpdateMaxGroups(ctx context.Context, empID string, maxGroups int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sup, ok := repo.db.supervisors[empID]
	if !ok {
		return supervisor.ErrNotFound
	}
	sup.MaxGroups = maxGroups
	return nil
}

func (repo *supervisorRepository) load(sup *supervisor.Supervisor) supervisor.Load {
	return supervisor.Load{
		EmpID:         sup.EmpID,
		Name:          sup.Name,
		Email:         sup.Email,
		MaxGroups:     sup.MaxGroups,
		CurrentGroups: repo.db.countAssigned(sup.EmpID),
	}
}
