package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/supervisor"
)

type supervisorRepository struct {
	exec core.DBExecutor
}

var (
	_ supervisor.Repository       = (*supervisorRepository)(nil) // interface compliance check
	_ assign.SupervisorRepository = (*supervisorRepository)(nil)
)

func NewSupervisorRepository(exec core.DBExecutor) *supervisorRepository {
	return &supervisorRepository{exec: exec}
}

func (repo supervisorRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to supervisor.ErrNotFound
func (repo supervisorRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return supervisor.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo supervisorRepository) CheckUniqueness(ctx context.Context, empID, email string, exec ...core.DBExecutor) error {
	var exists bool
	err := repo.getExec(exec).GetContext(ctx, &exists,
		`SELECT true FROM supervisors WHERE emp_id = $1 OR email = $2 LIMIT 1`,
		empID, email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking supervisor uniqueness")
	}
	return supervisor.ErrSupervisorExists
}

func (repo supervisorRepository) CreateSupervisor(ctx context.Context, sup supervisor.Supervisor, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO supervisors (emp_id, name, email, password_hash, max_groups, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sup.EmpID, sup.Name, sup.Email, sup.PasswordHash, sup.MaxGroups, sup.CreatedAt,
	)
	return errors.Wrap(err, "inserting supervisor")
}

func (repo supervisorRepository) CreateSupervisorIfAbsent(ctx context.Context, sup supervisor.Supervisor, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO supervisors (emp_id, name, email, password_hash, max_groups, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (emp_id) DO NOTHING`,
		sup.EmpID, sup.Name, sup.Email, sup.PasswordHash, sup.MaxGroups, sup.CreatedAt,
	)
	return errors.Wrap(err, "inserting supervisor")
}

func (repo supervisorRepository) GetSupervisorByEmpID(ctx context.Context, empID string, exec ...core.DBExecutor) (supervisor.Supervisor, error) {
	var sup supervisor.Supervisor
	err := repo.getExec(exec).GetContext(ctx, &sup,
		`SELECT emp_id, name, email, password_hash, max_groups, created_at FROM supervisors WHERE emp_id = $1`,
		empID,
	)
	if err != nil {
		return supervisor.Supervisor{}, repo.trapNoRowsErr(err, "getting supervisor")
	}
	return sup, nil
}

func (repo supervisorRepository) GetSupervisorByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (supervisor.Supervisor, error) {
	var sup supervisor.Supervisor
	err := repo.getExec(exec).GetContext(ctx, &sup,
		`SELECT emp_id, name, email, password_hash, max_groups, created_at FROM supervisors WHERE email = $1`,
		email,
	)
	if err != nil {
		return supervisor.Supervisor{}, repo.trapNoRowsErr(err, "getting supervisor")
	}
	return sup, nil
}

func (repo supervisorRepository) QueryLoads(ctx context.Context, exec ...core.DBExecutor) ([]supervisor.Load, error) {
	var loads []supervisor.Load
	err := repo.getExec(exec).SelectContext(ctx, &loads, `
		SELECT s.emp_id,
		       s.name,
		       s.email,
		       s.max_groups,
		       COUNT(pg.group_id) AS current_groups
		FROM supervisors s
		         LEFT JOIN project_groups pg ON s.emp_id = pg.assigned_supervisor_id
		GROUP BY s.emp_id, s.name, s.email, s.max_groups
		ORDER BY s.name`,
	)
	return loads, errors.Wrap(err, "querying supervisor loads")
}

func (repo supervisorRepository) GetLoad(ctx context.Context, empID string, exec ...core.DBExecutor) (supervisor.Load, error) {
	var load supervisor.Load
	err := repo.getExec(exec).GetContext(ctx, &load, `
		SELECT s.emp_id,
		       s.name,
		       s.email,
		       s.max_groups,
		       COUNT(pg.group_id) AS current_groups
		FROM supervisors s
		         LEFT JOIN project_groups pg ON s.emp_id = pg.assigned_supervisor_id
		WHERE s.emp_id = $1
		GROUP BY s.emp_id, s.name, s.email, s.max_groups`,
		empID,
	)
	if err != nil {
		return supervisor.Load{}, repo.trapNoRowsErr(err, "getting supervisor load")
	}
	return load, nil
}

func (repo supervisorRepository) UpdateMaxGroups(ctx context.Context, empID string, maxGroups int, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE supervisors SET max_groups = $1 WHERE emp_id = $2`,
		maxGroups, empID,
	)
	if err != nil {
		return errors.Wrap(err, "updating max groups")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return supervisor.ErrNotFound
	}
	return nil
}
