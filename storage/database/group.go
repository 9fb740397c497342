package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/group"
)

type groupRepository struct {
	exec core.DBExecutor
}

var (
	_ group.Repository       = (*groupRepository)(nil) // interface compliance check
	_ assign.GroupRepository = (*groupRepository)(nil)
)

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

func (repo groupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to group.ErrNotFound
func (repo groupRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return group.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo groupRepository) FindTakenRegNo(ctx context.Context, regNos []string, exec ...core.DBExecutor) (string, error) {
	var taken string
	err := repo.getExec(exec).GetContext(ctx, &taken,
		`SELECT student_reg_no FROM group_members WHERE student_reg_no = ANY($1) LIMIT 1`,
		pq.Array(regNos),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", errors.Wrap(err, "checking membership")
	}
	return taken, nil
}

func (repo groupRepository) UpsertStudents(ctx context.Context, members []group.NewMember, exec ...core.DBExecutor) error {
	ex := repo.getExec(exec)
	for _, m := range members {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO students (reg_no, name, cgpa) VALUES ($1, $2, $3) ON CONFLICT (reg_no) DO NOTHING`,
			m.RegNo, m.Name, m.CGPA,
		)
		if err != nil {
			return errors.Wrap(err, "inserting student")
		}
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO project_groups (group_id, group_name, created_at) VALUES ($1, $2, $3)`,
		grp.ID, grp.Name, grp.CreatedAt,
	)
	return errors.Wrap(err, "inserting group")
}

func (repo groupRepository) AddMembers(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error {
	ex := repo.getExec(exec)
	for _, regNo := range regNos {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO group_members (group_id, student_reg_no) VALUES ($1, $2)`,
			groupID, regNo,
		)
		if err != nil {
			return errors.Wrap(err, "inserting membership")
		}
	}
	return nil
}

func (repo groupRepository) InitMarks(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error {
	ex := repo.getExec(exec)
	for _, regNo := range regNos {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO marks (student_reg_no, group_id) VALUES ($1, $2)`,
			regNo, groupID,
		)
		if err != nil {
			return errors.Wrap(err, "inserting marks entry")
		}
	}
	return nil
}

func (repo groupRepository) GetGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) (group.Group, error) {
	var grp group.Group
	err := repo.getExec(exec).GetContext(ctx, &grp,
		`SELECT group_id, group_name, assigned_supervisor_id, created_at FROM project_groups WHERE group_id = $1`,
		groupID,
	)
	if err != nil {
		return group.Group{}, repo.trapNoRowsErr(err, "getting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroupSummaries(ctx context.Context, exec ...core.DBExecutor) ([]group.Summary, error) {
	var summaries []group.Summary
	err := repo.getExec(exec).SelectContext(ctx, &summaries, `
		SELECT pg.group_id,
		       pg.group_name,
		       pg.assigned_supervisor_id,
		       s.name AS supervisor_name,
		       COUNT(gm.student_reg_no) AS member_count
		FROM project_groups pg
		         LEFT JOIN supervisors s ON pg.assigned_supervisor_id = s.emp_id
		         LEFT JOIN group_members gm ON pg.group_id = gm.group_id
		GROUP BY pg.group_id, pg.group_name, pg.assigned_supervisor_id, s.name
		ORDER BY pg.group_name`,
	)
	return summaries, errors.Wrap(err, "querying group summaries")
}

func (repo groupRepository) QueryGroupsBySupervisor(ctx context.Context, empID string, exec ...core.DBExecutor) ([]group.Group, error) {
	var groups []group.Group
	err := repo.getExec(exec).SelectContext(ctx, &groups,
		`SELECT group_id, group_name, assigned_supervisor_id, created_at
		 FROM project_groups WHERE assigned_supervisor_id = $1 ORDER BY group_name`,
		empID,
	)
	return groups, errors.Wrap(err, "querying supervisor groups")
}

func (repo groupRepository) QueryGroupMembers(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]group.MemberMarks, error) {
	var members []group.MemberMarks
	err := repo.getExec(exec).SelectContext(ctx, &members, `
		SELECT s.reg_no,
		       s.name,
		       s.cgpa,
		       m.review1_marks,
		       m.review2_marks,
		       m.review3_marks,
		       m.review4_marks
		FROM students s
		         JOIN group_members gm ON s.reg_no = gm.student_reg_no
		         LEFT JOIN marks m ON s.reg_no = m.student_reg_no AND gm.group_id = m.group_id
		WHERE gm.group_id = $1
		ORDER BY s.reg_no`,
		groupID,
	)
	return members, errors.Wrap(err, "querying group members")
}

func (repo groupRepository) QueryUnassignedGroupIDs(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	var ids []string
	err := repo.getExec(exec).SelectContext(ctx, &ids,
		`SELECT group_id FROM project_groups WHERE assigned_supervisor_id IS NULL`,
	)
	return ids, errors.Wrap(err, "querying unassigned groups")
}

// AssignSupervisor re-checks the supervisor's capacity inside the UPDATE itself
// so racing assignments cannot push a supervisor past max_groups.
func (repo groupRepository) AssignSupervisor(ctx context.Context, groupID, empID string, exec ...core.DBExecutor) (bool, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `
		UPDATE project_groups
		SET assigned_supervisor_id = $1
		WHERE group_id = $2
		  AND (SELECT COUNT(*) FROM project_groups WHERE assigned_supervisor_id = $1) <
		      (SELECT max_groups FROM supervisors WHERE emp_id = $1)`,
		empID, groupID,
	)
	if err != nil {
		return false, errors.Wrap(err, "assigning supervisor")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "assigning supervisor")
	}
	return n > 0, nil
}

func (repo groupRepository) UnassignGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE project_groups SET assigned_supervisor_id = NULL WHERE group_id = $1`,
		groupID,
	)
	return errors.Wrap(err, "unassigning supervisor")
}
