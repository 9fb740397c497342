package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/marks"
)

type marksRepository struct {
	exec core.DBExecutor
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(exec core.DBExecutor) *marksRepository {
	return &marksRepository{exec: exec}
}

func (repo marksRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo marksRepository) GetMark(ctx context.Context, regNo, groupID string, exec ...core.DBExecutor) (marks.Mark, error) {
	var mark marks.Mark
	err := repo.getExec(exec).GetContext(ctx, &mark,
		`SELECT student_reg_no, group_id, review1_marks, review2_marks, review3_marks, review4_marks
		 FROM marks WHERE student_reg_no = $1 AND group_id = $2`,
		regNo, groupID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return marks.Mark{}, marks.ErrNotFound
		}
		return marks.Mark{}, errors.Wrap(err, "getting marks entry")
	}
	return mark, nil
}

func (repo marksRepository) CreateMark(ctx context.Context, mark marks.Mark, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO marks (student_reg_no, group_id, review1_marks, review2_marks, review3_marks, review4_marks)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		mark.StudentRegNo, mark.GroupID, mark.Review1, mark.Review2, mark.Review3, mark.Review4,
	)
	return errors.Wrap(err, "inserting marks entry")
}

func (repo marksRepository) UpdateReview(ctx context.Context, regNo, groupID string, review int, score null.Float64, exec ...core.DBExecutor) error {
	col, ok := marks.ReviewColumn(review)
	if !ok {
		return marks.ErrInvalidReview
	}
	// col comes from the fixed lookup table, never from request input
	_, err := repo.getExec(exec).ExecContext(ctx,
		fmt.Sprintf(`UPDATE marks SET %s = $1 WHERE student_reg_no = $2 AND group_id = $3`, col),
		score, regNo, groupID,
	)
	return errors.Wrap(err, "updating marks entry")
}
