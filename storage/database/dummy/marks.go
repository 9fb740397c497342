package dummydb

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/marks"
)

type marksRepository struct {
	db *DB
}

var _ marks.Repository = (*marksRepository)(nil)

func NewMarksRepository(db *DB) *marksRepository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) GetMark(ctx context.Context, regNo, groupID string, exec ...core.DBExecutor) (marks.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mark, ok := repo.db.marks[markKey(regNo, groupID)]; ok {
		return *mark, nil
	}
	return marks.Mark{}, marks.ErrNotFound
}

func (repo *marksRepository) CreateMark(ctx context.Context, mark marks.Mark, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.marks[markKey(mark.StudentRegNo, mark.GroupID)] = &mark
	return nil
}

func (repo *marksRepository) UpdateReview(ctx context.Context, regNo, groupID string, review int, score null.Float64, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	mark, ok := repo.db.marks[markKey(regNo, groupID)]
	if !ok {
		return marks.ErrNotFound
	}
	switch review {
	case 1:
		mark.Review1 = score
	case 2:
		mark.Review2 = score
	case 3:
		mark.Review3 = score
	case 4:
		mark.Review4 = score
	default:
		return marks.ErrInvalidReview
	}
	return nil
}
