package marks

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
)

var (
	// errors
	ErrNotFound      = errors.New("marks entry not found")
	ErrInvalidReview = errors.New("invalid review number")
)

type (
	Repository interface {
		GetMark(ctx context.Context, regNo, groupID string, exec ...core.DBExecutor) (Mark, error)
		CreateMark(ctx context.Context, mark Mark, exec ...core.DBExecutor) error
		// UpdateReview sets a single review column on an existing marks row,
		// leaving the other three untouched.
		UpdateReview(ctx context.Context, regNo, groupID string, review int, score null.Float64, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert records one review score: it updates the addressed review column when
// a marks row exists for (student, group), and inserts a fresh row with only
// that column set otherwise. The review number is checked before storage is
// touched.
func (svc *Service) Upsert(ctx context.Context, um UpsertMark) error {
	if _, ok := ReviewColumn(um.ReviewNumber); !ok {
		return ErrInvalidReview
	}

	_, err := svc.repo.GetMark(ctx, um.StudentRegNo, um.GroupID)
	switch errors.Cause(err) {
	case nil:
		return errors.Wrap(
			svc.repo.UpdateReview(ctx, um.StudentRegNo, um.GroupID, um.ReviewNumber, um.Marks),
			"updating review marks")
	case ErrNotFound:
		mark := Mark{StudentRegNo: um.StudentRegNo, GroupID: um.GroupID}
		mark.setReview(um.ReviewNumber, um.Marks)
		return errors.Wrap(svc.repo.CreateMark(ctx, mark), "creating marks entry")
	default:
		return errors.Wrap(err, "getting marks entry")
	}
}
