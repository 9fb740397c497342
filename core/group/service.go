package group

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
)

var (
	// errors
	ErrNotFound = errors.New("group not found")
)

// TakenError reports the first provided student that already belongs to a group.
type TakenError struct {
	RegNo string
}

func (err *TakenError) Error() string {
	return fmt.Sprintf("student with registration number %s is already in a group", err.RegNo)
}

type (
	Repository interface {
		// FindTakenRegNo returns the first of regNos that is already a member
		// of any group; "" if none of them are.
		FindTakenRegNo(ctx context.Context, regNos []string, exec ...core.DBExecutor) (string, error)
		// UpsertStudents inserts the students that do not exist yet; existing
		// rows are left untouched.
		UpsertStudents(ctx context.Context, members []NewMember, exec ...core.DBExecutor) error
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) error
		AddMembers(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error
		// InitMarks creates one empty marks row per member (all reviews null).
		InitMarks(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error

		GetGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) (Group, error)
		QueryGroupSummaries(ctx context.Context, exec ...core.DBExecutor) ([]Summary, error)
		QueryGroupsBySupervisor(ctx context.Context, empID string, exec ...core.DBExecutor) ([]Group, error)
		QueryGroupMembers(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]MemberMarks, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Register validates and persists a new group, its members, their membership
// and their initial (empty) marks rows as a single transaction: a failed
// attempt leaves no partial rows behind.
func (svc *Service) Register(ctx context.Context, ng NewGroup) (Group, error) {
	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Group{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	regNos := ng.RegNos()

	taken, err := svc.repo.FindTakenRegNo(ctx, regNos, tx)
	if err != nil {
		return Group{}, errors.Wrap(err, "checking existing membership")
	}
	if taken != "" {
		return Group{}, &TakenError{RegNo: taken}
	}

	if err = svc.repo.UpsertStudents(ctx, ng.Members, tx); err != nil {
		return Group{}, errors.Wrap(err, "upserting students")
	}

	grp := Group{
		ID:        uuid.New().String(),
		Name:      ng.GroupName,
		CreatedAt: time.Now().UTC(),
	}
	if err = svc.repo.CreateGroup(ctx, grp, tx); err != nil {
		return Group{}, errors.Wrap(err, "creating group")
	}
	if err = svc.repo.AddMembers(ctx, grp.ID, regNos, tx); err != nil {
		return Group{}, errors.Wrap(err, "adding members")
	}
	if err = svc.repo.InitMarks(ctx, grp.ID, regNos, tx); err != nil {
		return Group{}, errors.Wrap(err, "initializing marks")
	}

	if err = tx.Commit(); err != nil {
		return Group{}, errors.Wrap(err, "committing transaction")
	}
	return grp, nil
}

func (svc *Service) GetByID(ctx context.Context, groupID string) (Group, error) {
	return svc.repo.GetGroup(ctx, groupID)
}

// QuerySummaries lists all groups with their assignment status, for the admin panel.
func (svc *Service) QuerySummaries(ctx context.Context) ([]Summary, error) {
	return svc.repo.QueryGroupSummaries(ctx)
}

// QueryBySupervisor lists a supervisor's assigned groups with each member's marks.
func (svc *Service) QueryBySupervisor(ctx context.Context, empID string) ([]AssignedGroup, error) {
	groups, err := svc.repo.QueryGroupsBySupervisor(ctx, empID)
	if err != nil {
		return nil, errors.Wrap(err, "querying supervisor groups")
	}

	assigned := make([]AssignedGroup, 0, len(groups))
	for _, grp := range groups {
		members, err := svc.repo.QueryGroupMembers(ctx, grp.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying group members")
		}
		assigned = append(assigned, AssignedGroup{ID: grp.ID, Name: grp.Name, Members: members})
	}
	return assigned, nil
}

// IsTaken reports whether err is a duplicate-membership conflict.
func IsTaken(err error) bool {
	_, ok := errors.Cause(err).(*TakenError)
	return ok
}
