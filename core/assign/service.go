package assign

import (
	"context"
	"fmt"
	"math/rand"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/group"
	"github.com/trezcool/kundi/core/supervisor"
)

var (
	// errors
	ErrNoSupervisors     = errors.New("no supervisors available to assign groups")
	ErrCapacityExhausted = errors.New("all supervisors have reached their maximum group capacity")

	newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) } // mockable
)

// CapacityError reports a manual assignment to a supervisor that is already full.
type CapacityError struct {
	Max int
}

func (err *CapacityError) Error() string {
	return fmt.Sprintf("supervisor has reached maximum capacity (%d groups)", err.Max)
}

// IsCapacity reports whether err is a supervisor-at-capacity failure.
func IsCapacity(err error) bool {
	_, ok := errors.Cause(err).(*CapacityError)
	return ok
}

type (
	GroupRepository interface {
		GetGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) (group.Group, error)
		QueryUnassignedGroupIDs(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
		// AssignSupervisor points groupID at empID; it reports false without
		// writing when the supervisor is (meanwhile) at capacity.
		AssignSupervisor(ctx context.Context, groupID, empID string, exec ...core.DBExecutor) (bool, error)
		// UnassignGroup clears a group's supervisor; a no-op if already unassigned.
		UnassignGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) error
	}

	SupervisorRepository interface {
		QueryLoads(ctx context.Context, exec ...core.DBExecutor) ([]supervisor.Load, error)
		GetLoad(ctx context.Context, empID string, exec ...core.DBExecutor) (supervisor.Load, error)
	}

	// Result summarizes an auto-assignment run.
	Result struct {
		Assigned   int    `json:"assigned"`
		Unassigned int    `json:"unassigned"`
		Message    string `json:"msg"`
	}

	Service struct {
		groups  GroupRepository
		sups    SupervisorRepository
		mailSvc core.EmailService
		logger  core.Logger
		rnd     *rand.Rand
	}
)

func NewService(groups GroupRepository, sups SupervisorRepository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		groups:  groups,
		sups:    sups,
		mailSvc: mailSvc,
		logger:  logger,
		rnd:     newRand(),
	}
}

// AutoAssign distributes all unassigned groups over the supervisors that still
// have capacity. Each available supervisor enters a candidate pool once per
// remaining slot, both the pool and the groups are shuffled (Fisher–Yates via
// rand.Shuffle), and groups are walked in order against the pool; groups beyond
// the pool length stay unassigned. Assignments are persisted one by one.
func (svc *Service) AutoAssign(ctx context.Context) (Result, error) {
	groupIDs, err := svc.groups.QueryUnassignedGroupIDs(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying unassigned groups")
	}
	loads, err := svc.sups.QueryLoads(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying supervisor loads")
	}

	if len(loads) == 0 {
		return Result{}, ErrNoSupervisors
	}
	if len(groupIDs) == 0 {
		return Result{Message: "No unassigned groups to assign."}, nil
	}

	byEmpID := make(map[string]supervisor.Load, len(loads))
	pool := make([]string, 0, len(loads))
	for _, load := range loads {
		byEmpID[load.EmpID] = load
		for i := 0; i < load.Remaining(); i++ {
			pool = append(pool, load.EmpID)
		}
	}
	if len(pool) == 0 {
		return Result{}, ErrCapacityExhausted
	}

	svc.rnd.Shuffle(len(groupIDs), func(i, j int) { groupIDs[i], groupIDs[j] = groupIDs[j], groupIDs[i] })
	svc.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	var assigned int
	notices := make(map[string][]string) // empID -> assigned group IDs
	for i, groupID := range groupIDs {
		if i >= len(pool) {
			break
		}
		empID := pool[i]
		ok, err := svc.groups.AssignSupervisor(ctx, groupID, empID)
		if err != nil {
			return Result{}, errors.Wrap(err, "assigning group")
		}
		if !ok { // lost a capacity race; leave the group for the next run
			continue
		}
		assigned++
		notices[empID] = append(notices[empID], groupID)
	}

	remaining := len(groupIDs) - assigned
	msg := fmt.Sprintf("%d groups assigned successfully.", assigned)
	if remaining > 0 {
		msg += fmt.Sprintf(" %d groups remain unassigned due to supervisor capacity limits.", remaining)
	}

	for empID, ids := range notices {
		svc.notify(byEmpID[empID].Name, byEmpID[empID].Email, len(ids))
	}

	return Result{Assigned: assigned, Unassigned: remaining, Message: msg}, nil
}

// ManualAssign points a single group at a specific supervisor, subject to capacity.
func (svc *Service) ManualAssign(ctx context.Context, groupID, empID string) error {
	load, err := svc.sups.GetLoad(ctx, empID)
	if err != nil {
		return errors.Wrap(err, "getting supervisor load")
	}
	if load.CurrentGroups >= load.MaxGroups {
		return &CapacityError{Max: load.MaxGroups}
	}

	if _, err = svc.groups.GetGroup(ctx, groupID); err != nil {
		return errors.Wrap(err, "getting group")
	}

	ok, err := svc.groups.AssignSupervisor(ctx, groupID, empID)
	if err != nil {
		return errors.Wrap(err, "assigning group")
	}
	if !ok { // capacity re-check inside the write lost to a concurrent assign
		return &CapacityError{Max: load.MaxGroups}
	}

	svc.notify(load.Name, load.Email, 1)
	return nil
}

// Unassign clears a group's supervisor; already-unassigned groups are a no-op.
func (svc *Service) Unassign(ctx context.Context, groupID string) error {
	return errors.Wrap(svc.groups.UnassignGroup(ctx, groupID), "unassigning group")
}

// notify emails a supervisor about newly assigned groups; delivery failures
// stay inside the mail service and are never surfaced to the caller.
func (svc *Service) notify(name, email string, count int) {
	if svc.mailSvc == nil {
		return
	}
	if email == "" {
		svc.logger.Warn(fmt.Sprintf("supervisor %q has no email address, skipping assignment notice", name))
		return
	}
	noun := "groups have"
	if count == 1 {
		noun = "group has"
	}
	svc.logger.Debug(fmt.Sprintf("notifying %s of %d new group assignment(s)", email, count))
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: email}},
		Subject: "New group assignment",
		BodyStr: fmt.Sprintf("%d project %s been assigned to you. Log in to view your groups.", count, noun),
	})
}
