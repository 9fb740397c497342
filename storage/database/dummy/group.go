package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/assign"
	"github.com/trezcool/kundi/core/group"
)

type groupRepository struct {
	db *DB
}

var (
	_ group.Repository       = (*groupRepository)(nil) // interface compliance check
	_ assign.GroupRepository = (*groupRepository)(nil)
)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) FindTakenRegNo(ctx context.Context, regNos []string, exec ...core.DBExecutor) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	taken := make(map[string]struct{})
	for _, members := range repo.db.members {
		for _, regNo := range members {
			taken[regNo] = struct{}{}
		}
	}
	for _, regNo := range regNos {
		if _, ok := taken[regNo]; ok {
			return regNo, nil
		}
	}
	return "", nil
}

func (repo *groupRepository) UpsertStudents(ctx context.Context, members []group.NewMember, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, m := range members {
		if _, ok := repo.db.students[m.RegNo]; ok {
			continue // insert-if-absent: existing rows stay untouched
		}
		repo.db.students[m.RegNo] = &group.Student{RegNo: m.RegNo, Name: m.Name, CGPA: m.CGPA}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.groups[grp.ID] = &grp
	return nil
}

func (repo *groupRepository) AddMembers(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.members[groupID] = append(repo.db.members[groupID], regNos...)
	return nil
}

func (repo *groupRepository) InitMarks(ctx context.Context, groupID string, regNos []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, regNo := range regNos {
		repo.db.addMark(regNo, groupID)
	}
	return nil
}

func (repo *groupRepository) GetGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) (group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if grp, ok := repo.db.groups[groupID]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) QueryGroupSummaries(ctx context.Context, exec ...core.DBExecutor) ([]group.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	summaries := make([]group.Summary, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		summary := group.Summary{
			ID:           grp.ID,
			Name:         grp.Name,
			SupervisorID: grp.SupervisorID,
			MemberCount:  len(repo.db.members[grp.ID]),
		}
		if grp.SupervisorID.Valid {
			if sup, ok := repo.db.supervisors[grp.SupervisorID.String]; ok {
				summary.SupervisorName = null.StringFrom(sup.Name)
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (repo *groupRepository) QueryGroupsBySupervisor(ctx context.Context, empID string, exec ...core.DBExecutor) ([]group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var groups []group.Group
	for _, grp := range repo.db.groups {
		if grp.SupervisorID.Valid && grp.SupervisorID.String == empID {
			groups = append(groups, *grp)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *groupRepository) QueryGroupMembers(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]group.MemberMarks, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regNos := append([]string(nil), repo.db.members[groupID]...)
	sort.Strings(regNos)

	members := make([]group.MemberMarks, 0, len(regNos))
	for _, regNo := range regNos {
		stu, ok := repo.db.students[regNo]
		if !ok {
			continue
		}
		mm := group.MemberMarks{RegNo: stu.RegNo, Name: stu.Name, CGPA: stu.CGPA}
		if mark, ok := repo.db.marks[markKey(regNo, groupID)]; ok {
			mm.Review1, mm.Review2, mm.Review3, mm.Review4 = mark.Review1, mark.Review2, mark.Review3, mark.Review4
		}
		members = append(members, mm)
	}
	return members, nil
}

func (repo *groupRepository) QueryUnassignedGroupIDs(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []string
	for _, grp := range repo.db.groups {
		if !grp.SupervisorID.Valid {
			ids = append(ids, grp.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *groupRepository) AssignSupervisor(ctx context.Context, groupID, empID string, exec ...core.DBExecutor) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grp, ok := repo.db.groups[groupID]
	if !ok {
		return false, nil
	}
	sup, ok := repo.db.supervisors[empID]
	if !ok {
		return false, nil
	}
	if repo.db.countAssigned(empID) >= sup.MaxGroups {
		return false, nil
	}
	grp.SupervisorID = null.StringFrom(empID)
	return true, nil
}

func (repo *groupRepository) UnassignGroup(ctx context.Context, groupID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if grp, ok := repo.db.groups[groupID]; ok {
		grp.SupervisorID = null.String{}
	}
	return nil
}
