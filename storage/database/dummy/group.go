package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/codebox/didyoudoit/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

// load returns a copy with memberships attached.
func (repo *groupRepository) load(g group.Group) group.Group {
	g.MemberIDs = make([]string, 0)
	for userID := range repo.db.memberships[g.ID] {
		g.MemberIDs = append(g.MemberIDs, userID)
	}
	g.MemberCount = len(g.MemberIDs)
	return g
}

func (repo *groupRepository) CohortExists(ctx context.Context, cohortID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	_, ok := repo.db.cohorts[cohortID]
	return ok, nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group, memberIDs []string) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	g.ID = uuid.New().String()
	repo.db.groups[g.ID] = &g

	members := make(map[string]struct{}, len(memberIDs))
	for _, userID := range memberIDs {
		members[userID] = struct{}{}
	}
	repo.db.memberships[g.ID] = members
	return repo.load(g), nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.groups))
	for _, g := range repo.db.groups {
		groups = append(groups, repo.load(*g))
	}
	return groups, nil
}

func (repo *groupRepository) QueryGroupsByMember(ctx context.Context, userID string) ([]group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]group.Group, 0)
	for _, g := range repo.db.groups {
		if _, ok := repo.db.memberships[g.ID][userID]; ok {
			groups = append(groups, repo.load(*g))
		}
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if g, ok := repo.db.groups[id]; ok {
		return repo.load(*g), nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) GetGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]string, 0, len(repo.db.memberships[groupID]))
	for userID := range repo.db.memberships[groupID] {
		ids = append(ids, userID)
	}
	return ids, nil
}

func (repo *groupRepository) GetUserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.userGroupIDs(userID), nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.Group, addMemberIDs, removeMemberIDs []string) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origG, ok := repo.db.groups[g.ID]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	origG.Name = g.Name
	origG.Description = g.Description
	origG.CohortID = g.CohortID
	origG.Status = g.Status
	origG.UpdatedAt = g.UpdatedAt

	members, ok := repo.db.memberships[g.ID]
	if !ok {
		members = make(map[string]struct{})
		repo.db.memberships[g.ID] = members
	}
	for _, userID := range addMemberIDs {
		members[userID] = struct{}{}
	}
	for _, userID := range removeMemberIDs {
		delete(members, userID)
	}
	return repo.load(*origG), nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.groups, id)
		delete(repo.db.memberships, id)
		for _, targets := range repo.db.links {
			delete(targets, id)
		}
	}
	return nil
}
