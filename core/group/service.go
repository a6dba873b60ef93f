package group

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core"
)

var (
	// errors
	ErrNotFound      = errors.New("group not found")
	ErrUnknownCohort = errors.New("referenced cohort does not exist")
)

type (
	// Repository persists groups and their memberships. CreateGroup and
	// UpdateGroup must apply the group row and the membership changes as a
	// single atomic unit.
	Repository interface {
		CohortExists(ctx context.Context, cohortID string) (bool, error)
		CreateGroup(ctx context.Context, g Group, memberIDs []string) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		QueryGroupsByMember(ctx context.Context, userID string) ([]Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		GetGroupMemberIDs(ctx context.Context, groupID string) ([]string, error)
		GetUserGroupIDs(ctx context.Context, userID string) ([]string, error)
		UpdateGroup(ctx context.Context, g Group, addMemberIDs, removeMemberIDs []string) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, ng NewGroup) (Group, error)
		QueryAll(ctx context.Context) ([]Group, error)
		// QueryForUser returns only the groups the user is a member of.
		QueryForUser(ctx context.Context, userID string) ([]Group, error)
		GetByID(ctx context.Context, id string) (Group, error)
		Update(ctx context.Context, id string, ug UpdateGroup) (Group, error)
		Delete(ctx context.Context, ids ...string) error
		// ResolveGroupIDs computes the set of group ids the user belongs to.
		ResolveGroupIDs(ctx context.Context, userID string) ([]string, error)
		CheckCohort(ctx context.Context, cohortID null.String) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckCohort(ctx context.Context, cohortID null.String) error {
	if !cohortID.Valid {
		return nil
	}
	exists, err := svc.repo.CohortExists(ctx, cohortID.String)
	if err != nil {
		return errors.Wrap(err, "checking cohort")
	}
	if !exists {
		return core.NewValidationError(
			ErrUnknownCohort,
			core.FieldError{Field: "cohort_id", Error: ErrUnknownCohort.Error()},
		)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	return svc.repo.CreateGroup(ctx, Group{
		Name:        ng.Name,
		Description: ng.Description,
		CohortID:    ng.CohortID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, ng.MemberIDs)
}

func (svc *service) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *service) QueryForUser(ctx context.Context, userID string) ([]Group, error) {
	return svc.repo.QueryGroupsByMember(ctx, userID)
}

func (svc *service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	g := Group{
		ID:        id,
		Name:      ug.Name,
		CohortID:  ug.CohortID,
		Status:    ug.Status,
		UpdatedAt: time.Now().UTC(),
	}
	if ug.Description != nil {
		g.Description = *ug.Description
	}

	// reconcile memberships by diff; nil means "leave them alone"
	var toAdd, toRemove []string
	if ug.MemberIDs != nil {
		current, err := svc.repo.GetGroupMemberIDs(ctx, id)
		if err != nil {
			return Group{}, errors.Wrap(err, "resolving current members")
		}
		toAdd, toRemove = core.DiffStrings(current, ug.MemberIDs)
	}
	return svc.repo.UpdateGroup(ctx, g, toAdd, toRemove)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}

func (svc *service) ResolveGroupIDs(ctx context.Context, userID string) ([]string, error) {
	return svc.repo.GetUserGroupIDs(ctx, userID)
}
