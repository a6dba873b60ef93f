package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("assignment not found")
	ErrCompletionNotFound = errors.New("completion not found")
	ErrUnknownGroup       = errors.New("one or more target groups do not exist")
)

type (
	// Repository persists assignments, their group links and completions.
	// CreateAssignment and UpdateAssignment must apply the assignment row and
	// the link changes as a single atomic unit. Deleting an assignment must
	// cascade to its links.
	Repository interface {
		CheckGroupsExist(ctx context.Context, groupIDs []string) (bool, error)
		CreateAssignment(ctx context.Context, a Assignment, groupIDs []string) (Assignment, error)
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment, addGroupIDs, removeGroupIDs []string) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error

		GetCompletion(ctx context.Context, userID, assignmentID string) (Completion, error)
		CreateCompletion(ctx context.Context, c Completion) (Completion, error)
		DeleteCompletion(ctx context.Context, id string) error
		QueryCompletionsByUser(ctx context.Context, userID string) ([]Completion, error)
		QueryCompletionsByAssignment(ctx context.Context, assignmentID string) ([]Completion, error)
	}

	// MembershipResolver supplies the user-side reads the visibility engine
	// and the stats audience need. The group and user repositories satisfy it.
	MembershipResolver interface {
		GetUserGroupIDs(ctx context.Context, userID string) ([]string, error)
		QueryUsersByGroups(ctx context.Context, groupIDs ...string) ([]user.User, error)
		QueryAllUsers(ctx context.Context) ([]user.User, error)
	}

	Service interface {
		Create(ctx context.Context, usr user.User, na NewAssignment) (Assignment, error)
		// QueryVisible returns the assignments usr may see, per the visibility rules.
		QueryVisible(ctx context.Context, usr user.User) ([]Assignment, error)
		// GetByID returns ErrNotFound for assignments usr may not see.
		GetByID(ctx context.Context, usr user.User, id string) (Assignment, error)
		Update(ctx context.Context, usr user.User, id string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, usr user.User, id string) error

		// Toggle flips usr's completion of the assignment and reports the new state.
		Toggle(ctx context.Context, userID, assignmentID string) (completed bool, err error)
		GetStats(ctx context.Context, usr user.User, assignmentID string) (Stats, error)
		ListCompletions(ctx context.Context, userID string) ([]Completion, error)

		CheckGroups(ctx context.Context, groupIDs []string) error
	}

	service struct {
		repo     Repository
		resolver MembershipResolver
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, resolver MembershipResolver) Service {
	return &service{repo: repo, resolver: resolver}
}

func (svc *service) CheckGroups(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	ok, err := svc.repo.CheckGroupsExist(ctx, groupIDs)
	if err != nil {
		return errors.Wrap(err, "checking target groups")
	}
	if !ok {
		return core.NewValidationError(
			ErrUnknownGroup,
			core.FieldError{Field: "group_ids", Error: ErrUnknownGroup.Error()},
		)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, usr user.User, na NewAssignment) (Assignment, error) {
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "resolving memberships")
	}
	if err := CanCreate(usr, na.GroupIDs, memberGroupIDs); err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateAssignment(ctx, Assignment{
		Title:        na.Title,
		Description:  na.Description,
		Type:         na.Type,
		ContentURL:   na.ContentURL,
		ThumbnailURL: na.ThumbnailURL,
		DueDate:      na.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, na.GroupIDs)
}

func (svc *service) QueryVisible(ctx context.Context, usr user.User) ([]Assignment, error) {
	if !usr.IsActive() {
		return []Assignment{}, nil
	}
	assignments, err := svc.repo.QueryAllAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if usr.IsBoardAdmin() {
		return assignments, nil
	}
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving memberships")
	}
	return FilterVisible(usr, assignments, memberGroupIDs), nil
}

func (svc *service) GetByID(ctx context.Context, usr user.User, id string) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "resolving memberships")
	}
	if !IsVisible(usr, a, memberGroupIDs) {
		return Assignment{}, ErrNotFound
	}
	return a, nil
}

func (svc *service) Update(ctx context.Context, usr user.User, id string, ua UpdateAssignment) (Assignment, error) {
	orig, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "resolving memberships")
	}
	if err := CanModify(usr, orig, ua.GroupIDs, memberGroupIDs); err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		ID:           id,
		Title:        ua.Title,
		Type:         ua.Type,
		ContentURL:   ua.ContentURL,
		ThumbnailURL: ua.ThumbnailURL,
		DueDate:      ua.DueDate,
		UpdatedAt:    time.Now().UTC(),
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}

	// reconcile group links by diff; nil means "leave them alone"
	var toAdd, toRemove []string
	if ua.GroupIDs != nil {
		toAdd, toRemove = core.DiffStrings(orig.GroupIDs(), ua.GroupIDs)
	}
	return svc.repo.UpdateAssignment(ctx, a, toAdd, toRemove)
}

func (svc *service) Delete(ctx context.Context, usr user.User, id string) error {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "resolving memberships")
	}
	if err := CanDelete(usr, a, memberGroupIDs); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *service) Toggle(ctx context.Context, userID, assignmentID string) (bool, error) {
	if _, err := svc.repo.GetAssignmentByID(ctx, assignmentID); err != nil {
		return false, err
	}

	c, err := svc.repo.GetCompletion(ctx, userID, assignmentID)
	switch errors.Cause(err) {
	case nil:
		if err := svc.repo.DeleteCompletion(ctx, c.ID); err != nil {
			return false, err
		}
		return false, nil
	case ErrCompletionNotFound:
		_, err := svc.repo.CreateCompletion(ctx, Completion{
			UserID:       userID,
			AssignmentID: assignmentID,
			CompletedAt:  time.Now().UTC(),
		})
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (svc *service) GetStats(ctx context.Context, usr user.User, assignmentID string) (Stats, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Stats{}, err
	}
	memberGroupIDs, err := svc.resolver.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "resolving memberships")
	}
	if err := CanViewStats(usr, a, memberGroupIDs); err != nil {
		return Stats{}, err
	}

	audience, err := svc.resolveAudience(ctx, a)
	if err != nil {
		return Stats{}, err
	}
	completions, err := svc.repo.QueryCompletionsByAssignment(ctx, assignmentID)
	if err != nil {
		return Stats{}, err
	}
	completedAt := make(map[string]time.Time, len(completions))
	for _, c := range completions {
		completedAt[c.UserID] = c.CompletedAt
	}

	stats := Stats{
		AssignmentID:    a.ID,
		AssignmentTitle: a.Title,
		TotalAssigned:   len(audience),
		TotalCompleted:  len(completions),
		Details:         make([]UserStat, 0, len(audience)),
	}
	if stats.TotalAssigned > 0 {
		stats.CompletionRate = float64(stats.TotalCompleted) / float64(stats.TotalAssigned) * 100
	}
	for _, member := range audience {
		detail := UserStat{
			UserID:   member.ID,
			FullName: member.DisplayName(),
			Email:    member.Email,
			Status:   CompletionPending,
		}
		if at, ok := completedAt[member.ID]; ok {
			detail.Status = CompletionDone
			detail.CompletedAt.SetValid(at)
		}
		stats.Details = append(stats.Details, detail)
	}
	return stats, nil
}

func (svc *service) ListCompletions(ctx context.Context, userID string) ([]Completion, error) {
	return svc.repo.QueryCompletionsByUser(ctx, userID)
}

// resolveAudience returns the users an assignment targets: everyone for a
// global assignment, the deduplicated union of target group members otherwise.
func (svc *service) resolveAudience(ctx context.Context, a Assignment) ([]user.User, error) {
	if a.IsGlobal() {
		return svc.resolver.QueryAllUsers(ctx)
	}
	members, err := svc.resolver.QueryUsersByGroups(ctx, a.GroupIDs()...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving audience")
	}
	seen := make(map[string]struct{}, len(members))
	audience := make([]user.User, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		audience = append(audience, m)
	}
	return audience, nil
}
