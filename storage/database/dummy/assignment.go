package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/codebox/didyoudoit/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CheckGroupsExist(ctx context.Context, groupIDs []string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, id := range groupIDs {
		if _, ok := repo.db.groups[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, groupIDs []string) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = uuid.New().String()
	a.Groups = nil
	repo.db.assignments[a.ID] = &a

	targets := make(map[string]struct{}, len(groupIDs))
	for _, groupID := range groupIDs {
		targets[groupID] = struct{}{}
	}
	repo.db.links[a.ID] = targets
	return repo.db.assignmentWithGroups(a), nil
}

func (repo *assignmentRepository) QueryAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		assignments = append(assignments, repo.db.assignmentWithGroups(*a))
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return repo.db.assignmentWithGroups(*a), nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment, addGroupIDs, removeGroupIDs []string) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origA, ok := repo.db.assignments[a.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	origA.Title = a.Title
	origA.Description = a.Description
	origA.Type = a.Type
	origA.ContentURL = a.ContentURL
	origA.ThumbnailURL = a.ThumbnailURL
	origA.DueDate = a.DueDate
	origA.UpdatedAt = a.UpdatedAt

	targets, ok := repo.db.links[a.ID]
	if !ok {
		targets = make(map[string]struct{})
		repo.db.links[a.ID] = targets
	}
	for _, groupID := range addGroupIDs {
		targets[groupID] = struct{}{}
	}
	for _, groupID := range removeGroupIDs {
		delete(targets, groupID)
	}
	return repo.db.assignmentWithGroups(*origA), nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignments, id)
	delete(repo.db.links, id)
	for cid, c := range repo.db.completions {
		if c.AssignmentID == id {
			delete(repo.db.completions, cid)
		}
	}
	return nil
}

func (repo *assignmentRepository) GetCompletion(ctx context.Context, userID, assignmentID string) (assignment.Completion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.completions {
		if c.UserID == userID && c.AssignmentID == assignmentID {
			return *c, nil
		}
	}
	return assignment.Completion{}, assignment.ErrCompletionNotFound
}

func (repo *assignmentRepository) CreateCompletion(ctx context.Context, c assignment.Completion) (assignment.Completion, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.completions[c.ID] = &c
	return c, nil
}

func (repo *assignmentRepository) DeleteCompletion(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.completions[id]; !ok {
		return assignment.ErrCompletionNotFound
	}
	delete(repo.db.completions, id)
	return nil
}

func (repo *assignmentRepository) QueryCompletionsByUser(ctx context.Context, userID string) ([]assignment.Completion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	completions := make([]assignment.Completion, 0)
	for _, c := range repo.db.completions {
		if c.UserID == userID {
			completions = append(completions, *c)
		}
	}
	return completions, nil
}

func (repo *assignmentRepository) QueryCompletionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Completion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	completions := make([]assignment.Completion, 0)
	for _, c := range repo.db.completions {
		if c.AssignmentID == assignmentID {
			completions = append(completions, *c)
		}
	}
	return completions, nil
}
