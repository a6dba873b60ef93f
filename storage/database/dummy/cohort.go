package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/codebox/didyoudoit/core/cohort"
)

type cohortRepository struct {
	db *DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *DB) *cohortRepository {
	return &cohortRepository{db: db}
}

func (repo *cohortRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCohorts ...cohort.Cohort) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.cohorts {
		if c.Name != name {
			continue
		}
		excluded := false
		for _, exclC := range excludedCohorts {
			if exclC.ID == c.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return cohort.ErrNameExists
		}
	}
	return nil
}

func (repo *cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.cohorts[c.ID] = &c
	return c, nil
}

func (repo *cohortRepository) QueryAllCohorts(ctx context.Context) ([]cohort.Cohort, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cohorts := make([]cohort.Cohort, 0, len(repo.db.cohorts))
	for _, c := range repo.db.cohorts {
		cohorts = append(cohorts, *c)
	}
	return cohorts, nil
}

func (repo *cohortRepository) GetCohortByID(ctx context.Context, id string) (cohort.Cohort, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.cohorts[id]; ok {
		return *c, nil
	}
	return cohort.Cohort{}, cohort.ErrNotFound
}

func (repo *cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort, groupStatus string) (cohort.Cohort, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origC, ok := repo.db.cohorts[c.ID]
	if !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	origC.Name = c.Name
	origC.StartDate = c.StartDate
	origC.EndDate = c.EndDate
	origC.IsActive = c.IsActive
	origC.UpdatedAt = c.UpdatedAt

	// cascade the status to every owned group
	if groupStatus != "" {
		for _, g := range repo.db.groups {
			if g.CohortID.Valid && g.CohortID.String == c.ID {
				g.Status = groupStatus
				g.UpdatedAt = c.UpdatedAt
			}
		}
	}
	return *origC, nil
}

func (repo *cohortRepository) CountGroups(ctx context.Context, cohortID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, g := range repo.db.groups {
		if g.CohortID.Valid && g.CohortID.String == cohortID {
			count++
		}
	}
	return count, nil
}

func (repo *cohortRepository) DeleteCohort(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.cohorts[id]; !ok {
		return cohort.ErrNotFound
	}
	delete(repo.db.cohorts, id)
	return nil
}
