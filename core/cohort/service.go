package cohort

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/group"
)

var (
	// errors
	ErrNotFound   = errors.New("cohort not found")
	ErrNameExists = errors.New("a cohort with this name already exists")
)

type (
	// Repository persists cohorts. UpdateCohort must apply the cohort row and
	// the owned-group status cascade (when groupStatus is non-empty) as a
	// single atomic unit.
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedCohorts ...Cohort) error
		CreateCohort(ctx context.Context, c Cohort) (Cohort, error)
		QueryAllCohorts(ctx context.Context) ([]Cohort, error)
		GetCohortByID(ctx context.Context, id string) (Cohort, error)
		UpdateCohort(ctx context.Context, c Cohort, groupStatus string) (Cohort, error)
		CountGroups(ctx context.Context, cohortID string) (int, error)
		DeleteCohort(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCohort) (Cohort, error)
		QueryAll(ctx context.Context) ([]Cohort, error)
		GetByID(ctx context.Context, id string) (Cohort, error)
		// Update applies scalar changes; toggling IsActive cascades the
		// matching status to every group the cohort owns (the cascade always
		// wins over any group-level override).
		Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error)
		// Delete refuses to remove a cohort that still owns groups.
		Delete(ctx context.Context, id string) error
		CheckUniqueness(ctx context.Context, name string, excluded ...Cohort) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, name string, excluded ...Cohort) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excluded...); err != nil {
		if err == ErrNameExists {
			return core.NewConflictError(err.Error())
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewCohort) (Cohort, error) {
	now := time.Now().UTC()
	isActive := true
	if nc.IsActive != nil {
		isActive = *nc.IsActive
	}
	return svc.repo.CreateCohort(ctx, Cohort{
		Name:      nc.Name,
		StartDate: nc.StartDate,
		EndDate:   nc.EndDate,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryAll(ctx context.Context) ([]Cohort, error) {
	return svc.repo.QueryAllCohorts(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohortByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCohort) (Cohort, error) {
	orig, err := svc.repo.GetCohortByID(ctx, id)
	if err != nil {
		return Cohort{}, err
	}

	c := Cohort{
		ID:        id,
		Name:      uc.Name,
		StartDate: uc.StartDate,
		EndDate:   uc.EndDate,
		IsActive:  orig.IsActive,
		UpdatedAt: time.Now().UTC(),
	}

	// only an explicit IsActive toggle cascades to the owned groups
	var groupStatus string
	if uc.IsActive != nil {
		c.IsActive = *uc.IsActive
		if *uc.IsActive {
			groupStatus = group.StatusActive
		} else {
			groupStatus = group.StatusArchived
		}
	}
	return svc.repo.UpdateCohort(ctx, c, groupStatus)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	c, err := svc.repo.GetCohortByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := svc.repo.CountGroups(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting owned groups")
	}
	if n > 0 {
		return core.NewConflictError(fmt.Sprintf(
			"cannot delete cohort %q: it still owns %d group(s); reassign or delete them first", c.Name, n))
	}
	return svc.repo.DeleteCohort(ctx, id)
}
