package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core/cohort"
)

type cohortRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartDate null.Time `db:"start_date"`
	EndDate   null.Time `db:"end_date"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row cohortRow) toCohort() cohort.Cohort {
	return cohort.Cohort{
		ID:        row.ID,
		Name:      row.Name,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type cohortRepository struct {
	db *sqlx.DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *sqlx.DB) *cohortRepository {
	return &cohortRepository{db: db}
}

func (repo *cohortRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCohorts ...cohort.Cohort) error {
	excludedIDs := make([]string, len(excludedCohorts))
	for i, c := range excludedCohorts {
		excludedIDs[i] = c.ID
	}

	var count int
	const q = `SELECT COUNT(*) FROM cohort WHERE name = $1 AND id != ALL($2)`
	if err := repo.db.GetContext(ctx, &count, q, name, pq.Array(excludedIDs)); err != nil {
		return errors.Wrap(err, "checking cohort name uniqueness")
	}
	if count > 0 {
		return cohort.ErrNameExists
	}
	return nil
}

func (repo *cohortRepository) CreateCohort(ctx context.Context, c cohort.Cohort) (cohort.Cohort, error) {
	c.ID = uuid.New().String()
	const q = `
	INSERT INTO cohort (id, name, start_date, end_date, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		c.ID, c.Name, c.StartDate, c.EndDate, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "inserting cohort")
	}
	return c, nil
}

func (repo *cohortRepository) QueryAllCohorts(ctx context.Context) ([]cohort.Cohort, error) {
	var rows []cohortRow
	const q = `SELECT * FROM cohort ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}

	cohorts := make([]cohort.Cohort, len(rows))
	for i, row := range rows {
		cohorts[i] = row.toCohort()
	}
	return cohorts, nil
}

func (repo *cohortRepository) GetCohortByID(ctx context.Context, id string) (cohort.Cohort, error) {
	var row cohortRow
	const q = `SELECT * FROM cohort WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return cohort.Cohort{}, cohort.ErrNotFound
		}
		return cohort.Cohort{}, errors.Wrap(err, "getting cohort")
	}
	return row.toCohort(), nil
}

func (repo *cohortRepository) UpdateCohort(ctx context.Context, c cohort.Cohort, groupStatus string) (cohort.Cohort, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	UPDATE cohort
	SET name = $2, start_date = $3, end_date = $4, is_active = $5, updated_at = $6
	WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		c.ID, c.Name, c.StartDate, c.EndDate, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "updating cohort")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.Cohort{}, cohort.ErrNotFound
	}

	// cascade the status to every owned group
	if groupStatus != "" {
		const cq = `UPDATE "group" SET status = $2, updated_at = $3 WHERE cohort_id = $1`
		if _, err = tx.ExecContext(ctx, cq, c.ID, groupStatus, c.UpdatedAt); err != nil {
			return cohort.Cohort{}, errors.Wrap(err, "cascading group status")
		}
	}
	if err = tx.Commit(); err != nil {
		return cohort.Cohort{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetCohortByID(ctx, c.ID)
}

func (repo *cohortRepository) CountGroups(ctx context.Context, cohortID string) (int, error) {
	var count int
	const q = `SELECT COUNT(*) FROM "group" WHERE cohort_id = $1`
	if err := repo.db.GetContext(ctx, &count, q, cohortID); err != nil {
		return 0, errors.Wrap(err, "counting cohort groups")
	}
	return count, nil
}

func (repo *cohortRepository) DeleteCohort(ctx context.Context, id string) error {
	const q = `DELETE FROM cohort WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting cohort")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cohort.ErrNotFound
	}
	return nil
}
