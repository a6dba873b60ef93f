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

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/assignment"
)

type assignmentRow struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Description  string      `db:"description"`
	Type         string      `db:"type"`
	ContentURL   string      `db:"content_url"`
	ThumbnailURL null.String `db:"thumbnail_url"`
	DueDate      null.Time   `db:"due_date"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Type:         row.Type,
		ContentURL:   row.ContentURL,
		ThumbnailURL: row.ThumbnailURL,
		DueDate:      row.DueDate,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type targetGroupRow struct {
	AssignmentID string      `db:"assignment_id"`
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	CohortID     null.String `db:"cohort_id"`
}

type completionRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	AssignmentID string    `db:"assignment_id"`
	CompletedAt  time.Time `db:"completed_at"`
}

func (row completionRow) toCompletion() assignment.Completion {
	return assignment.Completion(row)
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CheckGroupsExist(ctx context.Context, groupIDs []string) (bool, error) {
	var count int
	const q = `SELECT COUNT(*) FROM "group" WHERE id = ANY($1)`
	if err := repo.db.GetContext(ctx, &count, q, pq.Array(groupIDs)); err != nil {
		return false, errors.Wrap(err, "checking groups")
	}
	return count == len(groupIDs), nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, groupIDs []string) (assignment.Assignment, error) {
	a.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	INSERT INTO assignment (id, title, description, type, content_url, thumbnail_url, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, a.Type, a.ContentURL, a.ThumbnailURL, a.DueDate,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	if err = addLinks(ctx, tx, a.ID, groupIDs); err != nil {
		return assignment.Assignment{}, err
	}
	if err = tx.Commit(); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetAssignmentByID(ctx, a.ID)
}

func (repo *assignmentRepository) QueryAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	const q = `SELECT * FROM assignment ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	// attach the target groups in one pass
	var linkRows []targetGroupRow
	const lq = `
	SELECT ag.assignment_id, g.id, g.name, g.cohort_id
	FROM assignment_group ag
	JOIN "group" g ON g.id = ag.group_id`
	if err := repo.db.SelectContext(ctx, &linkRows, lq); err != nil {
		return nil, errors.Wrap(err, "querying assignment groups")
	}
	targets := make(map[string][]assignment.TargetGroup, len(rows))
	for _, link := range linkRows {
		targets[link.AssignmentID] = append(targets[link.AssignmentID], assignment.TargetGroup{
			ID:       link.ID,
			Name:     link.Name,
			CohortID: link.CohortID,
		})
	}

	assignments := make([]assignment.Assignment, len(rows))
	for i, row := range rows {
		a := row.toAssignment()
		a.Groups = targets[a.ID]
		if a.Groups == nil {
			a.Groups = make([]assignment.TargetGroup, 0)
		}
		assignments[i] = a
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	const q = `SELECT * FROM assignment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}

	a := row.toAssignment()
	var linkRows []targetGroupRow
	const lq = `
	SELECT ag.assignment_id, g.id, g.name, g.cohort_id
	FROM assignment_group ag
	JOIN "group" g ON g.id = ag.group_id
	WHERE ag.assignment_id = $1`
	if err := repo.db.SelectContext(ctx, &linkRows, lq, id); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "querying assignment groups")
	}
	a.Groups = make([]assignment.TargetGroup, len(linkRows))
	for i, link := range linkRows {
		a.Groups[i] = assignment.TargetGroup{ID: link.ID, Name: link.Name, CohortID: link.CohortID}
	}
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment, addGroupIDs, removeGroupIDs []string) (assignment.Assignment, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	UPDATE assignment
	SET title = $2, description = $3, type = $4, content_url = $5, thumbnail_url = $6, due_date = $7, updated_at = $8
	WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, a.Type, a.ContentURL, a.ThumbnailURL, a.DueDate, a.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}

	if err = addLinks(ctx, tx, a.ID, addGroupIDs); err != nil {
		return assignment.Assignment{}, err
	}
	if len(removeGroupIDs) > 0 {
		const dq = `DELETE FROM assignment_group WHERE assignment_id = $1 AND group_id = ANY($2)`
		if _, err = tx.ExecContext(ctx, dq, a.ID, pq.Array(removeGroupIDs)); err != nil {
			return assignment.Assignment{}, errors.Wrap(err, "removing assignment groups")
		}
	}
	if err = tx.Commit(); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetAssignmentByID(ctx, a.ID)
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	// links and completions go with the assignment (FK ON DELETE CASCADE)
	const q = `DELETE FROM assignment WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) GetCompletion(ctx context.Context, userID, assignmentID string) (assignment.Completion, error) {
	var row completionRow
	const q = `SELECT * FROM completion WHERE user_id = $1 AND assignment_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, userID, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Completion{}, assignment.ErrCompletionNotFound
		}
		return assignment.Completion{}, errors.Wrap(err, "getting completion")
	}
	return row.toCompletion(), nil
}

func (repo *assignmentRepository) CreateCompletion(ctx context.Context, c assignment.Completion) (assignment.Completion, error) {
	c.ID = uuid.New().String()
	const q = `
	INSERT INTO completion (id, user_id, assignment_id, completed_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, assignment_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.UserID, c.AssignmentID, c.CompletedAt); err != nil {
		return assignment.Completion{}, errors.Wrap(err, "inserting completion")
	}
	return c, nil
}

func (repo *assignmentRepository) DeleteCompletion(ctx context.Context, id string) error {
	const q = `DELETE FROM completion WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting completion")
	}
	return nil
}

func (repo *assignmentRepository) QueryCompletionsByUser(ctx context.Context, userID string) ([]assignment.Completion, error) {
	var rows []completionRow
	const q = `SELECT * FROM completion WHERE user_id = $1 ORDER BY completed_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user completions")
	}

	completions := make([]assignment.Completion, len(rows))
	for i, row := range rows {
		completions[i] = row.toCompletion()
	}
	return completions, nil
}

func (repo *assignmentRepository) QueryCompletionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Completion, error) {
	var rows []completionRow
	const q = `SELECT * FROM completion WHERE assignment_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying assignment completions")
	}

	completions := make([]assignment.Completion, len(rows))
	for i, row := range rows {
		completions[i] = row.toCompletion()
	}
	return completions, nil
}

// addLinks inserts assignment_group rows, skipping pairs that already exist.
func addLinks(ctx context.Context, tx core.DBExecutor, assignmentID string, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	const q = `
	INSERT INTO assignment_group (assignment_id, group_id) VALUES ($1, $2)
	ON CONFLICT (assignment_id, group_id) DO NOTHING`
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx, q, assignmentID, groupID); err != nil {
			return errors.Wrap(err, "adding assignment group")
		}
	}
	return nil
}
