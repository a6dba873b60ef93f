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
	"github.com/codebox/didyoudoit/core/group"
)

type groupRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	CohortID    null.String `db:"cohort_id"`
	Status      string      `db:"status"`
	MemberCount int         `db:"member_count"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row groupRow) toGroup() group.Group {
	return group.Group{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CohortID:    row.CohortID,
		Status:      row.Status,
		MemberCount: row.MemberCount,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const groupSelect = `
SELECT g.*, (SELECT COUNT(*) FROM user_group ug WHERE ug.group_id = g.id) AS member_count
FROM "group" g`

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CohortExists(ctx context.Context, cohortID string) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS(SELECT 1 FROM cohort WHERE id = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, cohortID); err != nil {
		return false, errors.Wrap(err, "checking cohort")
	}
	return exists, nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group, memberIDs []string) (group.Group, error) {
	g.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	INSERT INTO "group" (id, name, description, cohort_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, q,
		g.ID, g.Name, g.Description, g.CohortID, g.Status, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	if err = addMembers(ctx, tx, g.ID, memberIDs); err != nil {
		return group.Group{}, err
	}
	if err = tx.Commit(); err != nil {
		return group.Group{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetGroupByID(ctx, g.ID)
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, groupSelect+` ORDER BY g.created_at`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}

	groups := make([]group.Group, len(rows))
	for i, row := range rows {
		groups[i] = row.toGroup()
	}
	return groups, nil
}

func (repo *groupRepository) QueryGroupsByMember(ctx context.Context, userID string) ([]group.Group, error) {
	var rows []groupRow
	const q = groupSelect + `
	JOIN user_group m ON m.group_id = g.id
	WHERE m.user_id = $1
	ORDER BY g.created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying member groups")
	}

	groups := make([]group.Group, len(rows))
	for i, row := range rows {
		groups[i] = row.toGroup()
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	if err := repo.db.GetContext(ctx, &row, groupSelect+` WHERE g.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "getting group")
	}

	g := row.toGroup()
	memberIDs, err := repo.GetGroupMemberIDs(ctx, g.ID)
	if err != nil {
		return group.Group{}, err
	}
	g.MemberIDs = memberIDs
	return g, nil
}

func (repo *groupRepository) GetGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	memberIDs := make([]string, 0)
	const q = `SELECT user_id FROM user_group WHERE group_id = $1`
	if err := repo.db.SelectContext(ctx, &memberIDs, q, groupID); err != nil {
		return nil, errors.Wrap(err, "querying group members")
	}
	return memberIDs, nil
}

func (repo *groupRepository) GetUserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	groupIDs := make([]string, 0)
	const q = `SELECT group_id FROM user_group WHERE user_id = $1`
	if err := repo.db.SelectContext(ctx, &groupIDs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user memberships")
	}
	return groupIDs, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.Group, addMemberIDs, removeMemberIDs []string) (group.Group, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	UPDATE "group"
	SET name = $2, description = $3, cohort_id = $4, status = $5, updated_at = $6
	WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		g.ID, g.Name, g.Description, g.CohortID, g.Status, g.UpdatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, group.ErrNotFound
	}

	if err = addMembers(ctx, tx, g.ID, addMemberIDs); err != nil {
		return group.Group{}, err
	}
	if len(removeMemberIDs) > 0 {
		const dq = `DELETE FROM user_group WHERE group_id = $1 AND user_id = ANY($2)`
		if _, err = tx.ExecContext(ctx, dq, g.ID, pq.Array(removeMemberIDs)); err != nil {
			return group.Group{}, errors.Wrap(err, "removing members")
		}
	}
	if err = tx.Commit(); err != nil {
		return group.Group{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetGroupByID(ctx, g.ID)
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	// memberships and assignment links go with the group (FK ON DELETE CASCADE)
	const q = `DELETE FROM "group" WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting groups")
	}
	return nil
}

// addMembers inserts user_group rows, skipping pairs that already exist.
func addMembers(ctx context.Context, tx core.DBExecutor, groupID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	const q = `
	INSERT INTO user_group (user_id, group_id) VALUES ($1, $2)
	ON CONFLICT (user_id, group_id) DO NOTHING`
	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, q, userID, groupID); err != nil {
			return errors.Wrap(err, "adding member")
		}
	}
	return nil
}
