package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/user"
)

type userRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	Role      string    `db:"role"`
	Status    string    `db:"status"`
	IsTrainee bool      `db:"is_trainee"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	LastLogin time.Time `db:"last_login"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:        row.ID,
		Email:     row.Email,
		FullName:  row.FullName,
		Role:      row.Role,
		Status:    row.Status,
		IsTrainee: row.IsTrainee,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		LastLogin: row.LastLogin,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var (
	_ user.Repository               = (*userRepository)(nil) // interface compliance check
	_ assignment.MembershipResolver = (*userRepository)(nil)
)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	excludedIDs := make([]string, len(excludedUsers))
	for i, usr := range excludedUsers {
		excludedIDs[i] = usr.ID
	}

	var count int
	const q = `SELECT COUNT(*) FROM "user" WHERE email = $1 AND id != ALL($2)`
	if err := repo.db.GetContext(ctx, &count, q, email, pq.Array(excludedIDs)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, groupIDs []string) (user.User, error) {
	usr.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	INSERT INTO "user" (id, email, full_name, role, status, is_trainee, created_at, updated_at, last_login)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(ctx, q,
		usr.ID, usr.Email, usr.FullName, usr.Role, usr.Status, usr.IsTrainee,
		usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	if err = addMemberships(ctx, tx, usr.ID, groupIDs); err != nil {
		return user.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing tx")
	}

	usr.GroupIDs = groupIDs
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	const q = `SELECT * FROM "user" ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	const q = `SELECT * FROM "user" WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}

	usr := row.toUser()
	groupIDs, err := repo.GetUserGroupIDs(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}
	usr.GroupIDs = groupIDs
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	const q = `SELECT * FROM "user" WHERE email = $1`
	if err := repo.db.GetContext(ctx, &row, q, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	groupIDs := make([]string, 0)
	const q = `SELECT group_id FROM user_group WHERE user_id = $1`
	if err := repo.db.SelectContext(ctx, &groupIDs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user memberships")
	}
	return groupIDs, nil
}

func (repo *userRepository) QueryUsersByGroups(ctx context.Context, groupIDs ...string) ([]user.User, error) {
	var rows []userRow
	const q = `
	SELECT u.* FROM "user" u
	JOIN user_group ug ON ug.user_id = u.id
	WHERE ug.group_id = ANY($1)`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(groupIDs)); err != nil {
		return nil, errors.Wrap(err, "querying group members")
	}

	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, addGroupIDs, removeGroupIDs []string) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	UPDATE "user"
	SET email = $2, full_name = $3, role = $4, status = $5, is_trainee = $6, updated_at = $7
	WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		usr.ID, usr.Email, usr.FullName, usr.Role, usr.Status, usr.IsTrainee, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}

	if err = addMemberships(ctx, tx, usr.ID, addGroupIDs); err != nil {
		return user.User{}, err
	}
	if len(removeGroupIDs) > 0 {
		const dq = `DELETE FROM user_group WHERE user_id = $1 AND group_id = ANY($2)`
		if _, err = tx.ExecContext(ctx, dq, usr.ID, pq.Array(removeGroupIDs)); err != nil {
			return user.User{}, errors.Wrap(err, "removing memberships")
		}
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	const q = `UPDATE "user" SET last_login = $2 WHERE id = $1 RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, usr.ID, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return row.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	// memberships and completions go with the user (FK ON DELETE CASCADE)
	const q = `DELETE FROM "user" WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

// addMemberships inserts user_group rows, skipping pairs that already exist.
func addMemberships(ctx context.Context, tx core.DBExecutor, userID string, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	const q = `
	INSERT INTO user_group (user_id, group_id) VALUES ($1, $2)
	ON CONFLICT (user_id, group_id) DO NOTHING`
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx, q, userID, groupID); err != nil {
			return errors.Wrap(err, "adding membership")
		}
	}
	return nil
}
