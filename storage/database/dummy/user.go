package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/user"
)

type userRepository struct {
	db *DB
}

var (
	_ user.Repository               = (*userRepository)(nil) // interface compliance check
	_ assignment.MembershipResolver = (*userRepository)(nil)
)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

// query returns all users with their memberships attached.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		usr := *u
		usr.GroupIDs = repo.db.userGroupIDs(usr.ID)
		users = append(users, usr)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email != email {
			continue
		}
		excluded := false
		for _, exclUsr := range excludedUsers {
			if exclUsr.ID == usr.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, groupIDs []string) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	for _, groupID := range groupIDs {
		members, ok := repo.db.memberships[groupID]
		if !ok {
			members = make(map[string]struct{})
			repo.db.memberships[groupID] = members
		}
		members[usr.ID] = struct{}{}
	}
	usr.GroupIDs = repo.db.userGroupIDs(usr.ID)
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		u := *usr
		u.GroupIDs = repo.db.userGroupIDs(u.ID)
		return u, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			u := *usr
			u.GroupIDs = repo.db.userGroupIDs(u.ID)
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.userGroupIDs(userID), nil
}

func (repo *userRepository) QueryUsersByGroups(ctx context.Context, groupIDs ...string) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0)
	for _, groupID := range groupIDs {
		for userID := range repo.db.memberships[groupID] {
			if usr, ok := repo.db.users[userID]; ok {
				users = append(users, *usr)
			}
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, addGroupIDs, removeGroupIDs []string) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	origUsr.Email = usr.Email
	origUsr.FullName = usr.FullName
	origUsr.Role = usr.Role
	origUsr.Status = usr.Status
	origUsr.IsTrainee = usr.IsTrainee
	origUsr.UpdatedAt = usr.UpdatedAt

	for _, groupID := range addGroupIDs {
		members, ok := repo.db.memberships[groupID]
		if !ok {
			members = make(map[string]struct{})
			repo.db.memberships[groupID] = members
		}
		members[usr.ID] = struct{}{}
	}
	for _, groupID := range removeGroupIDs {
		delete(repo.db.memberships[groupID], usr.ID)
	}

	u := *origUsr
	u.GroupIDs = repo.db.userGroupIDs(u.ID)
	return u, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	origUsr.LastLogin = time.Now().UTC()
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
		repo.db.removeUserMemberships(id)
		repo.db.removeUserCompletions(id)
	}
	return nil
}
