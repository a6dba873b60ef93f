package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	// Repository persists users and their group memberships.
	// CreateUser and UpdateUser must apply the user row and the membership
	// changes as a single atomic unit.
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User, groupIDs []string) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserGroupIDs(ctx context.Context, userID string) ([]string, error)
		UpdateUser(ctx context.Context, usr User, addGroupIDs, removeGroupIDs []string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		// Authenticate signs a user in by institutional email; unknown emails
		// get an account auto-created with the DEVELOPER role. An existing
		// user keeps their stored role regardless of the requested one.
		Authenticate(ctx context.Context, email, fullName, role string) (User, error)
		Create(ctx context.Context, nu NewUser) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		// BulkDelete removes users one by one; the requester is silently
		// filtered out of the id list, never deleted.
		BulkDelete(ctx context.Context, requesterID string, ids ...string) (int, error)
		CheckUniqueness(ctx context.Context, email string, excluded ...User) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	if conf.EmailDomain != "" {
		emailDomain = conf.EmailDomain
	}
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, excluded ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewConflictError(err.Error())
		}
		return err
	}
	return nil
}

func (svc *service) Authenticate(ctx context.Context, email, fullName, role string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if !strings.HasSuffix(email, emailDomain) {
		return User{}, core.NewValidationError(
			errors.New(eduEmailText()),
			core.FieldError{Field: "email", Error: eduEmailText()},
		)
	}

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by email")
		}

		// first login: auto-create with the DEVELOPER role unless a valid
		// one was requested
		if !IsValidRole(role) {
			role = RoleDeveloper
		}
		fullName = core.CleanString(fullName)
		if fullName == "" {
			fullName = strings.SplitN(email, "@", 2)[0]
		}
		now := time.Now().UTC()
		usr, err = svc.repo.CreateUser(ctx, User{
			Email:     email,
			FullName:  fullName,
			Role:      role,
			Status:    StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil)
		if err != nil {
			return User{}, errors.Wrap(err, "creating user on first login")
		}
	}

	usr, err = svc.repo.SetLastLogin(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	role := nu.Role
	if role == "" {
		role = RoleDeveloper
	}
	status := nu.Status
	if status == "" {
		status = StatusActive
	}
	usr, err := svc.repo.CreateUser(ctx, User{
		Email:     nu.Email,
		FullName:  nu.FullName,
		Role:      role,
		Status:    status,
		IsTrainee: nu.IsTrainee,
		CreatedAt: now,
		UpdatedAt: now,
	}, nu.GroupIDs)
	if err != nil {
		return User{}, err
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	orig, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	usr := User{
		ID:        id,
		Email:     uu.Email,
		FullName:  uu.FullName,
		Role:      uu.Role,
		Status:    uu.Status,
		IsTrainee: orig.IsTrainee,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.IsTrainee != nil {
		usr.IsTrainee = *uu.IsTrainee
	}

	// reconcile memberships by diff; nil means "leave them alone"
	var toAdd, toRemove []string
	if uu.GroupIDs != nil {
		current, err := svc.repo.GetUserGroupIDs(ctx, id)
		if err != nil {
			return User{}, errors.Wrap(err, "resolving current memberships")
		}
		toAdd, toRemove = core.DiffStrings(current, uu.GroupIDs)
	}
	return svc.repo.UpdateUser(ctx, usr, toAdd, toRemove)
}

func (svc *service) BulkDelete(ctx context.Context, requesterID string, ids ...string) (int, error) {
	validIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != requesterID {
			validIDs = append(validIDs, id)
		}
	}
	if len(validIDs) == 0 {
		return 0, nil
	}
	if err := svc.repo.DeleteUsersByID(ctx, validIDs...); err != nil {
		return 0, err
	}
	return len(validIDs), nil
}

func (svc *service) sendWelcomeMail(usr User) {
	body := fmt.Sprintf(
		"Hi %s,\n\nAn account has been created for you on %s.\nSign in with this email address at %s to see what has been assigned to you.",
		usr.DisplayName(), svc.conf.AppName, svc.conf.FrontendBaseURL,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.DisplayName(), Address: usr.Email}},
		Subject: "Welcome aboard",
		BodyStr: body,
	})
}
