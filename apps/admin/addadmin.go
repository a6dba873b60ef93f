package main

import (
	"context"
	"strings"
	"time"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
)

// addAdmin creates a board admin, or promotes the user if the email is taken.
func (cli *commandLine) addAdmin(email, name string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, user.User{
			Email:     email,
			FullName:  name,
			Role:      user.RoleBoardAdmin,
			Status:    user.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil)
		return err
	}

	usr.Role = user.RoleBoardAdmin
	usr.Status = user.StatusActive
	usr.UpdatedAt = now
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil, nil)
	return err
}
