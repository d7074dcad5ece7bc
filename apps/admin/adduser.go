package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/user"
)

// addUser creates an account straight through the repository. Uniqueness is
// still enforced; the password policy is not, this is an operator tool.
func (cli *commandLine) addUser(name, uname, email, role, studentID, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	r, ok := user.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}
	if r == user.RoleStudent && studentID == "" {
		return fmt.Errorf("student accounts require -student")
	}

	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      r,
		StudentID: studentID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
