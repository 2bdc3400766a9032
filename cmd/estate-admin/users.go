package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/estatehub/estate-api/internal/adapters/password"
	redisstore "github.com/estatehub/estate-api/internal/adapters/redis"
	"github.com/estatehub/estate-api/internal/data"
	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	"github.com/estatehub/estate-api/internal/service"
)

type usersCreateOptions struct {
	Email    string
	Password string
	Name     string
	Surname  string
	Phone    string
	Admin    bool
}

type usersSetRoleOptions struct {
	UserID string
	Role   string
	Revoke bool
}

func newUserService(cmdCtx *commandContext, db *sql.DB) *service.UserService {
	return service.NewUserService(service.UserServiceOptions{
		Users:      data.NewUserRepo(db),
		Properties: data.NewPropertyRepo(db),
		Hasher:     password.NewHasher(cmdCtx.Config.Auth.BcryptCost),
		Logger:     cmdCtx.Logger,
	})
}

func runUsersCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseUsersCreateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		svc := newUserService(cmdCtx, db)
		user, regErr := svc.Register(ctx, &model.CreateUserRequest{
			Email:           opts.Email,
			Password:        opts.Password,
			PasswordConfirm: opts.Password,
			Name:            opts.Name,
			Surname:         opts.Surname,
			PhoneNumber:     opts.Phone,
		})
		if regErr != nil {
			return fmt.Errorf("register user: %w", regErr)
		}
		if opts.Admin {
			if user, regErr = svc.SetRole(ctx, user.ID, string(domainauth.RoleAdmin)); regErr != nil {
				return fmt.Errorf("grant admin role: %w", regErr)
			}
		}
		return writef(cmdCtx.Out, "Created user %s (%s) with role %s.\n", user.ID, user.Email, user.Role)
	})
}

func parseUsersCreateFlags(args []string) (usersCreateOptions, error) {
	fs := flag.NewFlagSet("users-create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := usersCreateOptions{}
	fs.StringVar(&opts.Email, "email", "", "Email address (login name)")
	fs.StringVar(&opts.Name, "name", "", "First name")
	fs.StringVar(&opts.Surname, "surname", "", "Last name")
	fs.StringVar(&opts.Phone, "phone", "", "Phone number")
	fs.BoolVar(&opts.Admin, "admin", false, "Grant the admin role after registration")

	if err := fs.Parse(args); err != nil {
		return usersCreateOptions{}, err
	}
	// Passwords come from the environment so they stay out of shell history.
	opts.Password = os.Getenv("ESTATE_ADMIN_PASSWORD")

	var missing []string
	if strings.TrimSpace(opts.Email) == "" {
		missing = append(missing, "--email")
	}
	if strings.TrimSpace(opts.Name) == "" {
		missing = append(missing, "--name")
	}
	if strings.TrimSpace(opts.Surname) == "" {
		missing = append(missing, "--surname")
	}
	if opts.Password == "" {
		missing = append(missing, "ESTATE_ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return usersCreateOptions{}, fmt.Errorf("missing required input: %s", strings.Join(missing, ", "))
	}
	return opts, nil
}

func runUsersSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseUsersSetRoleFlags(args)
	if err != nil {
		return err
	}

	err = withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		user, setErr := newUserService(cmdCtx, db).SetRole(ctx, opts.UserID, opts.Role)
		if setErr != nil {
			return fmt.Errorf("set role: %w", setErr)
		}
		return writef(cmdCtx.Out, "User %s (%s) now has role %s.\n", user.ID, user.Email, user.Role)
	})
	if err != nil || !opts.Revoke {
		return err
	}

	// The live session still carries the old role until it is replaced.
	return withSessionStore(cmdCtx, func(ctx context.Context, store *redisstore.SessionStore) error {
		if delErr := store.Delete(ctx, opts.UserID); delErr != nil {
			return fmt.Errorf("revoke session: %w", delErr)
		}
		return writef(cmdCtx.Out, "Session for %s revoked.\n", opts.UserID)
	})
}

func parseUsersSetRoleFlags(args []string) (usersSetRoleOptions, error) {
	fs := flag.NewFlagSet("users-set-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := usersSetRoleOptions{}
	fs.StringVar(&opts.UserID, "user", "", "ID of the user to change")
	fs.StringVar(&opts.Role, "role", "", "New role (admin or user)")
	fs.BoolVar(&opts.Revoke, "revoke", false, "Also delete the user's live session")

	if err := fs.Parse(args); err != nil {
		return usersSetRoleOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return usersSetRoleOptions{}, errors.New("--user is required")
	}
	role, err := domainauth.ParseRole(opts.Role)
	if err != nil {
		return usersSetRoleOptions{}, fmt.Errorf("--role: %w", err)
	}
	opts.Role = string(role)
	return opts, nil
}
