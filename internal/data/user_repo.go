package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/estatehub/estate-api/internal/core"
	"github.com/estatehub/estate-api/internal/data/pgxutil"
	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

var _ core.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, password_hash, name, surname, role, phonenumber, info, profilepic, featured, created_at, updated_at`

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	now func() time.Time
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, now: time.Now}
}

// NewUserRepoWithClock is NewUserRepo with an injected clock.
func NewUserRepoWithClock(db *sql.DB, now func() time.Time) *UserRepo {
	return &UserRepo{DB: db, now: now}
}

// Create inserts a new user. Duplicate email or phone number surfaces as a Conflict.
func (r *UserRepo) Create(ctx context.Context, params core.CreateUserParams) (*model.User, error) {
	role := params.Role
	if role == "" {
		role = domainauth.RoleUser
	}
	now := r.now().UTC()

	return r.queryOne(ctx, `
		INSERT INTO users (email, password_hash, name, surname, role, phonenumber, info, profilepic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(params.Email)),
		params.PasswordHash,
		params.Name,
		params.Surname,
		string(role),
		params.PhoneNumber,
		params.Info,
		params.ProfilePic,
		now,
	)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by lower-cased email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// Update applies the set fields. An empty update returns the current row.
func (r *UserRepo) Update(ctx context.Context, id string, params core.UpdateUserParams) (*model.User, error) {
	setClause, args := r.buildUpdateClause(params)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := "UPDATE users SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + userColumns
	return r.queryOne(ctx, query, args...)
}

func (r *UserRepo) buildUpdateClause(params core.UpdateUserParams) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	add("password_hash", params.PasswordHash)
	add("name", params.Name)
	add("surname", params.Surname)
	add("phonenumber", params.PhoneNumber)
	add("info", params.Info)
	add("profilepic", params.ProfilePic)

	if len(setParts) == 0 {
		return "", nil
	}
	args = append(args, r.now().UTC())
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", len(args)))
	return strings.Join(setParts, ", "), args
}

// SetRole changes a user's role.
func (r *UserRepo) SetRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "invalid role")
	}
	return r.queryOne(ctx, `
		UPDATE users SET role = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, string(role), r.now().UTC())
}

// ToggleFeatured flips membership of propertyID in the user's featured list in one statement.
func (r *UserRepo) ToggleFeatured(ctx context.Context, userID, propertyID string) (*model.User, error) {
	return r.queryOne(ctx, `
		UPDATE users
		SET featured = CASE
		        WHEN $2::text = ANY (featured) THEN array_remove(featured, $2::text)
		        ELSE array_append(featured, $2::text)
		    END,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		userID, propertyID, r.now().UTC())
}

func (r *UserRepo) queryOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	if out.Featured == nil {
		out.Featured = []string{}
	}
	return &out, nil
}
