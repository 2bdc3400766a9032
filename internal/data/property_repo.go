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
	"github.com/estatehub/estate-api/internal/data/database"
	"github.com/estatehub/estate-api/internal/data/pgxutil"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

var _ core.PropertyRepository = (*PropertyRepo)(nil)

const (
	defaultPropertyLimit = 20
	// propertyListingsView joins each property with its author's contact columns.
	propertyListingsView = "property_listings"
)

// propertyRow flattens a property_listings row; pgx maps embedded struct fields by db tag.
type propertyRow struct {
	model.Property
	model.Author
}

func (r propertyRow) toModel() *model.Property {
	p := r.Property
	p.Author = r.Author
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p
}

func propertyListingColumns() []string {
	return []string{
		"id", "type", "state", "price", "address", "area", "rooms", "floor", "images", "info",
		"author_id", "author_email", "author_name", "author_surname", "author_phonenumber",
		"created_at", "updated_at",
	}
}

// PropertyRepo provides database operations for listings.
type PropertyRepo struct {
	DB           *sql.DB
	now func() time.Time
}

// NewPropertyRepo creates a new PropertyRepo with real time provider.
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{DB: db, now: time.Now}
}

// NewPropertyRepoWithClock is NewPropertyRepo with an injected clock.
func NewPropertyRepoWithClock(db *sql.DB, now func() time.Time) *PropertyRepo {
	return &PropertyRepo{DB: db, now: now}
}

// Create inserts a listing owned by authorID and returns it with the author block populated.
func (r *PropertyRepo) Create(ctx context.Context, authorID string, req *model.CreatePropertyRequest) (*model.Property, error) {
	if req == nil {
		return nil, errors.New("create property request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	var id string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO properties (type, state, price, address, area, rooms, floor, images, info, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			RETURNING id::text`,
			req.Type, req.State, req.Price, req.Address, req.Area, req.Rooms, req.Floor,
			req.Images, req.Info, authorID, now,
		).Scan(&id)
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a listing by ID.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*model.Property, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions(propertyListingsView,
		database.WithColumns(propertyListingColumns()...),
		database.WithCondition(database.WhereCond("id", database.Equal, id)),
	))

	var row propertyRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		row, err = pgxutil.CollectOne[propertyRow](ctx, conn, query, args...)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return row.toModel(), nil
}

// List returns listings newest first, filtered by opts.
func (r *PropertyRepo) List(ctx context.Context, opts model.PropertyListOptions) ([]*model.Property, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPropertyLimit
	}
	queryOpts := []database.ListQueryOption{
		database.WithColumns(propertyListingColumns()...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(max(opts.Offset, 0)),
	}
	if opts.Type != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("type", database.Equal, string(*opts.Type))))
	}
	if opts.State != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("state", database.Equal, string(*opts.State))))
	}
	if opts.AuthorEmail != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("author_email", database.Equal, strings.ToLower(strings.TrimSpace(*opts.AuthorEmail)))))
	}
	if opts.IDs != nil {
		if len(opts.IDs) == 0 {
			return []*model.Property{}, nil
		}
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("id", database.Any, opts.IDs)))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions(propertyListingsView, queryOpts...))

	var rowsOut []propertyRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		rowsOut, err = pgxutil.CollectAll[propertyRow](ctx, conn, query, args...)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Property, len(rowsOut))
	for i := range rowsOut {
		res[i] = rowsOut[i].toModel()
	}
	return res, nil
}

// Update applies the set fields of req.
func (r *PropertyRepo) Update(ctx context.Context, id string, req model.UpdatePropertyRequest) (*model.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := r.buildUpdateClause(req)
	args = append(args, id)
	query := "UPDATE properties SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args))

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	if affected == 0 {
		return nil, ErrPropertyNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PropertyRepo) buildUpdateClause(req model.UpdatePropertyRequest) (string, []any) {
	setParts := make([]string, 0, 10)
	args := make([]any, 0, 11)
	set := func(col string, v any) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	for _, f := range []struct {
		col string
		val *string
	}{
		{"type", req.Type},
		{"state", req.State},
		{"price", req.Price},
		{"address", req.Address},
		{"area", req.Area},
		{"rooms", req.Rooms},
		{"floor", req.Floor},
		{"info", req.Info},
	} {
		if f.val != nil {
			set(f.col, *f.val)
		}
	}
	if req.Images != nil {
		set("images", *req.Images)
	}
	set("updated_at", r.now().UTC())
	return strings.Join(setParts, ", "), args
}

// Delete removes the listing and strips its id from every featured list atomically.
func (r *PropertyRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	err := pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		if affected == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET featured = array_remove(featured, $1::text)
			WHERE $1::text = ANY (featured)`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
