package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/usermgmt/apiserver/config"
	"github.com/usermgmt/apiserver/types"
)

const usersTable = "users"

var userColumns = []string{"id", "username", "email", "is_deleted", "created_at", "updated_at"}

// UserRepository handles persistence for users.
type UserRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewUserRepository builds a repository for the given driver. The driver only
// selects the placeholder style; both dialects share the same statements.
func NewUserRepository(db *sql.DB, driver string) *UserRepository {
	var format sq.PlaceholderFormat = sq.Dollar
	if driver == config.DriverSQLite {
		format = sq.Question
	}
	return &UserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// FindAll returns every user, soft-deleted ones included, ordered by id.
func (r *UserRepository) FindAll(ctx context.Context) ([]types.User, error) {
	return r.queryUsers(ctx, r.selectUsers())
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (types.User, error) {
	query, args, err := r.selectUsers().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return types.User{}, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) ([]types.User, error) {
	return r.queryUsers(ctx, r.selectUsers().Where(sq.Eq{"username": username}))
}

// ExistsByUsername reports whether any row, deleted or not, uses username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From(usersTable).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) FindByIsDeleted(ctx context.Context, deleted bool) ([]types.User, error) {
	return r.queryUsers(ctx, r.selectUsers().Where(sq.Eq{"is_deleted": deleted}))
}

// Save inserts user when it has no id yet and updates it otherwise.
// The returned user carries the store-assigned id and timestamps.
func (r *UserRepository) Save(ctx context.Context, user types.User) (types.User, error) {
	if user.ID == 0 {
		return r.create(ctx, user)
	}
	return r.update(ctx, user)
}

func (r *UserRepository) create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := r.builder.
		Insert(usersTable).
		Columns("username", "email", "is_deleted", "created_at", "updated_at").
		Values(user.Username, user.Email, user.IsDeleted, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return types.User{}, err
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now().UTC()

	query, args, err := r.builder.
		Update(usersTable).
		Set("username", user.Username).
		Set("email", user.Email).
		Set("is_deleted", user.IsDeleted).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return types.User{}, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) selectUsers() sq.SelectBuilder {
	return r.builder.Select(userColumns...).From(usersTable).OrderBy("id")
}

func (r *UserRepository) queryUsers(ctx context.Context, builder sq.SelectBuilder) ([]types.User, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
