package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront-service/internal/entity"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlErrDuplicateEntry is ER_DUP_ENTRY.
const mysqlErrDuplicateEntry = 1062

type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

const userColumns = `id, email, password_hash, name, phone, created_at, updated_at`

func scanUser(row rowScanner) (*entity.User, error) {
	user := &entity.User{}
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return user, nil
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// CreateUser inserts the user. A duplicate email returns entity.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	now := r.now()
	query := `INSERT INTO users (id, email, password_hash, name, phone, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, now, now)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
			return nil, entity.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error) {
	query := `UPDATE users SET name = ?, phone = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, name, phone, r.now(), id); err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	// RowsAffected is 0 for unchanged values on MySQL, so existence is checked by reading back.
	return r.GetUserByID(ctx, id)
}
