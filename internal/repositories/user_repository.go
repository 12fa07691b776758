package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "easyrent/internal/config"
	intdb "easyrent/internal/db"
	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Create inserts u and returns its id. A taken username or email is a
// ConflictError.
func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO users (full_name, username, email, contact, city, state, pincode, dob, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FullName, u.Username, strings.ToLower(u.Email), u.Contact, u.City, u.State, u.Pincode, u.DOB, u.PasswordHash,
	)
	if intdb.IsDuplicateKey(err) {
		return 0, domain.ConflictError{Resource: "user", Msg: "username or email already registered", Err: err}
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const userSelect = `
	SELECT id, full_name, username, email, contact, city, state, pincode, dob, password_hash, created_at
	FROM users`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Contact, &u.City, &u.State,
		&u.Pincode, &u.DOB, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	return u, err
}

// FindByLogin matches either the email or the username.
func (r UserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, fmt.Errorf("db not available")
	}
	login = strings.TrimSpace(login)
	return scanUser(db.QueryRowContext(ctx, userSelect+` WHERE email = ? OR username = ? LIMIT 1`, strings.ToLower(login), login))
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, fmt.Errorf("db not available")
	}
	return scanUser(db.QueryRowContext(ctx, userSelect+` WHERE id = ? LIMIT 1`, id))
}
