package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// Users is the MySQL UserRepository.
type Users struct {
	DB *sql.DB
}

const userColumns = "id, email, password_hash, full_name, is_admin, created_at, updated_at"

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	result, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		strings.ToLower(u.Email), u.PasswordHash, u.FullName, u.IsAdmin, now, now)
	if err != nil {
		if mysqlErrNumber(err) == errDuplicateEntry {
			return apperr.New(apperr.ErrValidation, "Email is already registered")
		}
		return apperr.Backend("create user", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperr.Backend("create user", err)
	}
	u.ID = id
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(email)))
	if err != nil {
		return models.User{}, notFoundOr("get user", err, "User")
	}
	return u, nil
}

func (r *Users) ByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return models.User{}, notFoundOr("get user", err, "User")
	}
	return u, nil
}

// IsAdmin looks up the is_admin flag. An unknown user is not an admin.
func (r *Users) IsAdmin(ctx context.Context, id int64) (bool, error) {
	var isAdmin bool
	err := r.DB.QueryRowContext(ctx, "SELECT is_admin FROM users WHERE id = ?", id).Scan(&isAdmin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperr.Backend("check admin", err)
	}
	return isAdmin, nil
}

func (r *Users) SetAdmin(ctx context.Context, email string, admin bool) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_admin = ?, updated_at = ? WHERE email = ?",
		admin, time.Now(), strings.ToLower(email))
	if err != nil {
		return apperr.Backend("set admin", err)
	}
	return affectedOrNotFound("set admin", result, "User")
}
