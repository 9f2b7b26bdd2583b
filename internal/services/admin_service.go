package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/ender-admin-auth/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// AdminStore defines the persistence contract for admin accounts.
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	FindByID(ctx context.Context, id string) (models.Admin, error)
	Create(ctx context.Context, admin models.Admin) (models.Admin, error)
	UpdateLoginState(ctx context.Context, id string, isLoggedIn bool, expiresAt *time.Time) (models.Admin, error)
	ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// AdminService stores admin accounts in SQLite.
type AdminService struct {
	db *sql.DB
}

// NewAdminService creates a new AdminService.
func NewAdminService(db *sql.DB) *AdminService {
	return &AdminService{db: db}
}

const adminColumns = `id, email, password_hash, name, surname, photo, enabled, removed,
	is_logged_in, session_expires_at, created_at`

// scanAdmin is a helper to scan an admin from a row or rows object.
func scanAdmin(scanner interface{ Scan(...interface{}) error }) (models.Admin, error) {
	var admin models.Admin
	var photo sql.NullString
	var loggedIn sql.NullBool
	var expires sql.NullInt64

	err := scanner.Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name, &admin.Surname, &photo,
		&admin.Enabled, &admin.Removed, &loggedIn, &expires, &admin.CreatedAt,
	)
	if err != nil {
		return models.Admin{}, err
	}

	admin.Photo = photo.String
	if loggedIn.Valid {
		v := loggedIn.Bool
		admin.IsLoggedIn = &v
	}
	if expires.Valid {
		t := time.Unix(expires.Int64, 0).UTC()
		admin.SessionExpiresAt = &t
	}
	return admin, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail retrieves an admin by email, including the password hash.
func (s *AdminService) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+adminColumns+" FROM admins WHERE email = ?", NormalizeEmail(email))
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, fmt.Errorf("failed to find admin by email: %w", err)
	}
	return admin, nil
}

// FindByID retrieves an admin by ID.
func (s *AdminService) FindByID(ctx context.Context, id string) (models.Admin, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+adminColumns+" FROM admins WHERE id = ?", id)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, fmt.Errorf("failed to find admin %s: %w", id, err)
	}
	return admin, nil
}

// Create inserts a new admin. ID and CreatedAt are assigned here; the password
// hash must already be set.
func (s *AdminService) Create(ctx context.Context, admin models.Admin) (models.Admin, error) {
	admin.ID = uuid.New().String()
	admin.Email = NormalizeEmail(admin.Email)
	admin.Photo = strings.TrimSpace(admin.Photo)
	admin.Enabled = true
	admin.Removed = false
	admin.IsLoggedIn = nil
	admin.SessionExpiresAt = nil
	admin.CreatedAt = time.Now().UTC().Truncate(time.Second)

	var photo sql.NullString
	if admin.Photo != "" {
		photo = sql.NullString{String: admin.Photo, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash, name, surname, photo, enabled, removed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name, admin.Surname, photo,
		admin.Enabled, admin.Removed, admin.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

// UpdateLoginState sets the single-session flag and the expiry of the token
// that set it. A nil expiresAt clears the stored expiry.
func (s *AdminService) UpdateLoginState(ctx context.Context, id string, isLoggedIn bool, expiresAt *time.Time) (models.Admin, error) {
	var expires sql.NullInt64
	if expiresAt != nil {
		expires = sql.NullInt64{Int64: expiresAt.Unix(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE admins SET is_logged_in = ?, session_expires_at = ? WHERE id = ?",
		isLoggedIn, expires, id,
	)
	if err != nil {
		return models.Admin{}, fmt.Errorf("failed to update login state for admin %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Admin{}, err
	}
	if n == 0 {
		return models.Admin{}, ErrAdminNotFound
	}
	return s.FindByID(ctx, id)
}

// ClearExpiredSessions logs out every admin whose last token expired at or
// before now. It returns the number of accounts changed.
func (s *AdminService) ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE admins SET is_logged_in = 0
		WHERE is_logged_in = 1 AND session_expires_at IS NOT NULL AND session_expires_at <= ?`,
		now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
