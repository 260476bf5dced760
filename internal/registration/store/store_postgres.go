package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"enroll/internal/registration/models"
	"enroll/pkg/platform/sentinel"
)

// Postgres persists users in PostgreSQL. The users table carries unique
// constraints on username, email and phone; those constraints are the last
// line of defense against registration races, and their violations are
// translated back into ConflictError.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const userColumns = `id, full_name, username, email, phone, password_hash, dob, status, accept_terms, created_at, updated_at, verified_at`

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findBy(ctx, "id", id)
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findBy(ctx, "username", username)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *Postgres) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findBy(ctx, "phone", phone)
}

func (s *Postgres) findBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	row := s.db.QueryRowContext(ctx, query, value)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by %s: %w", column, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return user, nil
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, full_name, username, email, phone, password_hash, dob, status, accept_terms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.DOB,
		string(user.Status),
		user.AcceptTerms,
		user.CreatedAt,
	)
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// asConflict maps a unique-violation (23505) to the offending request field
// via the constraint name. Unknown constraints fall through to the generic
// error path.
func asConflict(err error) *ConflictError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	for _, field := range []string{"username", "email", "phone"} {
		if strings.Contains(pqErr.Constraint, field) {
			return &ConflictError{Fields: []string{field}}
		}
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var status string
	var updatedAt, verifiedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.DOB,
		&status,
		&user.AcceptTerms,
		&user.CreatedAt,
		&updatedAt,
		&verifiedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Status = models.Status(status)
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	if verifiedAt.Valid {
		user.VerifiedAt = &verifiedAt.Time
	}
	return &user, nil
}
