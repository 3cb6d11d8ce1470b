package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wallaby-market/wallaby/internal/backend"
)

// ErrDuplicateEmail is returned when an account already exists for the email.
var ErrDuplicateEmail = errors.New("email already registered")

// Account is a stored credential record.
type Account struct {
	ID         uuid.UUID
	Email      string
	SecretHash string
	CreatedAt  time.Time
}

// Repository provides account storage against PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account record. Sets ID and CreatedAt on the account.
func (r *Repository) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	q := `INSERT INTO accounts (id, email, secret_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, q, a.ID, a.Email, a.SecretHash, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanOne(ctx, `SELECT id, email, secret_hash, created_at FROM accounts WHERE email = $1`, email)
}

// GetByID retrieves an account by its identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scanOne(ctx, `SELECT id, email, secret_hash, created_at FROM accounts WHERE id = $1`, id)
}

func (r *Repository) scanOne(ctx context.Context, q string, arg any) (*Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, q, arg).Scan(&a.ID, &a.Email, &a.SecretHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}
