package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmontero/liveauction/internal/admin/domain"
)

// AdminRepository implements domain.AdminRepository on PostgreSQL.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (username, hashed_password) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, query, admin.Username, admin.HashedPassword)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAdminExists
		}
		return err
	}
	return nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `SELECT username, hashed_password FROM admins WHERE username = $1`
	admin := &domain.Admin{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&admin.Username, &admin.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}
