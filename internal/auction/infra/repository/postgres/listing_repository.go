package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmontero/liveauction/internal/auction/domain"
)

// ListingRepository implements domain.ListingRepository on PostgreSQL.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
        INSERT INTO auction_items (id, name, description, starting_price, current_price, highest_bidder)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.Name,
		listing.Description,
		listing.StartingPrice,
		listing.CurrentPrice,
		listing.HighestBidder,
	)
	return err
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `
        SELECT id, name, description, starting_price, current_price, highest_bidder
        FROM auction_items
        WHERE id = $1
    `
	listing := &domain.Listing{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.Name,
		&listing.Description,
		&listing.StartingPrice,
		&listing.CurrentPrice,
		&listing.HighestBidder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	query := `
        SELECT id, name, description, starting_price, current_price, highest_bidder
        FROM auction_items
        ORDER BY name ASC
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing := &domain.Listing{}
		err := rows.Scan(
			&listing.ID,
			&listing.Name,
			&listing.Description,
			&listing.StartingPrice,
			&listing.CurrentPrice,
			&listing.HighestBidder,
		)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auction_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// UpdatePrice persists an accepted bid. The arbiter already serialized the
// decision, here we only write the outcome.
func (r *ListingRepository) UpdatePrice(ctx context.Context, id string, price float64, bidder string) error {
	query := `
        UPDATE auction_items
        SET current_price = $2, highest_bidder = $3
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, id, price, bidder)
	if err != nil {
		return fmt.Errorf("listing repository: failed to update price for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
