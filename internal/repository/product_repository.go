package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"giftfeed/internal/model"
)

// Execer is the slice of pgxpool.Pool the repositories need; tests swap in
// a fake.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type ProductRepository struct {
	DB Execer
}

const upsertSQL = `
	INSERT INTO products
		(title, description, price, currency, image_url, source_url, platform, source_network, category, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (source_url) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		currency = EXCLUDED.currency,
		image_url = EXCLUDED.image_url,
		platform = EXCLUDED.platform,
		source_network = EXCLUDED.source_network,
		category = EXCLUDED.category,
		updated_at = EXCLUDED.updated_at
`

const upsertNoTimestampSQL = `
	INSERT INTO products
		(title, description, price, currency, image_url, source_url, platform, source_network, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (source_url) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		currency = EXCLUDED.currency,
		image_url = EXCLUDED.image_url,
		platform = EXCLUDED.platform,
		source_network = EXCLUDED.source_network,
		category = EXCLUDED.category
`

// Upsert writes p keyed by source_url: insert if absent, overwrite the
// mutable fields otherwise. Some hosted schemas reject the updated_at
// write (trigger-managed column); one retry without it avoids losing the
// row over a timestamp mismatch.
func (r *ProductRepository) Upsert(ctx context.Context, p model.Product) error {
	_, err := r.DB.Exec(ctx, upsertSQL,
		p.Title, p.Description, p.Price, p.Currency, p.ImageURL,
		p.SourceURL, p.Platform, p.Network, p.Category, p.UpdatedAt,
	)
	if err == nil {
		return nil
	}
	if _, retryErr := r.DB.Exec(ctx, upsertNoTimestampSQL,
		p.Title, p.Description, p.Price, p.Currency, p.ImageURL,
		p.SourceURL, p.Platform, p.Network, p.Category,
	); retryErr == nil {
		return nil
	}
	return err
}
