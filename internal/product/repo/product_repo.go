package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/product/entity"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/database"
)

// Repo is the repository for the products table.
type Repo struct {
	db        *sqlx.DB
	chunkRows int
}

const productColumns = 5

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db, chunkRows: database.ChunkRows(productColumns)}
}

// InsertMany stores all rows in one transaction, using as few multi-row INSERTs as the
// bind parameter limit allows.
func (r *Repo) InsertMany(ctx context.Context, rows []entity.NewProduct) error {
	const q = `INSERT INTO products (id, business_id, department, data, created_at)
		VALUES (:id, :business_id, :department, CAST(:data AS jsonb), :created_at)`
	if err := database.NamedExecChunked(ctx, r.db, q, rows, r.chunkRows); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// GetByBusinessID returns the earliest uploaded product with the article, or
// sql.ErrNoRows.
func (r *Repo) GetByBusinessID(ctx context.Context, businessID string) (*entity.Product, error) {
	const q = `SELECT id, business_id, department, data, created_at
		FROM products WHERE business_id=$1 ORDER BY created_at, id LIMIT 1`
	var p entity.Product
	if err := r.db.GetContext(ctx, &p, q, businessID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistingIDs returns the subset of ids that are stored products.
func (r *Repo) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []string
	if err := r.db.SelectContext(ctx, &rows, `SELECT id FROM products WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}
