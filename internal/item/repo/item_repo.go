package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/item/entity"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/database"
)

type ItemRepo struct {
	db        *sqlx.DB
	chunkRows int
}

const itemColumns = 9

func NewItemRepo(db *sqlx.DB) *ItemRepo {
	return &ItemRepo{db: db, chunkRows: database.ChunkRows(itemColumns)}
}

// InsertMany writes the whole batch in one transaction, so either every item is stored
// or none is.
func (r *ItemRepo) InsertMany(ctx context.Context, items []entity.Item) error {
	const q = `INSERT INTO items (id, product_id, program_quantity, fact_quantity, comment, status, created_by, created_at, expires_at)
		VALUES (:id, :product_id, :program_quantity, :fact_quantity, :comment, :status, :created_by, :created_at, :expires_at)`
	if err := database.NamedExecChunked(ctx, r.db, q, items, r.chunkRows); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func (r *ItemRepo) MarkStarted(ctx context.Context, id string, startedAt, expiresAt time.Time) (int64, error) {
	const q = `UPDATE items SET status=$2, started_at=$3, expires_at=$4
		WHERE id=$1 AND status <> $5`
	res, err := r.db.ExecContext(ctx, q, id, entity.StatusInProgress, startedAt, expiresAt, entity.StatusClosed)
	if err != nil {
		return 0, fmt.Errorf("start item: %w", err)
	}
	return res.RowsAffected()
}

func (r *ItemRepo) MarkClosed(ctx context.Context, id string, closedAt time.Time, comment string) (int64, error) {
	const q = `UPDATE items SET status=$2, closed_at=$3, close_comment=$4
		WHERE id=$1 AND status <> $2`
	res, err := r.db.ExecContext(ctx, q, id, entity.StatusClosed, closedAt, comment)
	if err != nil {
		return 0, fmt.Errorf("close item: %w", err)
	}
	return res.RowsAffected()
}

const listQuery = `SELECT i.id, i.product_id, i.program_quantity, i.fact_quantity, i.comment, i.status,
		i.created_by, i.created_at, i.expires_at, i.started_at, i.closed_at, i.close_comment,
		p.id AS "product.id", p.business_id AS "product.business_id",
		p.department AS "product.department", p.data AS "product.data",
		p.created_at AS "product.created_at",
		u.first_name AS "creator.first_name", u.last_name AS "creator.last_name"
	FROM items i
	JOIN products p ON p.id = i.product_id
	JOIN users u ON u.id = i.created_by
	WHERE i.expires_at > $1`

// ListActive returns unexpired items. A nil department lists every department.
func (r *ItemRepo) ListActive(ctx context.Context, now time.Time, department *int) ([]entity.ListedItem, error) {
	q := listQuery
	args := []any{now}
	if department != nil {
		q += ` AND p.department = $2`
		args = append(args, *department)
	}
	q += ` ORDER BY i.created_at, i.id`

	items := []entity.ListedItem{}
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}
