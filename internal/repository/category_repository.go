package repository

import (
	"context"
	"database/sql"

	"github.com/fairgrid/fairgrid/internal/model"
)

// CategoryRepo manages the catalog tables and the event-scoped category
// and product links.  Links are diffed and replaced rather than mutated:
// the reconciliation in the enrichment pipeline computes the delta and
// calls DeleteLinks/InsertLink for exactly the rows that changed.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// GetCategories loads catalog entries for the given ids.  Missing ids are
// simply absent from the result; the caller decides whether that is an
// error.
func (r *CategoryRepo) GetCategories(ctx context.Context, ids []uint64) (map[uint64]model.Category, error) {
	out := make(map[uint64]model.Category, len(ids))
	const q = `SELECT id, name, is_group FROM categories WHERE id = ?`
	for _, id := range ids {
		var c model.Category
		err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.IsGroup)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

// GetProducts loads product catalog entries for the given ids.
func (r *CategoryRepo) GetProducts(ctx context.Context, ids []uint64) (map[uint64]model.Product, error) {
	out := make(map[uint64]model.Product, len(ids))
	const q = `SELECT id, name, category_id FROM products WHERE id = ?`
	for _, id := range ids {
		var (
			p   model.Product
			cat sql.NullInt64
		)
		err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &cat)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, err
		}
		p.CategoryID = idPtr(cat)
		out[p.ID] = p
	}
	return out, nil
}

// ListLinks returns the event's current category links.
func (r *CategoryRepo) ListLinks(ctx context.Context, eventID uint64) ([]model.CategoryLink, error) {
	const q = `SELECT event_id, category_id, published, verified, from_product, created_at
               FROM event_categories WHERE event_id = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CategoryLink
	for rows.Next() {
		var l model.CategoryLink
		if err := rows.Scan(&l.EventID, &l.CategoryID, &l.Published, &l.Verified, &l.FromProduct, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertLink adds one category link.  The insert is idempotent: a
// duplicate key only refreshes the flags.
func (r *CategoryRepo) InsertLink(ctx context.Context, l model.CategoryLink) error {
	const q = `INSERT INTO event_categories (event_id, category_id, published, verified, from_product)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE published = VALUES(published), from_product = VALUES(from_product)`
	_, err := r.db.ExecContext(ctx, q, l.EventID, l.CategoryID, l.Published, l.Verified, l.FromProduct)
	return err
}

// DeleteLinks removes the given category links from an event.  Verified
// links are never deleted here; the WHERE clause enforces the policy even
// if a caller passes a verified id by mistake.
func (r *CategoryRepo) DeleteLinks(ctx context.Context, eventID uint64, categoryIDs []uint64) error {
	const q = `DELETE FROM event_categories WHERE event_id = ? AND category_id = ? AND verified = FALSE`
	for _, id := range categoryIDs {
		if _, err := r.db.ExecContext(ctx, q, eventID, id); err != nil {
			return err
		}
	}
	return nil
}

// ListProductLinks returns the event's current product links.
func (r *CategoryRepo) ListProductLinks(ctx context.Context, eventID uint64) ([]model.ProductLink, error) {
	const q = `SELECT event_id, product_id, published, created_at FROM event_products WHERE event_id = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ProductLink
	for rows.Next() {
		var l model.ProductLink
		if err := rows.Scan(&l.EventID, &l.ProductID, &l.Published, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceProductLinks swaps the event's product links for the given set in
// one transaction so readers never observe a half-replaced list.
func (r *CategoryRepo) ReplaceProductLinks(ctx context.Context, eventID uint64, productIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM event_products WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	const ins = `INSERT INTO event_products (event_id, product_id, published) VALUES (?, ?, TRUE)`
	for _, id := range productIDs {
		if _, err = tx.ExecContext(ctx, ins, eventID, id); err != nil {
			return err
		}
	}
	return nil
}
