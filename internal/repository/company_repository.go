package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrCompanyNotFound indicates that a company was not located in the DB.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepo reads organizer companies.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo constructs a CompanyRepo with the given DB handle.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// GetByID retrieves a company by id, returning ErrCompanyNotFound when absent.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (*model.Company, error) {
	const q = `SELECT id, name, contact_user_id FROM companies WHERE id = ?`
	var (
		c       model.Company
		contact sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	c.ContactUserID = idPtr(contact)
	return &c, nil
}
