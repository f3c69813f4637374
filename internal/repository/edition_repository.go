package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrEditionNotFound indicates that an edition was not located in the DB.
var ErrEditionNotFound = errors.New("edition not found")

// ErrNoChange indicates an UPDATE carried no fields to apply.
var ErrNoChange = errors.New("no change")

// EditionRepo manages persistence for editions.
type EditionRepo struct {
	db *sql.DB
}

// NewEditionRepo constructs an EditionRepo with the given DB handle.
func NewEditionRepo(db *sql.DB) *EditionRepo {
	return &EditionRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that begin transactions
// spanning multiple repositories.
func (r *EditionRepo) DB() *sql.DB {
	return r.db
}

const editionColumns = `id, event_id, edition_number, starts_on, ends_on, city, country, company_id,
       website, facebook, twitter, linkedin, sales_action_on, sales_actor_id, sales_status, sales_remark,
       exhibitor_total, visitor_total, area_total, created_at, updated_at`

func scanEdition(row interface{ Scan(...any) error }) (*model.Edition, error) {
	var (
		ed         model.Edition
		starts     sql.NullTime
		ends       sql.NullTime
		company    sql.NullInt64
		salesOn    sql.NullTime
		salesActor sql.NullInt64
		exhTotal   sql.NullInt64
		visTotal   sql.NullInt64
		areaTotal  sql.NullInt64
	)
	err := row.Scan(&ed.ID, &ed.EventID, &ed.EditionNumber, &starts, &ends, &ed.City, &ed.Country, &company,
		&ed.Website, &ed.Facebook, &ed.Twitter, &ed.Linkedin, &salesOn, &salesActor, &ed.SalesStatus, &ed.SalesRemark,
		&exhTotal, &visTotal, &areaTotal, &ed.CreatedAt, &ed.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ed.StartsOn = timePtr(starts)
	ed.EndsOn = timePtr(ends)
	ed.CompanyID = idPtr(company)
	ed.SalesActionOn = timePtr(salesOn)
	ed.SalesActorID = idPtr(salesActor)
	if exhTotal.Valid {
		ed.ExhibitorTotal = &exhTotal.Int64
	}
	if visTotal.Valid {
		ed.VisitorTotal = &visTotal.Int64
	}
	if areaTotal.Valid {
		ed.AreaTotal = &areaTotal.Int64
	}
	return &ed, nil
}

// GetByID retrieves an edition by its ID.  It returns ErrEditionNotFound
// if there is no matching row.
func (r *EditionRepo) GetByID(ctx context.Context, id uint64) (*model.Edition, error) {
	const q = `SELECT ` + editionColumns + ` FROM editions WHERE id = ?`
	ed, err := scanEdition(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEditionNotFound
		}
		return nil, err
	}
	return ed, nil
}

// GetByIDTx is GetByID inside a caller-managed transaction, locking the
// row for the duration of the transaction.
func (r *EditionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Edition, error) {
	const q = `SELECT ` + editionColumns + ` FROM editions WHERE id = ? FOR UPDATE`
	ed, err := scanEdition(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEditionNotFound
		}
		return nil, err
	}
	return ed, nil
}

// ListByEvent returns all editions of an event ordered by edition number
// ascending.  When the event has no editions it returns an empty slice and
// nil error.
func (r *EditionRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Edition, error) {
	const q = `SELECT ` + editionColumns + ` FROM editions WHERE event_id = ? ORDER BY edition_number ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Edition
	for rows.Next() {
		ed, err := scanEdition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSiblings returns every edition of the event except the excluded one.
// Pass excludeID = 0 to list all editions.  The conflict resolver uses this
// to check a candidate range against every sibling, skipping the edition
// being updated in place.
func (r *EditionRepo) ListSiblings(ctx context.Context, eventID, excludeID uint64) ([]model.Edition, error) {
	const q = `SELECT ` + editionColumns + ` FROM editions WHERE event_id = ? AND id <> ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Edition
	for rows.Next() {
		ed, err := scanEdition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// NextEditionNumberTx returns previous + 1 for the event, under the
// caller's transaction so concurrent rehosts cannot both claim the same
// number.
func (r *EditionRepo) NextEditionNumberTx(ctx context.Context, tx *sql.Tx, eventID uint64) (uint32, error) {
	const q = `SELECT COALESCE(MAX(edition_number), 0) + 1 FROM editions WHERE event_id = ? FOR UPDATE`
	var n uint32
	if err := tx.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateTx inserts a new edition using the provided transaction.  The
// caller must commit or roll back.  On success the generated ID and
// DB-default timestamps are populated on the given Edition.
func (r *EditionRepo) CreateTx(ctx context.Context, tx *sql.Tx, ed *model.Edition) error {
	const q = `INSERT INTO editions (event_id, edition_number, starts_on, ends_on, city, country, company_id,
                website, facebook, twitter, linkedin, sales_action_on, sales_actor_id, sales_status, sales_remark)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ed.EventID, ed.EditionNumber,
		nullTime(ed.StartsOn), nullTime(ed.EndsOn), ed.City, ed.Country, nullID(ed.CompanyID),
		ed.Website, ed.Facebook, ed.Twitter, ed.Linkedin,
		nullTime(ed.SalesActionOn), nullID(ed.SalesActorID), ed.SalesStatus, ed.SalesRemark)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ed.ID = uint64(id)
	const sel = `SELECT ` + editionColumns + ` FROM editions WHERE id = ?`
	fresh, err := scanEdition(tx.QueryRowContext(ctx, sel, ed.ID))
	if err != nil {
		return err
	}
	*ed = *fresh
	return nil
}

// EditionPatch carries a partial update for an edition.  Every updatable
// column is an explicit optional value; only present fields are applied,
// which preserves partial-update semantics without building dynamic SQL
// payloads at call sites.
type EditionPatch struct {
	StartsOn      *time.Time
	EndsOn        *time.Time
	City          *string
	Country       *string
	CompanyID     *uint64
	Website       *string
	Facebook      *string
	Twitter       *string
	Linkedin      *string
	SalesActionOn *time.Time
	SalesActorID  *uint64
	SalesStatus   *string
	SalesRemark   *string
}

// Empty reports whether the patch carries no fields at all.
func (p *EditionPatch) Empty() bool {
	return p.StartsOn == nil && p.EndsOn == nil && p.City == nil && p.Country == nil &&
		p.CompanyID == nil && p.Website == nil && p.Facebook == nil && p.Twitter == nil &&
		p.Linkedin == nil && p.SalesActionOn == nil && p.SalesActorID == nil &&
		p.SalesStatus == nil && p.SalesRemark == nil
}

// TouchesDates reports whether the patch mutates either date bound.
func (p *EditionPatch) TouchesDates() bool {
	return p.StartsOn != nil || p.EndsOn != nil
}

// UpdateTx applies the present fields of the patch to the edition row
// inside the caller's transaction.  It returns ErrNoChange when the patch
// is empty and ErrEditionNotFound when the row does not exist.
func (r *EditionRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id uint64, p *EditionPatch) error {
	set := make([]string, 0, 13)
	args := make([]any, 0, 14)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.StartsOn != nil {
		add("starts_on", *p.StartsOn)
	}
	if p.EndsOn != nil {
		add("ends_on", *p.EndsOn)
	}
	if p.City != nil {
		add("city", *p.City)
	}
	if p.Country != nil {
		add("country", *p.Country)
	}
	if p.CompanyID != nil {
		add("company_id", *p.CompanyID)
	}
	if p.Website != nil {
		add("website", *p.Website)
	}
	if p.Facebook != nil {
		add("facebook", *p.Facebook)
	}
	if p.Twitter != nil {
		add("twitter", *p.Twitter)
	}
	if p.Linkedin != nil {
		add("linkedin", *p.Linkedin)
	}
	if p.SalesActionOn != nil {
		add("sales_action_on", *p.SalesActionOn)
	}
	if p.SalesActorID != nil {
		add("sales_actor_id", *p.SalesActorID)
	}
	if p.SalesStatus != nil {
		add("sales_status", *p.SalesStatus)
	}
	if p.SalesRemark != nil {
		add("sales_remark", *p.SalesRemark)
	}
	if len(set) == 0 {
		return ErrNoChange
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	q := "UPDATE editions SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is zero both for a missing row and for values equal
		// to the current ones; distinguish with an existence probe.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM editions WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEditionNotFound
			}
			return err
		}
	}
	return nil
}

// UpdateSales writes the sales-workflow fields outside the atomic
// transaction.  The enrichment pipeline uses this after the core write has
// committed.
func (r *EditionRepo) UpdateSales(ctx context.Context, id uint64, actionOn *time.Time, actorID *uint64, status, remark string) error {
	const q = `UPDATE editions
               SET sales_action_on = ?, sales_actor_id = ?, sales_status = ?, sales_remark = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, nullTime(actionOn), nullID(actorID), status, remark, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM editions WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEditionNotFound
			}
			return err
		}
	}
	return nil
}

// UpdateTotals mirrors the statistics roll-ups onto the edition row.
func (r *EditionRepo) UpdateTotals(ctx context.Context, id uint64, exhibitors, visitors, area *int64) error {
	const q = `UPDATE editions
               SET exhibitor_total = COALESCE(?, exhibitor_total),
                   visitor_total   = COALESCE(?, visitor_total),
                   area_total      = COALESCE(?, area_total),
                   updated_at      = CURRENT_TIMESTAMP
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, exhibitors, visitors, area, id)
	return err
}
