package model

import "time"

// Edition is one time-boxed occurrence of an Event.  Editions are never
// deleted: a lapsed edition stays behind as history and becomes read-only
// for date mutations.  EditionNumber increases monotonically per event;
// a rehost inserts number = previous + 1.
//
// Fields:
//  ID             – primary key identifier.
//  EventID        – owning event.
//  EditionNumber  – monotonic occurrence counter within the event.
//  StartsOn       – first day of the edition (nullable).
//  EndsOn         – last day of the edition (nullable).
//  City, Country  – location override for this occurrence.
//  CompanyID      – organizer company for this occurrence (nullable).
//  Website        – public website URL.
//  Facebook, Twitter, Linkedin – social identifiers.
//  SalesActionOn  – date of the last sales-workflow action (nullable).
//  SalesActorID   – user who performed the sales action (nullable).
//  SalesStatus    – sales workflow status code.
//  SalesRemark    – free-form sales note.
//  ExhibitorTotal, VisitorTotal, AreaTotal – numeric roll-ups mirrored from
//                   the statistics blob for fast querying.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Edition struct {
	ID             uint64     // editions.id
	EventID        uint64     // editions.event_id
	EditionNumber  uint32     // editions.edition_number
	StartsOn       *time.Time // editions.starts_on (nullable)
	EndsOn         *time.Time // editions.ends_on (nullable)
	City           string     // editions.city
	Country        string     // editions.country
	CompanyID      *uint64    // editions.company_id (nullable)
	Website        string     // editions.website
	Facebook       string     // editions.facebook
	Twitter        string     // editions.twitter
	Linkedin       string     // editions.linkedin
	SalesActionOn  *time.Time // editions.sales_action_on (nullable)
	SalesActorID   *uint64    // editions.sales_actor_id (nullable)
	SalesStatus    string     // editions.sales_status
	SalesRemark    string     // editions.sales_remark
	ExhibitorTotal *int64     // editions.exhibitor_total (nullable)
	VisitorTotal   *int64     // editions.visitor_total (nullable)
	AreaTotal      *int64     // editions.area_total (nullable)
	CreatedAt      time.Time  // editions.created_at
	UpdatedAt      time.Time  // editions.updated_at
}

// Lapsed reports whether the edition's end date lies strictly before the
// given instant.  Editions with no end date never lapse.
func (e *Edition) Lapsed(now time.Time) bool {
	return e.EndsOn != nil && e.EndsOn.Before(now)
}
