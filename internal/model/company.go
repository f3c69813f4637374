package model

// Company is an organizer company referenced by events and editions.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – company display name.
//  ContactUserID – point-of-contact user, authorized to edit the company's events (nullable).
type Company struct {
	ID            uint64  // companies.id
	Name          string  // companies.name
	ContactUserID *uint64 // companies.contact_user_id (nullable)
}
