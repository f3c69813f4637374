package model

import "time"

// Contact links a person to an event.  Contacts are independent of
// editions: they survive rehosts untouched.  A contact batch is rejected
// as a whole when any email's domain is blocklisted.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – linked event.
//  Name      – person's display name.
//  Email     – contact email; domain is checked against the blocklist.
//  Role      – contact role (ORGANIZER, PRESS, SALES, ...).
//  Notify    – whether the person receives update notifications.
//  CreatedAt – creation timestamp.
type Contact struct {
	ID        uint64    // event_contacts.id
	EventID   uint64    // event_contacts.event_id
	Name      string    // event_contacts.name
	Email     string    // event_contacts.email
	Role      string    // event_contacts.role
	Notify    bool      // event_contacts.notify
	CreatedAt time.Time // event_contacts.created_at
}
