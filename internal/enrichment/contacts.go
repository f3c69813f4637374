package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/fairgrid/fairgrid/internal/model"
)

// insertContacts validates every contact's email domain against the
// blocklist before anything is persisted.  The policy is all-or-nothing:
// a single blocklisted domain rejects the entire batch, naming the
// offending address, and zero contacts are written.
func (o *Orchestrator) insertContacts(ctx context.Context, eventID uint64, inputs []model.ContactInput) error {
	contacts := make([]model.Contact, 0, len(inputs))
	for _, in := range inputs {
		email := strings.TrimSpace(strings.ToLower(in.Email))
		at := strings.LastIndex(email, "@")
		if at <= 0 || at == len(email)-1 {
			return fmt.Errorf("contact email %q is malformed", in.Email)
		}
		domain := email[at+1:]
		if o.Blocklist.IsBlocklisted(ctx, domain) {
			return fmt.Errorf("contact email %s has a blocklisted domain; batch rejected", email)
		}
		contacts = append(contacts, model.Contact{
			EventID: eventID,
			Name:    strings.TrimSpace(in.Name),
			Email:   email,
			Role:    in.Role,
			Notify:  in.Notify,
		})
	}
	return o.Contacts.InsertBatch(ctx, contacts)
}
