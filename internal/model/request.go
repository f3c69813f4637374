package model

// UpsertRequest is the inbound payload of the event/edition upsert
// endpoint.  Every updatable attribute is an explicit optional value:
// absent fields are left untouched by updates (partial-patch semantics),
// so the JSON binding must distinguish "not sent" from a zero value.
// Dates arrive as strings ("2006-01-02" or "2006-01") and are parsed by
// the validation pipeline.
type UpsertRequest struct {
	EventID   *uint64 `json:"event_id"`   // nil -> create a new event
	EditionID *uint64 `json:"edition_id"` // explicit edition reference bypasses auto-detection

	Name       *string `json:"name"`
	StartsOn   *string `json:"starts_on"`
	EndsOn     *string `json:"ends_on"`
	VenueID    *uint64 `json:"venue_id"`
	VenueSlug  *string `json:"venue_slug"` // slug or venue URL; trailing path segment is used
	CompanyID  *uint64 `json:"company_id"`
	EventType  *string `json:"event_type"`
	Audience   *string `json:"audience"`
	Visibility *string `json:"visibility"`

	Website  *string `json:"website"`
	Facebook *string `json:"facebook"`
	Twitter  *string `json:"twitter"`
	Linkedin *string `json:"linkedin"`

	Description      *string `json:"description"`
	ShortDescription *string `json:"short_description"`
	Timing           *string `json:"timing"`
	Highlights       *string `json:"highlights"`
	Customization    *string `json:"customization"`

	CategoryIDs []uint64     `json:"category_ids"`
	ProductIDs  []uint64     `json:"product_ids"`
	Stats       *Statistics  `json:"stats"`
	SubVenues   []string     `json:"sub_venues"`
	Contacts    []ContactInput `json:"contacts"`
	Attachments *AttachmentInput `json:"attachments"`

	SalesActionOn *string `json:"sales_action_on"`
	SalesActorID  *uint64 `json:"sales_actor_id"`
	SalesStatus   *string `json:"sales_status"`
	SalesRemark   *string `json:"sales_remark"`
}

// ContactInput is one entry of the contact batch.
type ContactInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Notify bool   `json:"notify"`
}

// AttachmentInput references media assets by id.  Each referenced asset
// must exist in the media table before it is recorded on the edition.
type AttachmentInput struct {
	VideoID    *uint64 `json:"video_id"`
	BrochureID *uint64 `json:"brochure_id"`
	LogoID     *uint64 `json:"logo_id"`
	WrapperID  *uint64 `json:"wrapper_id"`
	OgImageID  *uint64 `json:"og_image_id"`
}

// HasEnrichment reports whether the request carries any payload for the
// post-commit enrichment units.  The job handoff happens regardless, since
// indexing and notifications always run; this only tells consumers whether
// any enrichment unit will have work.
func (r *UpsertRequest) HasEnrichment() bool {
	return len(r.CategoryIDs) > 0 || len(r.ProductIDs) > 0 || r.Stats != nil ||
		len(r.SubVenues) > 0 || len(r.Contacts) > 0 || r.Attachments != nil ||
		r.SalesActionOn != nil || r.SalesStatus != nil || r.Highlights != nil ||
		r.Customization != nil
}
