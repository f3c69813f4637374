package model

import "time"

// Category is a catalog entry events can be linked to.  Only "group"
// categories may be assigned by users; the rest exist as parents in the
// catalog tree or are implied by products.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – catalog label.
//  IsGroup – whether the category is assignable by users.
type Category struct {
	ID      uint64 // categories.id
	Name    string // categories.name
	IsGroup bool   // categories.is_group
}

// Product is a catalog entry describing what is exhibited at an event.
// A product may imply a category; implied categories bypass the
// user-facing category cap.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – catalog label.
//  CategoryID – category this product implies (nullable).
type Product struct {
	ID         uint64  // products.id
	Name       string  // products.name
	CategoryID *uint64 // products.category_id (nullable)
}

// CategoryLink associates an event with a category.  Links are scoped at
// the event level, not per edition, and are diffed and replaced on every
// relevant update.  Verified links are created by a separate vendor
// workflow and survive the diff.
//
// Fields:
//  EventID    – linked event.
//  CategoryID – linked category.
//  Published  – soft-publish flag.
//  Verified   – set by the vendor verification workflow; never removed by a diff.
//  FromProduct – the link was implied by a product rather than chosen by a user.
//  CreatedAt  – creation timestamp.
type CategoryLink struct {
	EventID     uint64    // event_categories.event_id
	CategoryID  uint64    // event_categories.category_id
	Published   bool      // event_categories.published
	Verified    bool      // event_categories.verified
	FromProduct bool      // event_categories.from_product
	CreatedAt   time.Time // event_categories.created_at
}

// ProductLink associates an event with a product.
//
// Fields:
//  EventID   – linked event.
//  ProductID – linked product.
//  Published – soft-publish flag.
//  CreatedAt – creation timestamp.
type ProductLink struct {
	EventID   uint64    // event_products.event_id
	ProductID uint64    // event_products.product_id
	Published bool      // event_products.published
	CreatedAt time.Time // event_products.created_at
}

// MaxUserCategories caps the number of categories a user may assign to an
// event.  Product-derived categories are exempt.
const MaxUserCategories = 2
