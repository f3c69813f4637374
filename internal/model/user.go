package model

// User is an actor known to the identity subsystem.  Account management
// itself (registration, verification) is owned by an external service;
// this service only reads users to validate actors and authorization.
//
// Fields:
//  ID     – primary key identifier.
//  Name   – display name.
//  Email  – account email.
//  Role   – role claim (ADMIN, EDITOR, ...); internal accounts carry the operator role.
//  Active – whether the account may act at all.
type User struct {
	ID     uint64 // users.id
	Name   string // users.name
	Email  string // users.email
	Role   string // users.role
	Active bool   // users.active
}
