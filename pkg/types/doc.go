// Package types defines the entity types, table contracts, filters, backend
// contract, configuration and standard errors for the socialdb entity store.
//
// Users, Profiles and Posts are stored in Tables; MemberTypes form a
// read-only catalog seeded when a backend is opened. Composite operations
// that touch more than one table run inside a single Backend.Update call.
package types
