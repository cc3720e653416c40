// Package memory implements the in-memory storage backend for socialdb.
//
// Table is the generic keyed collection: it keeps records in a map keyed by
// ID plus an insertion-order slice, and copies records on the way in and out
// so callers never share memory with stored rows. Backend groups the Users,
// Profiles, Posts and MemberTypes tables behind one store-wide RWMutex, and
// records an undo journal for every write made inside Update so a failed
// callback leaves every table unchanged.
package memory
