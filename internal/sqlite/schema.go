// Package sqlite implements the SQLite storage backend for socialdb.
// The database lives in memory for the lifetime of the Backend; rows carry an
// autoincrement seq column that fixes insertion order.
package sqlite

// Schema DDL for all tables.
const (
	createUsers = `CREATE TABLE users (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    subscribed_to_user_ids TEXT NOT NULL DEFAULT '[]'
);`

	createProfiles = `CREATE TABLE profiles (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    member_type_id TEXT NOT NULL,
    is_male INTEGER NOT NULL,
    age INTEGER NOT NULL
);`

	createPosts = `CREATE TABLE posts (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL
);`

	createMemberTypes = `CREATE TABLE member_types (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    discount REAL NOT NULL,
    month_posts_limit INTEGER NOT NULL
);`
)

// Index DDL for owner lookups.
const (
	idxProfilesUser = `CREATE UNIQUE INDEX idx_profiles_user ON profiles(user_id);`
	idxPostsUser    = `CREATE INDEX idx_posts_user ON posts(user_id);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createUsers,
	createProfiles,
	createPosts,
	createMemberTypes,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxProfilesUser,
	idxPostsUser,
}
