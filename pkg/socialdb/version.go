package socialdb

// Version is the socialdb release version.
const Version = "0.1.0"
