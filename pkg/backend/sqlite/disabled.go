//go:build sqltypes_no_sqlite

package sqlite

// Enabled reports whether the backend is compiled into this build.
const Enabled = false
