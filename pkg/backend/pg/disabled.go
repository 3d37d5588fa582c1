//go:build sqltypes_no_postgres

package pg

// Enabled reports whether the backend is compiled into this build.
const Enabled = false
