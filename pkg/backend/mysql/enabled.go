//go:build !sqltypes_no_mysql

package mysql

// Enabled reports whether the backend is compiled into this build.
const Enabled = true
