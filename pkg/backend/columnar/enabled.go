//go:build !sqltypes_no_columnar

package columnar

// Enabled reports whether the backend is compiled into this build.
const Enabled = true
