//go:build !sqltypes_no_proto

package proto

// Enabled reports whether the backend is compiled into this build.
const Enabled = true
