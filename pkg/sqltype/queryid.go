package sqltype

import (
	"github.com/spaolacci/murmur3"
)

// QueryID returns the static query identity of the tag L. Identical tags
// always hash to the same value, across processes and builds.
func QueryID[L Type]() uint64 {
	return murmur3.Sum64([]byte(Name(Of[L]())))
}

// HasStaticQueryID reports whether L has an identity known without inspecting
// values. Every logical type tag does.
func HasStaticQueryID[L Type]() bool {
	return true
}

// ShapeID hashes an ordered list of logical types. Two parameter lists with the
// same types in the same order share a shape, so prepared statements built
// from them can be deduplicated.
func ShapeID(types ...Type) uint64 {
	h := murmur3.New64()
	for i, t := range types {
		if i > 0 {
			h.Write([]byte{','})
		}
		h.Write([]byte(Name(t)))
	}
	return h.Sum64()
}
