package dict

import (
	"unsafe"

	"github.com/dchest/siphash"
	"github.com/dolthub/maphash"
)

// Type is the capability set parameterizing a Dict: how keys hash and
// compare, how keys and values are released, and whether a value is
// duplicated on store. All fields are optional.
//
// Equality always checks `==` identity first and only then falls back to
// Equals, so Equals needs to cover only the non-identical case (for example
// case folding).
type Type[K comparable, V any] struct {
	// Hash maps a key to a 64-bit hash. When nil, the runtime's AES-based
	// hasher is used via dolthub/maphash.
	Hash func(key K) uint64

	// Equals reports whether two keys match. When nil, `==` alone decides.
	Equals func(a, b K) bool

	// DestroyKey is invoked once for every key the table releases.
	DestroyKey func(key K)

	// DestroyValue is invoked once for every value the table releases,
	// including the overwritten value of a Replace.
	DestroyValue func(value V)

	// DupValue, when set, is applied to every value before it is stored.
	DupValue func(value V) V

	// ExpandAllowed, when set, may veto an automatic growth given the byte
	// size of the bucket array about to be allocated and the current load
	// factor. A vetoed growth skips the resize; the insert still proceeds.
	ExpandAllowed func(sizeBytes uintptr, loadFactor float64) bool
}

// StringType returns a capability set hashing string keys with SipHash-2-4
// keyed by cfg's 128-bit seed, for collision-attack resistance.
func StringType[V any](cfg *Config) *Type[string, V] {
	return &Type[string, V]{
		Hash: func(key string) uint64 {
			k0, k1 := cfg.seedKeys()
			return siphash.Hash(k0, k1, stringBytes(key))
		},
	}
}

// NocaseStringType is StringType with ASCII case-insensitive hashing and
// equality.
func NocaseStringType[V any](cfg *Config) *Type[string, V] {
	return &Type[string, V]{
		Hash: func(key string) uint64 {
			k0, k1 := cfg.seedKeys()
			return siphash.Hash(k0, k1, foldBytes(key))
		},
		Equals: asciiEqualFold,
	}
}

// asciiEqualFold compares two strings ignoring ASCII case. It folds the same
// way foldBytes does, so equal keys always share a hash.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// stringBytes aliases the string's backing array. The result must not be
// written to or retained past the hash call.
func stringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// foldBytes returns the ASCII-lowercased bytes of s. Only ASCII letters are
// folded, matching strings.EqualFold for ASCII keys.
func foldBytes(s string) []byte {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		b[i] = ch
	}
	return b
}

// defaultHash builds the fallback hasher for an arbitrary comparable key
// type on top of the runtime's keyed memory hash.
func defaultHash[K comparable]() func(key K) uint64 {
	h := maphash.NewHasher[K]()
	return func(key K) uint64 { return h.Hash(key) }
}
