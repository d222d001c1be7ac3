// Package ident provides tagged entity identifiers and the deterministic
// derivation used to give human-named entities stable primary keys.
package ident

import (
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"
)

// Separator joins the parent ID and the stabilized parts of a derived ID.
const Separator = "/"

// ID is an opaque identifier carrying a phantom Tag so that, for example, an
// artist ID cannot be passed where a stage ID is expected. Two IDs of the same
// tag are equal iff their raw values are equal.
type ID[Tag any] string

// New wraps an explicit raw value.
func New[Tag any](raw string) ID[Tag] {
	return ID[Tag](raw)
}

// String returns the raw value.
func (id ID[Tag]) String() string {
	return string(id)
}

// IsZero reports whether the ID is empty.
func (id ID[Tag]) IsZero() bool {
	return id == ""
}

// Stabilize derives an ID from a parent ID and the entity's natural-key parts.
// The result is a pure function of its inputs: every part is trimmed,
// lower-cased, has whitespace runs collapsed to "-", and has "%" and the
// separator percent-escaped so a name containing "/" cannot collide with a
// deeper path. An empty parent yields a root-level ID.
func Stabilize[Tag any](parent string, parts ...string) ID[Tag] {
	var b strings.Builder
	b.WriteString(parent)
	for _, p := range parts {
		if b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(Key(p))
	}
	return ID[Tag](b.String())
}

// Derive is Stabilize with a typed parent.
func Derive[Tag, Parent any](parent ID[Parent], parts ...string) ID[Tag] {
	return Stabilize[Tag](string(parent), parts...)
}

// Key normalizes a single natural-key component. Names that produce the same
// key are the same entity, so "Cantos" and " cantos " share an identity.
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		switch r {
		case '%':
			b.WriteString("%25")
		case '/':
			b.WriteString("%2F")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShortHash returns a short, stable, non-cryptographic hash of s. It is meant
// for auxiliary names such as cache or temp directories, never for entity
// identity.
func ShortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 16)
}
