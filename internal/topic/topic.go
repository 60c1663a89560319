// Package topic implements hierarchical claim paths such as /company/b-s-s/employee.
package topic

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"Veritas/internal/fault"
)

// Separator delimits topic segments.
const Separator = "/"

// Hash is the fixed-width ledger key of a topic.
type Hash [32]byte

// Topic is a parsed, validated topic path. The zero value is invalid.
type Topic struct {
	path     string
	segments []string
}

// Parse validates a topic path: a leading slash followed by one or more
// non-empty segments over [A-Za-z0-9._~-].
func Parse(s string) (Topic, error) {
	if !strings.HasPrefix(s, Separator) {
		return Topic{}, fmt.Errorf("%w: topic %q must start with %q", fault.ErrValidation, s, Separator)
	}

	segments := strings.Split(s[1:], Separator)

	for _, seg := range segments {
		if seg == "" {
			return Topic{}, fmt.Errorf("%w: topic %q has an empty segment", fault.ErrValidation, s)
		}

		for _, r := range seg {
			if !validRune(r) {
				return Topic{}, fmt.Errorf("%w: topic %q contains %q", fault.ErrValidation, s, r)
			}
		}
	}

	return Topic{path: s, segments: segments}, nil
}

// MustParse is Parse for constants; it panics on invalid input.
func MustParse(s string) Topic {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// validRune reports whether r belongs to the topic alphabet.
func validRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == '~':
		return true
	default:
		return false
	}
}

// String returns the topic path.
func (t Topic) String() string {
	return t.path
}

// IsZero reports whether t is the zero value.
func (t Topic) IsZero() bool {
	return t.path == ""
}

// Segments returns a copy of the path segments.
func (t Topic) Segments() []string {
	return append([]string(nil), t.segments...)
}

// Depth returns the number of segments.
func (t Topic) Depth() int {
	return len(t.segments)
}

// IsRoot reports whether the topic has a single segment.
func (t Topic) IsRoot() bool {
	return len(t.segments) == 1
}

// Parent returns the topic with its last segment removed.
// ok is false for root topics.
func (t Topic) Parent() (parent Topic, ok bool) {
	if len(t.segments) <= 1 {
		return Topic{}, false
	}

	segments := t.segments[:len(t.segments)-1]

	return Topic{
		path:     Separator + strings.Join(segments, Separator),
		segments: append([]string(nil), segments...),
	}, true
}

// Root returns the first-segment topic.
func (t Topic) Root() Topic {
	if len(t.segments) == 0 {
		return Topic{}
	}
	return Topic{path: Separator + t.segments[0], segments: t.segments[:1:1]}
}

// Hash returns the keccak256 hash of the topic path.
func (t Topic) Hash() Hash {
	return Hash(crypto.Keccak256Hash([]byte(t.path)))
}

// MarshalText encodes the topic as its path.
func (t Topic) MarshalText() ([]byte, error) {
	return []byte(t.path), nil
}

// UnmarshalText parses a topic path.
func (t *Topic) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
