package identity

import (
	"strings"
	"unicode/utf8"
)

// Kind tags how an assigned identifier refers to a person.
type Kind int

const (
	KindDisplayName Kind = iota
	KindHandle
	KindLegacyRecordID
)

func (k Kind) String() string {
	switch k {
	case KindHandle:
		return "handle"
	case KindLegacyRecordID:
		return "legacy-id"
	default:
		return "name"
	}
}

// LegacyIDThreshold is the rune length above which a bare identifier is taken to be
// a record id. Store-generated ids are 20 or more characters and names are usually
// shorter, but a long name without "@" is misclassified. Keep every length check here.
const LegacyIDThreshold = 15

// Identifier is one entry of a song's assignment list, classified.
type Identifier struct {
	Kind  Kind
	Value string
}

// Classify tags a raw assignment entry.
func Classify(raw string) Identifier {
	v := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(v, "@"):
		return Identifier{Kind: KindHandle, Value: v}
	case utf8.RuneCountInString(v) > LegacyIDThreshold:
		return Identifier{Kind: KindLegacyRecordID, Value: v}
	default:
		return Identifier{Kind: KindDisplayName, Value: v}
	}
}
