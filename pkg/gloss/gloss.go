// Package gloss holds the types shared by every stage of a lookup: the lookup
// mode, word normalization, and the error taxonomy.
package gloss

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Version returns the current version of the program.
func Version() string { return "0.3.0" }

// Mode selects what is looked up for a word.
type Mode int

const (
	// Definition looks the word up in the dictionary.
	Definition Mode = iota
	// Etymology looks up the word's origin.
	Etymology
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Definition:
		return "definition"
	case Etymology:
		return "etymology"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == Definition || m == Etymology
}

// ModeFor maps the --etymology flag onto a Mode.
func ModeFor(etymology bool) Mode {
	if etymology {
		return Etymology
	}
	return Definition
}

var lower = cases.Lower(language.Und)

// NormalizeWord lower-cases the query and composes it to NFC so that the same
// word typed on different keyboards maps to one cache key. Inner whitespace is
// kept as typed.
func NormalizeWord(s string) string {
	return lower.String(norm.NFC.String(s))
}

// JoinWords turns command-line arguments into a single query phrase.
func JoinWords(args []string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}
