// Package lookup turns a word into clean plain text: it fetches the reference
// page, cuts out the entry, converts it and keeps the result in the cache.
package lookup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/japaniel/glossword/pkg/htmlquery"
)

// Sites holds the base URL of each reference site.
type Sites struct {
	DefinitionURL string
	EtymologyURL  string
}

// DefaultSites are the sites the page structure below was written against.
var DefaultSites = Sites{
	DefinitionURL: "https://www.thefreedictionary.com/",
	EtymologyURL:  "https://www.etymonline.com/word/",
}

// Rule rewrites converter output.
type Rule func(string) string

func regexpRule(expr, repl string) Rule {
	re := regexp.MustCompile(expr)
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

func literalRule(old, repl string) Rule {
	return func(s string) string { return strings.ReplaceAll(s, old, repl) }
}

func applyRules(s string, rules []Rule) string {
	for _, r := range rules {
		s = r(s)
	}
	return s
}

// Page structure. The thesaurus block follows the dictionary entry on every
// definition page and is never needed.
const thesaurusMarker = `<div id="Thesaurus">`

var (
	definitionEntry = htmlquery.MustCompile(`div#Definition section[data-src="hm"]`)
	definitionParts = htmlquery.MustCompile(`div.pseg, h2, hr.hmsep`)
	suggestionItems = htmlquery.MustCompile(`ul.suggestions li`)
	etymologyBlocks = htmlquery.MustCompile(`div[class*="word--C9UPa"]:not([class*="word_4pc"])`)
)

// The converter escapes straight quotes inside the markdown it produces.
var unescapeQuotes = literalRule(`\\"`, `"`)

var (
	definitionMarkdownRules = []Rule{
		// **1.** -> 1.
		regexpRule(`\n\*\*(?P<num>\d+\.)\*\*`, "\n${num}"),
		// **a.** -> indented a.
		regexpRule(`\n\*\*(?P<letter>[a-z]\.)\*\*`, "\n    ${letter}"),
		unescapeQuotes,
	}

	etymologyMarkdownRules = []Rule{
		// Figures have no plain-text form.
		regexpRule(`(?m)\n\n!\[.+$`, ""),
		unescapeQuotes,
	}

	etymologyPlainRules = []Rule{
		// "forest(n.)" -> "forest (n.)" on headword lines.
		regexpRule(`(\S)(\([a-z]{1,3}\.\))\n`, "${1} ${2}\n"),
	}
)

// Strategy bundles everything that differs between the two lookup modes.
// It is chosen once per lookup by StrategyFor.
type Strategy struct {
	mode          gloss.Mode
	baseURL       string
	space         string
	marker        string
	entries       htmlquery.Query
	parts         *htmlquery.Query
	suggestions   *htmlquery.Query
	markdownRules []Rule
	plainRules    []Rule
}

// StrategyFor returns the strategy for mode against sites.
func StrategyFor(mode gloss.Mode, sites Sites) (*Strategy, error) {
	switch mode {
	case gloss.Definition:
		return &Strategy{
			mode:          mode,
			baseURL:       sites.DefinitionURL,
			space:         "+",
			marker:        thesaurusMarker,
			entries:       definitionEntry,
			parts:         &definitionParts,
			suggestions:   &suggestionItems,
			markdownRules: definitionMarkdownRules,
		}, nil
	case gloss.Etymology:
		return &Strategy{
			mode:          mode,
			baseURL:       sites.EtymologyURL,
			space:         "%20",
			entries:       etymologyBlocks,
			markdownRules: etymologyMarkdownRules,
			plainRules:    etymologyPlainRules,
		}, nil
	default:
		return nil, fmt.Errorf("unknown lookup mode %v", mode)
	}
}

// Mode returns the mode the strategy serves.
func (s *Strategy) Mode() gloss.Mode { return s.mode }

// URL builds the page address for word using the site's own escaping.
func (s *Strategy) URL(word string) string {
	return s.baseURL + strings.ReplaceAll(word, " ", s.space)
}

// Slice returns the part of the page worth parsing: everything before the
// first marker, or the whole page when there is no marker or it is absent.
func (s *Strategy) Slice(raw string) string {
	if s.marker == "" {
		return raw
	}
	before, _, _ := strings.Cut(raw, s.marker)
	return before
}

// Select returns the entry fragments of doc in document order. Definition
// pages hold at most one entry; any extra match is dropped.
func (s *Strategy) Select(doc htmlquery.Selectable) []htmlquery.Fragment {
	frags := doc.Select(s.entries)
	if s.parts != nil && len(frags) > 1 {
		frags = frags[:1]
	}
	return frags
}

// Compile serializes the selected fragments into one markup string. frags
// must not be empty.
func (s *Strategy) Compile(frags []htmlquery.Fragment) string {
	if s.parts == nil {
		return htmlquery.Join(frags)
	}
	return htmlquery.Join(frags[0].Select(*s.parts))
}

// CleanMarkdown applies the rules that run on the intermediate markdown.
func (s *Strategy) CleanMarkdown(md string) string {
	return applyRules(md, s.markdownRules)
}

// CleanPlain applies the rules that run on the final plain text.
func (s *Strategy) CleanPlain(text string) string {
	return applyRules(text, s.plainRules)
}

// Suggestions reports the query for the similar-words list, if the mode has
// one.
func (s *Strategy) Suggestions() (htmlquery.Query, bool) {
	if s.suggestions == nil {
		return htmlquery.Query{}, false
	}
	return *s.suggestions, true
}
