package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/glossword/pkg/convert"
	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/japaniel/glossword/pkg/htmlquery"
)

// Normalizer turns compiled markup into plain text.
type Normalizer struct {
	conv convert.Converter
}

// NewNormalizer returns a Normalizer using conv for both stages.
func NewNormalizer(conv convert.Converter) *Normalizer {
	return &Normalizer{conv: conv}
}

// Normalize converts markup to markdown without wrapping (the cleanup rules
// are line-anchored), cleans it, converts it to plain text and cleans that.
func (n *Normalizer) Normalize(ctx context.Context, s *Strategy, markup string) (string, error) {
	md, err := n.conv.Convert(ctx, markup, convert.HTML, convert.Markdown, convert.Options{NoWrap: true})
	if err != nil {
		return "", conversionErr("html to markdown", err)
	}

	text, err := n.conv.Convert(ctx, s.CleanMarkdown(md), convert.Markdown, convert.Plain, convert.Options{})
	if err != nil {
		return "", conversionErr("markdown to plain", err)
	}
	return s.CleanPlain(text), nil
}

// Suggestions converts the similar-words list of doc straight to plain text.
// ok is false when the mode has no list or the page shows none.
func (n *Normalizer) Suggestions(ctx context.Context, s *Strategy, doc htmlquery.Selectable) (text string, ok bool, err error) {
	q, has := s.Suggestions()
	if !has {
		return "", false, nil
	}
	items := doc.Select(q)
	if len(items) == 0 {
		return "", false, nil
	}

	text, err = n.conv.Convert(ctx, htmlquery.Join(items), convert.HTML, convert.Plain, convert.Options{})
	if err != nil {
		return "", false, conversionErr("suggestions to plain", err)
	}
	return text, true, nil
}

func conversionErr(stage string, err error) error {
	if errors.Is(err, gloss.ErrConversion) {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return fmt.Errorf("%w: %s: %w", gloss.ErrConversion, stage, err)
}
