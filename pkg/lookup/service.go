package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/glossword/pkg/convert"
	"github.com/japaniel/glossword/pkg/fetch"
	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/japaniel/glossword/pkg/htmlquery"
	"github.com/rs/zerolog"
)

// Cache stores finished lookups. Errors are returned, never panicked, and the
// Service treats every one of them as a miss.
type Cache interface {
	Lookup(ctx context.Context, mode gloss.Mode, word string) (string, bool, error)
	Upsert(ctx context.Context, mode gloss.Mode, word, text string, isUpdate bool) error
}

// Progress is told when slow work starts and ends.
type Progress interface {
	Start(msg string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop()        {}

// Request is a single lookup.
type Request struct {
	Word string
	Mode gloss.Mode
	// Refresh fetches the page even on a cache hit and overwrites the entry.
	Refresh bool
}

// Kind tells where a Result came from.
type Kind int

const (
	FromCache Kind = iota
	Fetched
	Suggested
)

// Result is the text produced by a lookup.
type Result struct {
	Kind Kind
	Text string
}

// Render returns the text to print.
func (r Result) Render() string {
	if r.Kind == Suggested {
		return "Did you mean:\n\n" + r.Text
	}
	return r.Text
}

// Service runs lookups.
type Service struct {
	fetcher  fetch.Fetcher
	norm     *Normalizer
	sites    Sites
	cache    Cache
	log      zerolog.Logger
	progress Progress
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the cache. Without it every lookup fetches.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithProgress sets the progress reporter.
func WithProgress(p Progress) Option {
	return func(s *Service) { s.progress = p }
}

// WithSites overrides the reference site URLs.
func WithSites(sites Sites) Option {
	return func(s *Service) { s.sites = sites }
}

// NewService returns a Service fetching with f and converting with conv.
func NewService(f fetch.Fetcher, conv convert.Converter, opts ...Option) *Service {
	s := &Service{
		fetcher:  f,
		norm:     NewNormalizer(conv),
		sites:    DefaultSites,
		log:      zerolog.Nop(),
		progress: noProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves req from the cache or the network. On failure nothing is
// written to the cache.
func (s *Service) Lookup(ctx context.Context, req Request) (Result, error) {
	if !req.Mode.Valid() {
		return Result{}, fmt.Errorf("unknown lookup mode %v", req.Mode)
	}
	word := gloss.NormalizeWord(req.Word)
	if strings.TrimSpace(word) == "" {
		return Result{}, errors.New("word must be non-empty")
	}
	strat, err := StrategyFor(req.Mode, s.sites)
	if err != nil {
		return Result{}, err
	}
	log := s.log.With().Str("mode", req.Mode.String()).Str("word", word).Logger()

	cacheHit := false
	if text, ok := s.cached(ctx, log, req.Mode, word); ok {
		if !req.Refresh {
			log.Debug().Msg("cache hit")
			return Result{Kind: FromCache, Text: text}, nil
		}
		// Keep going, but remember to update rather than insert.
		cacheHit = true
		log.Debug().Msg("cache hit, refreshing")
	}

	s.progress.Start("Fetching...")
	defer s.progress.Stop()

	pageURL := strat.URL(word)
	raw, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if !errors.Is(err, gloss.ErrTransport) {
			err = fmt.Errorf("%w: %w", gloss.ErrTransport, err)
		}
		return Result{}, err
	}

	// The parser recovers from any markup, so this only fails if the body
	// cannot be read at all.
	doc, err := htmlquery.Parse(strat.Slice(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", gloss.ErrTransport, err)
	}

	frags := strat.Select(doc)
	log.Debug().Str("url", pageURL).Int("fragments", len(frags)).Msg("selected entry")
	if len(frags) == 0 {
		if e := log.Debug(); e.Enabled() {
			e.Str("title", fetch.PageTitle(raw, pageURL)).Msg("no entry on page")
		}
		return s.suggest(ctx, log, strat, doc)
	}

	text, err := s.norm.Normalize(ctx, strat, strat.Compile(frags))
	if err != nil {
		return Result{}, err
	}

	s.store(ctx, log, req.Mode, word, text, cacheHit)
	return Result{Kind: Fetched, Text: text}, nil
}

func (s *Service) suggest(ctx context.Context, log zerolog.Logger, strat *Strategy, doc htmlquery.Selectable) (Result, error) {
	text, ok, err := s.norm.Suggestions(ctx, strat, doc)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, &gloss.NotFoundError{Mode: strat.Mode()}
	}
	log.Debug().Msg("offering suggestions")
	return Result{Kind: Suggested, Text: text}, nil
}

// Run performs the lookup and writes the result to w.
func (s *Service) Run(ctx context.Context, w io.Writer, req Request) error {
	res, err := s.Lookup(ctx, req)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, res.Render())
	return err
}

// cached and store are the only places the cache is touched. The cache is an
// optimization, so its errors are logged and dropped here.
func (s *Service) cached(ctx context.Context, log zerolog.Logger, mode gloss.Mode, word string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, ok, err := s.cache.Lookup(ctx, mode, word)
	if err != nil {
		log.Debug().Err(err).Msg("cache lookup failed")
		return "", false
	}
	return text, ok
}

func (s *Service) store(ctx context.Context, log zerolog.Logger, mode gloss.Mode, word, text string, isUpdate bool) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Upsert(ctx, mode, word, text, isUpdate); err != nil {
		log.Debug().Err(err).Bool("update", isUpdate).Msg("cache write failed")
	}
}
