package lookup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/glossword/pkg/convert"
	"github.com/japaniel/glossword/pkg/gloss"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(b)
}

// fakeFetcher serves pages by URL and counts calls.
type fakeFetcher struct {
	pages map[string]string
	err   error
	calls int
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	f.calls++
	f.urls = append(f.urls, rawURL)
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[rawURL]
	if !ok {
		return "", fmt.Errorf("unexpected url %s", rawURL)
	}
	return page, nil
}

type conversion struct {
	input    string
	from, to convert.Format
	opts     convert.Options
}

// fakeConverter answers each (from, to) pair with a handler and records
// every call.
type fakeConverter struct {
	handlers map[[2]convert.Format]func(string) (string, error)
	calls    []conversion
}

func newFakeConverter() *fakeConverter {
	return &fakeConverter{handlers: map[[2]convert.Format]func(string) (string, error){}}
}

func (c *fakeConverter) on(from, to convert.Format, h func(string) (string, error)) *fakeConverter {
	c.handlers[[2]convert.Format{from, to}] = h
	return c
}

func (c *fakeConverter) Convert(_ context.Context, input string, from, to convert.Format, opts convert.Options) (string, error) {
	c.calls = append(c.calls, conversion{input: input, from: from, to: to, opts: opts})
	h, ok := c.handlers[[2]convert.Format{from, to}]
	if !ok {
		return "", fmt.Errorf("no handler for %s -> %s", from, to)
	}
	return h(input)
}

func returns(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func identity(s string) (string, error) { return s, nil }

type cacheKey struct {
	mode gloss.Mode
	word string
}

// memCache is an in-memory Cache with the same insert/update contract as the
// SQLite store.
type memCache struct {
	entries map[cacheKey]string
	inserts int
	updates int
	failAll bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[cacheKey]string{}}
}

var errCacheDown = fmt.Errorf("%w: database is locked", gloss.ErrCache)

func (m *memCache) Lookup(_ context.Context, mode gloss.Mode, word string) (string, bool, error) {
	if m.failAll {
		return "", false, errCacheDown
	}
	text, ok := m.entries[cacheKey{mode, word}]
	return text, ok, nil
}

func (m *memCache) Upsert(_ context.Context, mode gloss.Mode, word, text string, isUpdate bool) error {
	if m.failAll {
		return errCacheDown
	}
	k := cacheKey{mode, word}
	_, exists := m.entries[k]
	switch {
	case isUpdate && !exists:
		return errors.New("no entry to update")
	case !isUpdate && exists:
		return errors.New("duplicate entry")
	}
	if isUpdate {
		m.updates++
	} else {
		m.inserts++
	}
	m.entries[k] = text
	return nil
}

type countingProgress struct {
	starts, stops int
}

func (p *countingProgress) Start(string) { p.starts++ }
func (p *countingProgress) Stop()        { p.stops++ }
