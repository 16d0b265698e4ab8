package models

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DefaultRootURL is used by sources that do not name a root URL of their own.
const DefaultRootURL = "https://api.statuspage.io/v1/"

var ErrInvalidSource = errors.New("invalid source")

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Source is one configured statuspage.io provider. Label is the partition key
// for everything published about it.
//
// Build it with NewSource; a Source is never modified afterwards.
type Source struct {
	Label  string
	Pages  []string
	URL    string
	APIKey string
}

// NewSource validates and normalizes a source definition.
//
// A single page entry may hold several page names separated by line breaks,
// which is how they arrive from a text area or a single database column.
func NewSource(label string, pages []string, url string, apiKey string) (Source, error) {
	if label == "" {
		return Source{}, fmt.Errorf("%w: label is required", ErrInvalidSource)
	}

	pages = extractPages(pages)
	if len(pages) == 0 {
		return Source{}, fmt.Errorf("%w: source %q has no pages", ErrInvalidSource, label)
	}

	if strings.TrimSpace(url) == "" {
		url = DefaultRootURL
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}

	return Source{
		Label:  label,
		Pages:  pages,
		URL:    url,
		APIKey: apiKey,
	}, nil
}

func extractPages(pages []string) []string {
	if len(pages) == 1 {
		pages = lineBreaks.Split(pages[0], -1)
	}

	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Anonymous reports whether requests for this source go out without credentials.
func (s Source) Anonymous() bool {
	return s.APIKey == ""
}

// Equal compares all four fields.
func (s Source) Equal(o Source) bool {
	return s.Label == o.Label &&
		slices.Equal(s.Pages, o.Pages) &&
		s.URL == o.URL &&
		s.APIKey == o.APIKey
}

// String leaves the API key out.
func (s Source) String() string {
	return fmt.Sprintf("Source{label='%s', pages=%v, url='%s'}", s.Label, s.Pages, s.URL)
}

// Sources is the active set of sources for one update tick.
type Sources []Source

// Labels returns the configured labels in configuration order.
func (ss Sources) Labels() []string {
	labels := make([]string, 0, len(ss))
	for _, s := range ss {
		labels = append(labels, s.Label)
	}
	return labels
}

// Validate rejects duplicated labels; the label partitions the published metrics.
func (ss Sources) Validate() error {
	seen := make(map[string]bool, len(ss))
	for _, s := range ss {
		if seen[s.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidSource, s.Label)
		}
		seen[s.Label] = true
	}
	return nil
}
