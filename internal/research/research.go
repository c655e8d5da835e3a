// Package research discovers job postings for a bare job title through Google
// Programmable Search.
package research

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/types"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// DefaultResults is the number of postings requested per search.
const DefaultResults = 2

// SearchError reports a failed posting search.
type SearchError struct {
	Query   string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("search %q: %s", e.Query, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Searcher finds job postings by title.
type Searcher struct {
	svc     *customsearch.Service
	cx      string
	results int
	logger  *zap.Logger
}

// NewSearcher creates a Searcher. Extra client options (endpoint, HTTP client) are
// passed through to the customsearch service.
func NewSearcher(ctx context.Context, apiKey, cx string, results int, logger *zap.Logger, opts ...option.ClientOption) (*Searcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search API key and engine id are required")
	}
	if results <= 0 {
		results = DefaultResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Searcher{svc: svc, cx: cx, results: results, logger: logger}, nil
}

// Query builds the search query for a job title.
func Query(title string) string {
	return strings.TrimSpace(title) + " job description"
}

// SearchPostings returns candidate postings for title, best ranked first. An empty
// slice is a valid answer; only transport or API failures are errors.
func (s *Searcher) SearchPostings(ctx context.Context, title string) ([]types.Posting, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &SearchError{Query: title, Message: "title is empty"}
	}
	q := Query(title)

	resp, err := s.svc.Cse.List().Context(ctx).Cx(s.cx).Q(q).Num(int64(s.results)).Do()
	if err != nil {
		return nil, &SearchError{Query: q, Message: "search request failed", Cause: err}
	}

	postings := make([]types.Posting, 0, len(resp.Items))
	seen := make(map[string]bool)
	for _, item := range resp.Items {
		if !usableLink(item.Link) || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		postings = append(postings, types.Posting{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	s.logger.Debug("posting search finished", zap.String("query", q), zap.Int("results", len(postings)))
	return postings, nil
}

func usableLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
