package fetch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultMaxChars bounds the text handed to the job extractor.
const DefaultMaxChars = 10000

// Fetcher downloads job postings and returns their cleaned text. Outbound requests
// are paced by a shared token bucket so job hunting does not hammer a board.
type Fetcher struct {
	opts       Options
	limiter    *rate.Limiter
	maxChars   int
	useBrowser bool
	render     func(ctx context.Context, url string, timeout time.Duration) (string, error)
	logger     *zap.Logger
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Timeout       time.Duration
	UserAgent     string
	RatePerSecond float64
	MaxChars      int
	UseBrowser    bool
	Client        *http.Client
	Logger        *zap.Logger
}

// NewFetcher builds a Fetcher. A non-positive RatePerSecond disables pacing.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	opts := DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	opts.Client = cfg.Client

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Fetcher{
		opts:       *opts,
		limiter:    rate.NewLimiter(limit, 1),
		maxChars:   maxChars,
		useBrowser: cfg.UseBrowser,
		render:     RenderHTML,
		logger:     logger,
	}
}

// FetchAndClean downloads url and returns its main text, bounded to the configured
// number of characters. Every failure is an *Error.
func (f *Fetcher) FetchAndClean(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", &Error{URL: url, Message: "rate limiter wait aborted", Cause: err}
	}

	platform := DetectPlatform(url)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	res, err := URL(ctx, url, &f.opts)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(res.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: url, Message: "failed to extract text", Cause: err}
	}

	if f.useBrowser && ShouldUseBrowser(text) {
		f.logger.Debug("page looks client-rendered, retrying in browser",
			zap.String("url", url), zap.Int("chars", len(text)))
		html, berr := f.render(ctx, url, f.opts.Timeout*3)
		if berr != nil {
			f.logger.Warn("browser fallback failed", zap.String("url", url), zap.Error(berr))
		} else if btext, xerr := ExtractMainText(html, content, noise...); xerr == nil && len(btext) > len(text) {
			text = btext
		}
	}

	if text == "" {
		return "", &Error{URL: url, Message: "page has no extractable text"}
	}

	text = Truncate(text, f.maxChars)
	f.logger.Debug("fetched posting",
		zap.String("url", url), zap.String("platform", string(platform)), zap.Int("chars", len(text)))
	return text, nil
}
