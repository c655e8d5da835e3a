package rendering

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/cv-optimizer/internal/fetch"
)

// DefaultPDFTimeout bounds a single HTML to PDF conversion.
const DefaultPDFTimeout = 30 * time.Second

// A4 paper size in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// Converter turns an HTML page into PDF bytes.
type Converter interface {
	HTMLToPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromeConverter prints HTML to PDF with headless Chrome.
// Requires Chrome or Chromium on the host.
type ChromeConverter struct {
	Timeout time.Duration
}

// NewChromeConverter creates a ChromeConverter with the default timeout.
func NewChromeConverter() *ChromeConverter {
	return &ChromeConverter{Timeout: DefaultPDFTimeout}
}

// HTMLToPDF loads html into a blank page and prints it.
func (c *ChromeConverter) HTMLToPDF(ctx context.Context, html []byte) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, fetch.BrowserOptions()...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf printing failed: %w", err)
	}
	return pdf, nil
}
