package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultPrintTimeout bounds a single print including browser start-up.
const DefaultPrintTimeout = 60 * time.Second

// ChromePrinter prints with a headless Chrome/Chromium.
type ChromePrinter struct {
	// ExecPath overrides browser discovery, e.g. from CHROME_PATH.
	ExecPath string
	Timeout  time.Duration
	Verbose  bool
}

// NewChromePrinter returns a printer using the browser at execPath, or the
// first one found on the system when empty.
func NewChromePrinter(execPath string, verbose bool) *ChromePrinter {
	return &ChromePrinter{ExecPath: execPath, Timeout: DefaultPrintTimeout, Verbose: verbose}
}

// PrintPDF implements Printer.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html string, settings PageSettings) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPrintTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	// Chrome loads the page from disk so relative assets and large pages work.
	tmpDir, err := os.MkdirTemp("", "cv-export-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("writing page: %w", err)
	}

	if p.Verbose {
		log.Printf("[EXPORT] Printing %d bytes of HTML with headless browser", len(html))
	}

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(settings.Landscape).
				WithPaperWidth(settings.WidthIn).
				WithPaperHeight(settings.HeightIn).
				WithMarginTop(settings.MarginIn).
				WithMarginBottom(settings.MarginIn).
				WithMarginLeft(settings.MarginIn).
				WithMarginRight(settings.MarginIn).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser printing failed: %w", err)
	}
	return buf, nil
}
