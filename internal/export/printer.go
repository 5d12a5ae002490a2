package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrPrinterClosed is returned after Close.
var ErrPrinterClosed = errors.New("printer is closed")

// Printer turns a print document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, markup string, layout Layout) ([]byte, error)
}

// ChromeOptions configures the headless browser behind ChromePrinter.
type ChromeOptions struct {
	ExecPath  string
	NoSandbox bool
	Timeout   time.Duration
}

// ChromePrinter prints through a shared headless Chrome. It is safe for
// concurrent use; each job gets its own tab.
type ChromePrinter struct {
	timeout time.Duration

	allocCancel   context.CancelFunc
	browserCtx    context.Context //nolint:containedctx // browser lifetime
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChromePrinter starts the browser. Call Close to stop it.
func NewChromePrinter(opts ChromeOptions) (*ChromePrinter, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)

	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()

		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &ChromePrinter{
		timeout:       opts.Timeout,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// PrintPDF loads markup into a fresh tab and prints it with the layout's
// paper size, orientation and margins.
func (p *ChromePrinter) PrintPDF(ctx context.Context, markup string, layout Layout) ([]byte, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil, ErrPrinterClosed
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(p.browserCtx)
	defer tabCancel()

	// Tie the tab to the caller's deadline.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	layout = layout.orDefault()

	var pdf []byte

	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}

			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error

			pdf, _, err = page.PrintToPDF().
				WithPaperWidth(layout.Paper.Width).
				WithPaperHeight(layout.Paper.Height).
				WithLandscape(layout.Landscape).
				WithMarginTop(layout.Margins.Top).
				WithMarginRight(layout.Margins.Right).
				WithMarginBottom(layout.Margins.Bottom).
				WithMarginLeft(layout.Margins.Left).
				WithPrintBackground(true).
				Do(ctx)

			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}

	return pdf, nil
}

// Close stops the browser. It is idempotent.
func (p *ChromePrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	p.browserCancel()
	p.allocCancel()

	return nil
}
