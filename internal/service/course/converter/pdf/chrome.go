package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	courseSvc "coursehub/internal/domain/services/course"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"
)

// A4 in inches, with 20mm margins
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	marginIn   = 0.79
)

// ErrRendererClosed is returned by RenderPDF after Close
var ErrRendererClosed = errors.New("renderer closed")

// ChromeOptions configures the headless browser renderer
type ChromeOptions struct {
	ExecPath    string // Empty = let chromedp find Chrome/Chromium
	Concurrency int    // Max in-flight renders; < 1 means 1
	NoSandbox   bool   // Needed when running as root in containers
}

// ChromeRenderer prints documents to PDF with a single headless browser that
// is launched on first use and reused for every render. Each render gets a
// fresh tab. If the browser dies it is relaunched on the next render.
//
// Safe for concurrent use; renders beyond Concurrency wait their turn.
type ChromeRenderer struct {
	opts   ChromeOptions
	sem    *semaphore.Weighted
	logger *slog.Logger

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeRenderer creates the renderer. No browser is started until Start
// or the first RenderPDF.
func NewChromeRenderer(opts ChromeOptions, logger *slog.Logger) *ChromeRenderer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &ChromeRenderer{
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.Concurrency)),
		logger: logger,
	}
}

// Name returns the renderer name for logging
func (r *ChromeRenderer) Name() string { return "chrome" }

// Start launches the browser if it isn't already running
func (r *ChromeRenderer) Start(ctx context.Context) error {
	_, err := r.browser(ctx)
	return err
}

// Close shuts the browser down. Further renders fail with ErrRendererClosed.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.shutdownLocked()
	return nil
}

// RenderPDF prints doc.Page on a new tab
func (r *ChromeRenderer) RenderPDF(ctx context.Context, doc *courseSvc.PDFDocument) ([]byte, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	browserCtx, err := r.browser(ctx)
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	// The tab lives under the browser context, so tie it to the caller too
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var out []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, doc.Page).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.checkBrowser()
		return nil, err
	}

	return out, nil
}

// browser returns the running browser context, launching one if needed
func (r *ChromeRenderer) browser(ctx context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}
	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, nil
	}
	r.shutdownLocked()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecPath))
	}
	if r.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	// Detached from ctx: the browser outlives the request that launched it
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run on a fresh context is what launches the process
	launched := make(chan error, 1)
	go func() { launched <- chromedp.Run(browserCtx) }()
	select {
	case err := <-launched:
		if err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("launch browser: %w", err)
		}
	case <-ctx.Done():
		browserCancel()
		allocCancel()
		return nil, ctx.Err()
	}

	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel

	r.logger.Info("headless browser started", "exec_path", r.opts.ExecPath)
	return browserCtx, nil
}

// checkBrowser drops a browser whose process has gone away so the next render relaunches it
func (r *ChromeRenderer) checkBrowser() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx == nil {
		return
	}
	if c := chromedp.FromContext(r.browserCtx); r.browserCtx.Err() != nil || c == nil || c.Browser == nil {
		r.logger.Warn("headless browser lost, will relaunch")
		r.shutdownLocked()
	}
}

func (r *ChromeRenderer) shutdownLocked() {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	r.browserCtx, r.browserCancel, r.allocCancel = nil, nil, nil
}
