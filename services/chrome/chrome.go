// Package chrome starts the headless browser used for PDF printing and for
// measuring block heights.
package chrome

import (
	"context"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ExecPath returns the Chrome executable from CHROME_PATH, or "" to let
// chromedp find one
func ExecPath() string {
	return os.Getenv("CHROME_PATH")
}

// Available reports whether a browser binary has been configured
func Available() bool {
	return ExecPath() != ""
}

// NewContext launches a headless browser and returns a tab context.
// The returned cancel func closes the tab and the browser.
func NewContext(parent context.Context, execPath string) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	// Custom Chrome path (headless-shell in Docker)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// SetContent navigates to a blank page and replaces its document with html
func SetContent(html string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
}
