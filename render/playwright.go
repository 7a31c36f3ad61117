package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Playwright prints pages with headless Chromium. The browser is launched on
// first use and shared; every render gets its own page.
type Playwright struct {
	InstallBrowsers bool
	Timeout         time.Duration
	Options         PageOptions

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywright(install bool, timeout time.Duration, opts PageOptions) *Playwright {
	return &Playwright{InstallBrowsers: install, Timeout: timeout, Options: opts}
}

func (p *Playwright) Name() string {
	return BackendPlaywright
}

func (p *Playwright) launch() (playwright.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil && p.browser.IsConnected() {
		return p.browser, nil
	}

	if p.InstallBrowsers {
		if err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		}); err != nil {
			return nil, NewRendererError(p.Name(), "install browsers", err)
		}
	}

	if p.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, NewRendererError(p.Name(), "start playwright", err)
		}
		p.pw = pw
	}

	var args []string
	if p.Options.LocalFileAccess {
		args = append(args, "--allow-file-access-from-files")
	}
	browser, err := p.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     args,
	})
	if err != nil {
		return nil, NewRendererError(p.Name(), "launch browser", err)
	}
	p.browser = browser
	log.Debugf("launched chromium %s", browser.Version())
	return browser, nil
}

func (p *Playwright) Render(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRendererError(p.Name(), "render", err)
	}
	browser, err := p.launch()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, NewRendererError(p.Name(), "create page", err)
	}
	defer page.Close()

	if deadline, ok := ctx.Deadline(); ok {
		page.SetDefaultTimeout(float64(time.Until(deadline).Milliseconds()))
	} else if p.Timeout > 0 {
		page.SetDefaultTimeout(float64(p.Timeout.Milliseconds()))
	}

	// close the page when the caller gives up so pending calls return
	stop := context.AfterFunc(ctx, func() { page.Close() })
	defer stop()

	if err := page.SetContent(html); err != nil {
		return nil, NewRendererError(p.Name(), "set content", p.ctxErr(ctx, err))
	}
	if p.Options.PrintMediaType {
		if err := page.EmulateMedia(playwright.PageEmulateMediaOptions{Media: playwright.MediaPrint}); err != nil {
			return nil, NewRendererError(p.Name(), "emulate media", p.ctxErr(ctx, err))
		}
	}

	out, err := page.PDF(playwright.PagePdfOptions{
		Format:            playwright.String(p.Options.PageSize),
		PrintBackground:   playwright.Bool(true),
		PreferCSSPageSize: playwright.Bool(true),
	})
	if err != nil {
		return nil, NewRendererError(p.Name(), "generate PDF", p.ctxErr(ctx, err))
	}
	return out, nil
}

func (p *Playwright) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

// Close stops the browser and the driver.
func (p *Playwright) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
		p.browser = nil
	}
	if p.pw != nil {
		errs = append(errs, p.pw.Stop())
		p.pw = nil
	}
	return errors.Join(errs...)
}
