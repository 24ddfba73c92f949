package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("apastats.lib.browser")

type Options struct {
	Headless  bool
	UserAgent string
	// StatePath points at a storage state json. When the file exists the
	// context starts out with its cookies, otherwise it starts fresh.
	StatePath string
	// Timeout is the default per-action timeout.
	Timeout        time.Duration
	ExecutablePath string
}

// defaultArgs keep chromium alive in containers and make automation a
// little less obvious to the portal.
var defaultArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-blink-features=AutomationControlled",
}

// Engine drives a single chromium context through playwright. One
// engine means one browser context, shared by every operation in the
// process.
type Engine struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page
	opts       Options
}

// Install downloads the chromium runtime playwright drives. Safe to
// call when it is already present.
func Install() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

func Launch(ctx context.Context, opts Options) (*Engine, error) {
	_, span := tracer.Start(ctx, "Launch")
	defer span.End()
	span.SetAttributes(attribute.Bool("headless", opts.Headless))

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     defaultArgs,
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	chromium, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.StatePath != "" {
		_, err := os.Stat(opts.StatePath)
		if err == nil {
			ctxOpts.StorageStatePath = playwright.String(opts.StatePath)
			slog.Debug("restoring browser state", "path", opts.StatePath)
		}
	}
	browserCtx, err := chromium.NewContext(ctxOpts)
	if err != nil {
		chromium.Close()
		pw.Stop()
		return nil, fmt.Errorf("new context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		chromium.Close()
		pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}
	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	return &Engine{
		pw:         pw,
		browser:    chromium,
		browserCtx: browserCtx,
		page:       page,
		opts:       opts,
	}, nil
}

// wrapTimeout folds the engine's timeout failures into ErrTimeout so
// callers can classify without knowing playwright error strings.
func wrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func (e *Engine) timeoutMs(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (e *Engine) Navigate(ctx context.Context, url string) error {
	_, span := tracer.Start(ctx, "Navigate")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	_, err := e.page.Goto(url)
	return wrapTimeout(err)
}

func (e *Engine) WaitFor(ctx context.Context, cond Condition, timeout time.Duration) error {
	_, span := tracer.Start(ctx, "WaitFor")
	defer span.End()
	span.SetAttributes(attribute.String("condition", cond.String()))

	switch cond.Kind {
	case ConditionVisible:
		err := e.page.Locator(cond.Selector).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: e.timeoutMs(timeout),
		})
		return wrapTimeout(err)
	default:
		err := e.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateNetworkidle,
			Timeout: e.timeoutMs(timeout),
		})
		return wrapTimeout(err)
	}
}

func (e *Engine) Query(ctx context.Context, selector string) ([]Element, error) {
	_, span := tracer.Start(ctx, "Query")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	locators, err := e.page.Locator(selector).All()
	if err != nil {
		// an unsupported selector should read as "nothing matched"
		slog.Debug("query failed", "selector", selector, "err", err)
		return nil, nil
	}
	out := make([]Element, len(locators))
	for i, loc := range locators {
		out[i] = pwElement{loc: loc}
	}
	return out, nil
}

func (e *Engine) Click(ctx context.Context, selector string, timeout time.Duration) error {
	_, span := tracer.Start(ctx, "Click")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	err := e.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: e.timeoutMs(timeout),
	})
	return wrapTimeout(err)
}

func (e *Engine) Fill(ctx context.Context, selector string, value string, timeout time.Duration) error {
	_, span := tracer.Start(ctx, "Fill")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	err := e.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: e.timeoutMs(timeout),
	})
	return wrapTimeout(err)
}

func (e *Engine) Scroll(ctx context.Context, s Scroll) error {
	_, span := tracer.Start(ctx, "Scroll")
	defer span.End()

	var err error
	if s.ToBottom {
		_, err = e.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	} else {
		_, err = e.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %f)", s.ByPixels))
	}
	return wrapTimeout(err)
}

func (e *Engine) Content(ctx context.Context) (string, error) {
	_, span := tracer.Start(ctx, "Content")
	defer span.End()

	content, err := e.page.Content()
	return content, wrapTimeout(err)
}

func (e *Engine) Title(ctx context.Context) (string, error) {
	title, err := e.page.Title()
	return title, wrapTimeout(err)
}

func (e *Engine) URL() string {
	return e.page.URL()
}

func (e *Engine) SaveState(ctx context.Context, path string) error {
	_, span := tracer.Start(ctx, "SaveState")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	_, err := e.browserCtx.StorageState(path)
	return err
}

func (e *Engine) Close(ctx context.Context) error {
	_, span := tracer.Start(ctx, "Close")
	defer span.End()

	errlist := []error{}
	if err := e.page.Close(); err != nil {
		errlist = append(errlist, err)
	}
	if err := e.browserCtx.Close(); err != nil {
		errlist = append(errlist, err)
	}
	if err := e.browser.Close(); err != nil {
		errlist = append(errlist, err)
	}
	if err := e.pw.Stop(); err != nil {
		errlist = append(errlist, err)
	}
	return errors.Join(errlist...)
}

type pwElement struct {
	loc playwright.Locator
}

func (e pwElement) Text(ctx context.Context) (string, error) {
	text, err := e.loc.TextContent()
	return text, wrapTimeout(err)
}

func (e pwElement) Attr(ctx context.Context, name string) (string, error) {
	val, err := e.loc.GetAttribute(name)
	return val, wrapTimeout(err)
}

func (e pwElement) Visible(ctx context.Context) (bool, error) {
	return e.loc.IsVisible()
}

func (e pwElement) Click(ctx context.Context) error {
	return wrapTimeout(e.loc.Click())
}
