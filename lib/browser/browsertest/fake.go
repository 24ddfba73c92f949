// Package browsertest provides a scripted browser.Session for scraper
// tests. Pages are static html snapshots arranged into routes, clicks
// and scrolls step through successive snapshots the way a live page
// would reveal content.
package browsertest

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"apastats/lib/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// State is one snapshot of a route's rendered page.
type State struct {
	Title string
	HTML  string
}

// Route scripts one url. Navigating to it the nth time lands on the
// nth state (clamped), so a retried visit can observe different
// content. Clicks and scrolls also advance through the states.
type Route struct {
	States []State
	// Redirect maps a clicked selector to the url the click lands on,
	// standing in for form submits and link follows.
	Redirect map[string]string
	// WaitErrs are handed out one per WaitFor call until exhausted.
	WaitErrs []error

	visits int
}

type Fill struct {
	Selector string
	Value    string
}

type Fake struct {
	mu      sync.Mutex
	routes  map[string]*Route
	current *Route
	step    int
	url     string
	closed  bool

	NavLog      []string
	ClickLog    []string
	FillLog     []Fill
	ScrollCount int
	SavedStates []string
}

func New() *Fake {
	return &Fake{routes: map[string]*Route{}}
}

func (f *Fake) Route(url string, r *Route) *Fake {
	f.routes[url] = r
	return f
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.NavLog = append(f.NavLog, url)
	f.url = url
	f.current = f.routes[url]
	f.step = 0
	if f.current != nil {
		f.current.visits++
		f.step = f.current.visits - 1
		if f.step >= len(f.current.States) {
			f.step = len(f.current.States) - 1
		}
	}
	return nil
}

func (f *Fake) WaitFor(ctx context.Context, cond browser.Condition, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil && len(f.current.WaitErrs) > 0 {
		err := f.current.WaitErrs[0]
		f.current.WaitErrs = f.current.WaitErrs[1:]
		return err
	}
	return nil
}

func (f *Fake) state() State {
	if f.current == nil || len(f.current.States) == 0 {
		return State{HTML: "<html><body></body></html>"}
	}
	return f.current.States[f.step]
}

func (f *Fake) doc() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(f.state().HTML))
}

func (f *Fake) Query(ctx context.Context, selector string) ([]browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		// engine-specific selector syntax, treat as no match
		return nil, nil
	}
	doc, err := f.doc()
	if err != nil {
		return nil, err
	}

	var out []browser.Element
	doc.FindMatcher(matcher).Each(func(_ int, sel *goquery.Selection) {
		attrs := map[string]string{}
		for _, node := range sel.Nodes {
			for _, a := range node.Attr {
				attrs[a.Key] = a.Val
			}
		}
		out = append(out, &fakeElement{
			fake:     f,
			selector: selector,
			text:     sel.Text(),
			attrs:    attrs,
		})
	})
	return out, nil
}

// click implements the shared transition logic for Click and element
// clicks. Redirects win, then a matched selector advances the page to
// its next state, anything else times out.
func (f *Fake) click(ctx context.Context, selector string) error {
	f.mu.Lock()
	f.ClickLog = append(f.ClickLog, selector)

	if f.current != nil && f.current.Redirect != nil {
		if target, ok := f.current.Redirect[selector]; ok {
			f.mu.Unlock()
			return f.Navigate(ctx, target)
		}
	}

	matcher, err := cascadia.Compile(selector)
	if err == nil {
		doc, derr := f.doc()
		if derr == nil && doc.FindMatcher(matcher).Length() > 0 {
			f.advance()
			f.mu.Unlock()
			return nil
		}
	}
	f.mu.Unlock()
	return browser.ErrTimeout
}

func (f *Fake) advance() {
	if f.current != nil && f.step < len(f.current.States)-1 {
		f.step++
	}
}

func (f *Fake) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return f.click(ctx, selector)
}

func (f *Fake) Fill(ctx context.Context, selector string, value string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FillLog = append(f.FillLog, Fill{Selector: selector, Value: value})
	return nil
}

func (f *Fake) Scroll(ctx context.Context, s browser.Scroll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScrollCount++
	f.advance()
	return nil
}

func (f *Fake) Content(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state().HTML, nil
}

func (f *Fake) Title(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state().Title, nil
}

func (f *Fake) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *Fake) SaveState(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SavedStates = append(f.SavedStates, path)
	return os.WriteFile(path, []byte(`{"cookies":[],"origins":[]}`), 0o644)
}

func (f *Fake) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeElement struct {
	fake     *Fake
	selector string
	text     string
	attrs    map[string]string
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attr(ctx context.Context, name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Visible(ctx context.Context) (bool, error) {
	return true, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	return e.fake.click(ctx, e.selector)
}
