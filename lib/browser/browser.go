// Package browser narrows page automation down to the handful of
// interactions the scrapers actually need. Scraping code is written
// against Page so it can run on a real chromium in production and on a
// scripted fake in tests.
package browser

import (
	"context"
	"fmt"
	"time"
)

// ErrTimeout wraps every action that ran out of time, whatever the
// engine's own error looks like.
var ErrTimeout = fmt.Errorf("browser: timeout")

type ConditionKind int

const (
	// ConditionLoaded waits for the page to settle after navigation.
	ConditionLoaded ConditionKind = iota
	// ConditionVisible waits for a selector to become visible.
	ConditionVisible
)

type Condition struct {
	Kind     ConditionKind
	Selector string
}

func Loaded() Condition {
	return Condition{Kind: ConditionLoaded}
}

func Visible(selector string) Condition {
	return Condition{Kind: ConditionVisible, Selector: selector}
}

func (c Condition) String() string {
	if c.Kind == ConditionVisible {
		return fmt.Sprintf("visible(%s)", c.Selector)
	}
	return "loaded"
}

// Scroll describes a scroll gesture, either to the bottom of the page
// or down by a pixel amount.
type Scroll struct {
	ToBottom bool
	ByPixels float64
}

func ScrollToBottom() Scroll {
	return Scroll{ToBottom: true}
}

func ScrollBy(pixels float64) Scroll {
	return Scroll{ByPixels: pixels}
}

// Element is a handle to a single matched node.
type Element interface {
	Text(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, error)
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
}

// Page is the capability surface scrapers are written against.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, cond Condition, timeout time.Duration) error
	// Query returns every element matching the selector. Selectors the
	// engine cannot interpret yield an empty result, not an error.
	Query(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector string, value string, timeout time.Duration) error
	Scroll(ctx context.Context, s Scroll) error
	Content(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	URL() string
}

// Session is a Page whose login state can be persisted across
// processes.
type Session interface {
	Page
	// SaveState writes cookies and storage to path.
	SaveState(ctx context.Context, path string) error
	Close(ctx context.Context) error
}
