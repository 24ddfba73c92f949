// Package apaleague scrapes player and team stats from the APA league
// member portal. The portal is a javascript app behind a login wall,
// so everything goes through a browser session instead of plain http.
package apaleague

import (
	"context"
	"time"

	"apastats/lib/browser"
	"apastats/lib/retryutil"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/apaleague")

// DefaultUserAgent matches a desktop chrome, the portal serves reduced
// markup to anything it considers a bot.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// fixed waits tuned against the live portal, the app keeps rendering
// well after the network goes idle
const (
	loginSubmitWait   = 3 * time.Second
	loginContinueWait = 5 * time.Second
	notificationWait  = 2 * time.Second
	dismissSettleWait = time.Second
	scrollSettleWait  = 3500 * time.Millisecond
	loadMoreWait      = 5250 * time.Millisecond
	nudgeWait         = 1750 * time.Millisecond
	nudgePixels       = 500
)

const maxNotificationPasses = 5

type Options struct {
	BaseURL string
	// League is the configured default, used when neither the request
	// nor the identifier url names one.
	League   string
	StateDir StateDir
	// ActionTimeout bounds individual page interactions.
	ActionTimeout time.Duration
	MaxRetries    int
	// ScrollLimit caps the reveal loop on player pages,
	// DetailScrollLimit the shorter loop on expansion pages.
	ScrollLimit       int
	DetailScrollLimit int
	// DelayMin/DelayMax bound the randomized pause before hitting
	// another member page during expansion.
	DelayMin time.Duration
	DelayMax time.Duration
	// Sleep replaces the context-aware sleep behind every wait and
	// retry delay, tests inject an instant one.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.League == "" {
		o.League = DefaultLeague
	}
	if o.StateDir.Root == "" {
		o.StateDir = DefaultStateDir()
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 30 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.ScrollLimit <= 0 {
		o.ScrollLimit = 30
	}
	if o.DetailScrollLimit <= 0 {
		o.DetailScrollLimit = 20
	}
	if o.DelayMin <= 0 {
		o.DelayMin = 2 * time.Second
	}
	if o.DelayMax < o.DelayMin {
		o.DelayMax = o.DelayMin + 2*time.Second
	}
	return o
}

type detailAggregates struct {
	MinSkill      *int
	MaxSkill      *int
	SeasonsPlayed *int
}

// Client drives one browser session against the portal. It is not
// safe for concurrent use, the session underneath is a single page.
type Client struct {
	session browser.Session
	opts    Options
	retry   retryutil.Policy
	// memo keeps expansion results for the lifetime of the process so
	// a player on two teams is only visited once.
	memo  *expirable.LRU[string, detailAggregates]
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(session browser.Session, opts Options) *Client {
	opts = opts.withDefaults()
	retry := retryutil.DefaultPolicy()
	retry.MaxAttempts = opts.MaxRetries
	retry.Sleep = opts.Sleep

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Client{
		session: session,
		opts:    opts,
		retry:   retry,
		memo:    expirable.NewLRU[string, detailAggregates](512, nil, 15*time.Minute),
		sleep:   sleep,
	}
}

func (c *Client) Options() Options { return c.opts }

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// politeDelay pauses a random interval inside the configured bounds so
// expansion does not hammer member pages back to back.
func (c *Client) politeDelay(ctx context.Context) error {
	minMs := int(c.opts.DelayMin.Milliseconds())
	maxMs := int(c.opts.DelayMax.Milliseconds())
	ms, err := random.IntRange(minMs, maxMs+1)
	if err != nil {
		ms = minMs
	}
	return c.sleep(ctx, time.Duration(ms)*time.Millisecond)
}
