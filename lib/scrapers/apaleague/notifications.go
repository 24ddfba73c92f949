package apaleague

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
)

// the portal shows a rotating cast of popups after login, these lists
// come from what it has served so far
var noThanksSelectors = []string{
	`a:has-text("No Thanks")`,
	`button:has-text("No Thanks")`,
	`button:has-text("No thanks")`,
	`button:has-text("NO THANKS")`,
	`[role="button"]:has-text("No Thanks")`,
	`input[type="button"][value="No Thanks"]`,
}

var overlaySelectors = []string{
	`[class*="notification"]`,
	`[class*="alert"]`,
	`[class*="modal"]`,
	`[class*="dialog"]`,
	`[class*="popup"]`,
	`[class*="toast"]`,
	`[role="dialog"]`,
	`[role="alert"]`,
	`.modal`,
	`.dialog`,
	`.popup`,
	`.notification`,
	`.alert`,
}

var closeSelectors = []string{
	`button:has-text("Close")`,
	`button:has-text("Dismiss")`,
	`button:has-text("OK")`,
	`button:has-text("Got it")`,
	`button:has-text("×")`,
	`button:has-text("✕")`,
	`[aria-label="Close"]`,
	`[aria-label="Dismiss"]`,
	`.close`,
	`.dismiss`,
	`.btn-close`,
}

var overlayButtonSelectors = []string{
	`[class*="modal"] button`,
	`[class*="popup"] button`,
	`[class*="notification"] button`,
	`[role="dialog"] button`,
}

// dismissNotifications sweeps popups until a pass finds nothing left.
// A page that keeps spawning overlays past the pass limit reports a
// NavigationError instead of looping forever.
func (c *Client) dismissNotifications(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "dismissNotifications")
	defer span.End()

	if err := c.sleep(ctx, notificationWait); err != nil {
		return err
	}

	for pass := 0; pass < maxNotificationPasses; pass++ {
		dismissed, err := c.dismissOnce(ctx)
		if err != nil {
			return err
		}
		if !dismissed {
			span.SetAttributes(attribute.Int("passes", pass))
			return nil
		}
		slog.Debug("dismissed a notification", "pass", pass)
		if err := c.sleep(ctx, dismissSettleWait); err != nil {
			return err
		}
	}
	return NavigationError{
		URL:    c.session.URL(),
		Detail: "notifications kept reappearing",
	}
}

// dismissOnce clicks at most one popup away and reports whether it
// found anything to click.
func (c *Client) dismissOnce(ctx context.Context) (bool, error) {
	clicked, err := c.clickFirstVisible(ctx, noThanksSelectors)
	if err != nil || clicked {
		return clicked, err
	}

	overlay, err := c.anyVisible(ctx, overlaySelectors)
	if err != nil {
		return false, err
	}
	if !overlay {
		return false, nil
	}

	clicked, err = c.clickFirstVisible(ctx, closeSelectors)
	if err != nil || clicked {
		return clicked, err
	}
	// last resort, any button living inside the overlay
	return c.clickFirstVisible(ctx, overlayButtonSelectors)
}

func (c *Client) clickFirstVisible(ctx context.Context, selectors []string) (bool, error) {
	for _, selector := range selectors {
		els, err := c.session.Query(ctx, selector)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			visible, err := el.Visible(ctx)
			if err != nil || !visible {
				continue
			}
			err = el.Click(ctx)
			if err != nil {
				slog.Debug("popup click failed", "selector", selector, "err", err)
				continue
			}
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) anyVisible(ctx context.Context, selectors []string) (bool, error) {
	for _, selector := range selectors {
		els, err := c.session.Query(ctx, selector)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			visible, err := el.Visible(ctx)
			if err == nil && visible {
				return true, nil
			}
		}
	}
	return false, nil
}
