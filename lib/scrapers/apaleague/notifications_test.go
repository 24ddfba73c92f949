package apaleague

import (
	"context"
	"testing"

	"apastats/lib/browser/browsertest"

	"github.com/stretchr/testify/require"
)

const overlayPage = `<html><body>
<div class="notification-banner"><p>Big news!</p><button class="btn-close">x</button></div>
<table><tr><td>content</td></tr></table>
</body></html>`

const cleanPage = `<html><body><table><tr><td>content</td></tr></table></body></html>`

func TestDismissNotifications(t *testing.T) {
	fake := browsertest.New().Route("https://portal.test/page", &browsertest.Route{
		States: []browsertest.State{{HTML: overlayPage}, {HTML: cleanPage}},
	})
	c := testClient(t, fake)
	require.NoError(t, fake.Navigate(context.Background(), "https://portal.test/page"))

	err := c.dismissNotifications(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, countString(fake.ClickLog, ".btn-close"))

	html, err := fake.Content(context.Background())
	require.NoError(t, err)
	require.Equal(t, cleanPage, html)
}

func TestDismissNotificationsPrefersNoThanks(t *testing.T) {
	page := `<html><body>
<div class="popup"><input type="button" value="No Thanks"><button class="btn-close">x</button></div>
</body></html>`
	fake := browsertest.New().Route("https://portal.test/page", &browsertest.Route{
		States: []browsertest.State{{HTML: page}, {HTML: cleanPage}},
	})
	c := testClient(t, fake)
	require.NoError(t, fake.Navigate(context.Background(), "https://portal.test/page"))

	err := c.dismissNotifications(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{`input[type="button"][value="No Thanks"]`}, fake.ClickLog)
}

func TestDismissNotificationsGivesUp(t *testing.T) {
	// a single state, the overlay never goes away
	fake := browsertest.New().Route("https://portal.test/page", &browsertest.Route{
		States: []browsertest.State{{HTML: overlayPage}},
	})
	c := testClient(t, fake)
	require.NoError(t, fake.Navigate(context.Background(), "https://portal.test/page"))

	err := c.dismissNotifications(context.Background())

	var navErr NavigationError
	require.ErrorAs(t, err, &navErr)
	require.Len(t, fake.ClickLog, maxNotificationPasses)
}

func TestDismissNotificationsNoOverlay(t *testing.T) {
	fake := browsertest.New().Route("https://portal.test/page", &browsertest.Route{
		States: []browsertest.State{{HTML: cleanPage}},
	})
	c := testClient(t, fake)
	require.NoError(t, fake.Navigate(context.Background(), "https://portal.test/page"))

	require.NoError(t, c.dismissNotifications(context.Background()))
	require.Empty(t, fake.ClickLog)
}
