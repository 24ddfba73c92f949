package apaleague

import (
	"context"
	"testing"
	"time"

	"apastats/lib/browser/browsertest"
)

// testClient wires a Client to a scripted session with every wait
// zeroed so tests run instantly.
func testClient(t *testing.T, fake *browsertest.Fake) *Client {
	t.Helper()

	return NewClient(fake, Options{
		BaseURL:  "https://portal.test",
		League:   "Philadelphia",
		StateDir: StateDir{Root: t.TempDir()},
		Sleep:    func(ctx context.Context, d time.Duration) error { return nil },
	})
}

func countString(log []string, s string) int {
	n := 0
	for _, entry := range log {
		if entry == s {
			n++
		}
	}
	return n
}
