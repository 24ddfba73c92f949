package apaleague

import (
	"context"
	"net/http/cookiejar"
	"strings"
	"time"

	"apastats/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// ProbeResult is a cheap health read on the portal, taken over plain
// http without launching a browser.
type ProbeResult struct {
	StatusCode int
	Latency    time.Duration
	// Blocked means the edge refused us, usually a cloudflare
	// challenge that only a real browser session will pass.
	Blocked bool
}

// Probe fetches the portal landing page once and reports status and
// latency. The portal sits behind cloudflare, so the transport carries
// the bypass and a desktop user agent.
func Probe(ctx context.Context, baseURL string) (ProbeResult, error) {
	ctx, span := tracer.Start(ctx, "Probe")
	defer span.End()

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return ProbeResult{}, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", DefaultUserAgent)
	client.SetTimeout(time.Second * 15)

	telemetry.InstrumentResty(client, "scrapers/apaleague/http")

	start := time.Now()
	res, err := client.R().SetContext(ctx).Get(baseURL)
	if err != nil {
		return ProbeResult{}, err
	}

	result := ProbeResult{
		StatusCode: res.StatusCode(),
		Latency:    time.Since(start),
	}
	switch res.StatusCode() {
	case 403, 503:
		result.Blocked = true
	default:
		body := strings.ToLower(res.String())
		result.Blocked = strings.Contains(body, "checking your browser") ||
			strings.Contains(body, "cf-challenge")
	}
	return result, nil
}
