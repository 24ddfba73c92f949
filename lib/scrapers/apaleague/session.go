package apaleague

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"apastats/lib/browser"

	"go.opentelemetry.io/otel/attribute"
)

// LoginState tracks how far through the portal's login flow a session
// got. Failures report the state they died in.
type LoginState int

const (
	StateUnauthenticated LoginState = iota
	StateCredentialsSubmitted
	StateAuthorizationPending
	StateNotificationCheck
	StateAuthenticated
)

func (s LoginState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateCredentialsSubmitted:
		return "credentials-submitted"
	case StateAuthorizationPending:
		return "authorization-pending"
	case StateNotificationCheck:
		return "notification-check"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

type Credentials struct {
	Email    string
	Password string
}

const (
	loginEmailSelector    = "#email"
	loginPasswordSelector = "#password"
	loginSubmitSelector   = `button:has-text("Log In")`
	continueSelector      = `button:has-text("Continue")`
)

// sessionHint is how long a saved session usually stays good for. Only
// recorded as advice, the portal decides for real.
const sessionHint = time.Hour

// Login walks the portal's login flow and persists the session state
// on success. Credential rejections come back as AuthError, they are
// never retried.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if creds.Email == "" || creds.Password == "" {
		return AuthError{State: StateUnauthenticated, Reason: "missing credentials"}
	}

	loginUrl := LoginURL(c.opts.BaseURL)
	slog.Info("logging in", "url", loginUrl)
	err := c.session.Navigate(ctx, loginUrl)
	if err != nil {
		return NavigationError{URL: loginUrl, Detail: err.Error()}
	}
	err = c.session.WaitFor(ctx, browser.Loaded(), c.opts.ActionTimeout)
	if err != nil {
		return NavigationError{URL: loginUrl, Detail: err.Error()}
	}

	err = c.session.WaitFor(ctx, browser.Visible(loginEmailSelector), c.opts.ActionTimeout)
	if err != nil {
		return AuthError{State: StateUnauthenticated, Reason: "login form did not appear"}
	}
	err = c.session.Fill(ctx, loginEmailSelector, creds.Email, c.opts.ActionTimeout)
	if err != nil {
		return AuthError{State: StateUnauthenticated, Reason: "could not fill email field"}
	}
	err = c.session.Fill(ctx, loginPasswordSelector, creds.Password, c.opts.ActionTimeout)
	if err != nil {
		return AuthError{State: StateUnauthenticated, Reason: "could not fill password field"}
	}
	err = c.session.Click(ctx, loginSubmitSelector, c.opts.ActionTimeout)
	if err != nil {
		return AuthError{State: StateUnauthenticated, Reason: "could not submit login form"}
	}

	state := StateCredentialsSubmitted
	slog.Debug("login progressing", "state", state)
	if err := c.sleep(ctx, loginSubmitWait); err != nil {
		return err
	}

	// some accounts get an extra confirmation screen, absence is fine
	err = c.session.Click(ctx, continueSelector, 2*time.Second)
	if err == nil {
		slog.Debug("confirmed continue prompt")
	}
	state = StateAuthorizationPending
	slog.Debug("login progressing", "state", state)
	if err := c.sleep(ctx, loginContinueWait); err != nil {
		return err
	}
	err = c.session.WaitFor(ctx, browser.Loaded(), c.opts.ActionTimeout)
	if err != nil {
		slog.Debug("page did not settle after login", "err", err)
	}

	state = StateNotificationCheck
	span.SetAttributes(attribute.String("state", state.String()))
	err = c.dismissNotifications(ctx)
	if err != nil {
		return err
	}

	landed := c.session.URL()
	if strings.Contains(strings.ToLower(landed), "login") {
		return AuthError{
			State:  StateCredentialsSubmitted,
			Reason: "still on the login page, credentials were rejected",
		}
	}

	err = c.persistSession(ctx)
	if err != nil {
		return err
	}
	slog.Info("login successful", "landed", landed)
	return nil
}

func (c *Client) persistSession(ctx context.Context) error {
	err := c.opts.StateDir.EnsureLayout()
	if err != nil {
		return err
	}
	err = c.session.SaveState(ctx, c.opts.StateDir.BrowserStateFile())
	if err != nil {
		return err
	}
	now := time.Now()
	return c.opts.StateDir.WriteSessionMeta(SessionMeta{
		SavedAt:   now,
		ExpiresAt: now.Add(sessionHint),
		BaseURL:   c.opts.BaseURL,
	})
}

// Verify asks the portal whether the current session is logged in. It
// navigates to the landing page and checks where it ends up.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "Verify")
	defer span.End()

	err := c.session.Navigate(ctx, c.opts.BaseURL)
	if err != nil {
		return false, NavigationError{URL: c.opts.BaseURL, Detail: err.Error()}
	}
	err = c.session.WaitFor(ctx, browser.Loaded(), c.opts.ActionTimeout)
	if err != nil {
		return false, NavigationError{URL: c.opts.BaseURL, Detail: err.Error()}
	}
	// the portal pushes the same announcement overlays at returning
	// sessions as it does right after login
	err = c.dismissNotifications(ctx)
	if err != nil {
		return false, err
	}

	url := strings.ToLower(c.session.URL())
	if strings.Contains(url, "login") {
		return false, nil
	}
	title, err := c.session.Title(ctx)
	if err != nil {
		return false, err
	}
	title = strings.ToLower(title)
	authenticated := strings.Contains(title, "dashboard") || strings.Contains(title, "welcome")
	span.SetAttributes(attribute.Bool("authenticated", authenticated))
	return authenticated, nil
}

// RequireSession fails fast when there is no saved session or the
// portal no longer accepts the one on disk.
func (c *Client) RequireSession(ctx context.Context) error {
	if !c.opts.StateDir.HasSession() {
		return SessionRequired
	}
	ok, err := c.Verify(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return AuthError{
			State:  StateUnauthenticated,
			Reason: "saved session was rejected by the portal",
		}
	}
	return nil
}
