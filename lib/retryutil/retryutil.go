package retryutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("apastats.lib.retryutil")

// Kind decides how an operation failure is handled on retry.
type Kind int

const (
	// KindFatal failures are returned immediately, retrying cannot help.
	KindFatal Kind = iota
	// KindTransient failures get a short wait before the next attempt.
	KindTransient
	// KindTimeout failures get a longer wait, the page is probably slow.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// Kinder is implemented by errors that know their own retry kind.
type Kinder interface {
	RetryKind() Kind
}

type kindError struct {
	kind Kind
	err  error
}

func (e kindError) Error() string   { return e.err.Error() }
func (e kindError) Unwrap() error   { return e.err }
func (e kindError) RetryKind() Kind { return e.kind }

// MarkFatal wraps err so Classify reports it as KindFatal.
func MarkFatal(err error) error { return kindError{KindFatal, err} }

// MarkTransient wraps err so Classify reports it as KindTransient.
func MarkTransient(err error) error { return kindError{KindTransient, err} }

// MarkTimeout wraps err so Classify reports it as KindTimeout.
func MarkTimeout(err error) error { return kindError{KindTimeout, err} }

// Classify maps an error to its retry kind. Errors implementing Kinder
// speak for themselves. Deadline errors and errors whose message
// mentions a timeout classify as KindTimeout. Everything else is
// assumed transient.
func Classify(err error) Kind {
	var kinder Kinder
	if errors.As(err, &kinder) {
		return kinder.RetryKind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "exceeded") {
		return KindTimeout
	}
	return KindTransient
}

// Policy controls attempt count and the waits between attempts.
type Policy struct {
	MaxAttempts   int
	TransientWait time.Duration
	TimeoutWait   time.Duration
	// Sleep replaces the default context-aware sleep, tests inject a
	// recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		TransientWait: time.Second * 2,
		TimeoutWait:   time.Second * 3,
	}
}

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

// Do runs op up to p.MaxAttempts times. Fatal failures are returned
// right away, transient and timeout failures wait their kind's delay
// and try again. The error from the last attempt is returned when all
// attempts are spent.
func Do[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("retry:%s", name))
	defer span.End()

	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			return out, nil
		}
		lastErr = err

		kind := Classify(err)
		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("kind", kind.String()),
			attribute.String("err", err.Error()),
		))
		if kind == KindFatal {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.TransientWait
		if kind == KindTimeout {
			wait = p.TimeoutWait
		}
		slog.Warn(
			"operation failed, retrying",
			"op", name,
			"attempt", attempt,
			"kind", kind.String(),
			"wait", wait,
			"err", err,
		)
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%s: %d attempts: %w", name, p.MaxAttempts, lastErr)
}
