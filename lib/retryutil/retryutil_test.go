package retryutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		expect Kind
	}{
		{MarkFatal(errors.New("credentials rejected")), KindFatal},
		{MarkTransient(errors.New("no rows harvested")), KindTransient},
		{MarkTimeout(errors.New("slow page")), KindTimeout},
		{fmt.Errorf("extract history: %w", MarkFatal(errors.New("bad table"))), KindFatal},
		{context.DeadlineExceeded, KindTimeout},
		{errors.New("Timeout 30000ms exceeded"), KindTimeout},
		{errors.New("waiting for selector exceeded"), KindTimeout},
		{errors.New("connection reset by peer"), KindTransient},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, Classify(test.err), "err: %v", test.err)
	}
}

func recordingPolicy(waits *[]time.Duration) Policy {
	p := DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return p
}

func TestDoRetriesTransient(t *testing.T) {
	var waits []time.Duration
	calls := 0

	out, err := Do(context.Background(), recordingPolicy(&waits), "op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", MarkTransient(errors.New("empty table"))
		}
		return "rows", nil
	})
	require.NoError(t, err)
	require.Equal(t, "rows", out)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{time.Second * 2, time.Second * 2}, waits)
}

func TestDoTimeoutWaitsLonger(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := Do(context.Background(), recordingPolicy(&waits), "op", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("page.goto: Timeout 30000ms exceeded")
		}
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, []time.Duration{time.Second * 3}, waits)
}

func TestDoFatalReturnsImmediately(t *testing.T) {
	var waits []time.Duration
	calls := 0
	sentinel := errors.New("malformed roster table")

	_, err := Do(context.Background(), recordingPolicy(&waits), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, MarkFatal(sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
	require.Empty(t, waits)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var waits []time.Duration
	calls := 0
	sentinel := errors.New("still empty")

	_, err := Do(context.Background(), recordingPolicy(&waits), "harvest", func(ctx context.Context) (int, error) {
		calls++
		return 0, MarkTransient(sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 3, calls)
	// no wait after the final attempt
	require.Equal(t, []time.Duration{time.Second * 2, time.Second * 2}, waits)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	p := DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	calls := 0

	_, err := Do(context.Background(), p, "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, MarkTransient(errors.New("nope"))
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
