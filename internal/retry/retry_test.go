package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nadzzz/lingua/internal/apierr"
)

func fastPolicy() Policy {
	p := Default()
	p.Delay = time.Millisecond
	return p
}

func TestSucceedsOnThirdAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context, attempt int) (string, error) {
		calls++
		if attempt < 3 {
			return "", apierr.Upstream(502, "bad gateway", "")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestAlwaysFailingExhausts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, apierr.New(apierr.KindResponseParse, "Failed to parse translation response")
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %T", err)
	}
	if ex.Attempts != 3 {
		t.Fatalf("attempts = %d", ex.Attempts)
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Fatalf("error does not mention attempt count: %v", err)
	}
	if apierr.KindOf(err) != apierr.KindResponseParse {
		t.Fatalf("exhausted error should unwrap to the last failure")
	}
}

func TestNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, apierr.New(apierr.KindMissingInput, "No text provided")
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		t.Fatalf("non-retryable error should not be wrapped")
	}
	if apierr.KindOf(err) != apierr.KindMissingInput {
		t.Fatalf("unexpected kind %q", apierr.KindOf(err))
	}
}

func TestUniformDelay(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: 20 * time.Millisecond}
	var stamps []time.Time
	_, _ = Do(context.Background(), p, func(ctx context.Context, attempt int) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, errors.New("boom")
	})
	if len(stamps) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 20*time.Millisecond {
			t.Fatalf("gap %d too short: %v", i, gap)
		}
	}
}

func TestCancelledWaitStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, Delay: time.Hour}
	calls := 0
	_, err := Do(ctx, p, func(ctx context.Context, attempt int) (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		t.Fatalf("a cancelled wait is not exhaustion: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in the chain, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "boom") {
		t.Fatalf("last failure should lead the message: %v", err)
	}
}

func TestCancelledWaitKeepsLastKind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, Delay: time.Hour, Retryable: apierr.IsRetryable}
	_, err := Do(ctx, p, func(ctx context.Context, attempt int) (int, error) {
		cancel()
		return 0, apierr.Upstream(502, "bad gateway", "")
	})
	if apierr.StatusOf(err) != 502 || apierr.MessageOf(err) != "bad gateway" {
		t.Fatalf("expected the last upstream failure, got %v", err)
	}
}

func TestAttempts(t *testing.T) {
	if got := Attempts(1); got != "1 attempt" {
		t.Fatalf("Attempts(1) = %q", got)
	}
	if got := Attempts(3); got != "3 attempts" {
		t.Fatalf("Attempts(3) = %q", got)
	}
	_, err := Do(context.Background(), Policy{MaxAttempts: 1}, func(ctx context.Context, attempt int) (int, error) {
		return 0, errors.New("boom")
	})
	if err == nil || err.Error() != "failed after 1 attempt: boom" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	_, _ = Do(context.Background(), Policy{}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
