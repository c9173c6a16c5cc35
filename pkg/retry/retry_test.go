package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "ok" || calls != 1 {
		t.Fatalf("expected one successful call, got out=%q calls=%d", out, calls)
	}
}

func TestDo_ExhaustsBudgetAndPropagatesFinalError(t *testing.T) {
	opErr := errors.New("remote unavailable")
	var attempts []time.Time
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		attempts = append(attempts, time.Now())
		return 0, opErr
	}, Options{MaxAttempts: 3, InitialDelay: 20 * time.Millisecond})

	if !errors.Is(err, opErr) {
		t.Fatalf("expected final error unchanged, got %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts total, got %d", len(attempts))
	}
	// Delay doubles per attempt: >=20ms before the 2nd, >=40ms before the 3rd.
	if d := attempts[1].Sub(attempts[0]); d < 20*time.Millisecond {
		t.Fatalf("second attempt fired after %v, want >= 20ms", d)
	}
	if d := attempts[2].Sub(attempts[1]); d < 40*time.Millisecond {
		t.Fatalf("third attempt fired after %v, want >= 40ms", d)
	}
}

func TestDo_LastAttemptDoesNotWait(t *testing.T) {
	start := time.Now()
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("nope")
	}, Options{MaxAttempts: 1, InitialDelay: time.Hour})
	if err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("single failed attempt should return immediately")
	}
}

func TestDo_RetryIfSuppressesRetries(t *testing.T) {
	notFound := errors.New("not found")
	calls := 0
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, notFound
	}, Options{MaxAttempts: 5, InitialDelay: time.Millisecond, RetryIf: func(err error) bool {
		return !errors.Is(err, notFound)
	}})

	if !errors.Is(err, notFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-recoverable failure must not retry, got %d attempts", calls)
	}
}

func TestDo_ContextCancelInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		return 0, errors.New("transient")
	}, Options{MaxAttempts: 3, InitialDelay: time.Hour})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancel should interrupt the backoff wait")
	}
}
