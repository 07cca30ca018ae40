package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestGetDelay(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{
			"Private chat - no delay needed",
			123456789,
			now.Add(-2 * time.Second),
			true,
		},
		{
			"Private chat - delay needed",
			123456789,
			now.Add(-500 * time.Millisecond),
			false,
		},
		{
			"Group chat - no delay needed",
			-123456789,
			now.Add(-4 * time.Second),
			true,
		},
		{
			"Group chat - delay needed",
			-123456789,
			now.Add(-1 * time.Second),
			false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getDelay(test.chatID, test.lastSent)

			if test.wantZero && got > 0 {
				t.Errorf("Expected zero delay, got %v", got)
			}

			if !test.wantZero && got <= 0 {
				t.Errorf("Expected positive delay, got %v", got)
			}
		})
	}
}

func TestGetRate(t *testing.T) {
	if got := getRate(42); got != privateChatRate {
		t.Errorf("Expected private rate, got %v", got)
	}

	if got := getRate(-42); got != groupChatRate {
		t.Errorf("Expected group rate, got %v", got)
	}
}

func TestSendReturnsCallResult(t *testing.T) {
	rl := New(slog.Default())
	defer rl.Stop()

	calls := 0
	err := rl.Send(context.Background(), 1, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantErr := errors.New("chat not found")
	err = rl.Send(context.Background(), 2, func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSendSpacesMessagesPerChat(t *testing.T) {
	rl := New(slog.Default())
	defer rl.Stop()

	var sent []time.Time
	send := func(context.Context) error {
		sent = append(sent, time.Now())
		return nil
	}

	for range 2 {
		if err := rl.Send(context.Background(), 7, send); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if gap := sent[1].Sub(sent[0]); gap < privateChatRate-50*time.Millisecond {
		t.Fatalf("expected messages to be spaced by ~%v, got %v", privateChatRate, gap)
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := New(slog.Default())
	rl.Stop()

	err := rl.Send(context.Background(), 1, func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
