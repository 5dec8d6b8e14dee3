package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// rateLimited builds the backend error the retry loop reacts to.
func rateLimited() error {
	return &APIError{StatusCode: 429, Message: "quota", Provider: "test"}
}

// newTestAssistant wires a mock provider and captures backoff delays
// instead of sleeping.
func newTestAssistant(p Provider) (*Assistant, *[]time.Duration) {
	a := New(p, nil)
	delays := &[]time.Duration{}
	a.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return a, delays
}

func TestAskReturnsBackendReply(t *testing.T) {
	p := &MockProvider{}
	a, _ := newTestAssistant(p)

	reply, err := a.Ask(context.Background(), "how do I sleep in zero g?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "echo: how do I sleep in zero g?" {
		t.Errorf("reply = %q", reply)
	}
}

func TestAskRetriesRateLimitsWithBackoff(t *testing.T) {
	failures := 2
	p := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			if failures > 0 {
				failures--
				return "", rateLimited()
			}
			return "finally", nil
		},
	}
	a, delays := newTestAssistant(p)

	reply, err := a.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "finally" {
		t.Errorf("reply = %q", reply)
	}
	if len(p.Prompts()) != 3 {
		t.Errorf("backend called %d times, want 3", len(p.Prompts()))
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay %d = %v, want %v (doubling from 1s)", i, (*delays)[i], want[i])
		}
	}
}

func TestAskFallsBackAfterRetryExhaustion(t *testing.T) {
	p := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", rateLimited()
		},
	}
	a, delays := newTestAssistant(p)

	var surfaced string
	a.OnReply = func(q, reply string, spoken bool) { surfaced = reply }

	reply, err := a.Ask(context.Background(), "q")
	if err == nil {
		t.Fatal("want error after exhausting retries")
	}
	if reply != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if surfaced != FallbackReply {
		t.Errorf("surfaced = %q, want fallback shown to the user", surfaced)
	}
	// Initial attempt plus three retries.
	if len(p.Prompts()) != 4 {
		t.Errorf("backend called %d times, want 4", len(p.Prompts()))
	}
	if len(*delays) != 3 {
		t.Errorf("backed off %d times, want 3", len(*delays))
	}
}

func TestAskDoesNotRetryOtherFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"server error", &APIError{StatusCode: 500, Provider: "test"}},
		{"unauthorized", &APIError{StatusCode: 401, Provider: "test"}},
		{"network error", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockProvider{
				GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
					return "", tt.err
				},
			}
			a, delays := newTestAssistant(p)

			reply, err := a.Ask(context.Background(), "q")
			if err == nil {
				t.Fatal("want error")
			}
			if reply != FallbackReply {
				t.Errorf("reply = %q, want fallback", reply)
			}
			if len(p.Prompts()) != 1 {
				t.Errorf("backend called %d times, want 1 (no retry)", len(p.Prompts()))
			}
			if len(*delays) != 0 {
				t.Errorf("backed off %d times, want 0", len(*delays))
			}
		})
	}
}

func TestListeningToggleIntent(t *testing.T) {
	b := bus.New()
	a := New(&MockProvider{}, nil)
	a.Bind(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	if a.Listening() {
		t.Fatal("listening before any intent")
	}

	b.Publish(bus.TopicIntent, bus.Intent{Name: bus.IntentToggleListening})
	b.Drain()
	if !a.Listening() {
		t.Error("not listening after toggle")
	}

	b.Publish(bus.TopicIntent, bus.Intent{Name: bus.IntentToggleListening})
	b.Drain()
	if a.Listening() {
		t.Error("still listening after second toggle")
	}
}
