package ocr

import (
	"context"
	"errors"
	"testing"
)

// fakeBackend scripts one OCR provider for chain tests.
type fakeBackend struct {
	name      string
	available bool
	payload   any
	err       error
	calls     int
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) Extract(ctx context.Context, imagePath string) (any, error) {
	f.calls++
	return f.payload, f.err
}

func TestChainShortCircuitsOnFirstContent(t *testing.T) {
	first := &fakeBackend{name: "first", available: true, payload: "sleeve text"}
	second := &fakeBackend{name: "second", available: true, payload: "should not run"}
	chain := NewChainWith([]Provider{first, second}, 1, nil)

	got := chain.Attempt(context.Background(), "cover.jpg")

	if got.Raw() != "sleeve text" {
		t.Errorf("Raw() = %q, want first backend's payload", got.Raw())
	}
	if second.calls != 0 {
		t.Errorf("second backend ran %d times, want 0", second.calls)
	}
}

func TestChainSkipsUnavailableAndFailedBackends(t *testing.T) {
	unavailable := &fakeBackend{name: "unavailable", available: false, payload: "never"}
	failing := &fakeBackend{name: "failing", available: true, err: errors.New("timeout")}
	working := &fakeBackend{name: "working", available: true, payload: "recovered text"}
	chain := NewChainWith([]Provider{unavailable, failing, working}, 1, nil)

	got := chain.Attempt(context.Background(), "cover.jpg")

	if got.Raw() != "recovered text" {
		t.Errorf("Raw() = %q, want fallback backend's payload", got.Raw())
	}
	if unavailable.calls != 0 {
		t.Errorf("unavailable backend ran %d times, want 0", unavailable.calls)
	}
}

func TestChainEmptyPayloadFallsThrough(t *testing.T) {
	empty := &fakeBackend{name: "empty", available: true, payload: "   "}
	working := &fakeBackend{name: "working", available: true, payload: "content"}
	chain := NewChainWith([]Provider{empty, working}, 1, nil)

	got := chain.Attempt(context.Background(), "cover.jpg")

	if got.Raw() != "content" {
		t.Errorf("Raw() = %q, want second backend after empty payload", got.Raw())
	}
}

func TestChainTotalFailureReturnsEmptyText(t *testing.T) {
	failing := &fakeBackend{name: "failing", available: true, err: errors.New("boom")}
	chain := NewChainWith([]Provider{failing}, 2, nil)

	got := chain.Attempt(context.Background(), "cover.jpg")

	if !got.Empty() {
		t.Errorf("Attempt() = %v, want all-empty payload on total failure", got)
	}
	if failing.calls != 2 {
		t.Errorf("failing backend ran %d times, want 2 (retried)", failing.calls)
	}
}
