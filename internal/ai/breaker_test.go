package ai_test

import (
	"context"
	"testing"
	"time"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
)

func TestWithCircuitBreaker_Disabled(t *testing.T) {
	t.Parallel()

	if p := ai.WithCircuitBreaker(nil, config.BreakerConfig{MaxFailures: 3}, discardLogger()); p != nil {
		t.Errorf("WithCircuitBreaker(nil) = %v, want nil", p)
	}

	fp := &fakeProvider{reply: "ok"}
	if p := ai.WithCircuitBreaker(fp, config.BreakerConfig{}, discardLogger()); p != ai.Provider(fp) {
		t.Errorf("WithCircuitBreaker with MaxFailures 0 should return the provider unchanged")
	}
}

func TestWithCircuitBreaker_OpensAndFallsBack(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{err: errs.NewProviderError("fake", errs.KindQuota, 429, "quota", nil)}
	p := ai.WithCircuitBreaker(fp, config.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}, discardLogger())
	o, _ := newOrchestrator(p, time.Second)

	for i := 0; i < 2; i++ {
		resp := o.GenerateResponse(context.Background(), "u1", "oi", ai.SessionContext{})
		if errs.Kind(resp.Err) != errs.KindQuota {
			t.Fatalf("call %d Kind = %q, want quota", i, errs.Kind(resp.Err))
		}
	}

	resp := o.GenerateResponse(context.Background(), "u1", "oi", ai.SessionContext{})
	if errs.Kind(resp.Err) != errs.KindUnavailable || resp.FromAI || resp.Text == "" {
		t.Errorf("GenerateResponse() with open breaker = %+v", resp)
	}

	fp.mu.Lock()
	calls := len(fp.requests)
	fp.mu.Unlock()
	if calls != 2 {
		t.Errorf("provider calls = %d, want 2", calls)
	}
	if o.ProviderName() != "fake" {
		t.Errorf("ProviderName() = %q", o.ProviderName())
	}
}
