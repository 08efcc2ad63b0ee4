package ai_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/fallback"
	"github.com/travelboss/travelbot/internal/memory"
)

type fakeProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	panicMsg string
	block    bool
	requests []ai.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeProvider) lastRequest(t *testing.T) ai.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("provider was not called")
	}
	return f.requests[len(f.requests)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testFacts = fallback.Facts{
	Address: "Kikuxi Shopping",
	Hours:   "8h às 17h",
	Phone:   "+244 000 000 000",
	Email:   "geral@example.com",
	MapsURL: "https://maps.example.com",
}

func newOrchestrator(p ai.Provider, timeout time.Duration) (*ai.Orchestrator, *memory.Store) {
	store := memory.NewStore(0)
	cfg := config.AIConfig{Instruction: "Você é o TravelBot.", Timeout: timeout}
	return ai.NewOrchestrator(p, store, fallback.NewResponder(testFacts), cfg, discardLogger()), store
}

func TestGenerateResponse_Success(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reply: "Olá! Como posso ajudar?"}
	o, store := newOrchestrator(p, time.Second)

	resp := o.GenerateResponse(context.Background(), "u1", "quero um visto de trabalho para Portugal", ai.SessionContext{State: "active", Active: true})
	if !resp.FromAI || resp.Err != nil || resp.Text != p.reply {
		t.Fatalf("GenerateResponse() = %+v", resp)
	}

	req := p.lastRequest(t)
	if req.System != "Você é o TravelBot." {
		t.Errorf("System = %q", req.System)
	}
	if len(req.History) != 1 || req.History[0].Content != "quero um visto de trabalho para Portugal" {
		t.Errorf("History = %+v", req.History)
	}
	if len(req.Annotations) != 2 {
		t.Errorf("Annotations = %v, want country and visa annotations", req.Annotations)
	}
	if !req.Session.Active || req.Session.State != "active" {
		t.Errorf("Session = %+v", req.Session)
	}

	history := store.History("u1")
	if len(history) != 2 || history[1].Role != memory.RoleAssistant || history[1].Content != p.reply {
		t.Errorf("stored history = %+v", history)
	}
}

func TestGenerateResponse_ProviderFailureFallsBack(t *testing.T) {
	t.Parallel()

	msg := "quanto custa visto para portugal"
	want := fallback.NewResponder(testFacts).Respond(msg)

	tests := []struct {
		name     string
		provider *fakeProvider
		wantKind errs.ProviderKind
	}{
		{
			name:     "quota",
			provider: &fakeProvider{err: errs.NewProviderError("fake", errs.KindQuota, 429, "quota", nil)},
			wantKind: errs.KindQuota,
		},
		{
			name:     "plain error",
			provider: &fakeProvider{err: errors.New("connection refused")},
			wantKind: errs.KindNetwork,
		},
		{
			name:     "empty reply",
			provider: &fakeProvider{reply: ""},
			wantKind: errs.KindMalformed,
		},
		{
			name:     "panic",
			provider: &fakeProvider{panicMsg: "boom"},
			wantKind: errs.KindProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o, store := newOrchestrator(tt.provider, time.Second)

			resp := o.GenerateResponse(context.Background(), "u1", msg, ai.SessionContext{State: "active", Active: true})
			if resp.FromAI {
				t.Error("FromAI = true, want false")
			}
			if resp.Text != want {
				t.Errorf("Text = %q, want fallback pricing template", resp.Text)
			}
			if resp.Err == nil {
				t.Fatal("Err = nil, want provider error")
			}
			if got := errs.Kind(resp.Err); got != tt.wantKind {
				t.Errorf("Kind(Err) = %q, want %q", got, tt.wantKind)
			}
			if h := store.History("u1"); len(h) != 1 || h[0].Role != memory.RoleUser {
				t.Errorf("history after failure = %+v, want only the user turn", h)
			}
		})
	}
}

func TestGenerateResponse_Timeout(t *testing.T) {
	t.Parallel()

	o, _ := newOrchestrator(&fakeProvider{block: true}, 20*time.Millisecond)

	start := time.Now()
	resp := o.GenerateResponse(context.Background(), "u1", "olá", ai.SessionContext{})
	if time.Since(start) > 2*time.Second {
		t.Fatal("GenerateResponse did not honour the timeout")
	}
	if got := errs.Kind(resp.Err); got != errs.KindTimeout {
		t.Errorf("Kind(Err) = %q, want timeout", got)
	}
	if !strings.HasPrefix(resp.Text, "Sistema temporariamente em modo básico.") {
		t.Errorf("Text = %q, want basic fallback", resp.Text)
	}
}

func TestGenerateResponse_NoProvider(t *testing.T) {
	t.Parallel()

	o, store := newOrchestrator(nil, time.Second)

	resp := o.GenerateResponse(context.Background(), "u1", "onde ficam?", ai.SessionContext{})
	if resp.FromAI || resp.Err != nil {
		t.Errorf("GenerateResponse() = %+v, want fallback without error", resp)
	}
	if !strings.HasPrefix(resp.Text, "📍 NOSSA LOCALIZAÇÃO") {
		t.Errorf("Text = %q", resp.Text)
	}
	if o.ProviderName() != ai.ProviderFallback {
		t.Errorf("ProviderName() = %q", o.ProviderName())
	}
	if len(store.History("u1")) != 1 {
		t.Error("user turn should still be recorded")
	}
}

func TestGenerateResponse_HistoryBound(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reply: "ok"}
	o, store := newOrchestrator(p, time.Second)

	for i := 0; i < 8; i++ {
		o.GenerateResponse(context.Background(), "u1", "mensagem", ai.SessionContext{})
	}

	if got := len(store.History("u1")); got != memory.DefaultHistoryLimit {
		t.Errorf("history length = %d, want %d", got, memory.DefaultHistoryLimit)
	}
	if got := len(p.lastRequest(t).History); got != memory.DefaultHistoryLimit {
		t.Errorf("request history length = %d, want %d", got, memory.DefaultHistoryLimit)
	}
}

func TestOrchestrator_ClearAndStats(t *testing.T) {
	t.Parallel()

	o, _ := newOrchestrator(&fakeProvider{reply: "ok"}, time.Second)
	o.GenerateResponse(context.Background(), "a", "oi", ai.SessionContext{})
	o.GenerateResponse(context.Background(), "b", "oi", ai.SessionContext{})

	st := o.Stats()
	if st.Provider != "fake" || st.ActiveConversations != 2 || st.Profiles != 2 || st.TotalHistory != 4 {
		t.Errorf("Stats() = %+v", st)
	}

	o.Clear("a")
	o.Clear("a")
	if st := o.Stats(); st.ActiveConversations != 1 {
		t.Errorf("ActiveConversations after Clear = %d, want 1", st.ActiveConversations)
	}

	o.ClearAll()
	if st := o.Stats(); st.ActiveConversations != 0 || st.TotalHistory != 0 {
		t.Errorf("Stats() after ClearAll = %+v", st)
	}
}
