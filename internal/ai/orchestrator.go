package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/fallback"
	"github.com/travelboss/travelbot/internal/memory"
)

// Response is the outcome of GenerateResponse. Text is always usable. Err is
// set when the provider failed and Text came from the fallback responder.
type Response struct {
	Text   string
	FromAI bool
	Err    error
}

// Stats is a read-only snapshot for observability.
type Stats struct {
	Provider            string `json:"provider"`
	ActiveConversations int    `json:"active_conversations"`
	Profiles            int    `json:"profiles"`
	TotalHistory        int    `json:"total_history"`
}

// Orchestrator owns the conversation memory and dispatches to one provider.
type Orchestrator struct {
	provider    Provider
	memory      *memory.Store
	fallback    *fallback.Responder
	instruction string
	timeout     time.Duration
	log         *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil provider answers every
// message with the fallback responder.
func NewOrchestrator(provider Provider, store *memory.Store, responder *fallback.Responder, cfg config.AIConfig, log *slog.Logger) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAITimeout
	}
	return &Orchestrator{
		provider:    provider,
		memory:      store,
		fallback:    responder,
		instruction: cfg.Instruction,
		timeout:     timeout,
		log:         log.With("component", "ai_orchestrator"),
	}
}

// ProviderName returns the configured provider, or "fallback".
func (o *Orchestrator) ProviderName() string {
	if o.provider == nil {
		return ProviderFallback
	}
	return o.provider.Name()
}

// GenerateResponse records message in the user's memory, asks the provider
// for a reply and records it. Any provider failure, including a panic, is
// answered by the fallback responder.
func (o *Orchestrator) GenerateResponse(ctx context.Context, userID, message string, session SessionContext) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.NewProviderError(o.ProviderName(), errs.KindProvider, 0, "provider panicked", fmt.Errorf("%v", r))
			o.log.ErrorContext(ctx, "Recovered from panic while generating response", "user_id", userID, "panic", r)
			resp = Response{Text: o.fallback.Respond(message), Err: err}
		}
	}()

	history, profile := o.memory.RecordUserMessage(userID, message)

	if o.provider == nil {
		return Response{Text: o.fallback.Respond(message)}
	}

	req := Request{
		System:      o.instruction,
		Annotations: profileAnnotations(profile),
		Session:     session,
		History:     history,
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	text, err := o.provider.Generate(callCtx, req)
	if err == nil && text == "" {
		err = errs.NewProviderError(o.provider.Name(), errs.KindMalformed, 0, "empty response", nil)
	}
	if err != nil {
		err = transportError(o.provider.Name(), err)
		o.logFailure(ctx, userID, err)
		return Response{Text: o.fallback.Respond(message), Err: err}
	}

	o.memory.RecordAssistantReply(userID, text)
	o.log.DebugContext(ctx, "AI response generated", "user_id", userID, "duration", time.Since(start), "history_len", len(history)+1)

	return Response{Text: text, FromAI: true}
}

func (o *Orchestrator) logFailure(ctx context.Context, userID string, err error) {
	kind := errs.Kind(err)
	if kind == errs.KindQuota || kind == errs.KindUnavailable {
		o.log.WarnContext(ctx, "AI provider unavailable, using fallback", "provider", o.ProviderName(), "user_id", userID, "error", err)
		return
	}
	o.log.ErrorContext(ctx, "AI provider call failed, using fallback", "provider", o.ProviderName(), "kind", kind, "user_id", userID, "error", err)
}

// Clear drops history and profile for userID.
func (o *Orchestrator) Clear(userID string) {
	o.memory.Clear(userID)
}

// ClearAll drops every conversation.
func (o *Orchestrator) ClearAll() {
	o.memory.ClearAll()
}

// Stats reports memory usage without side effects.
func (o *Orchestrator) Stats() Stats {
	st := o.memory.Stats()
	return Stats{
		Provider:            o.ProviderName(),
		ActiveConversations: st.Conversations,
		Profiles:            st.Profiles,
		TotalHistory:        st.TotalHistory,
	}
}
