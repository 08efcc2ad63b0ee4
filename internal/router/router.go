// Package router runs the per-message control loop: admission, session
// commands, intent dispatch and reply.
package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/analytics"
	"github.com/travelboss/travelbot/internal/config"
	"github.com/travelboss/travelbot/internal/database"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/intent"
	"github.com/travelboss/travelbot/internal/logger"
	"github.com/travelboss/travelbot/internal/media"
	"github.com/travelboss/travelbot/internal/ratelimit"
	"github.com/travelboss/travelbot/internal/session"
)

// Messenger delivers replies over the messaging transport.
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendMedia(ctx context.Context, to, name string, content io.Reader, caption string) error
	SendLocation(ctx context.Context, to string, loc media.Location) error
}

// Sanitizer converts model output to plain chat text.
type Sanitizer interface {
	Text(s string) string
}

// Recorder receives transcript messages. Record must not block.
type Recorder interface {
	Record(m database.Message)
}

// Inbound is a message received from the transport.
type Inbound struct {
	SenderID   string
	Body       string
	FromSelf   bool
	IsGroup    bool
	IsOperator bool
}

// Deps holds the collaborators of a Router. Recorder, Sanitizer and
// Connected are optional.
type Deps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Limiter    *ratelimit.Limiter
	Sessions   *session.Registry
	Classifier *intent.Classifier
	AI         *ai.Orchestrator
	Analytics  *analytics.Analytics
	Media      *media.Store
	Messenger  Messenger
	Recorder   Recorder
	Sanitizer  Sanitizer
	Connected  func() bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Router handles inbound messages. It is safe for concurrent use; messages
// from the same sender are handled one at a time, in arrival order of lock
// acquisition.
type Router struct {
	deps     Deps
	log      *slog.Logger
	msgs     config.MessagesConfig
	render   renderer
	location media.Location
	timezone *time.Location
	locks    *keyedMutex
	now      func() time.Time
}

// New creates a Router. The business timezone must be valid; the config
// loader checks it.
func New(deps Deps) (*Router, error) {
	tz, err := time.LoadLocation(deps.Config.Business.Timezone)
	if err != nil {
		return nil, errs.NewConfigError("invalid business timezone", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Connected == nil {
		deps.Connected = func() bool { return true }
	}

	return &Router{
		deps:     deps,
		log:      deps.Logger.With("component", "router"),
		msgs:     deps.Config.Messages,
		render:   newRenderer(deps.Config.Business),
		location: media.NewLocation(deps.Config.Location),
		timezone: tz,
		locks:    newKeyedMutex(),
		now:      now,
	}, nil
}

// Handle processes one inbound message. It never panics.
func (r *Router) Handle(ctx context.Context, in Inbound) {
	if in.FromSelf || in.IsGroup || in.SenderID == "" {
		return
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return
	}

	ctx = logger.WithCorrelationID(ctx, logger.CorrelationID(ctx))

	if in.IsOperator && r.handleAdmin(ctx, in.SenderID, body) {
		return
	}

	unlock := r.locks.Lock(in.SenderID)
	defer unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic while handling message: %v", rec)
			r.log.ErrorContext(ctx, "Recovered from panic in message handling",
				"user_id", in.SenderID, "panic", rec, "stack", string(debug.Stack()))
			r.deps.Analytics.TrackError(err)
			r.sendText(ctx, in.SenderID, r.msgs.InternalError)
		}
	}()

	r.handle(ctx, in.SenderID, body)
}

func (r *Router) handle(ctx context.Context, userID, body string) {
	rl := r.deps.Config.RateLimit
	if !r.deps.Limiter.Allow(userID, rl.MaxRequests, rl.Window) {
		r.log.WarnContext(ctx, "Rate limit exceeded", "user_id", userID)
		r.sendText(ctx, userID, r.msgs.RateLimited)
		return
	}

	now := r.now()
	sess := r.deps.Sessions.Touch(userID, now)
	r.record(ctx, userID, database.DirectionInbound, body)

	if session.IsStopCommand(body) {
		r.deps.Sessions.Stop(userID)
		r.deps.AI.Clear(userID)
		r.log.InfoContext(ctx, "Bot stopped by user", "user_id", userID)
		r.sendText(ctx, userID, r.render.render(r.msgs.Stop))
		return
	}

	if session.IsActivationCommand(body) {
		first := r.deps.Sessions.Activate(userID)
		tmpl := r.msgs.ReturningGreeting
		if first {
			tmpl = r.msgs.FirstGreeting
		}
		greeting := greetingFor(now.In(r.timezone))
		r.log.InfoContext(ctx, "Bot activated", "user_id", userID, "first_contact", first)
		r.sendText(ctx, userID, r.render.renderGreeting(tmpl, greeting))
		r.deps.Analytics.TrackMessage(userID, false, analytics.KindNone)
		return
	}

	if !sess.Active {
		r.log.DebugContext(ctx, "Ignoring message from inactive session", "user_id", userID, "state", sess.State)
		return
	}

	in := r.deps.Classifier.Classify(body)
	r.deps.Analytics.TrackIntent(in)

	if !in.UsesMedia() {
		r.handleAI(ctx, userID, body, sess)
		return
	}

	switch in {
	case intent.Image:
		r.handleImage(ctx, userID)
	case intent.Gallery:
		r.handleGallery(ctx, userID)
	case intent.Location:
		r.handleLocation(ctx, userID)
	case intent.Personal:
		r.handlePersonal(ctx, userID)
	}
}

func (r *Router) handleAI(ctx context.Context, userID, body string, sess session.Session) {
	resp := r.deps.AI.GenerateResponse(ctx, userID, body, ai.SessionContext{
		State:  string(sess.State),
		Active: sess.Active,
	})
	if resp.Err != nil {
		r.deps.Analytics.TrackError(resp.Err)
	}
	text := resp.Text
	if resp.FromAI && r.deps.Sanitizer != nil {
		if clean := r.deps.Sanitizer.Text(text); clean != "" {
			text = clean
		}
	}
	r.sendText(ctx, userID, text)
	r.deps.Analytics.TrackMessage(userID, resp.FromAI, analytics.KindNone)
}

func (r *Router) handleImage(ctx context.Context, userID string) {
	if err := r.sendAsset(ctx, userID, r.deps.Media.Logo()); err != nil {
		r.mediaFailed(ctx, userID, err, r.msgs.MediaFailed)
		return
	}
	r.sendText(ctx, userID, r.render.render(r.msgs.LogoSent))
	r.deps.Analytics.TrackMessage(userID, false, analytics.KindImage)
}

func (r *Router) handlePersonal(ctx context.Context, userID string) {
	if err := r.sendAsset(ctx, userID, r.deps.Media.Personal()); err != nil {
		r.mediaFailed(ctx, userID, err, r.msgs.MediaFailed)
		return
	}
	r.sendText(ctx, userID, r.render.render(r.msgs.PersonalSent))
	r.deps.Analytics.TrackMessage(userID, false, analytics.KindPersonal)
}

// handleGallery sends every gallery image that exists, pausing between them.
// Missing files are skipped; a gallery with nothing to send counts as failed.
func (r *Router) handleGallery(ctx context.Context, userID string) {
	r.sendText(ctx, userID, r.render.render(r.msgs.GalleryIntro))

	sent := 0
	for _, asset := range r.deps.Media.Gallery() {
		if !r.deps.Media.Exists(asset.Name) {
			r.log.WarnContext(ctx, "Gallery image not found, skipping", "asset", asset.Name)
			continue
		}
		if sent > 0 && !r.pause(ctx, r.deps.Config.Media.GalleryDelay) {
			r.mediaFailed(ctx, userID, ctx.Err(), r.msgs.GalleryFailed)
			return
		}
		if err := r.sendAsset(ctx, userID, asset); err != nil {
			r.mediaFailed(ctx, userID, err, r.msgs.GalleryFailed)
			return
		}
		sent++
	}

	if sent == 0 {
		r.mediaFailed(ctx, userID, errs.NewMediaError("gallery", "no gallery images available", nil), r.msgs.GalleryFailed)
		return
	}

	r.sendText(ctx, userID, r.render.render(r.msgs.GallerySent))
	r.deps.Analytics.TrackMessage(userID, false, analytics.KindGallery)
}

func (r *Router) handleLocation(ctx context.Context, userID string) {
	r.sendText(ctx, userID, r.render.render(r.msgs.LocationIntro))

	if err := r.deps.Messenger.SendLocation(ctx, userID, r.location); err != nil {
		r.log.ErrorContext(ctx, "Failed to send location", "user_id", userID, "error", err)
		r.mediaFailed(ctx, userID, errs.NewMediaError("location", "send failed", err), r.msgs.LocationFailed)
		return
	}
	r.record(ctx, userID, database.DirectionOutbound, "[location] "+r.location.Label)

	r.sendText(ctx, userID, r.render.render(r.msgs.LocationSent))
	r.deps.Analytics.TrackMessage(userID, false, analytics.KindLocation)
}

func (r *Router) mediaFailed(ctx context.Context, userID string, err error, text string) {
	r.deps.Analytics.TrackError(err)
	r.sendText(ctx, userID, r.render.render(text))
	r.deps.Analytics.TrackMessage(userID, false, analytics.KindNone)
}

// sendAsset sends asset with its caption. A missing file is replaced by a
// text placeholder and is not an error.
func (r *Router) sendAsset(ctx context.Context, userID string, asset media.Asset) error {
	if !r.deps.Media.Exists(asset.Name) {
		r.log.WarnContext(ctx, "Media asset not found, sending placeholder", "asset", asset.Name)
		placeholder := fmt.Sprintf("📷 %s\n\n%s", asset.Caption, r.msgs.AssetMissing)
		if err := r.deps.Messenger.SendText(ctx, userID, placeholder); err != nil {
			return errs.NewMediaError(asset.Name, "placeholder send failed", err)
		}
		r.record(ctx, userID, database.DirectionOutbound, placeholder)
		return nil
	}

	f, err := r.deps.Media.Open(asset.Name)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to open media asset", "asset", asset.Name, "error", err)
		return err
	}
	defer f.Close()

	if err := r.deps.Messenger.SendMedia(ctx, userID, asset.Name, f, asset.Caption); err != nil {
		r.log.ErrorContext(ctx, "Failed to send media", "user_id", userID, "asset", asset.Name, "error", err)
		return errs.NewMediaError(asset.Name, "send failed", err)
	}
	r.record(ctx, userID, database.DirectionOutbound, "[media] "+asset.Name)
	return nil
}

// sendText reports whether text was delivered. Failures are only logged.
func (r *Router) sendText(ctx context.Context, userID, text string) bool {
	if err := r.deps.Messenger.SendText(ctx, userID, text); err != nil {
		r.log.ErrorContext(ctx, "Failed to send message", "user_id", userID, "error", err)
		return false
	}
	r.record(ctx, userID, database.DirectionOutbound, text)
	return true
}

func (r *Router) record(ctx context.Context, userID string, dir database.Direction, body string) {
	if r.deps.Recorder == nil {
		return
	}
	r.deps.Recorder.Record(database.Message{
		UserID:        userID,
		Direction:     dir,
		Body:          body,
		CorrelationID: logger.CorrelationID(ctx),
		CreatedAt:     r.now(),
	})
}

func (r *Router) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
