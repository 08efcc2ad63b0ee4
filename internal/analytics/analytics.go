// Package analytics keeps process-wide message counters and mirrors them into
// Prometheus.
package analytics

import (
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/intent"
)

// RequestKind labels the media request a message was answered with.
type RequestKind string

const (
	KindNone     RequestKind = ""
	KindImage    RequestKind = "image"
	KindGallery  RequestKind = "gallery"
	KindLocation RequestKind = "location"
	KindPersonal RequestKind = "personal"
)

// Stats is a point-in-time copy of the counters.
type Stats struct {
	TotalMessages     int64            `json:"total_messages"`
	UniqueUsers       int              `json:"unique_users"`
	AIResponses       int64            `json:"ai_responses"`
	FallbackResponses int64            `json:"fallback_responses"`
	ImageRequests     int64            `json:"image_requests"`
	GalleryRequests   int64            `json:"gallery_requests"`
	LocationRequests  int64            `json:"location_requests"`
	PersonalRequests  int64            `json:"personal_requests"`
	Intents           map[string]int64 `json:"intents"`
	Errors            int64            `json:"errors"`
	AISuccessRate     float64          `json:"ai_success_rate"`
	StartedAt         time.Time        `json:"started_at"`
	UptimeMinutes     int64            `json:"uptime_minutes"`
}

type metrics struct {
	messages    *prometheus.CounterVec
	requests    *prometheus.CounterVec
	intents     *prometheus.CounterVec
	errors      *prometheus.CounterVec
	uniqueUsers prometheus.Gauge
}

// Analytics counts messages. Counters only grow; nothing but a restart
// resets them. It is safe for concurrent use.
type Analytics struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	users   map[string]struct{}
	stats   Stats
	metrics *metrics
}

// New creates Analytics and registers its collectors with reg. A nil reg
// keeps the counters in memory only.
func New(reg prometheus.Registerer) *Analytics {
	a := &Analytics{
		now:   time.Now,
		users: make(map[string]struct{}),
	}
	a.started = a.now()
	a.stats.Intents = make(map[string]int64)

	if reg != nil {
		factory := promauto.With(reg)
		a.metrics = &metrics{
			messages: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "travelbot_messages_total",
				Help: "Messages answered, by reply source",
			}, []string{"source"}),
			requests: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "travelbot_requests_total",
				Help: "Media and location requests served, by kind",
			}, []string{"kind"}),
			intents: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "travelbot_intents_total",
				Help: "Classified inbound messages, by intent",
			}, []string{"intent"}),
			errors: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "travelbot_errors_total",
				Help: "Errors recorded while handling messages, by error code",
			}, []string{"code"}),
			uniqueUsers: factory.NewGauge(prometheus.GaugeOpts{
				Name: "travelbot_unique_users",
				Help: "Distinct users seen since start",
			}),
		}
	}
	return a
}

// SetClock replaces the time source. Intended for tests; call before use.
func (a *Analytics) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
	a.started = now()
}

// TrackMessage counts one answered message from userID. fromAI separates
// provider replies from fallback and canned replies; kind is set for media
// and location requests.
func (a *Analytics) TrackMessage(userID string, fromAI bool, kind RequestKind) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalMessages++
	if _, seen := a.users[userID]; !seen {
		a.users[userID] = struct{}{}
	}

	source := "fallback"
	if fromAI {
		a.stats.AIResponses++
		source = "ai"
	} else {
		a.stats.FallbackResponses++
	}

	switch kind {
	case KindImage:
		a.stats.ImageRequests++
	case KindGallery:
		a.stats.GalleryRequests++
	case KindLocation:
		a.stats.LocationRequests++
	case KindPersonal:
		a.stats.PersonalRequests++
	}

	if a.metrics != nil {
		a.metrics.messages.WithLabelValues(source).Inc()
		if kind != KindNone {
			a.metrics.requests.WithLabelValues(string(kind)).Inc()
		}
		a.metrics.uniqueUsers.Set(float64(len(a.users)))
	}
}

// TrackIntent counts one classified message.
func (a *Analytics) TrackIntent(in intent.Intent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.Intents[string(in)]++
	if a.metrics != nil {
		a.metrics.intents.WithLabelValues(string(in)).Inc()
	}
}

// TrackError counts one error.
func (a *Analytics) TrackError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.Errors++
	if a.metrics != nil {
		a.metrics.errors.WithLabelValues(errs.Code(err)).Inc()
	}
}

// Snapshot returns a copy of the counters with derived fields filled in.
func (a *Analytics) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.stats
	st.UniqueUsers = len(a.users)
	st.StartedAt = a.started
	st.UptimeMinutes = int64(a.now().Sub(a.started) / time.Minute)
	st.Intents = make(map[string]int64, len(a.stats.Intents))
	for k, v := range a.stats.Intents {
		st.Intents[k] = v
	}
	if st.TotalMessages > 0 {
		rate := float64(st.AIResponses) / float64(st.TotalMessages) * 100
		st.AISuccessRate = math.Round(rate*10) / 10
	}
	return st
}
