// Package memory keeps the bounded per-user conversation history and the
// profile derived from what the user wrote.
package memory

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
)

// DefaultHistoryLimit bounds the number of turns kept per user.
const DefaultHistoryLimit = 10

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single history entry.
type Turn struct {
	Role    Role
	Content string
}

// Visa intents detected from message text.
const (
	VisaWork    = "work"
	VisaTourism = "tourism"
	VisaStudent = "student"
	VisaHealth  = "health"
)

// Profile is derived from the user's messages.
type Profile struct {
	InterestedCountries []string
	VisaIntent          string
	FirstContactAt      time.Time
	LastContactAt       time.Time
}

type keywordGroup struct {
	value    string
	keywords []string
}

// Order matters: countries are appended in table order when a single message
// mentions several of them.
var countryKeywords = []keywordGroup{
	{value: "portugal", keywords: []string{"portugal"}},
	{value: "brasil", keywords: []string{"brasil", "brazil"}},
	{value: "eua", keywords: []string{"eua", "usa", "estados unidos"}},
	{value: "canada", keywords: []string{"canadá", "canada"}},
	{value: "europa", keywords: []string{"europa", "schengen"}},
}

var visaKeywords = []keywordGroup{
	{value: VisaWork, keywords: []string{"trabalho", "trabalhar", "emprego"}},
	{value: VisaTourism, keywords: []string{"turismo", "turista", "férias", "ferias"}},
	{value: VisaStudent, keywords: []string{"estudo", "estudante", "estudar", "universidade"}},
	{value: VisaHealth, keywords: []string{"saúde", "saude", "tratamento", "médico", "medico"}},
}

type conversation struct {
	history []Turn
	profile Profile
}

// Store holds history and profile per user. Both share one lifecycle.
type Store struct {
	mu    sync.Mutex
	limit int
	users map[string]*conversation
	now   func() time.Time
}

// NewStore returns a Store that keeps at most limit turns per user. A
// non-positive limit selects DefaultHistoryLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Store{
		limit: limit,
		users: make(map[string]*conversation),
		now:   time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// RecordUserMessage updates the profile from message, appends it to the
// history and returns a snapshot of both taken under the same lock.
func (s *Store) RecordUserMessage(userID, message string) ([]Turn, Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.getOrCreate(userID)
	updateProfile(&conv.profile, message)
	s.appendTurn(conv, Turn{Role: RoleUser, Content: message})

	return cloneHistory(conv.history), cloneProfile(conv.profile)
}

// RecordAssistantReply appends a reply and refreshes LastContactAt. If the
// user was cleared while the reply was being generated nothing is recorded.
func (s *Store) RecordAssistantReply(userID, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.users[userID]
	if !ok {
		return
	}
	s.appendTurn(conv, Turn{Role: RoleAssistant, Content: reply})
	conv.profile.LastContactAt = s.now()
}

// History returns a copy of the user's history.
func (s *Store) History(userID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.users[userID]
	if !ok {
		return nil
	}
	return cloneHistory(conv.history)
}

// Profile returns a copy of the user's profile.
func (s *Store) Profile(userID string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.users[userID]
	if !ok {
		return Profile{}, false
	}
	return cloneProfile(conv.profile), true
}

// Clear drops history and profile for userID. Clearing an unknown user is a
// no-op.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// ClearAll drops every conversation.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*conversation)
}

// Stats summarises the store.
type Stats struct {
	Conversations int
	Profiles      int
	TotalHistory  int
}

// Stats counts conversations and the turns they hold.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Conversations: len(s.users), Profiles: len(s.users)}
	for _, conv := range s.users {
		st.TotalHistory += len(conv.history)
	}
	return st
}

func (s *Store) getOrCreate(userID string) *conversation {
	conv, ok := s.users[userID]
	if !ok {
		now := s.now()
		conv = &conversation{
			profile: Profile{FirstContactAt: now, LastContactAt: now},
		}
		s.users[userID] = conv
	}
	return conv
}

func (s *Store) appendTurn(conv *conversation, turn Turn) {
	conv.history = append(conv.history, turn)
	if over := len(conv.history) - s.limit; over > 0 {
		conv.history = append(conv.history[:0:0], conv.history[over:]...)
	}
}

func updateProfile(p *Profile, message string) {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, group := range countryKeywords {
		if matchesAny(words, group.keywords) && !slices.Contains(p.InterestedCountries, group.value) {
			p.InterestedCountries = append(p.InterestedCountries, group.value)
		}
	}

	if p.VisaIntent != "" {
		return
	}
	for _, group := range visaKeywords {
		if matchesAny(words, group.keywords) {
			p.VisaIntent = group.value
			return
		}
	}
}

// matchesAny reports whether any keyword appears in words as a whole word, or
// as a run of adjacent words for multi-word keywords.
func matchesAny(words, keywords []string) bool {
	for _, kw := range keywords {
		if containsPhrase(words, strings.Fields(kw)) {
			return true
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func cloneHistory(h []Turn) []Turn {
	if h == nil {
		return nil
	}
	out := make([]Turn, len(h))
	copy(out, h)
	return out
}

func cloneProfile(p Profile) Profile {
	if p.InterestedCountries != nil {
		p.InterestedCountries = append([]string(nil), p.InterestedCountries...)
	}
	return p
}
