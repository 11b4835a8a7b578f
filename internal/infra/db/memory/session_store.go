package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Aayan-01/CLOT/internal/application"
	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
)

// SessionStore is the in-memory session.Store implementation and the
// default when no database is configured. Expiry is deadline-based:
// expired entries are dropped lazily on access and in bulk by Sweep.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]*session.Session
	ttl   time.Duration
	clock application.Clock
}

func NewSessionStore(ttl time.Duration, clock application.Clock) *SessionStore {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &SessionStore{
		items: make(map[string]*session.Session),
		ttl:   ttl,
		clock: clock,
	}
}

func (s *SessionStore) Create(ctx context.Context, imageRefs []string, result analysis.Result) (*session.Session, error) {
	now := s.clock.Now().UTC()
	sess := &session.Session{
		ID:           uuid.NewString(),
		ImageRefs:    copyStrings(imageRefs),
		Analysis:     result,
		Conversation: []session.Turn{},
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	s.mu.Lock()
	s.items[sess.ID] = sess
	s.mu.Unlock()

	log.Ctx(ctx).Debug().Str("session_id", sess.ID).Time("expires_at", sess.ExpiresAt).Msg("session created")
	return snapshot(sess), nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if sess.Expired(s.clock.Now().UTC()) {
		delete(s.items, id)
		log.Ctx(ctx).Debug().Str("session_id", id).Msg("session expired on access")
		return nil, session.ErrNotFound
	}
	return snapshot(sess), nil
}

func (s *SessionStore) Update(ctx context.Context, id string, conversation []session.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return session.ErrNotFound
	}
	now := s.clock.Now().UTC()
	if sess.Expired(now) {
		delete(s.items, id)
		return session.ErrNotFound
	}
	sess.Conversation = copyTurns(conversation)
	sess.ExpiresAt = now.Add(s.ttl)
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Sweep(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.items {
		if sess.Expired(now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

// snapshot copies the session so callers never share memory with the
// stored record.
func snapshot(s *session.Session) *session.Session {
	out := *s
	out.ImageRefs = copyStrings(s.ImageRefs)
	out.Conversation = copyTurns(s.Conversation)
	out.Analysis = copyResult(s.Analysis)
	return &out
}

// copyResult clones the result's interior slices and pointers. r is a
// value, so writing its fields stays local.
func copyResult(r analysis.Result) analysis.Result {
	r.Authenticity.Explanation = copyStrings(r.Authenticity.Explanation)
	r.Authenticity.RedFlags = copyStrings(r.Authenticity.RedFlags)
	r.Authenticity.AuthenticityMarkers = copyStrings(r.Authenticity.AuthenticityMarkers)
	r.Brand.Alternatives = copyStrings(r.Brand.Alternatives)
	r.Condition.Tags = copyStrings(r.Condition.Tags)
	r.Thumbnails = copyStrings(r.Thumbnails)
	r.Warnings = copyStrings(r.Warnings)
	if rp := r.PriceEstimate.RetailPrice; rp != nil {
		cp := *rp
		r.PriceEstimate.RetailPrice = &cp
	}
	if df := r.DetailedFeatures; df != nil {
		cp := *df
		r.DetailedFeatures = &cp
	}
	if ao := r.AdditionalObservations; ao != nil {
		cp := *ao
		cp.ResalePlatforms = copyStrings(ao.ResalePlatforms)
		r.AdditionalObservations = &cp
	}
	return r
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyTurns(in []session.Turn) []session.Turn {
	out := make([]session.Turn, len(in))
	copy(out, in)
	return out
}
