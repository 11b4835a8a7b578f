package chat

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/metrics"
)

var tracer = otel.Tracer("chat")

// transcriptLimit bounds how many prior turns travel to the model.
const transcriptLimit = 12

// Service answers follow-up questions about a stored analysis.
// Read-modify-write of a session's conversation is serialized per
// session id via striped locks, so concurrent chats on the same
// session cannot drop turns.
type Service struct {
	Model    analysis.ModelClient
	Sessions session.Store
	Metrics  *metrics.Metrics

	locks [64]sync.Mutex
}

// Respond forwards the user message plus the session's analysis context
// to the model, appends both turns and slides the session TTL.
func (s *Service) Respond(ctx context.Context, sessionID, message string) (string, error) {
	if s.Model == nil {
		return "", analysis.ErrNotConfigured
	}

	ctx, span := tracer.Start(ctx, "chat.respond")
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	start := time.Now()
	answer, err := s.Model.Chat(ctx, message, contextSummary(sess))
	s.recordCall(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	conversation := append(sess.Conversation,
		session.Turn{Role: session.RoleUser, Content: message},
		session.Turn{Role: session.RoleAssistant, Content: answer},
	)
	if err := s.Sessions.Update(ctx, sessionID, conversation); err != nil {
		return "", fmt.Errorf("update session: %w", err)
	}
	return answer, nil
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

func (s *Service) recordCall(err error, duration time.Duration) {
	if s.Metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.Metrics.ModelCallTotal.WithLabelValues("chat", status).Inc()
	s.Metrics.ModelCallDuration.WithLabelValues("chat").Observe(duration.Seconds())
}

// contextSummary renders the stored analysis plus the recent turns the
// model needs to stay on topic.
func contextSummary(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(sess.Analysis.Summary())

	turns := sess.Conversation
	if len(turns) > transcriptLimit {
		turns = turns[len(turns)-transcriptLimit:]
	}
	if len(turns) > 0 {
		b.WriteString("\n\nRecent conversation:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
