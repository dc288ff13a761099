package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLMService implements driven.LLMService for testing.
// prompts records the last message of each request.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	block    bool
	prompts  []string
	reqs     []driven.CompletionRequest
}

func (m *mockLLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	if n := len(req.Messages); n > 0 {
		m.prompts = append(m.prompts, req.Messages[n-1].Content)
	}
	m.reqs = append(m.reqs, req)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string {
	return "mock-model"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockAnalyzer implements driven.TextAnalyzer for testing.
type mockAnalyzer struct {
	analysis *domain.Analysis
	err      error
	called   int
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (*domain.Analysis, error) {
	m.called++
	if m.err != nil {
		return nil, m.err
	}
	a := *m.analysis
	return &a, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// collidingStore rejects the first n appends with ErrAlreadyExists.
type collidingStore struct {
	driven.ComplaintStore
	collisions int
	attempts   int
}

func (s *collidingStore) Append(ctx context.Context, c *domain.Complaint) error {
	s.attempts++
	if s.attempts <= s.collisions {
		return domain.ErrAlreadyExists
	}
	return s.ComplaintStore.Append(ctx, c)
}

// failingStore fails every call.
type failingStore struct {
	driven.ComplaintStore
}

func (failingStore) Append(_ context.Context, _ *domain.Complaint) error {
	return errors.New("disk on fire")
}

func (failingStore) All(_ context.Context) ([]domain.Complaint, error) {
	return nil, errors.New("disk on fire")
}

// --- Helpers ---

var testNow = time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

// operatorCtx returns a context carrying a live operator session.
func operatorCtx() context.Context {
	return domain.ContextWithSession(context.Background(), &domain.Session{
		Operator:  "admin",
		IssuedAt:  testNow.Add(-time.Minute),
		ExpiresAt: testNow.Add(time.Hour),
	})
}

func complaintAt(id string, cat domain.Category, urg domain.Urgency, created time.Time) domain.Complaint {
	return domain.Complaint{
		ID:         id,
		Text:       "complaint " + id,
		Category:   cat,
		Urgency:    urg,
		Status:     domain.StatusPending,
		Sentiment:  domain.Sentiment{Label: domain.SentimentNeutral},
		CreatedAt:  created,
		Confidence: 0.8,
	}
}
