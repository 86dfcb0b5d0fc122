package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	sets      map[string]QuestionSet
	questions map[string]Question
	answers   map[string]Answer
	feedbacks map[string]Feedback
	users     map[string]User
}

// NewMemoryStore returns a Store backed by maps, for the CLI and tests.
func NewMemoryStore() Store {
	return &memoryStore{
		sets:      map[string]QuestionSet{},
		questions: map[string]Question{},
		answers:   map[string]Answer{},
		feedbacks: map[string]Feedback{},
		users:     map[string]User{},
	}
}

func page[T any](items []T, opts ListOpts) []T {
	off := opts.offset()
	if off >= len(items) {
		return []T{}
	}
	end := off + opts.limit()
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}

func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(f, q) {
			return true
		}
	}
	return false
}

func (m *memoryStore) CreateSet(_ context.Context, qs QuestionSet) (QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&qs.ID, &qs.CreatedAt)
	m.sets[qs.ID] = qs
	return qs, nil
}

func (m *memoryStore) GetSet(_ context.Context, id string) (QuestionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs, ok := m.sets[id]
	if !ok {
		return QuestionSet{}, ErrNotFound
	}
	return qs, nil
}

func (m *memoryStore) ListSets(_ context.Context, opts ListOpts) ([]QuestionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []QuestionSet{}
	for _, qs := range m.sets {
		if opts.Category != "" && qs.Category != opts.Category {
			continue
		}
		if opts.MidTopic != "" && qs.MidTopic != opts.MidTopic {
			continue
		}
		if !matches(opts.Q, qs.Title, qs.MidTopic) {
			continue
		}
		out = append(out, qs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func (m *memoryStore) DeleteSet(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[id]; !ok {
		return ErrNotFound
	}
	delete(m.sets, id)
	for qid, q := range m.questions {
		if q.SetID == id {
			delete(m.questions, qid)
		}
	}
	return nil
}

func (m *memoryStore) CreateQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&q.ID, &q.CreatedAt)
	if q.Choices == nil {
		q.Choices = Choices{}
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, opts ListOpts) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Question{}
	for _, q := range m.questions {
		if opts.SetID != "" && q.SetID != opts.SetID {
			continue
		}
		if opts.Category != "" && q.Category != opts.Category {
			continue
		}
		if !matches(opts.Q, q.Title, q.QuestionText) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SetID != b.SetID {
			return a.SetID < b.SetID
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return a.CreatedAt < b.CreatedAt
	})
	return page(out, opts), nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *memoryStore) LinkQuestion(_ context.Context, id, setID string, ordinal, maxScore int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return ErrNotFound
	}
	q.SetID, q.Ordinal, q.MaxScore = setID, ordinal, maxScore
	m.questions[id] = q
	return nil
}

func (m *memoryStore) CreateAnswer(_ context.Context, a Answer) (Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&a.ID, &a.SubmittedAt)
	m.answers[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAnswer(_ context.Context, id string) (Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.answers[id]
	if !ok {
		return Answer{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAnswers(_ context.Context, opts ListOpts) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Answer{}
	for _, a := range m.answers {
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.QuestionID != "" && a.QuestionID != opts.QuestionID {
			continue
		}
		if !matches(opts.Q, a.AnswerText) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt != out[j].SubmittedAt {
			return out[i].SubmittedAt > out[j].SubmittedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func (m *memoryStore) DeleteAnswer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.answers[id]; !ok {
		return ErrNotFound
	}
	delete(m.answers, id)
	return nil
}

func (m *memoryStore) CreateFeedback(_ context.Context, f Feedback) (Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&f.ID, &f.CreatedAt)
	m.feedbacks[f.ID] = f
	return f, nil
}

func (m *memoryStore) GetFeedback(_ context.Context, id string) (Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.feedbacks[id]
	if !ok {
		return Feedback{}, ErrNotFound
	}
	return f, nil
}

func (m *memoryStore) ListFeedbacks(_ context.Context, opts ListOpts) ([]Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Feedback{}
	for _, f := range m.feedbacks {
		if opts.UserID != "" && f.UserID != opts.UserID {
			continue
		}
		if opts.QuestionID != "" && f.QuestionID != opts.QuestionID {
			continue
		}
		if opts.AnswerID != "" && f.AnswerID != opts.AnswerID {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func (m *memoryStore) DeleteFeedback(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.feedbacks[id]; !ok {
		return ErrNotFound
	}
	delete(m.feedbacks, id)
	return nil
}

func (m *memoryStore) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if existing.Username == u.Username {
			existing.Role, existing.PasswordHash = u.Role, u.PasswordHash
			m.users[id] = existing
			return existing, nil
		}
	}
	stamp(&u.ID, &u.CreatedAt)
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryStore) FindUser(_ context.Context, idOrUsername string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[idOrUsername]; ok {
		return u, nil
	}
	for _, u := range m.users {
		if u.Username == idOrUsername {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memoryStore) ListUsers(_ context.Context, role string) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []User{}
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
