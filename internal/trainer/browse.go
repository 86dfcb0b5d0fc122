package trainer

import (
	"context"
	"math"
	"sort"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
)

// Unsorted labels sets saved without a mid topic.
const Unsorted = "未分類"

type Topic struct {
	MidTopic string `json:"mid_topic"`
	SetCount int    `json:"set_count"`
}

type SetProgress struct {
	Set           quiz.QuestionSet `json:"set"`
	QuestionCount int              `json:"question_count"`
	Answered      int              `json:"answered"`
	Progress      int              `json:"progress"` // percent
	Completed     bool             `json:"completed"`
}

type LearnerStat struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	AnswerCount    int    `json:"answer_count"`
	FeedbackCount  int    `json:"feedback_count"`
	CompletionRate int    `json:"completion_rate"` // percent of answers with feedback
}

const pageSize = 500

// all pages through a list operation.
func all[T any](ctx context.Context, opts quiz.ListOpts, list func(context.Context, quiz.ListOpts) ([]T, error)) ([]T, error) {
	var out []T
	opts.Limit = pageSize
	for {
		page, err := list(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
		opts.Offset += pageSize
	}
}

func topicOf(s quiz.QuestionSet) string {
	if s.MidTopic == "" {
		return Unsorted
	}
	return s.MidTopic
}

// Topics lists the mid topics of a category in name order.
func (s *Service) Topics(ctx context.Context, category string) ([]Topic, error) {
	sets, err := all(ctx, quiz.ListOpts{Category: category}, s.store.ListSets)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, set := range sets {
		counts[topicOf(set)]++
	}
	out := make([]Topic, 0, len(counts))
	for t, n := range counts {
		out = append(out, Topic{MidTopic: t, SetCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MidTopic < out[j].MidTopic })
	return out, nil
}

// SetsWithProgress lists the sets of one mid topic with how far userID got.
// A set is completed once every question has an answer.
func (s *Service) SetsWithProgress(ctx context.Context, category, midTopic, userID string) ([]SetProgress, error) {
	opts := quiz.ListOpts{Category: category}
	if midTopic != Unsorted {
		opts.MidTopic = midTopic
	}
	sets, err := all(ctx, opts, s.store.ListSets)
	if err != nil {
		return nil, err
	}
	answered := map[string]bool{}
	if userID != "" {
		answers, err := all(ctx, quiz.ListOpts{UserID: userID}, s.store.ListAnswers)
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			answered[a.QuestionID] = true
		}
	}

	out := []SetProgress{}
	for _, set := range sets {
		if topicOf(set) != midTopic {
			continue
		}
		qs, err := s.store.ListQuestions(ctx, quiz.ListOpts{SetID: set.ID})
		if err != nil {
			return nil, err
		}
		p := SetProgress{Set: set, QuestionCount: len(qs)}
		for _, q := range qs {
			if answered[q.ID] {
				p.Answered++
			}
		}
		if p.QuestionCount > 0 {
			p.Progress = int(math.Round(float64(p.Answered) / float64(p.QuestionCount) * 100))
			p.Completed = p.Answered == p.QuestionCount
		}
		out = append(out, p)
	}
	return out, nil
}

// LearnerStats summarizes activity per learner for the admin dashboard.
func (s *Service) LearnerStats(ctx context.Context) ([]LearnerStat, error) {
	users, err := s.store.ListUsers(ctx, rbac.RoleLearner)
	if err != nil {
		return nil, err
	}
	out := make([]LearnerStat, 0, len(users))
	for _, u := range users {
		answers, err := all(ctx, quiz.ListOpts{UserID: u.ID}, s.store.ListAnswers)
		if err != nil {
			return nil, err
		}
		fbs, err := all(ctx, quiz.ListOpts{UserID: u.ID}, s.store.ListFeedbacks)
		if err != nil {
			return nil, err
		}
		st := LearnerStat{UserID: u.ID, Username: u.Username, AnswerCount: len(answers), FeedbackCount: len(fbs)}
		if st.AnswerCount > 0 {
			st.CompletionRate = int(math.Round(float64(st.FeedbackCount) / float64(st.AnswerCount) * 100))
		}
		out = append(out, st)
	}
	return out, nil
}
