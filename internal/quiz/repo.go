package quiz

import "context"

// ListOpts filters the list operations. Unset fields do not filter.
type ListOpts struct {
	Q        string // substring search on title / text columns
	Limit    int
	Offset   int
	SetID    string
	UserID   string
	Category string
	MidTopic string

	QuestionID string
	AnswerID   string
}

func (o ListOpts) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}

func (o ListOpts) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}

// Store is the persistence boundary. Records are created, read, listed and
// deleted; deleting a set removes its questions.
type Store interface {
	CreateSet(ctx context.Context, s QuestionSet) (QuestionSet, error)
	GetSet(ctx context.Context, id string) (QuestionSet, error)
	ListSets(ctx context.Context, opts ListOpts) ([]QuestionSet, error)
	DeleteSet(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	// ListQuestions orders by set then ordinal.
	ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	// LinkQuestion writes structured set fields resolved from legacy markers.
	LinkQuestion(ctx context.Context, id, setID string, ordinal, maxScore int) error

	CreateAnswer(ctx context.Context, a Answer) (Answer, error)
	GetAnswer(ctx context.Context, id string) (Answer, error)
	ListAnswers(ctx context.Context, opts ListOpts) ([]Answer, error)
	DeleteAnswer(ctx context.Context, id string) error

	CreateFeedback(ctx context.Context, f Feedback) (Feedback, error)
	GetFeedback(ctx context.Context, id string) (Feedback, error)
	ListFeedbacks(ctx context.Context, opts ListOpts) ([]Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u User) (User, error)
	FindUser(ctx context.Context, idOrUsername string) (User, error)
	ListUsers(ctx context.Context, role string) ([]User, error)
}
