package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// where accumulates $n-numbered predicates.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, v any) {
	w.args = append(w.args, v)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *where) search(q string, cols ...string) {
	if q == "" {
		return
	}
	w.args = append(w.args, "%"+q+"%")
	n := len(w.args)
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s LIKE $%d", c, n)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) page(opts ListOpts) string {
	w.args = append(w.args, opts.limit(), opts.offset())
	n := len(w.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func stamp(id *string, at *int64) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *at == 0 {
		*at = time.Now().Unix()
	}
}

// ---- question sets ----

func (s *SQLStore) CreateSet(ctx context.Context, qs QuestionSet) (QuestionSet, error) {
	stamp(&qs.ID, &qs.CreatedAt)
	_, err := s.db.ExecContext(ctx, `INSERT INTO question_sets (id,title,category,mid_topic,source_text,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		qs.ID, qs.Title, qs.Category, qs.MidTopic, qs.SourceText, qs.CreatedBy, qs.CreatedAt)
	if err != nil {
		return QuestionSet{}, err
	}
	return qs, nil
}

func (s *SQLStore) GetSet(ctx context.Context, id string) (QuestionSet, error) {
	var qs QuestionSet
	err := s.db.QueryRowContext(ctx, `SELECT id,title,category,mid_topic,source_text,created_by,created_at
		FROM question_sets WHERE id=$1`, id).
		Scan(&qs.ID, &qs.Title, &qs.Category, &qs.MidTopic, &qs.SourceText, &qs.CreatedBy, &qs.CreatedAt)
	if err != nil {
		return QuestionSet{}, notFound(err)
	}
	return qs, nil
}

func (s *SQLStore) ListSets(ctx context.Context, opts ListOpts) ([]QuestionSet, error) {
	var w where
	if opts.Category != "" {
		w.add("category = ?", opts.Category)
	}
	if opts.MidTopic != "" {
		w.add("mid_topic = ?", opts.MidTopic)
	}
	w.search(opts.Q, "title", "mid_topic")
	q := `SELECT id,title,category,mid_topic,source_text,created_by,created_at FROM question_sets` +
		w.sql() + ` ORDER BY created_at DESC, id` + w.page(opts)
	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuestionSet{}
	for rows.Next() {
		var qs QuestionSet
		if err := rows.Scan(&qs.ID, &qs.Title, &qs.Category, &qs.MidTopic, &qs.SourceText, &qs.CreatedBy, &qs.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, qs)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteSet(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE set_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM question_sets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ---- questions ----

const questionCols = `id,set_id,ordinal,max_score,type,title,category,question_text,choices,correct_answer,explanation,created_by,created_at`

func scanQuestion(sc interface{ Scan(...any) error }) (Question, error) {
	var q Question
	var typ, choices string
	if err := sc.Scan(&q.ID, &q.SetID, &q.Ordinal, &q.MaxScore, &typ, &q.Title, &q.Category, &q.QuestionText,
		&choices, &q.CorrectAnswer, &q.Explanation, &q.CreatedBy, &q.CreatedAt); err != nil {
		return Question{}, err
	}
	q.Type = Type(typ)
	c, err := ParseChoices(choices)
	if err != nil {
		return Question{}, err
	}
	q.Choices = c
	return q, nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	stamp(&q.ID, &q.CreatedAt)
	if q.Choices == nil {
		q.Choices = Choices{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions (`+questionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		q.ID, q.SetID, q.Ordinal, q.MaxScore, string(q.Type), q.Title, q.Category, q.QuestionText,
		q.Choices.Encode(), q.CorrectAnswer, q.Explanation, q.CreatedBy, q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
	if err != nil {
		return Question{}, notFound(err)
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error) {
	var w where
	if opts.SetID != "" {
		w.add("set_id = ?", opts.SetID)
	}
	if opts.Category != "" {
		w.add("category = ?", opts.Category)
	}
	w.search(opts.Q, "title", "question_text")
	q := `SELECT ` + questionCols + ` FROM questions` + w.sql() +
		` ORDER BY set_id, ordinal, created_at` + w.page(opts)
	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		item, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "questions", id)
}

func (s *SQLStore) LinkQuestion(ctx context.Context, id, setID string, ordinal, maxScore int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET set_id=$1, ordinal=$2, max_score=$3 WHERE id=$4`,
		setID, ordinal, maxScore, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- answers ----

func (s *SQLStore) CreateAnswer(ctx context.Context, a Answer) (Answer, error) {
	stamp(&a.ID, &a.SubmittedAt)
	_, err := s.db.ExecContext(ctx, `INSERT INTO answers (id,user_id,question_id,answer_text,submitted_at)
		VALUES ($1,$2,$3,$4,$5)`, a.ID, a.UserID, a.QuestionID, a.AnswerText, a.SubmittedAt)
	if err != nil {
		return Answer{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAnswer(ctx context.Context, id string) (Answer, error) {
	var a Answer
	err := s.db.QueryRowContext(ctx, `SELECT id,user_id,question_id,answer_text,submitted_at FROM answers WHERE id=$1`, id).
		Scan(&a.ID, &a.UserID, &a.QuestionID, &a.AnswerText, &a.SubmittedAt)
	if err != nil {
		return Answer{}, notFound(err)
	}
	return a, nil
}

func (s *SQLStore) ListAnswers(ctx context.Context, opts ListOpts) ([]Answer, error) {
	var w where
	if opts.UserID != "" {
		w.add("user_id = ?", opts.UserID)
	}
	if opts.QuestionID != "" {
		w.add("question_id = ?", opts.QuestionID)
	}
	w.search(opts.Q, "answer_text")
	q := `SELECT id,user_id,question_id,answer_text,submitted_at FROM answers` + w.sql() +
		` ORDER BY submitted_at DESC, id` + w.page(opts)
	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Answer{}
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.AnswerText, &a.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAnswer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "answers", id)
}

// ---- feedbacks ----

func scanFeedback(sc interface{ Scan(...any) error }) (Feedback, error) {
	var f Feedback
	var sections string
	if err := sc.Scan(&f.ID, &f.AnswerID, &f.UserID, &f.QuestionID, &f.Score, &f.MaxScore, &sections, &f.HTML, &f.CreatedAt); err != nil {
		return Feedback{}, err
	}
	if sections != "" {
		if err := json.Unmarshal([]byte(sections), &f.Sections); err != nil {
			return Feedback{}, &ParseError{Field: "sections", Err: err}
		}
	}
	return f, nil
}

const feedbackCols = `id,answer_id,user_id,question_id,score,max_score,sections_json,html,created_at`

func (s *SQLStore) CreateFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	stamp(&f.ID, &f.CreatedAt)
	buf, err := json.Marshal(f.Sections)
	if err != nil {
		return Feedback{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO feedbacks (`+feedbackCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		f.ID, f.AnswerID, f.UserID, f.QuestionID, f.Score, f.MaxScore, string(buf), f.HTML, f.CreatedAt)
	if err != nil {
		return Feedback{}, err
	}
	return f, nil
}

func (s *SQLStore) GetFeedback(ctx context.Context, id string) (Feedback, error) {
	f, err := scanFeedback(s.db.QueryRowContext(ctx, `SELECT `+feedbackCols+` FROM feedbacks WHERE id=$1`, id))
	if err != nil {
		return Feedback{}, notFound(err)
	}
	return f, nil
}

func (s *SQLStore) ListFeedbacks(ctx context.Context, opts ListOpts) ([]Feedback, error) {
	var w where
	if opts.UserID != "" {
		w.add("user_id = ?", opts.UserID)
	}
	if opts.QuestionID != "" {
		w.add("question_id = ?", opts.QuestionID)
	}
	if opts.AnswerID != "" {
		w.add("answer_id = ?", opts.AnswerID)
	}
	q := `SELECT ` + feedbackCols + ` FROM feedbacks` + w.sql() + ` ORDER BY created_at DESC, id` + w.page(opts)
	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteFeedback(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "feedbacks", id)
}

// ---- users ----

func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	stamp(&u.ID, &u.CreatedAt)
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,username,role,password_hash,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (username) DO UPDATE SET role=EXCLUDED.role, password_hash=EXCLUDED.password_hash`,
		u.ID, u.Username, u.Role, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return s.FindUser(ctx, u.Username)
}

func (s *SQLStore) FindUser(ctx context.Context, idOrUsername string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT id,username,role,password_hash,created_at FROM users
		WHERE id=$1 OR username=$1`, idOrUsername).
		Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context, role string) ([]User, error) {
	q := `SELECT id,username,role,password_hash,created_at FROM users`
	var args []any
	if role != "" {
		q += ` WHERE role=$1`
		args = append(args, role)
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY username`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
