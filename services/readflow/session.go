// Package readflow drives a carer through confirming one document: either a
// plain acknowledgment or a knowledge-check quiz that must be passed first.
package readflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"policyportal/models"
	"policyportal/services/quiz"

	"github.com/google/uuid"
)

type State int

const (
	Unconfirmed State = iota
	AwaitingExplicitConfirmation
	QuizInProgress
	QuizFailed
	QuizPassed
	Confirmed
)

func (s State) String() string {
	switch s {
	case Unconfirmed:
		return "unconfirmed"
	case AwaitingExplicitConfirmation:
		return "awaiting_confirmation"
	case QuizInProgress:
		return "quiz_in_progress"
	case QuizFailed:
		return "quiz_failed"
	case QuizPassed:
		return "quiz_passed"
	case Confirmed:
		return "confirmed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrInvalidState = errors.New("operation not allowed in current state")

// Recorder persists the compliance record. Writes must be upserts on
// (document, user).
type Recorder interface {
	RecordRead(ctx context.Context, read models.DocumentRead) error
}

// Session is the confirmation state of one carer viewing one document.
// It is not safe for concurrent use.
type Session struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID

	questions  []quiz.Question
	recorder   Recorder
	now        func() time.Time
	state      State
	selections map[string]int
	result     *quiz.Result
}

func NewSession(documentID, userID uuid.UUID, questions []quiz.Question, recorder Recorder) *Session {
	return &Session{
		DocumentID: documentID,
		UserID:     userID,
		questions:  questions,
		recorder:   recorder,
		now:        func() time.Time { return time.Now().UTC() },
		selections: map[string]int{},
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) HasQuiz() bool { return len(s.questions) > 0 }

// Result returns the outcome of the last submission, if any.
func (s *Session) Result() (quiz.Result, bool) {
	if s.result == nil {
		return quiz.Result{}, false
	}
	return *s.result, true
}

func (s *Session) Selections() map[string]int {
	out := make(map[string]int, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}

// Start picks the flow based on whether the document has a quiz.
func (s *Session) Start() error {
	if s.state != Unconfirmed {
		return s.invalid("start")
	}
	if s.HasQuiz() {
		s.state = QuizInProgress
	} else {
		s.state = AwaitingExplicitConfirmation
	}
	return nil
}

// Acknowledge records a read without quiz fields.
func (s *Session) Acknowledge(ctx context.Context) error {
	if s.state != AwaitingExplicitConfirmation {
		return s.invalid("acknowledge")
	}
	read := models.DocumentRead{
		DocumentID: s.DocumentID,
		UserID:     s.UserID,
		ReadAt:     s.now(),
	}
	if err := s.recorder.RecordRead(ctx, read); err != nil {
		return fmt.Errorf("record read: %w", err)
	}
	s.state = Confirmed
	return nil
}

func (s *Session) Select(questionID string, option int) error {
	if s.state != QuizInProgress {
		return s.invalid("select")
	}
	s.selections[questionID] = option
	return nil
}

// Submit scores the current selections. A pass is persisted immediately; a
// failure stores nothing and leaves the session in QuizFailed.
func (s *Session) Submit(ctx context.Context) (quiz.Result, error) {
	if s.state != QuizInProgress {
		return quiz.Result{}, s.invalid("submit")
	}

	res, err := quiz.Evaluate(s.questions, s.selections)
	if err != nil {
		return quiz.Result{}, err
	}

	if !res.Passed {
		s.result = &res
		s.state = QuizFailed
		return res, nil
	}

	s.result = &res
	s.state = QuizPassed

	passed := true
	score := res.Score
	read := models.DocumentRead{
		DocumentID: s.DocumentID,
		UserID:     s.UserID,
		ReadAt:     s.now(),
		QuizPassed: &passed,
		QuizScore:  &score,
	}
	if err := s.recorder.RecordRead(ctx, read); err != nil {
		s.result = nil
		s.state = QuizInProgress
		return res, fmt.Errorf("record read: %w", err)
	}
	s.state = Confirmed
	return res, nil
}

// Retry clears all answers and results after a failed attempt.
func (s *Session) Retry() error {
	if s.state != QuizFailed {
		return s.invalid("retry")
	}
	s.selections = map[string]int{}
	s.result = nil
	s.state = QuizInProgress
	return nil
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%s from %s: %w", op, s.state, ErrInvalidState)
}

// Questions converts stored quiz rows into engine questions.
func Questions(rows []models.QuizQuestion) []quiz.Question {
	out := make([]quiz.Question, len(rows))
	for i, q := range rows {
		out[i] = quiz.Question{ID: q.ID.String(), CorrectIndex: q.CorrectIndex}
	}
	return out
}
