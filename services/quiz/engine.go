// Package quiz scores knowledge-check submissions. Scoring is all-or-nothing:
// a submission passes only when every question is answered correctly.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoQuestions = errors.New("quiz has no questions")
	ErrIncomplete  = errors.New("not all questions have been answered")
)

// Question is the part of a quiz question the engine needs.
type Question struct {
	ID           string
	CorrectIndex int
}

type Result struct {
	Correct map[string]bool `json:"results"`
	Score   int             `json:"score"`
	Total   int             `json:"total"`
	Passed  bool            `json:"passed"`
}

// IncompleteError lists the questions that still need an answer.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncomplete, strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Evaluate scores answers (question id -> selected option index) against the
// questions. Partial submissions are rejected before any scoring happens.
func Evaluate(questions []Question, answers map[string]int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuestions
	}

	var missing []string
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return Result{}, &IncompleteError{Missing: missing}
	}

	res := Result{
		Correct: make(map[string]bool, len(questions)),
		Total:   len(questions),
	}
	for _, q := range questions {
		ok := answers[q.ID] == q.CorrectIndex
		res.Correct[q.ID] = ok
		if ok {
			res.Score++
		}
	}
	res.Passed = res.Score == res.Total
	return res, nil
}
