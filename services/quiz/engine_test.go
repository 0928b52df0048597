package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions(correct ...int) []Question {
	qs := make([]Question, len(correct))
	for i, c := range correct {
		qs[i] = Question{ID: fmt.Sprintf("q%d", i), CorrectIndex: c}
	}
	return qs
}

func TestEvaluateAllCorrectPasses(t *testing.T) {
	qs := questions(0, 3, 2)
	res, err := Evaluate(qs, map[string]int{"q0": 0, "q1": 3, "q2": 2})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, map[string]bool{"q0": true, "q1": true, "q2": true}, res.Correct)
}

func TestEvaluatePartialNeverPasses(t *testing.T) {
	qs := questions(1, 1, 1, 1)
	for wrong := 0; wrong < len(qs); wrong++ {
		answers := map[string]int{"q0": 1, "q1": 1, "q2": 1, "q3": 1}
		answers[qs[wrong].ID] = 2

		res, err := Evaluate(qs, answers)
		require.NoError(t, err)
		assert.False(t, res.Passed, "wrong answer at %d", wrong)
		assert.Equal(t, 3, res.Score)
		assert.False(t, res.Correct[qs[wrong].ID])
	}
}

func TestEvaluateExhaustiveSmallSets(t *testing.T) {
	// every answer combination for two questions with four options each
	qs := questions(2, 0)
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			res, err := Evaluate(qs, map[string]int{"q0": a, "q1": b})
			require.NoError(t, err)
			assert.Equal(t, a == 2 && b == 0, res.Passed, "answers %d,%d", a, b)
		}
	}
}

func TestEvaluateRejectsIncomplete(t *testing.T) {
	_, err := Evaluate(questions(0, 1, 2), map[string]int{"q0": 0, "q2": 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var inc *IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, []string{"q1"}, inc.Missing)
}

func TestEvaluateRejectsEmptyQuiz(t *testing.T) {
	_, err := Evaluate(nil, map[string]int{})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestEvaluateIgnoresUnknownAndOutOfRange(t *testing.T) {
	res, err := Evaluate(questions(1), map[string]int{"q0": 9, "other": 1})
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 0, res.Score)
	assert.Len(t, res.Correct, 1)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	qs := questions(0, 1)
	answers := map[string]int{"q0": 0, "q1": 2}
	first, err := Evaluate(qs, answers)
	require.NoError(t, err)
	second, err := Evaluate(qs, answers)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
