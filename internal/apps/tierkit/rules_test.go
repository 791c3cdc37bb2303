package tierkit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	rules := []Rule{
		{Name: "First Steps", Target: 1, Metric: func(s Stats) int { return s.LessonsCompleted }},
		{Name: "Word Wizard", Target: 50, Metric: func(s Stats) int { return s.WordsFirstTry }},
	}

	results := Evaluate(rules, Stats{LessonsCompleted: 4, WordsFirstTry: 12})

	assert.Equal(t, 1, results[0].Progress)
	assert.True(t, results[0].Unlocked)
	assert.Equal(t, 12, results[1].Progress)
	assert.False(t, results[1].Unlocked)
	assert.Equal(t, "Word Wizard", results[1].Rule.Name)
}

func TestStarsFor(t *testing.T) {
	cases := []struct {
		score, stars int
	}{
		{100, 3}, {90, 3}, {89, 2}, {70, 2}, {69, 1}, {50, 1}, {49, 0}, {0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.stars, StarsFor(tc.score), "score %d", tc.score)
	}
}

func TestLessonPoints(t *testing.T) {
	assert.Equal(t, 50, LessonPoints(50, 100))
	assert.Equal(t, 40, LessonPoints(50, 80))
	assert.Equal(t, 50, LessonPoints(50, 140))
	assert.Equal(t, 0, LessonPoints(50, -5))
}

func TestLessonSetCompletedBy(t *testing.T) {
	a, b, retired := uuid.New(), uuid.New(), uuid.New()
	active := LessonSet{a: true, b: true}

	assert.False(t, active.CompletedBy([]uuid.UUID{a, retired}))
	assert.False(t, active.CompletedBy([]uuid.UUID{a, a}))
	assert.True(t, active.CompletedBy([]uuid.UUID{b, retired, a}))
	assert.False(t, LessonSet{}.CompletedBy([]uuid.UUID{a}))
}
