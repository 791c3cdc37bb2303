// Package tierkit holds the achievement, certificate and scoring logic shared by the
// age-tier plugins. Each tier keeps its own tables; tierkit works on them through
// small record interfaces.
package tierkit

// Stats are the tier-wide counters achievement rules are evaluated against.
type Stats struct {
	LessonsCompleted int
	StoriesCompleted int
	WordsPracticed   int
	WordsFirstTry    int
	PhrasesPracticed int
	PhrasesFirstTry  int
	GamesPlayed      int
	PerfectGames     int
	TotalPoints      int
}

// Rule unlocks an achievement once Metric reaches Target.
type Rule struct {
	Name        string
	Description string
	Icon        string
	Target      int
	Metric      func(Stats) int
}

type Result struct {
	Rule     Rule
	Progress int
	Unlocked bool
}

// Evaluate scores every rule against s. Progress is capped at the target.
func Evaluate(rules []Rule, s Stats) []Result {
	out := make([]Result, len(rules))
	for i, r := range rules {
		progress := r.Metric(s)
		if progress > r.Target {
			progress = r.Target
		}
		if progress < 0 {
			progress = 0
		}
		out[i] = Result{Rule: r, Progress: progress, Unlocked: progress >= r.Target}
	}
	return out
}

// StarsFor grades a lesson score from 0 to 3 stars.
func StarsFor(score int) int {
	switch {
	case score >= 90:
		return 3
	case score >= 70:
		return 2
	case score >= 50:
		return 1
	default:
		return 0
	}
}

// LessonPoints scales a lesson's reward by the score, clamped to 0..100.
func LessonPoints(reward, score int) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return reward * score / 100
}
