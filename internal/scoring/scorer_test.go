package scoring

import (
	"math"
	"strings"
	"testing"
)

func newTestScorer() *Scorer {
	return New(DefaultConfig())
}

func TestWeightsSumToOne(t *testing.T) {
	w := DefaultConfig().Weights
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("weights must sum to 1, got %f", w.Sum())
	}
}

func TestScoreBounds(t *testing.T) {
	s := newTestScorer()

	inputs := []Input{
		{},
		{Title: "ok", Summary: "ok"},
		{Title: strings.Repeat("x", 500), Summary: strings.Repeat("y", 5000), Confidence: 2.5},
		{Title: "Cure cure cure", Summary: "cure your disease, miracle supplement, detox immediately", Confidence: -1},
		{Title: "A balanced morning walk helps", Summary: "A short daily walk may help you feel great. Research shows it can help your mood.", Confidence: 0.9},
		{Title: "?!.,;", Summary: "1234567890"},
	}

	for i, in := range inputs {
		r := s.Score(in)
		for name, v := range map[string]float64{
			"format":          r.Format,
			"readability":     r.Readability,
			"engagement":      r.Engagement,
			"safety":          r.Safety,
			"appropriateness": r.Appropriateness,
			"overall":         r.Overall,
		} {
			if v < 0 || v > 1 {
				t.Errorf("input %d: %s score %f out of [0,1]", i, name, v)
			}
		}
	}
}

func TestScore_NeverPanicsOnMalformedInput(t *testing.T) {
	s := newTestScorer()
	r := s.Score(Input{})
	if r.IsValid {
		t.Error("empty input should not be valid")
	}
	if r.Format > 0.3 {
		t.Errorf("empty input should score low on format, got %f", r.Format)
	}
}

func TestScore_ProhibitedContentScenario(t *testing.T) {
	s := newTestScorer()
	r := s.Score(Input{
		Title:      "Cure Your Disease Instantly",
		Summary:    "you should take it immediately without consulting your doctor",
		Confidence: 0.9,
	})

	if r.Safety > 0.3 {
		t.Errorf("safety score should be <= 0.3, got %f", r.Safety)
	}
	if r.IsValid {
		t.Error("prohibited content should not be valid")
	}

	found := false
	for _, issue := range r.Issues {
		if strings.Contains(issue, "prohibited") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("issues should contain a prohibited-term entry, got %v", r.Issues)
	}
}

func TestFormatScore_Penalties(t *testing.T) {
	s := newTestScorer()

	clean := s.Score(Input{
		Title:   "A calm evening routine for sleep",
		Summary: "Research shows winding down an hour before bed may help you sleep better. Consider dimming the lights.",
	})
	missingTitle := s.Score(Input{
		Summary: "Research shows winding down an hour before bed may help you sleep better. Consider dimming the lights.",
	})
	longTitle := s.Score(Input{
		Title:   strings.Repeat("very long title ", 10),
		Summary: "Research shows winding down an hour before bed may help you sleep better. Consider dimming the lights.",
	})
	noPunctuation := s.Score(Input{
		Title:   "A calm evening routine for sleep",
		Summary: "Research shows winding down an hour before bed may help you sleep better and consider dimming the lights",
	})

	if missingTitle.Format >= clean.Format {
		t.Error("missing title should lower format score")
	}
	if longTitle.Format >= clean.Format {
		t.Error("overlong title should lower format score")
	}
	if noPunctuation.Format >= clean.Format {
		t.Error("missing terminal punctuation should apply a minor penalty")
	}
	if clean.Format-noPunctuation.Format > 0.1 {
		t.Errorf("punctuation penalty should be minor, diff %f", clean.Format-noPunctuation.Format)
	}
}

func TestSafetyScore_PerTermDecrements(t *testing.T) {
	s := newTestScorer()

	one := s.Score(Input{
		Title:   "Detox tips for the week",
		Summary: "Consider a detox plan. Talk to your doctor before any change.",
	})
	// supplement hype only: 1.0 - 0.2
	if math.Abs(one.Safety-0.8) > 1e-9 {
		t.Errorf("single hype term should score 0.8, got %f", one.Safety)
	}

	stacked := s.Score(Input{
		Title:   "Cure and detox now",
		Summary: "This will cure your fatigue. Consider a detox cleanse.",
	})
	if stacked.Safety >= one.Safety {
		t.Error("stacked violations must score lower than a single one")
	}
}

func TestSafetyScore_CautiousToneMarker(t *testing.T) {
	s := newTestScorer()

	cautious := s.Score(Input{
		Title:   "Stretching before work",
		Summary: "Gentle stretching may help you loosen up. Research shows it can help posture.",
	})
	blunt := s.Score(Input{
		Title:   "Stretching before work",
		Summary: "Gentle stretching loosens you up. Research shows it improves posture.",
	})
	if cautious.Safety != 1.0 {
		t.Errorf("cautious clean content should score 1.0, got %f", cautious.Safety)
	}
	if math.Abs(blunt.Safety-0.9) > 1e-9 {
		t.Errorf("missing cautious tone should cost 0.1, got %f", blunt.Safety)
	}
}

func TestAppropriatenessScore_Penalties(t *testing.T) {
	s := newTestScorer()

	unsafe := s.Score(Input{
		Title:   "Workout advice",
		Summary: "Just push through the pain every session. Learn more in our guide.",
	})
	if unsafe.Appropriateness > 0.7 {
		t.Errorf("unsafe behavior should cost 0.3, got %f", unsafe.Appropriateness)
	}

	discouraging := s.Score(Input{
		Title:   "Weight advice",
		Summary: "It is pointless to try changing habits at your age. Learn why.",
	})
	if discouraging.Appropriateness > 0.85 {
		t.Errorf("discouraging language should cost 0.15, got %f", discouraging.Appropriateness)
	}

	noEducational := s.Score(Input{
		Title:   "Drink water",
		Summary: "Water is wet and you should drink it sometimes, maybe with ice.",
	})
	if noEducational.Appropriateness != 0.9 {
		t.Errorf("missing educational indicator should cost 0.1, got %f", noEducational.Appropriateness)
	}
}

func TestEngagementScore_Heuristics(t *testing.T) {
	s := newTestScorer()

	flat := s.Score(Input{
		Title:   "Hydration",
		Summary: "Water intake matters for the body over long periods of time.",
	})
	hooked := s.Score(Input{
		Title:   "Did you know? 3 ways to boost your energy",
		Summary: "Try a refreshing walk. You might feel great after just 10 minutes!",
	})
	clinical := s.Score(Input{
		Title:   "Hydration pathology",
		Summary: "The etiology of dehydration involves contraindicated comorbidity factors.",
	})

	if hooked.Engagement <= flat.Engagement {
		t.Error("hooks, action verbs and pronouns should raise engagement")
	}
	if clinical.Engagement >= flat.Engagement {
		t.Error("medical register should lower engagement")
	}
}

func TestOverallWeighting_SafetyDominatesEngagement(t *testing.T) {
	s := newTestScorer()

	engagingButUnsafe := s.Score(Input{
		Title:      "Amazing! Try this miracle supplement today",
		Summary:    "You will love this amazing detox. Boost your energy instantly! Try it now!",
		Confidence: 0.9,
	})
	safeButDull := s.Score(Input{
		Title:      "Notes on daily water intake",
		Summary:    "Drinking water through the day may help you. Consider a glass with each meal.",
		Confidence: 0.9,
	})

	if engagingButUnsafe.Overall >= safeButDull.Overall {
		t.Error("safety weighting should dominate engagement weighting")
	}
}

func TestContainsTerm_WordBoundaries(t *testing.T) {
	if containsTerm("a secure habit", "cure") {
		t.Error("cure should not match inside secure")
	}
	if !containsTerm("the cure is here", "cure") {
		t.Error("cure should match as a standalone word")
	}
	if !containsTerm("cure your disease", "cure your") {
		t.Error("multi-word terms should match")
	}
	if containsTerm("procure yours", "cure your") {
		t.Error("multi-word terms should respect boundaries")
	}
}

func TestValidityFloors_FollowConfig(t *testing.T) {
	in := Input{
		Title:      "A Gentle Evening Stretch Routine",
		Summary:    "A few minutes of light stretching before bed may help you unwind. Consider keeping it short and comfortable.",
		Confidence: 0.85,
	}

	relaxed := New(DefaultConfig()).Score(in)
	if !relaxed.IsValid {
		t.Fatalf("clean content should be valid under default floors, issues: %v", relaxed.Issues)
	}

	strictCfg := DefaultConfig()
	strictCfg.MinOverallScore = 0.95
	strict := New(strictCfg).Score(in)

	if strict.IsValid {
		t.Errorf("raised overall floor should invalidate a %.2f overall score", strict.Overall)
	}
	if strict.Overall != relaxed.Overall || strict.Safety != relaxed.Safety {
		t.Error("floors should only affect validity, not the scores themselves")
	}
}
