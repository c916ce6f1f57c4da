package scoring

import "testing"

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"water", 2},
		{"banana", 3},
		{"sleep", 1},
		{"hydrate", 2}, // silent e
		{"simple", 2},  // -le keeps its syllable
		{"a", 1},
		{"", 0},
		{"rhythm", 1},
	}
	for _, tt := range tests {
		if got := countSyllables(tt.word); got != tt.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"One sentence.", 1},
		{"One. Two! Three?", 3},
		{"No terminal punctuation", 1},
		{"Ellipsis... still one", 2}, // "Ellipsis..." then trailing fragment
		{"...", 0},
	}
	for _, tt := range tests {
		if got := countSentences(tt.text); got != tt.want {
			t.Errorf("countSentences(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestReadabilityScore_SimpleBeatsComplex(t *testing.T) {
	s := newTestScorer()

	simple := s.readabilityScore("Drink water. Walk each day. Sleep well at night.")
	academic := s.readabilityScore("Comprehensive physiological optimization necessitates deliberate multidimensional interventions incorporating considerable bioavailability considerations.")

	if simple <= academic {
		t.Errorf("simple prose (%f) should outscore complex prose (%f)", simple, academic)
	}
	if simple < 0 || simple > 1 || academic < 0 || academic > 1 {
		t.Error("readability scores must stay in [0,1]")
	}
}

func TestReadabilityScore_EmptyText(t *testing.T) {
	s := newTestScorer()
	if got := s.readabilityScore(""); got != 0 {
		t.Errorf("empty text should score 0, got %f", got)
	}
}

func TestReadabilityScore_ComplexWordPenalty(t *testing.T) {
	s := newTestScorer()

	// every word has 3+ syllables, far over the 15% density limit
	dense := s.readabilityScore("Intentionally multisyllabic terminology overwhelming readability calculations.")
	if dense > 0.2 {
		t.Errorf("dense complex vocabulary should be heavily penalized, got %f", dense)
	}
}
