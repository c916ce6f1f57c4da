package scoring

import (
	"fmt"
	"strings"
	"unicode"
)

// Weights is the fixed weighting of sub-scores into the overall score.
// Safety and appropriateness are intentionally overweighted relative to
// engagement. Weights must sum to 1.
type Weights struct {
	Format          float64
	Safety          float64
	Readability     float64
	Engagement      float64
	Appropriateness float64
	Confidence      float64
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Format + w.Safety + w.Readability + w.Engagement + w.Appropriateness + w.Confidence
}

// Config is the immutable scorer configuration, injected at construction.
type Config struct {
	MaxTitleLength          int
	MinTitleLength          int
	MaxSummaryLength        int
	MinSummaryLength        int
	ComplexWordDensityLimit float64
	MinSafetyScore          float64
	MinOverallScore         float64
	Weights                 Weights

	ProhibitedMedicalTerms []string
	CureClaims             []string
	SupplementHype         []string
	UrgencyTerms           []string
	CautiousMarkers        []string
	UnsafeBehaviors        []string
	InappropriateTerms     []string
	DiscouragingTerms      []string
	EducationalIndicators  []string
	Hooks                  []string
	ActionVerbs            []string
	EmotionalWords         []string
	MedicalRegister        []string
	HedgingTerms           []string
}

// DefaultConfig returns the production scoring configuration.
func DefaultConfig() Config {
	return Config{
		MaxTitleLength:          60,
		MinTitleLength:          10,
		MaxSummaryLength:        200,
		MinSummaryLength:        30,
		ComplexWordDensityLimit: 0.15,
		MinSafetyScore:          0.6,
		MinOverallScore:         0.4,
		Weights: Weights{
			Format:          0.10,
			Safety:          0.25,
			Readability:     0.15,
			Engagement:      0.15,
			Appropriateness: 0.20,
			Confidence:      0.15,
		},
		ProhibitedMedicalTerms: defaultProhibitedMedicalTerms,
		CureClaims:             defaultCureClaims,
		SupplementHype:         defaultSupplementHype,
		UrgencyTerms:           defaultUrgencyTerms,
		CautiousMarkers:        defaultCautiousMarkers,
		UnsafeBehaviors:        defaultUnsafeBehaviors,
		InappropriateTerms:     defaultInappropriateTerms,
		DiscouragingTerms:      defaultDiscouragingTerms,
		EducationalIndicators:  defaultEducationalIndicators,
		Hooks:                  defaultHooks,
		ActionVerbs:            defaultActionVerbs,
		EmotionalWords:         defaultEmotionalWords,
		MedicalRegister:        defaultMedicalRegister,
		HedgingTerms:           defaultHedgingTerms,
	}
}

// Input is the content to score.
type Input struct {
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// Result holds all sub-scores, the weighted overall score and the ordered
// issue list. All scores are in [0,1].
type Result struct {
	Format          float64  `json:"format_score"`
	Readability     float64  `json:"readability_score"`
	Engagement      float64  `json:"engagement_score"`
	Safety          float64  `json:"safety_score"`
	Appropriateness float64  `json:"appropriateness_score"`
	Overall         float64  `json:"overall_score"`
	Issues          []string `json:"issues"`
	IsValid         bool     `json:"is_valid"`
}

// Scorer computes quality and safety scores for content items.
// Pure and stateless; never fails. Malformed input yields conservative
// low scores instead of errors.
type Scorer struct {
	cfg Config
}

// New creates a Scorer with the given configuration.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes all sub-scores and the weighted overall score.
func (s *Scorer) Score(in Input) Result {
	text := strings.ToLower(in.Title + " " + in.Summary)

	var issues []string

	format := s.formatScore(in, &issues)
	readability := s.readabilityScore(in.Summary)
	engagement := s.engagementScore(text)
	safety := s.safetyScore(text, &issues)
	appropriateness := s.appropriatenessScore(text, &issues)
	confidence := clamp01(in.Confidence)

	w := s.cfg.Weights
	overall := clamp01(w.Format*format +
		w.Safety*safety +
		w.Readability*readability +
		w.Engagement*engagement +
		w.Appropriateness*appropriateness +
		w.Confidence*confidence)

	if issues == nil {
		issues = []string{}
	}

	return Result{
		Format:          format,
		Readability:     readability,
		Engagement:      engagement,
		Safety:          safety,
		Appropriateness: appropriateness,
		Overall:         overall,
		Issues:          issues,
		IsValid:         safety >= s.cfg.MinSafetyScore && overall >= s.cfg.MinOverallScore && format >= 0.5,
	}
}

// formatScore penalizes missing, too-long or too-short title and summary.
func (s *Scorer) formatScore(in Input, issues *[]string) float64 {
	score := 1.0

	title := strings.TrimSpace(in.Title)
	summary := strings.TrimSpace(in.Summary)

	switch {
	case title == "":
		score -= 0.4
		*issues = append(*issues, "missing title")
	case len(title) > s.cfg.MaxTitleLength:
		score -= 0.2
		*issues = append(*issues, fmt.Sprintf("title exceeds %d characters", s.cfg.MaxTitleLength))
	case len(title) < s.cfg.MinTitleLength:
		score -= 0.1
	}

	switch {
	case summary == "":
		score -= 0.4
		*issues = append(*issues, "missing summary")
	case len(summary) > s.cfg.MaxSummaryLength:
		score -= 0.2
		*issues = append(*issues, fmt.Sprintf("summary exceeds %d characters", s.cfg.MaxSummaryLength))
	case len(summary) < s.cfg.MinSummaryLength:
		score -= 0.1
	}

	// minor penalty for missing terminal punctuation
	if summary != "" && !strings.ContainsAny(summary[len(summary)-1:], ".!?") {
		score -= 0.05
	}

	return clamp01(score)
}

// engagementScore starts at 0.5 and applies additive heuristics.
func (s *Scorer) engagementScore(text string) float64 {
	score := 0.5

	if containsAnyTerm(text, s.cfg.Hooks) || strings.Contains(text, "?") {
		score += 0.1
	}
	if containsAnyTerm(text, s.cfg.ActionVerbs) {
		score += 0.1
	}
	if containsTerm(text, "you") || containsTerm(text, "your") {
		score += 0.05
	}
	if containsAnyTerm(text, s.cfg.EmotionalWords) {
		score += 0.1
	}
	if strings.ContainsFunc(text, unicode.IsDigit) {
		score += 0.05
	}

	if containsAnyTerm(text, s.cfg.MedicalRegister) {
		score -= 0.1
	}
	if containsAnyTerm(text, s.cfg.HedgingTerms) {
		score -= 0.05
	}

	return clamp01(score)
}

// safetyScore starts at 1.0 and decrements per matched term in three
// escalating categories, plus urgency and missing-cautious-tone penalties.
// Floored at 0.
func (s *Scorer) safetyScore(text string, issues *[]string) float64 {
	score := 1.0

	for _, term := range s.cfg.ProhibitedMedicalTerms {
		if containsTerm(text, term) {
			score -= 0.3
			*issues = append(*issues, fmt.Sprintf("prohibited medical term: %q", term))
		}
	}
	for _, term := range s.cfg.CureClaims {
		if containsTerm(text, term) {
			score -= 0.4
			*issues = append(*issues, fmt.Sprintf("disease-cure claim: %q", term))
		}
	}
	for _, term := range s.cfg.SupplementHype {
		if containsTerm(text, term) {
			score -= 0.2
			*issues = append(*issues, fmt.Sprintf("supplement hype claim: %q", term))
		}
	}

	if term, ok := firstMatch(text, s.cfg.UrgencyTerms); ok {
		score -= 0.3
		*issues = append(*issues, fmt.Sprintf("urgent or emergency language: %q", term))
	}
	if !containsAnyTerm(text, s.cfg.CautiousMarkers) {
		score -= 0.1
	}

	if score < 0 {
		return 0
	}
	return score
}

// appropriatenessScore starts at 1.0 and applies fixed penalties.
// Floored at 0.
func (s *Scorer) appropriatenessScore(text string, issues *[]string) float64 {
	score := 1.0

	if term, ok := firstMatch(text, s.cfg.UnsafeBehaviors); ok {
		score -= 0.3
		*issues = append(*issues, fmt.Sprintf("promotes unsafe behavior: %q", term))
	}
	if term, ok := firstMatch(text, s.cfg.InappropriateTerms); ok {
		score -= 0.2
		*issues = append(*issues, fmt.Sprintf("inappropriate content: %q", term))
	}
	if term, ok := firstMatch(text, s.cfg.DiscouragingTerms); ok {
		score -= 0.15
		*issues = append(*issues, fmt.Sprintf("discouraging language: %q", term))
	}
	if !containsAnyTerm(text, s.cfg.EducationalIndicators) {
		score -= 0.1
	}

	if score < 0 {
		return 0
	}
	return score
}

// containsTerm matches term in text on word boundaries, so "cure" does
// not match inside "secure".
func containsTerm(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)

		beforeOK := idx == 0 || !isWordChar(rune(text[idx-1]))
		afterOK := end >= len(text) || !isWordChar(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func containsAnyTerm(text string, terms []string) bool {
	_, ok := firstMatch(text, terms)
	return ok
}

// firstMatch returns the first term from the list present in text.
func firstMatch(text string, terms []string) (string, bool) {
	for _, term := range terms {
		if containsTerm(text, term) {
			return term, true
		}
	}
	return "", false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
