package scoring

import (
	"strings"
	"unicode"
)

// readabilityScore normalizes a Flesch-Reading-Ease style formula to [0,1]
// and applies a complex-word penalty above the configured density limit.
func (s *Scorer) readabilityScore(text string) float64 {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	totalSyllables := 0
	complexWords := 0
	for _, w := range words {
		syl := countSyllables(w)
		totalSyllables += syl
		if syl >= 3 {
			complexWords++
		}
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(totalSyllables) / float64(len(words))

	// Flesch Reading Ease, clamped to [0,100] then normalized
	flesch := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	score := clamp01(flesch / 100)

	complexRatio := float64(complexWords) / float64(len(words))
	if complexRatio > s.cfg.ComplexWordDensityLimit {
		score -= complexRatio - s.cfg.ComplexWordDensityLimit
	}

	return clamp01(score)
}

// splitWords returns the alphabetic word tokens of text.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// countSentences counts terminal-punctuation-delimited sentences.
func countSentences(text string) int {
	count := 0
	inSentence := false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			if inSentence {
				count++
				inSentence = false
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			inSentence = true
		}
	}
	if inSentence {
		count++
	}
	return count
}

// countSyllables approximates English syllable count by vowel groups,
// discounting a trailing silent e. Every word has at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	isVowel := func(r rune) bool {
		return strings.ContainsRune("aeiouy", r)
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
