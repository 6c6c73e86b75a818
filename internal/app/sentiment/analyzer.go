// Package sentiment implements the rule-based text analyzer.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/PabloGalante/paceful/internal/app/lexicon"
	"github.com/PabloGalante/paceful/internal/domain"
)

// Name identifies results produced by RuleBased.
const Name = "rule_based_v1"

const (
	negationScalar     = -0.74
	negationWindow     = 3
	modifierWindow     = 2
	normalizationAlpha = 15.0
	defaultNotable     = 5
)

// Level thresholds on the normalized valence.
const (
	veryNegativeMax = -0.6
	negativeMax     = -0.2
	neutralMax      = 0.2
	positiveMax     = 0.6
)

// RuleBased scores text against the static lexicon.
// It holds no mutable state and is safe for concurrent use.
type RuleBased struct {
	maxNotable int
}

func NewRuleBased() *RuleBased {
	return &RuleBased{maxNotable: defaultNotable}
}

func (a *RuleBased) Name() string {
	return Name
}

// Analyze never fails on valid text. Invalid UTF-8 is rejected with ErrInvalidInput.
func (a *RuleBased) Analyze(_ context.Context, text string) (*domain.AnalysisResult, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}
	return a.analyzeTokens(Tokenize(text)), nil
}

type hit struct {
	text   string
	weight float64
	order  int
}

// scanState tracks the pending negation and modifier windows.
type scanState struct {
	negActive bool
	negStart  int
	negUntil  int
	negClause int

	modActive bool
	modStart  int
	modUntil  int
	modClause int
	modScale  float64
}

func (s *scanState) negatedAt(i, clause int) bool {
	return s.negActive && s.negClause == clause && i <= s.negUntil
}

func (s *scanState) modifiedAt(i, clause int) bool {
	return s.modActive && s.modClause == clause && i <= s.modUntil
}

func (a *RuleBased) analyzeTokens(tokens []Token) *domain.AnalysisResult {
	var (
		st       scanState
		raw      float64
		hits     []hit
		emotions = map[string]int{}
	)

	for i := 0; i < len(tokens); {
		clause := tokens[i].Clause

		if entry, n, ok := lookupAt(tokens, i); ok {
			weight := entry.Weight
			start := i

			if st.modifiedAt(i, clause) {
				weight *= st.modScale
				start = st.modStart
			}

			negated := st.negatedAt(i, clause)
			if negated {
				weight *= negationScalar
				if st.negStart < start {
					start = st.negStart
				}
			} else {
				emotions[entry.Emotion]++
			}

			raw += weight
			hits = append(hits, hit{
				text:   joinTokens(tokens[start : i+n]),
				weight: weight,
				order:  len(hits),
			})

			st.negActive = false
			st.modActive = false
			i += n
			continue
		}

		if n := negatorPhraseAt(tokens, i); n > 0 {
			st.negActive = true
			st.negStart = i
			st.negUntil = i + n - 1 + negationWindow
			st.negClause = clause
			i += n
			continue
		}

		tok := tokens[i].Text

		if lexicon.IsNegator(tok) {
			st.negActive = true
			st.negStart = i
			st.negUntil = i + negationWindow
			st.negClause = clause
			i++
			continue
		}

		if m, ok := lexicon.Modifier(tok); ok {
			if st.modifiedAt(i, clause) {
				st.modScale *= m
			} else {
				st.modActive = true
				st.modStart = i
				st.modScale = m
			}
			st.modUntil = i + modifierWindow
			st.modClause = clause
			i++
			continue
		}

		i++
	}

	valence := raw / math.Sqrt(raw*raw+normalizationAlpha)

	return &domain.AnalysisResult{
		Analyzer:       Name,
		LexiconVersion: lexicon.Version,
		Sentiment:      LevelFor(valence),
		Valence:        round4(valence),
		RawValence:     round4(raw),
		Emotions:       emotionTags(emotions),
		Markers:        DetectMarkers(tokens),
		NotablePhrases: topPhrases(hits, a.maxNotable),
		WordCount:      len(tokens),
	}
}

// lookupAt tries the longest phrase first, then the single word.
func lookupAt(tokens []Token, i int) (lexicon.Entry, int, bool) {
	for n := lexicon.MaxPhraseLen; n >= 2; n-- {
		if !sameClause(tokens, i, n) {
			continue
		}
		if e, ok := lexicon.LookupPhrase(joinTokens(tokens[i : i+n])); ok {
			return e, n, true
		}
	}
	if e, ok := lexicon.LookupWord(tokens[i].Text); ok {
		return e, 1, true
	}
	return lexicon.Entry{}, 0, false
}

func negatorPhraseAt(tokens []Token, i int) int {
	for _, p := range lexicon.NegatorPhrases() {
		if matchSequence(tokens, i, p) {
			return len(p)
		}
	}
	return 0
}

// LevelFor maps a normalized valence in [-1, 1] to a sentiment level.
func LevelFor(valence float64) domain.SentimentLevel {
	switch {
	case valence <= veryNegativeMax:
		return domain.SentimentVeryNegative
	case valence <= negativeMax:
		return domain.SentimentNegative
	case valence < neutralMax:
		return domain.SentimentNeutral
	case valence < positiveMax:
		return domain.SentimentPositive
	default:
		return domain.SentimentVeryPositive
	}
}

// DetectMarkers reports every marker kind with at least one pattern match.
// Markers ignore valence and negation.
func DetectMarkers(tokens []Token) []domain.InsightMarker {
	out := make([]domain.InsightMarker, 0, len(domain.MarkerOrder))
	for _, kind := range domain.MarkerOrder {
		if hasPattern(tokens, lexicon.MarkerPatterns(kind)) {
			out = append(out, kind)
		}
	}
	return out
}

func hasPattern(tokens []Token, patterns [][]string) bool {
	for i := range tokens {
		for _, p := range patterns {
			if matchSequence(tokens, i, p) {
				return true
			}
		}
	}
	return false
}

func emotionTags(counts map[string]int) []domain.EmotionTag {
	out := make([]domain.EmotionTag, 0, len(counts))
	for e, c := range counts {
		out = append(out, domain.EmotionTag{Emotion: e, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out
}

func topPhrases(hits []hit, limit int) []domain.NotablePhrase {
	sort.SliceStable(hits, func(i, j int) bool {
		ai, aj := math.Abs(hits[i].weight), math.Abs(hits[j].weight)
		if ai != aj {
			return ai > aj
		}
		return hits[i].order < hits[j].order
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.NotablePhrase, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.NotablePhrase{Text: h.text, Weight: round4(h.weight)})
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
