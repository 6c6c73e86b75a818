// Package llm provides model-backed text analyzers. Every analyzer first runs
// the rule-based pass, then lets the model refine sentiment, emotions and
// markers. Any model failure degrades to the rule-based result.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/PabloGalante/paceful/internal/app/lexicon"
	"github.com/PabloGalante/paceful/internal/app/sentiment"
	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

// Completer sends one prompt to a model and returns its raw text output.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Analyzer implements domain.TextAnalyzer on top of a Completer.
type Analyzer struct {
	name     string
	model    Completer
	fallback *sentiment.RuleBased
}

func NewAnalyzer(name string, model Completer) *Analyzer {
	return &Analyzer{
		name:     name,
		model:    model,
		fallback: sentiment.NewRuleBased(),
	}
}

func (a *Analyzer) Name() string {
	return a.name
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	ctx, span := observability.StartSpan(ctx, "llm.analyze")
	defer span.End()

	base, err := a.fallback.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return base, nil
	}

	log := observability.LoggerFromContext(ctx).With("analyzer", a.name)

	out, err := a.model.Complete(ctx, BuildPrompt(text))
	if err != nil {
		log.Warnw("model analysis failed, using rule-based result", "error", err)
		span.RecordError(err)
		return base, nil
	}

	var v verdict
	if err := decodeModelJSON(out, &v); err != nil {
		log.Warnw("model returned unusable json, using rule-based result", "error", err)
		span.RecordError(err)
		return base, nil
	}

	return merge(a.name, base, v), nil
}

// verdict is the JSON object the model is asked to produce.
type verdict struct {
	Sentiment string   `json:"sentiment" jsonschema:"enum=very_negative,enum=negative,enum=neutral,enum=positive,enum=very_positive"`
	Valence   float64  `json:"valence"`
	Emotions  []string `json:"emotions"`
	Markers   []string `json:"markers"`
}

// merge keeps the rule-based counts, phrases and word count, and takes the
// model's classification after validating it against the known vocabulary.
func merge(name string, base *domain.AnalysisResult, v verdict) *domain.AnalysisResult {
	res := *base
	res.Analyzer = name

	valence := v.Valence
	if math.IsNaN(valence) || math.IsInf(valence, 0) {
		valence = base.Valence
	}
	valence = math.Max(-1, math.Min(1, valence))
	res.Valence = math.Round(valence*10000) / 10000

	// the label always follows the valence thresholds; the model's own label is advisory
	res.Sentiment = sentiment.LevelFor(res.Valence)

	res.Emotions = mergeEmotions(base, v.Emotions)
	res.Markers = canonicalMarkers(v.Markers)
	return &res
}

func mergeEmotions(base *domain.AnalysisResult, names []string) []domain.EmotionTag {
	allowed := make(map[string]struct{}, len(lexicon.Emotions()))
	for _, e := range lexicon.Emotions() {
		allowed[e] = struct{}{}
	}

	seen := map[string]struct{}{}
	out := make([]domain.EmotionTag, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(strings.ToLower(n))
		if _, ok := allowed[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		count := base.EmotionCount(n)
		if count == 0 {
			count = 1
		}
		out = append(out, domain.EmotionTag{Emotion: n, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out
}

func canonicalMarkers(names []string) []domain.InsightMarker {
	got := map[domain.InsightMarker]struct{}{}
	for _, n := range names {
		got[domain.InsightMarker(strings.TrimSpace(strings.ToLower(n)))] = struct{}{}
	}
	out := make([]domain.InsightMarker, 0, len(got))
	for _, m := range domain.MarkerOrder {
		if _, ok := got[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// decodeModelJSON unmarshals JSON from a model response, tolerating leading
// prose or code fences around a single object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start != -1 && end == -1 {
		return io.ErrUnexpectedEOF
	}
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
