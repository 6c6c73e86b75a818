package llm

import (
	"strings"

	"github.com/PabloGalante/paceful/internal/app/lexicon"
	"github.com/PabloGalante/paceful/internal/domain"
)

const analysisSystemPrompt = `
You read short personal journal entries for "Paceful", a well-being journaling app,
and describe their emotional content as structured data.

Your role:
- You classify, you do NOT answer, advise, or comment on the entry.
- You are NOT a therapist or doctor and you do NOT diagnose.
- Entries can be in any language. Classify the meaning, not the surface words.

Fields:
- sentiment: overall tone, one of very_negative, negative, neutral, positive, very_positive.
- valence: a number from -1 (most negative) to 1 (most positive), consistent with sentiment.
- emotions: emotions the writer expresses about themselves, only from the allowed list.
  Do not list an emotion the writer denies ("I'm not anxious" is NOT anxiety).
- markers: signs of insight, only from the allowed list:
  realization (noticing or understanding something new),
  resolution (deciding on a change or next step),
  gratitude (thankfulness),
  self_reflection (looking at one's own patterns or reasons),
  coping (actively using a strategy to feel better).

Return ONLY the JSON object. No extra text.
`

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// BuildPrompt builds the analysis instructions and the user content for one entry.
func BuildPrompt(text string) Prompt {
	markers := make([]string, 0, len(domain.MarkerOrder))
	for _, m := range domain.MarkerOrder {
		markers = append(markers, string(m))
	}

	var system strings.Builder
	system.WriteString(analysisSystemPrompt)
	system.WriteString("\nAllowed emotions: ")
	system.WriteString(strings.Join(lexicon.Emotions(), ", "))
	system.WriteString("\nAllowed markers: ")
	system.WriteString(strings.Join(markers, ", "))
	system.WriteString("\n")

	var user strings.Builder
	user.WriteString("Journal entry:\n")
	user.WriteString(text)

	return Prompt{
		System: system.String(),
		User:   user.String(),
	}
}
