// Package lexicon holds the static word, phrase and marker tables used by the
// rule-based analyzer. Tables are built once at init and never mutated.
package lexicon

import "github.com/PabloGalante/paceful/internal/domain"

// Version is stamped into every analysis produced from these tables.
const Version = "lex-2024.3"

// MaxPhraseLen is the longest n-gram in the phrase and marker tables.
const MaxPhraseLen = 3

const (
	Anxiety    = "anxiety"
	Sadness    = "sadness"
	Anger      = "anger"
	Fear       = "fear"
	Shame      = "shame"
	Loneliness = "loneliness"
	Overwhelm  = "overwhelm"
	Joy        = "joy"
	Calm       = "calm"
	Gratitude  = "gratitude"
	Hope       = "hope"
	Love       = "love"
	Pride      = "pride"
	Relief     = "relief"
)

// Entry is the emotion and signed valence weight of a word or phrase.
type Entry struct {
	Emotion string
	Weight  float64
}

var words = map[string]Entry{
	// anxiety
	"anxious":      {Anxiety, -2.0},
	"anxiety":      {Anxiety, -2.0},
	"nervous":      {Anxiety, -1.5},
	"worried":      {Anxiety, -1.6},
	"worry":        {Anxiety, -1.5},
	"worrying":     {Anxiety, -1.6},
	"panic":        {Anxiety, -2.5},
	"panicked":     {Anxiety, -2.5},
	"restless":     {Anxiety, -1.2},
	"tense":        {Anxiety, -1.3},
	"uneasy":       {Anxiety, -1.3},
	"stressed":     {Anxiety, -1.8},
	"stress":       {Anxiety, -1.6},
	"on-edge":      {Anxiety, -1.5},
	"jittery":      {Anxiety, -1.2},
	"overthinking": {Anxiety, -1.4},

	// sadness
	"sad":          {Sadness, -2.0},
	"unhappy":      {Sadness, -2.0},
	"depressed":    {Sadness, -2.6},
	"hopeless":     {Sadness, -2.8},
	"miserable":    {Sadness, -2.6},
	"crying":       {Sadness, -1.8},
	"cried":        {Sadness, -1.8},
	"grief":        {Sadness, -2.4},
	"heartbroken":  {Sadness, -2.8},
	"empty":        {Sadness, -1.8},
	"numb":         {Sadness, -1.5},
	"tired":        {Sadness, -1.0},
	"exhausted":    {Sadness, -1.8},
	"gloomy":       {Sadness, -1.6},
	"disappointed": {Sadness, -1.7},

	// anger
	"angry":      {Anger, -2.2},
	"mad":        {Anger, -1.8},
	"furious":    {Anger, -2.8},
	"irritated":  {Anger, -1.5},
	"annoyed":    {Anger, -1.3},
	"frustrated": {Anger, -1.8},
	"resentful":  {Anger, -2.0},
	"rage":       {Anger, -2.8},
	"hate":       {Anger, -2.5},
	"bitter":     {Anger, -1.7},

	// fear
	"afraid":     {Fear, -2.0},
	"scared":     {Fear, -2.0},
	"terrified":  {Fear, -2.8},
	"fear":       {Fear, -2.0},
	"frightened": {Fear, -2.2},
	"dread":      {Fear, -2.3},
	"insecure":   {Fear, -1.6},
	"unsafe":     {Fear, -2.0},

	// shame
	"ashamed":     {Shame, -2.2},
	"guilty":      {Shame, -1.9},
	"embarrassed": {Shame, -1.6},
	"worthless":   {Shame, -2.8},
	"useless":     {Shame, -2.2},
	"failure":     {Shame, -2.2},
	"humiliated":  {Shame, -2.5},

	// loneliness
	"lonely":    {Loneliness, -2.2},
	"alone":     {Loneliness, -1.4},
	"isolated":  {Loneliness, -2.0},
	"abandoned": {Loneliness, -2.4},
	"excluded":  {Loneliness, -1.8},
	"invisible": {Loneliness, -1.6},

	// overwhelm
	"overwhelmed": {Overwhelm, -2.2},
	"overloaded":  {Overwhelm, -1.9},
	"swamped":     {Overwhelm, -1.5},
	"drained":     {Overwhelm, -1.8},
	"burnout":     {Overwhelm, -2.4},
	"chaotic":     {Overwhelm, -1.5},
	"struggling":  {Overwhelm, -1.8},

	// joy
	"happy":     {Joy, 2.0},
	"glad":      {Joy, 1.7},
	"joy":       {Joy, 2.3},
	"joyful":    {Joy, 2.4},
	"excited":   {Joy, 2.0},
	"cheerful":  {Joy, 2.0},
	"delighted": {Joy, 2.4},
	"great":     {Joy, 1.6},
	"good":      {Joy, 1.2},
	"wonderful": {Joy, 2.4},
	"amazing":   {Joy, 2.3},
	"fun":       {Joy, 1.6},
	"laughed":   {Joy, 1.7},
	"smiled":    {Joy, 1.5},

	// calm
	"calm":     {Calm, 1.8},
	"calmer":   {Calm, 1.8},
	"peaceful": {Calm, 2.2},
	"relaxed":  {Calm, 1.9},
	"serene":   {Calm, 2.2},
	"content":  {Calm, 1.6},
	"grounded": {Calm, 1.8},
	"centered": {Calm, 1.7},
	"rested":   {Calm, 1.4},
	"balanced": {Calm, 1.6},
	"safe":     {Calm, 1.5},

	// gratitude
	"grateful":     {Gratitude, 2.5},
	"thankful":     {Gratitude, 2.4},
	"appreciate":   {Gratitude, 2.0},
	"appreciative": {Gratitude, 2.2},
	"blessed":      {Gratitude, 2.2},
	"gratitude":    {Gratitude, 2.5},

	// hope
	"hopeful":    {Hope, 2.2},
	"hope":       {Hope, 1.8},
	"optimistic": {Hope, 2.2},
	"motivated":  {Hope, 1.9},
	"inspired":   {Hope, 2.1},
	"encouraged": {Hope, 1.9},
	"confident":  {Hope, 1.9},
	"better":     {Hope, 1.3},

	// love
	"love":      {Love, 2.3},
	"loved":     {Love, 2.4},
	"loving":    {Love, 2.2},
	"cared":     {Love, 1.8},
	"connected": {Love, 1.9},
	"supported": {Love, 1.9},
	"close":     {Love, 1.0},

	// pride
	"proud":        {Pride, 2.3},
	"accomplished": {Pride, 2.2},
	"capable":      {Pride, 1.8},
	"strong":       {Pride, 1.6},
	"brave":        {Pride, 1.9},

	// relief
	"relieved": {Relief, 2.1},
	"relief":   {Relief, 2.0},
	"lighter":  {Relief, 1.6},
	"released": {Relief, 1.4},
	"healing":  {Relief, 1.8},
	"healed":   {Relief, 2.0},
}

var phrases = map[string]Entry{
	"panic attack":    {Anxiety, -3.0},
	"on edge":         {Anxiety, -1.6},
	"freaking out":    {Anxiety, -2.3},
	"burned out":      {Overwhelm, -2.5},
	"burnt out":       {Overwhelm, -2.5},
	"too much":        {Overwhelm, -1.5},
	"falling apart":   {Overwhelm, -2.6},
	"fed up":          {Anger, -2.0},
	"pissed off":      {Anger, -2.4},
	"let down":        {Sadness, -1.9},
	"broken hearted":  {Sadness, -2.8},
	"left out":        {Loneliness, -1.9},
	"no one cares":    {Loneliness, -2.6},
	"hate myself":     {Shame, -3.0},
	"not good enough": {Shame, -2.4},
	"at peace":        {Calm, 2.4},
	"let go":          {Relief, 1.7},
	"letting go":      {Relief, 1.7},
	"feel better":     {Hope, 1.9},
	"feeling better":  {Hope, 1.9},
	"calmed down":     {Calm, 1.8},
	"weight lifted":   {Relief, 2.3},
	"looking forward": {Hope, 2.0},
	"proud of myself": {Pride, 2.6},
	"made progress":   {Pride, 2.0},
	"thank you":       {Gratitude, 1.8},
}

var negators = map[string]struct{}{
	"not":       {},
	"no":        {},
	"never":     {},
	"nor":       {},
	"neither":   {},
	"without":   {},
	"hardly":    {},
	"barely":    {},
	"isn't":     {},
	"isnt":      {},
	"aren't":    {},
	"arent":     {},
	"wasn't":    {},
	"wasnt":     {},
	"weren't":   {},
	"don't":     {},
	"dont":      {},
	"doesn't":   {},
	"doesnt":    {},
	"didn't":    {},
	"didnt":     {},
	"can't":     {},
	"cant":      {},
	"cannot":    {},
	"won't":     {},
	"wont":      {},
	"couldn't":  {},
	"wouldn't":  {},
	"shouldn't": {},
	"haven't":   {},
	"hasn't":    {},
	"ain't":     {},
	"nothing":   {},
}

// Multi-token negators; the window opens after the last token.
var negatorPhrases = [][]string{
	{"no", "longer"},
	{"not", "at", "all"},
}

var modifiers = map[string]float64{
	"very":       1.5,
	"really":     1.4,
	"so":         1.3,
	"extremely":  1.9,
	"incredibly": 1.8,
	"totally":    1.5,
	"completely": 1.6,
	"deeply":     1.6,
	"truly":      1.4,
	"super":      1.5,
	"absolutely": 1.7,
	"utterly":    1.8,
	"too":        1.3,
	"slightly":   0.5,
	"somewhat":   0.7,
	"kinda":      0.7,
	"kind":       0.8,
	"little":     0.6,
	"mildly":     0.6,
	"partly":     0.7,
}

var markerPatterns = map[domain.InsightMarker][][]string{
	domain.MarkerRealization: {
		{"i", "realize"},
		{"i", "realized"},
		{"i", "noticed"},
		{"i", "notice"},
		{"i", "understand"},
		{"i", "learned"},
		{"i've", "learned"},
		{"now", "i", "see"},
		{"it", "occurred", "to"},
		{"it", "dawned", "on"},
		{"turns", "out"},
		{"makes", "sense"},
	},
	domain.MarkerResolution: {
		{"i", "will"},
		{"i'll"},
		{"going", "to", "try"},
		{"i", "decided"},
		{"i've", "decided"},
		{"my", "plan"},
		{"next", "time"},
		{"from", "now", "on"},
		{"i", "choose"},
		{"i", "commit"},
		{"moving", "forward"},
		{"no", "longer"},
	},
	domain.MarkerGratitude: {
		{"grateful"},
		{"thankful"},
		{"gratitude"},
		{"appreciate"},
		{"appreciated"},
		{"thank", "you"},
		{"blessed"},
	},
	domain.MarkerSelfReflection: {
		{"i", "wonder"},
		{"why", "do", "i"},
		{"why", "did", "i"},
		{"looking", "back"},
		{"reflecting"},
		{"i", "reflect"},
		{"i", "think", "i"},
		{"part", "of", "me"},
		{"i", "tend", "to"},
	},
	domain.MarkerCoping: {
		{"breathe"},
		{"breathing"},
		{"meditated"},
		{"meditation"},
		{"took", "a", "walk"},
		{"went", "for", "a"},
		{"talked", "to"},
		{"reached", "out"},
		{"journaling"},
		{"therapy"},
		{"self-care"},
		{"boundaries"},
	},
}

// Words returns a copy of the single-word table.
func Words() map[string]Entry {
	out := make(map[string]Entry, len(words))
	for k, v := range words {
		out[k] = v
	}
	return out
}

// LookupWord returns the entry for a single token.
func LookupWord(token string) (Entry, bool) {
	e, ok := words[token]
	return e, ok
}

// LookupPhrase returns the entry for a space-joined n-gram.
func LookupPhrase(phrase string) (Entry, bool) {
	e, ok := phrases[phrase]
	return e, ok
}

func IsNegator(token string) bool {
	_, ok := negators[token]
	return ok
}

// NegatorPhrases returns a copy of the multi-token negators.
func NegatorPhrases() [][]string {
	return clonePatterns(negatorPhrases)
}

// Modifier returns the weight scale of an intensifier (>1) or dampener (<1).
func Modifier(token string) (float64, bool) {
	m, ok := modifiers[token]
	return m, ok
}

// MarkerPatterns returns a copy of the token patterns for one marker kind.
func MarkerPatterns(kind domain.InsightMarker) [][]string {
	return clonePatterns(markerPatterns[kind])
}

func clonePatterns(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, p := range in {
		out[i] = append([]string(nil), p...)
	}
	return out
}

// Emotions lists every emotion the tables can produce.
func Emotions() []string {
	return []string{
		Anxiety, Sadness, Anger, Fear, Shame, Loneliness, Overwhelm,
		Joy, Calm, Gratitude, Hope, Love, Pride, Relief,
	}
}
