// Package feature computes per-message derived attributes: word count,
// sentiment, emoji content, and a heuristic message-type tag.
//
// Every attribute is a pure function of the message text. The extractor is
// configured once with its lexicons and capability objects (emoji source,
// optional remote polarity scorer) and holds no mutable state, so a single
// extractor can annotate any number of series.
package feature

import (
	"context"
	"regexp"
	"strings"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

// wordPattern matches maximal runs of word characters with Unicode semantics.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Extractor annotates messages with derived attributes.
type Extractor struct {
	lex    Lexicons
	emoji  EmojiSource
	scorer PolarityScorer // nil: lexicon fallback only
}

// Config configures an Extractor. Zero values get defaults; Scorer stays nil
// unless provided.
type Config struct {
	Lexicons *Lexicons
	Emoji    EmojiSource
	Scorer   PolarityScorer
}

// NewExtractor builds an extractor, applying defaults for unset fields.
func NewExtractor(cfg Config) *Extractor {
	lex := DefaultLexicons()
	if cfg.Lexicons != nil {
		lex = *cfg.Lexicons
	}
	emoji := cfg.Emoji
	if emoji == nil {
		emoji = RangeEmojiSource()
	}
	return &Extractor{lex: lex, emoji: emoji, scorer: cfg.Scorer}
}

// WordCount counts maximal runs of word characters. Empty text counts zero.
func WordCount(text string) int {
	if text == "" {
		return 0
	}
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// Tokenize returns the lower-cased word tokens of text, in order.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Sentiment scores text with the lexicon heuristic:
//
//	(pos - neg) / (pos + neg + 1)
//
// and 0 when no cue word hits. The +1 in the denominator is deliberate: it
// softens scores on few hits and biases ties with hits toward zero from the
// magnitude a plain ratio would give. Kept exactly for compatibility.
func (e *Extractor) Sentiment(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	pos := countHits(lower, e.lex.Positive)
	neg := countHits(lower, e.lex.Negative)
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg+1)
}

// Emojis returns the emoji grapheme clusters of text in appearance order.
func (e *Extractor) Emojis(text string) []string {
	return extractEmojis(text, e.emoji)
}

// TypeOf tags a message as compliment, logistics, or other. Compliment wins
// only on a strictly greater hit count with at least one hit; a tie with hits
// on both sides goes to logistics. The asymmetry is intentional.
func (e *Extractor) TypeOf(text string) msg.Type {
	if text == "" {
		return msg.TypeOther
	}
	lower := strings.ToLower(text)
	sweet := countHits(lower, e.lex.Sweet)
	logistics := countHits(lower, e.lex.Logistics)
	switch {
	case sweet > logistics && sweet > 0:
		return msg.TypeCompliment
	case logistics > 0:
		return msg.TypeLogistics
	default:
		return msg.TypeOther
	}
}

// Annotate fills the derived fields of every message in place using the
// lexicon heuristics. It never fails: malformed text degrades to neutral
// defaults rather than aborting the batch.
func (e *Extractor) Annotate(series msg.Series) {
	for i := range series {
		m := &series[i]
		m.WordCount = WordCount(m.Text)
		m.Sentiment = e.Sentiment(m.Text)
		m.Emojis = e.Emojis(m.Text)
		m.EmojiCount = len(m.Emojis)
		m.Type = e.TypeOf(m.Text)
	}
}

// scoreBatchSize bounds one remote scorer call.
const scoreBatchSize = 256

// AnnotateWithModel annotates like Annotate, then overrides sentiment with
// the remote polarity model when one is configured. Scoring happens here, in
// the resolve phase, so downstream aggregation stays free of I/O. A failed
// batch keeps its lexicon scores; the error count is returned so the caller
// can log it.
func (e *Extractor) AnnotateWithModel(ctx context.Context, series msg.Series) (failed int) {
	e.Annotate(series)
	if e.scorer == nil {
		return 0
	}

	for start := 0; start < len(series); start += scoreBatchSize {
		end := start + scoreBatchSize
		if end > len(series) {
			end = len(series)
		}
		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = series[i].Text
		}
		scores, err := e.scorer.Score(ctx, texts)
		if err != nil {
			failed += end - start
			continue
		}
		for i := start; i < end; i++ {
			series[i].Sentiment = clamp(scores[i-start], -1, 1)
		}
	}
	return failed
}

func countHits(lower string, cues []string) int {
	n := 0
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			n++
		}
	}
	return n
}
