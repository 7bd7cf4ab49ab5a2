package feature

import (
	"github.com/rivo/uniseg"
)

// EmojiSource decides whether a grapheme cluster is an emoji. Injecting it at
// extractor construction keeps the extractor testable with or without a full
// emoji table available.
type EmojiSource interface {
	Contains(cluster string) bool
}

// rangeSource is the fallback EmojiSource: a cluster counts as an emoji when
// its first rune falls in one of a fixed set of Unicode blocks. Coarser than
// a maintained emoji table (the blocks overlap and include some non-emoji
// codepoints) but dependency-free. Kept as-is for parity with prior results.
type rangeSource struct{}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols & pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport & map symbols
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x2702 && r <= 0x27B0: // dingbats
		return true
	case r >= 0x24C2 && r <= 0x1F251: // enclosed characters through misc blocks
		return true
	}
	return false
}

func (rangeSource) Contains(cluster string) bool {
	for _, r := range cluster {
		return isEmojiRune(r)
	}
	return false
}

// RangeEmojiSource returns the Unicode-block fallback source.
func RangeEmojiSource() EmojiSource { return rangeSource{} }

// tableSource wraps an explicit emoji set, e.g. one loaded from a data file.
type tableSource map[string]struct{}

func (t tableSource) Contains(cluster string) bool {
	_, ok := t[cluster]
	return ok
}

// TableEmojiSource builds an EmojiSource from an explicit list of emoji.
func TableEmojiSource(emoji []string) EmojiSource {
	t := make(tableSource, len(emoji))
	for _, e := range emoji {
		t[e] = struct{}{}
	}
	return t
}

// extractEmojis returns every grapheme cluster in text the source recognizes
// as an emoji, in appearance order. Grapheme segmentation matters here: many
// emoji are multi-rune clusters (ZWJ sequences, skin tones, variation
// selectors) and splitting them on rune boundaries would corrupt the counts.
func extractEmojis(text string, source EmojiSource) []string {
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		if source.Contains(cluster) {
			out = append(out, cluster)
		}
	}
	return out
}
