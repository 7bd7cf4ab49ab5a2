package analyze

import (
	"sort"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// EmojiCount is one emoji with its usage count and its share of the
// containing tally, as a fraction in [0, 1].
type EmojiCount struct {
	Emoji string
	Count int
	Share float64
}

// SharedEmoji is an emoji both sides use, with the split between them.
// SelfShare and OtherShare are fractions of Total and sum to 1.
type SharedEmoji struct {
	Emoji      string
	SelfCount  int
	OtherCount int
	Total      int
	SelfShare  float64
	OtherShare float64
}

// SideEmojiStats tallies one sender's emoji usage.
type SideEmojiStats struct {
	Total      int
	Unique     int
	Top        []EmojiCount
	PerMessage float64 // emojis per message for this sender
}

// EmojiStats is the combined, per-side, exclusive, and shared emoji tables.
type EmojiStats struct {
	Total  int
	Unique int
	Top    []EmojiCount

	Self  SideEmojiStats
	Other SideEmojiStats

	ExclusiveSelf  []EmojiCount  // used by self only, by count
	ExclusiveOther []EmojiCount  // used by them only, by count
	Shared         []SharedEmoji // used by both, by combined count
}

// EmojiTrend tracks the monthly counts of the overall top emojis.
type EmojiTrend struct {
	Top    []string                  // most used emojis overall, count descending
	Months []string                  // sorted month keys with at least one top-emoji use
	Counts map[string]map[string]int // month -> emoji -> count
}

func emojiStats(s msg.Series) EmojiStats {
	selfCounts := make(map[string]int)
	otherCounts := make(map[string]int)
	selfMsgs, otherMsgs := 0, 0
	for _, m := range s {
		counts := otherCounts
		if m.Sender == msg.SenderSelf {
			counts = selfCounts
			selfMsgs++
		} else {
			otherMsgs++
		}
		for _, e := range m.Emojis {
			counts[e]++
		}
	}

	combined := make(map[string]int, len(selfCounts)+len(otherCounts))
	for e, n := range selfCounts {
		combined[e] += n
	}
	for e, n := range otherCounts {
		combined[e] += n
	}

	stats := EmojiStats{
		Total:  sumCounts(combined),
		Unique: len(combined),
		Top:    topCounts(combined, 20),
		Self:   sideStats(selfCounts, selfMsgs),
		Other:  sideStats(otherCounts, otherMsgs),
	}

	for e, n := range selfCounts {
		other, shared := otherCounts[e]
		if !shared {
			stats.ExclusiveSelf = append(stats.ExclusiveSelf, EmojiCount{Emoji: e, Count: n})
			continue
		}
		total := n + other
		stats.Shared = append(stats.Shared, SharedEmoji{
			Emoji:      e,
			SelfCount:  n,
			OtherCount: other,
			Total:      total,
			SelfShare:  float64(n) / float64(total),
			OtherShare: float64(other) / float64(total),
		})
	}
	for e, n := range otherCounts {
		if _, shared := selfCounts[e]; !shared {
			stats.ExclusiveOther = append(stats.ExclusiveOther, EmojiCount{Emoji: e, Count: n})
		}
	}

	sortCounts(stats.ExclusiveSelf)
	sortCounts(stats.ExclusiveOther)
	sort.Slice(stats.Shared, func(i, j int) bool {
		if stats.Shared[i].Total != stats.Shared[j].Total {
			return stats.Shared[i].Total > stats.Shared[j].Total
		}
		return stats.Shared[i].Emoji > stats.Shared[j].Emoji
	})
	return stats
}

func sideStats(counts map[string]int, messages int) SideEmojiStats {
	st := SideEmojiStats{
		Total:  sumCounts(counts),
		Unique: len(counts),
		Top:    topCounts(counts, 20),
	}
	if messages > 0 {
		st.PerMessage = float64(st.Total) / float64(messages)
	}
	return st
}

// emojiTrend picks the n most used emojis overall and tracks their counts per
// month. Months where none of the top emojis appear are absent.
func emojiTrend(s msg.Series, n int) EmojiTrend {
	combined := make(map[string]int)
	for _, m := range s {
		for _, e := range m.Emojis {
			combined[e]++
		}
	}
	top := topCounts(combined, n)

	trend := EmojiTrend{Counts: make(map[string]map[string]int)}
	inTop := make(map[string]bool, len(top))
	for _, tc := range top {
		trend.Top = append(trend.Top, tc.Emoji)
		inTop[tc.Emoji] = true
	}

	monthSeen := make(map[string]bool)
	for _, m := range s {
		for _, e := range m.Emojis {
			if !inTop[e] {
				continue
			}
			month := series.MonthKey(m.Timestamp)
			if trend.Counts[month] == nil {
				trend.Counts[month] = make(map[string]int)
			}
			trend.Counts[month][e]++
			monthSeen[month] = true
		}
	}
	for month := range monthSeen {
		trend.Months = append(trend.Months, month)
	}
	sort.Strings(trend.Months)
	return trend
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// topCounts ranks a count map, count descending with a descending string
// tie-break, filling Share against the map's grand total. A non-positive
// limit keeps everything.
func topCounts(counts map[string]int, limit int) []EmojiCount {
	total := sumCounts(counts)
	out := make([]EmojiCount, 0, len(counts))
	for e, n := range counts {
		ec := EmojiCount{Emoji: e, Count: n}
		if total > 0 {
			ec.Share = float64(n) / float64(total)
		}
		out = append(out, ec)
	}
	sortCounts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortCounts(out []EmojiCount) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emoji > out[j].Emoji
	})
}
