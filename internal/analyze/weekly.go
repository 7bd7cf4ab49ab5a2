package analyze

import (
	"sort"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// WeeklyRatio is the share of words each side contributed in one week.
// SelfRatio and OtherRatio always sum to 1; weeks with zero words total are
// excluded from the series entirely.
type WeeklyRatio struct {
	WeekStart  time.Time
	SelfWords  int
	OtherWords int
	SelfRatio  float64
	OtherRatio float64
}

// WeeklySentiment is the mean message sentiment for one week, with a centered
// four-week rolling mean where enough surrounding weeks exist. The rolling
// window covers the two preceding weeks, the week itself, and the following
// week; HasRolling is false near the edges of the series.
type WeeklySentiment struct {
	WeekStart  time.Time
	Mean       float64
	Messages   int
	Rolling    float64
	HasRolling bool
}

// WeekValue is a generic per-week scalar.
type WeekValue struct {
	WeekStart time.Time
	Value     float64
}

// WeeklyTypeMix counts compliment and logistics messages per week. Ratios are
// over the typed messages only (compliments plus logistics), zero when the
// week has neither.
type WeeklyTypeMix struct {
	WeekStart      time.Time
	Compliments    int
	Logistics      int
	ComplimentFrac float64
	LogisticsFrac  float64
}

func weeklyRatios(s msg.Series) []WeeklyRatio {
	type wordPair struct{ self, other int }
	byWeek := make(map[time.Time]*wordPair)
	for _, m := range s {
		wk := series.WeekStart(m.Timestamp)
		p := byWeek[wk]
		if p == nil {
			p = &wordPair{}
			byWeek[wk] = p
		}
		if m.Sender == msg.SenderSelf {
			p.self += m.WordCount
		} else {
			p.other += m.WordCount
		}
	}

	out := make([]WeeklyRatio, 0, len(byWeek))
	for wk, p := range byWeek {
		total := p.self + p.other
		if total == 0 {
			continue
		}
		out = append(out, WeeklyRatio{
			WeekStart:  wk,
			SelfWords:  p.self,
			OtherWords: p.other,
			SelfRatio:  float64(p.self) / float64(total),
			OtherRatio: float64(p.other) / float64(total),
		})
	}
	sortByWeek(out, func(r WeeklyRatio) time.Time { return r.WeekStart })
	return out
}

func weeklySentiment(s msg.Series) []WeeklySentiment {
	type acc struct {
		sum float64
		n   int
	}
	byWeek := make(map[time.Time]*acc)
	for _, m := range s {
		wk := series.WeekStart(m.Timestamp)
		a := byWeek[wk]
		if a == nil {
			a = &acc{}
			byWeek[wk] = a
		}
		a.sum += m.Sentiment
		a.n++
	}

	out := make([]WeeklySentiment, 0, len(byWeek))
	for wk, a := range byWeek {
		out = append(out, WeeklySentiment{
			WeekStart: wk,
			Mean:      a.sum / float64(a.n),
			Messages:  a.n,
		})
	}
	sortByWeek(out, func(w WeeklySentiment) time.Time { return w.WeekStart })

	// Rolling mean over populated weeks by position, not by calendar
	// distance: a silent week does not occupy a window slot.
	for i := range out {
		if i < 2 || i+1 >= len(out) {
			continue
		}
		sum := 0.0
		for j := i - 2; j <= i+1; j++ {
			sum += out[j].Mean
		}
		out[i].Rolling = sum / 4
		out[i].HasRolling = true
	}
	return out
}

// weeklyEmojiDensity averages per-message emoji density over each week, where
// a message's density is its emoji count over max(word count, 1).
func weeklyEmojiDensity(s msg.Series) []WeekValue {
	type acc struct {
		sum float64
		n   int
	}
	byWeek := make(map[time.Time]*acc)
	for _, m := range s {
		wk := series.WeekStart(m.Timestamp)
		a := byWeek[wk]
		if a == nil {
			a = &acc{}
			byWeek[wk] = a
		}
		words := m.WordCount
		if words < 1 {
			words = 1
		}
		a.sum += float64(m.EmojiCount) / float64(words)
		a.n++
	}

	out := make([]WeekValue, 0, len(byWeek))
	for wk, a := range byWeek {
		out = append(out, WeekValue{WeekStart: wk, Value: a.sum / float64(a.n)})
	}
	sortByWeek(out, func(v WeekValue) time.Time { return v.WeekStart })
	return out
}

func weeklyTypeMix(s msg.Series) []WeeklyTypeMix {
	byWeek := make(map[time.Time]*WeeklyTypeMix)
	for _, m := range s {
		wk := series.WeekStart(m.Timestamp)
		mix := byWeek[wk]
		if mix == nil {
			mix = &WeeklyTypeMix{WeekStart: wk}
			byWeek[wk] = mix
		}
		switch m.Type {
		case msg.TypeCompliment:
			mix.Compliments++
		case msg.TypeLogistics:
			mix.Logistics++
		}
	}

	out := make([]WeeklyTypeMix, 0, len(byWeek))
	for _, mix := range byWeek {
		if typed := mix.Compliments + mix.Logistics; typed > 0 {
			mix.ComplimentFrac = float64(mix.Compliments) / float64(typed)
			mix.LogisticsFrac = float64(mix.Logistics) / float64(typed)
		}
		out = append(out, *mix)
	}
	sortByWeek(out, func(m WeeklyTypeMix) time.Time { return m.WeekStart })
	return out
}

func sortByWeek[T any](s []T, key func(T) time.Time) {
	sort.Slice(s, func(i, j int) bool { return key(s[i]).Before(key(s[j])) })
}
