// Package detect flags notable stretches of a conversation: outlier-volume
// days, thread-level argument fingerprints, and low-activity weeks that
// suggest time apart. Detectors are heuristics over aggregate shape; they
// score and rank, they do not classify with certainty.
package detect

import (
	"sort"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// Thresholds used by the argument fingerprint.
const (
	rapidGap         = 5 * time.Minute
	longMessageWords = 20
	lowEmojiDensity  = 0.05
	lowSentiment     = -0.1
)

// DefaultIQRMultiplier widens the big-day outlier fence.
const DefaultIQRMultiplier = 1.5

// DefaultArgumentThreshold is the minimum score a thread needs to be flagged.
const DefaultArgumentThreshold = 0.5

// BigDay is a calendar day whose word volume sits above the outlier fence.
type BigDay struct {
	Date     time.Time // UTC midnight
	Words    int
	Messages int
}

// ArgumentThread is a thread flagged by the argument fingerprint, with the
// component signals that produced its score.
type ArgumentThread struct {
	Start        time.Time
	Messages     int
	Words        int
	Rapid        int     // gaps under five minutes inside the thread
	Long         int     // messages over twenty words
	LowEmojiFrac float64 // fraction of messages with emoji density under 0.05
	LowSentFrac  float64 // fraction of messages with sentiment under -0.1
	Score        float64
}

// WeekActivity is one week's word volume relative to the quartile split.
type WeekActivity struct {
	WeekStart time.Time
	Words     int
}

// ActivitySplit separates quiet weeks (possible travel or time apart) from
// the busiest ones. Weeks between the quartiles appear in neither list.
type ActivitySplit struct {
	Quiet []WeekActivity // weekly words strictly below Q1
	Busy  []WeekActivity // weekly words strictly above Q3
	Q1    float64
	Q3    float64
}

// BigDays finds days whose total word count exceeds Q3 + mult*IQR over the
// per-day distribution. At most ten days return, busiest first. A
// non-positive multiplier falls back to DefaultIQRMultiplier.
func BigDays(s msg.Series, mult float64) []BigDay {
	if len(s) == 0 {
		return nil
	}
	if mult <= 0 {
		mult = DefaultIQRMultiplier
	}

	type volume struct {
		words    int
		messages int
	}
	byDay := make(map[time.Time]*volume)
	for _, m := range s {
		d := series.Day(m.Timestamp)
		v := byDay[d]
		if v == nil {
			v = &volume{}
			byDay[d] = v
		}
		v.words += m.WordCount
		v.messages++
	}

	words := make([]float64, 0, len(byDay))
	for _, v := range byDay {
		words = append(words, float64(v.words))
	}
	q1 := Quantile(words, 0.25)
	q3 := Quantile(words, 0.75)
	fence := q3 + mult*(q3-q1)

	var out []BigDay
	for d, v := range byDay {
		if float64(v.words) > fence {
			out = append(out, BigDay{Date: d, Words: v.words, Messages: v.messages})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Words != out[j].Words {
			return out[i].Words > out[j].Words
		}
		return out[i].Date.Before(out[j].Date)
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// Arguments scores every thread with the argument fingerprint and returns
// those above the threshold, highest first, at most ten.
//
// The score is 0.3 per rapid exchange plus 0.2 per long message plus 0.3
// times the low-emoji fraction plus 0.2 when the low-sentiment fraction is
// itself below -0.1. A fraction can never be negative, so the sentiment term
// never fires; the weights are kept as published so scores stay comparable
// with earlier analyses.
func Arguments(s msg.Series, gap time.Duration, threshold float64) []ArgumentThread {
	if threshold <= 0 {
		threshold = DefaultArgumentThreshold
	}

	var out []ArgumentThread
	for _, th := range series.Threads(s, gap) {
		at := fingerprint(th)
		if at.Score > threshold {
			out = append(out, at)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Start.Before(out[j].Start)
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func fingerprint(th series.Thread) ArgumentThread {
	at := ArgumentThread{Start: th.Start, Messages: len(th.Messages)}
	lowEmoji, lowSent := 0, 0
	for i, m := range th.Messages {
		at.Words += m.WordCount
		if i > 0 && m.Timestamp.Sub(th.Messages[i-1].Timestamp) < rapidGap {
			at.Rapid++
		}
		if m.WordCount > longMessageWords {
			at.Long++
		}
		words := m.WordCount
		if words < 1 {
			words = 1
		}
		if float64(m.EmojiCount)/float64(words) < lowEmojiDensity {
			lowEmoji++
		}
		if m.Sentiment < lowSentiment {
			lowSent++
		}
	}
	n := float64(len(th.Messages))
	at.LowEmojiFrac = float64(lowEmoji) / n
	at.LowSentFrac = float64(lowSent) / n

	at.Score = 0.3*float64(at.Rapid) + 0.2*float64(at.Long) + 0.3*at.LowEmojiFrac
	if at.LowSentFrac < lowSentiment {
		at.Score += 0.2
	}
	return at
}

// SplitActivity buckets the series into weeks by total words and splits the
// weeks against the quartiles of that distribution.
func SplitActivity(s msg.Series) ActivitySplit {
	byWeek := make(map[time.Time]int)
	for _, m := range s {
		byWeek[series.WeekStart(m.Timestamp)] += m.WordCount
	}
	if len(byWeek) == 0 {
		return ActivitySplit{}
	}

	words := make([]float64, 0, len(byWeek))
	for _, w := range byWeek {
		words = append(words, float64(w))
	}
	split := ActivitySplit{
		Q1: Quantile(words, 0.25),
		Q3: Quantile(words, 0.75),
	}
	for wk, w := range byWeek {
		wa := WeekActivity{WeekStart: wk, Words: w}
		switch {
		case float64(w) < split.Q1:
			split.Quiet = append(split.Quiet, wa)
		case float64(w) > split.Q3:
			split.Busy = append(split.Busy, wa)
		}
	}
	sortWeeks(split.Quiet)
	sortWeeks(split.Busy)
	return split
}

func sortWeeks(ws []WeekActivity) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].WeekStart.Before(ws[j].WeekStart) })
}
